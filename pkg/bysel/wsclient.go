package bysel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// QuoteTopic returns the stream topic for a symbol, e.g. "quote.TCS".
func QuoteTopic(symbol string) string {
	return "quote." + symbol
}

type subscribeMessage struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

// WSClient handles the WebSocket quote stream and message routing.
type WSClient struct {
	url     string
	topics  func() []string
	handler func([]byte)
	backoff time.Duration
	logger  *zap.Logger
	dialer  *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSClient creates a stream client. topics is consulted on every (re)connect
// so symbols added after startup are picked up on the next subscription.
func NewWSClient(url string, topics func() []string, logger *zap.Logger) *WSClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSClient{
		url:     url,
		topics:  topics,
		backoff: 3 * time.Second,
		logger:  logger,
		dialer:  websocket.DefaultDialer,
	}
}

// SetMessageHandler sets the function to handle incoming messages.
func (c *WSClient) SetMessageHandler(h func([]byte)) {
	c.handler = h
}

// SetBackoff overrides the reconnect delay.
func (c *WSClient) SetBackoff(d time.Duration) {
	c.backoff = d
}

// Connect establishes the WebSocket connection and subscribes to the current topics.
// It does not start the listener.
func (c *WSClient) Connect(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.logger.Error("failed to connect to quote stream", zap.String("url", c.url), zap.Error(err))
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	if err := c.subscribe(conn); err != nil {
		_ = conn.Close()
		return err
	}

	c.mu.Lock()
	old := c.conn
	c.conn = conn
	c.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}

	c.logger.Info("quote stream connected", zap.String("url", c.url))
	return nil
}

// Resubscribe sends a subscription for the current topics on the live connection.
func (c *WSClient) Resubscribe() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("quote stream not connected")
	}
	return c.subscribe(conn)
}

func (c *WSClient) subscribe(conn *websocket.Conn) error {
	var args []string
	if c.topics != nil {
		args = c.topics()
	}
	if len(args) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := conn.WriteJSON(subscribeMessage{Op: "subscribe", Args: args}); err != nil {
		c.logger.Error("failed to send subscription", zap.Error(err))
		return fmt.Errorf("websocket subscribe failed: %w", err)
	}
	return nil
}

// Listen reads messages until ctx is cancelled, reconnecting after read errors.
func (c *WSClient) Listen(ctx context.Context) {
	go func() {
		<-ctx.Done()
		c.Close()
	}()

	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		if conn == nil {
			if !c.reconnect(ctx) {
				return
			}
			continue
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("quote stream read error", zap.Error(err))
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			_ = conn.Close()
			continue
		}

		if c.handler != nil {
			c.handler(msg)
		}
	}
}

// reconnect retries until a connection is made; false means ctx ended first.
func (c *WSClient) reconnect(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.backoff):
		}

		if err := c.Connect(ctx); err != nil {
			c.logger.Warn("retrying quote stream reconnect", zap.Error(err))
			continue
		}
		c.logger.Info("quote stream reconnected")
		return true
	}
}

// Close closes the live connection, if any.
func (c *WSClient) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

package stream

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"bysel/internal/memorystore"
	"bysel/pkg/bysel"

	"go.uber.org/zap"
)

// QuoteSink persists stream quotes; *cache.Client satisfies it.
type QuoteSink interface {
	UpsertQuote(ctx context.Context, q bysel.Quote) error
}

// MakeMessageHandler returns a function that handles incoming WebSocket messages
// by parsing quote frames into the quote book and, when sink is non-nil, the cache.
func MakeMessageHandler(logger *zap.Logger, book *memorystore.QuoteBook, sink QuoteSink) func(msg []byte) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(msg []byte) {
		var meta struct {
			Topic string `json:"topic"`
		}
		if err := json.Unmarshal(msg, &meta); err != nil {
			logger.Warn("failed to extract topic", zap.Error(err))
			return
		}
		if !isQuoteTopic(meta.Topic) {
			return // subscription acks, pongs
		}

		var parsed QuoteMessage
		if err := json.Unmarshal(msg, &parsed); err != nil {
			logger.Warn("failed to parse quote payload", zap.String("topic", meta.Topic), zap.Error(err))
			return
		}

		q := parsed.Data
		if q.Symbol == "" {
			q.Symbol = extractSymbolFromTopic(parsed.Topic)
		}
		if q.Symbol == "" {
			logger.Warn("quote without symbol", zap.String("topic", parsed.Topic))
			return
		}
		if q.Timestamp == 0 {
			q.Timestamp = parsed.Ts
		}
		if q.Timestamp == 0 {
			q.Timestamp = bysel.Now()
		}

		book.Add(q)

		if sink == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := sink.UpsertQuote(ctx, q); err != nil {
			logger.Warn("failed to cache stream quote", zap.String("symbol", q.Symbol), zap.Error(err))
		}
	}
}

// isQuoteTopic returns true if the topic string indicates a quote stream.
func isQuoteTopic(topic string) bool {
	return strings.HasPrefix(topic, "quote.")
}

// extractSymbolFromTopic parses the symbol from a topic like "quote.TCS".
func extractSymbolFromTopic(topic string) string {
	parts := strings.Split(topic, ".")
	if len(parts) == 2 {
		return parts[1]
	}
	return ""
}

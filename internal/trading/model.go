package trading

import (
	"context"
	"sync"
	"time"

	"bysel/config"
	"bysel/internal/memorystore"
	"bysel/internal/repository"
	"bysel/internal/scheduler"
	"bysel/logger"
	"bysel/pkg/bysel"

	"go.uber.org/zap"
)

// Stream is a live quote feed; *bysel.WSClient implements it.
type Stream interface {
	Connect(ctx context.Context) error
	Listen(ctx context.Context)
	Resubscribe() error
	Close()
}

type Options struct {
	Symbols  []string      // watch universe; empty means config.DefaultSymbols
	Interval time.Duration // auto-refresh interval; 0 means scheduler.DefaultInterval
	Logger   *zap.Logger
}

// Model drives the trading screens: it owns the observable State, runs the
// auto-refresh loop and exposes the user operations. Operations block until
// the backend answers; callers that want them asynchronous wrap them in a goroutine.
type Model struct {
	State

	repo    *repository.Repository
	logger  *zap.Logger
	symbols *memorystore.SymbolSet
	book    *memorystore.QuoteBook
	poller  *scheduler.Poller

	mu         sync.Mutex
	stream     Stream
	subscribed uint64
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func New(repo *repository.Repository, opts Options) *Model {
	symbols := opts.Symbols
	if len(symbols) == 0 {
		symbols = config.DefaultSymbols
	}
	return &Model{
		State:   newState(),
		repo:    repo,
		logger:  logger.OrNop(opts.Logger),
		symbols: memorystore.NewSymbolSet(symbols...),
		book:    memorystore.NewQuoteBook(60),
		poller:  &scheduler.Poller{Interval: opts.Interval},
	}
}

// Book is the in-memory quote book fed by polling and the stream.
func (m *Model) Book() *memorystore.QuoteBook { return m.book }

func (m *Model) Symbols() []string { return m.symbols.GetAll() }

// Topics lists the stream topics for the current watch universe.
func (m *Model) Topics() []string {
	symbols := m.symbols.GetAll()
	topics := make([]string, len(symbols))
	for i, s := range symbols {
		topics[i] = bysel.QuoteTopic(s)
	}
	return topics
}

// Watch adds symbol to the universe. Polling picks it up on the next tick,
// the stream on the next resubscription.
func (m *Model) Watch(symbol string) bool {
	return m.symbols.Add(symbol)
}

// AttachStream sets the live feed used from the next Start.
func (m *Model) AttachStream(s Stream) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stream = s
}

// Start loads the initial data, observes cached alerts, connects the
// stream when attached and starts the auto-refresh loop.
func (m *Model) Start(ctx context.Context) {
	m.Stop()

	loopCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	stream := m.stream
	m.mu.Unlock()

	m.parallel(loopCtx,
		m.RefreshQuotes,
		m.RefreshHoldings,
		m.RefreshWallet,
		m.RefreshMarketStatus,
	)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.observeAlerts(loopCtx)
	}()

	if stream != nil {
		version := m.symbols.Version()
		if err := stream.Connect(loopCtx); err != nil {
			m.logger.Warn("quote stream unavailable, reconnecting in background", zap.Error(err))
		}
		// Listen dials again when the first connect failed; every connect
		// subscribes the full universe.
		m.mu.Lock()
		m.subscribed = version
		m.mu.Unlock()
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			stream.Listen(loopCtx)
		}()
	}

	m.poller.Start(loopCtx, m.silentRefresh)
	m.logger.Info("trading model started",
		zap.Int("symbols", len(m.symbols.GetAll())),
		zap.Bool("stream", stream != nil))
}

// Stop cancels the refresh loop, the alert observer and the stream.
func (m *Model) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	stream := m.stream
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	m.poller.Stop()
	if stream != nil {
		stream.Close()
	}
	m.wg.Wait()
}

func (m *Model) parallel(ctx context.Context, fns ...func(context.Context)) {
	var wg sync.WaitGroup
	for _, fn := range fns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}
	wg.Wait()
}

// observeAlerts publishes the cached active alerts and widens the watch
// universe so every alerted symbol is quoted by the auto-refresh.
func (m *Model) observeAlerts(ctx context.Context) {
	for list := range m.repo.WatchActiveAlerts(ctx) {
		for _, a := range list {
			if m.Watch(a.Symbol) {
				m.logger.Debug("watching alert symbol", zap.String("symbol", a.Symbol))
			}
		}
		m.Alerts.Set(list)
	}
}

// silentRefresh is one auto-refresh tick: no loading flag, errors ignored.
func (m *Model) silentRefresh(ctx context.Context) {
	m.parallel(ctx,
		m.refreshQuotesSilent,
		m.refreshHoldingsSilent,
		m.RefreshWallet,
		m.RefreshMarketStatus,
	)
	m.syncStream()
}

func (m *Model) refreshQuotesSilent(ctx context.Context) {
	r := repository.Await(m.repo.Quotes(ctx, m.symbols.GetAll()))
	if !r.IsSuccess() {
		m.logger.Debug("silent quote refresh failed", zap.String("error", r.Message()))
		return
	}
	m.setQuotes(r.Data())
	m.CheckAlerts(ctx)
}

func (m *Model) refreshHoldingsSilent(ctx context.Context) {
	r := repository.Await(m.repo.Holdings(ctx))
	if r.IsSuccess() {
		m.Holdings.Set(r.Data())
	}
}

func (m *Model) setQuotes(quotes []bysel.Quote) {
	m.Quotes.Set(quotes)
	m.book.AddAll(quotes)
}

// syncStream resubscribes when the watch universe changed since the last
// subscription. The stream subscribes the full universe on every connect.
func (m *Model) syncStream() {
	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()
	if stream == nil {
		return
	}

	version := m.symbols.Version()
	m.mu.Lock()
	changed := version != m.subscribed
	m.mu.Unlock()
	if !changed {
		return
	}

	if err := stream.Resubscribe(); err != nil {
		m.logger.Debug("stream resubscribe skipped", zap.Error(err))
		return
	}
	m.mu.Lock()
	m.subscribed = version
	m.mu.Unlock()
	m.logger.Debug("stream resubscribed", zap.Int("symbols", len(m.symbols.GetAll())))
}

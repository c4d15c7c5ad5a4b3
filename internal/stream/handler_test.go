package stream

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bysel/internal/memorystore"
	"bysel/pkg/bysel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu     sync.Mutex
	quotes []bysel.Quote
	err    error
}

func (f *fakeSink) UpsertQuote(_ context.Context, q bysel.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes = append(f.quotes, q)
	return f.err
}

// go test -v --run TestHandlerStoresQuote
func TestHandlerStoresQuote(t *testing.T) {
	book := memorystore.NewQuoteBook(5)
	sink := &fakeSink{}
	handle := MakeMessageHandler(nil, book, sink)

	handle([]byte(`{"topic":"quote.TCS","data":{"symbol":"TCS","last":4100,"pctChange":0.5,"timestamp":1700000000000}}`))

	q, ok := book.Latest("TCS")
	require.True(t, ok)
	assert.Equal(t, 4100.0, q.Last)
	assert.Equal(t, bysel.Millis(1700000000000), q.Timestamp)
	require.Len(t, sink.quotes, 1)
	assert.Equal(t, "TCS", sink.quotes[0].Symbol)
}

// go test -v --run TestHandlerSymbolFromTopic
func TestHandlerSymbolFromTopic(t *testing.T) {
	book := memorystore.NewQuoteBook(1)
	handle := MakeMessageHandler(nil, book, nil)

	handle([]byte(`{"topic":"quote.INFY","data":{"last":1500,"pctChange":-1}}`))

	q, ok := book.Latest("INFY")
	require.True(t, ok)
	assert.Equal(t, "INFY", q.Symbol)
	assert.NotZero(t, q.Timestamp)
}

// go test -v --run TestHandlerIgnoresOtherFrames
func TestHandlerIgnoresOtherFrames(t *testing.T) {
	book := memorystore.NewQuoteBook(1)
	sink := &fakeSink{}
	handle := MakeMessageHandler(nil, book, sink)

	handle([]byte(`{"op":"subscribe","success":true}`))
	handle([]byte(`not json`))
	handle([]byte(`{"topic":"quote.TCS","data":"garbage"}`))
	handle([]byte(`{"topic":"quote.","data":{}}`))

	assert.Zero(t, book.Len())
	assert.Empty(t, sink.quotes)
}

// go test -v --run TestHandlerSinkFailure
func TestHandlerSinkFailure(t *testing.T) {
	book := memorystore.NewQuoteBook(1)
	sink := &fakeSink{err: errors.New("disk full")}
	handle := MakeMessageHandler(nil, book, sink)

	handle([]byte(`{"topic":"quote.SBIN","data":{"symbol":"SBIN","last":600}}`))

	_, ok := book.Latest("SBIN")
	assert.True(t, ok, "book is updated even when the cache write fails")
}

package bysel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRESTClient(Options{BaseURL: srv.URL, Timeout: 5 * time.Second, UserID: "7"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// go test -v --run TestGetQuotes
func TestGetQuotes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/quotes", r.URL.Path)
		assert.Equal(t, "RELIANCE,TCS", r.URL.Query().Get("symbols"))
		assert.Equal(t, "7", r.Header.Get("user-id"))
		assert.Empty(t, r.Header.Values("user_id"))
		_, _ = io.WriteString(w, `[
			{"symbol":"RELIANCE","last":2950.5,"pctChange":1.2,"timestamp":"2026-01-02T03:04:05.123456"},
			{"symbol":"TCS","last":4100,"pctChange":-0.4,"timestamp":1767322000000}
		]`)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	quotes, err := client.GetQuotes(ctx, []string{"RELIANCE", "TCS"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "RELIANCE", quotes[0].Symbol)
	assert.Equal(t, 2950.5, quotes[0].Last)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 123000000, time.UTC).UnixMilli(), int64(quotes[0].Timestamp))
	assert.Equal(t, Millis(1767322000000), quotes[1].Timestamp)
}

// go test -v --run TestGetQuoteEscapesSymbol
func TestGetQuoteEscapesSymbol(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quotes/BAJAJ-AUTO", r.URL.Path)
		writeJSON(w, Quote{Symbol: "BAJAJ-AUTO", Last: 9000})
	})

	q, err := client.GetQuote(context.Background(), "BAJAJ-AUTO")
	require.NoError(t, err)
	assert.Equal(t, 9000.0, q.Last)
}

// go test -v --run TestPlaceOrder
func TestPlaceOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/order", r.URL.Path)

		var order Order
		require.NoError(t, json.NewDecoder(r.Body).Decode(&order))
		assert.Equal(t, Order{Symbol: "TCS", Qty: 1, Side: SideBuy}, order)

		writeJSON(w, OrderResponse{Status: StatusOK, Order: order, Message: "BUY 1 shares of TCS"})
	})

	resp, err := client.PlaceOrder(context.Background(), Order{Symbol: "TCS", Qty: 1, Side: SideBuy})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, "TCS", resp.Order.Symbol)
}

// go test -v --run TestDeleteAlertPath
func TestDeleteAlertPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/alert/42", r.URL.Path)
		id := 42
		writeJSON(w, AlertResponse{Status: StatusOK, Message: "deleted", ID: &id})
	})

	resp, err := client.DeleteAlert(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, resp.ID)
	assert.Equal(t, 42, *resp.ID)
}

// go test -v --run TestAiAsk
func TestAiAsk(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/ask", r.URL.Path)
		var q AiQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, "Predict TCS price", q.Query)
		_, _ = io.WriteString(w, `{"type":"prediction","symbol":"TCS","answer":"**up**","data":{"signal":"BUY"},"suggestions":["Analyze TCS"]}`)
	})

	resp, err := client.AiAsk(context.Background(), AiQuery{Query: "Predict TCS price"})
	require.NoError(t, err)
	assert.Equal(t, "prediction", resp.Type)
	assert.Equal(t, []string{"Analyze TCS"}, resp.Suggestions)
	assert.JSONEq(t, `{"signal":"BUY"}`, string(resp.Data))
}

// go test -v --run TestGetMarketHeatmap
func TestGetMarketHeatmap(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"sectors":[{"name":"IT","avgChange":1.5,"intensity":"positive","stocks":[{"symbol":"TCS","pctChange":2.1,"intensity":"positive"}],"topGainer":{"symbol":"TCS"},"topLoser":null}],
			"marketBreadth":{"advances":10,"declines":5,"unchanged":1,"total":16,"advanceRatio":0.625},
			"mood":"Bullish","bestSector":{"name":"IT","change":1.5},"worstSector":{"name":"Pharma","change":-0.3}
		}`)
	})

	hm, err := client.GetMarketHeatmap(context.Background())
	require.NoError(t, err)
	require.Len(t, hm.Sectors, 1)
	assert.Equal(t, "IT", hm.Sectors[0].Name)
	require.NotNil(t, hm.Sectors[0].TopGainer)
	assert.Nil(t, hm.Sectors[0].TopLoser)
	assert.Equal(t, 16, hm.MarketBreadth.Total)
	assert.Equal(t, "Pharma", hm.WorstSector.Name)
}

// go test -v --run TestAPIError
func TestAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Invalid or missing user_id header"}`, http.StatusUnauthorized)
	})

	_, err := client.GetHoldings(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "Invalid or missing user_id header")
}

// go test -v --run TestDecodeError
func TestDecodeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})

	_, err := client.GetWallet(context.Background())
	assert.Error(t, err)
}

// go test -v --run TestMillisUnmarshal
func TestMillisUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Millis
		err  bool
	}{
		{in: `1700000000000`, want: 1700000000000},
		{in: `"1700000000000"`, want: 1700000000000},
		{in: `"2023-11-14T22:13:20Z"`, want: 1700000000000},
		{in: `null`, want: 0},
		{in: `""`, want: 0},
		{in: `"yesterday"`, err: true},
	}

	for _, test := range tests {
		var m Millis
		err := json.Unmarshal([]byte(test.in), &m)
		if test.err {
			assert.Error(t, err, test.in)
			continue
		}
		require.NoError(t, err, test.in)
		assert.Equal(t, test.want, m, test.in)
	}
}

func dropConnection(t *testing.T, w http.ResponseWriter) {
	t.Helper()
	hj, ok := w.(http.Hijacker)
	if !assert.True(t, ok) {
		return
	}
	conn, _, err := hj.Hijack()
	if assert.NoError(t, err) {
		_ = conn.Close()
	}
}

// go test -v --run TestRetriesOnlyIdempotentRequests
func TestRetriesOnlyIdempotentRequests(t *testing.T) {
	var gets, posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets.Add(1)
		case http.MethodPost:
			posts.Add(1)
		}
		dropConnection(t, w)
	}))
	t.Cleanup(srv.Close)
	client := NewRESTClient(Options{BaseURL: srv.URL, Timeout: 5 * time.Second, Retries: 2})
	ctx := context.Background()

	_, err := client.PlaceOrder(ctx, Order{Symbol: "TCS", Qty: 1, Side: SideBuy})
	require.Error(t, err)
	assert.Equal(t, int32(1), posts.Load(), "orders are sent once")

	_, err = client.AddFunds(ctx, 100)
	require.Error(t, err)
	assert.Equal(t, int32(2), posts.Load())

	_, err = client.GetHoldings(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(3), gets.Load(), "one attempt plus two retries")
}

// go test -v --run TestAlertDecodeDefaultsActive
func TestAlertDecodeDefaultsActive(t *testing.T) {
	var a Alert
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"symbol":"TCS","thresholdPrice":4000,"alertType":"ABOVE"}`), &a))
	assert.True(t, a.IsActive)
	assert.Equal(t, "TCS", a.Symbol)
	assert.Equal(t, 4000.0, a.ThresholdPrice)

	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"symbol":"INFY","isActive":false}`), &a))
	assert.False(t, a.IsActive)
	assert.Equal(t, 2, a.ID)

	var list []Alert
	require.NoError(t, json.Unmarshal([]byte(`[{"id":3},{"id":4,"isActive":false}]`), &list))
	require.Len(t, list, 2)
	assert.True(t, list[0].IsActive)
	assert.False(t, list[1].IsActive)
}

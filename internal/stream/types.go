package stream

import "bysel/pkg/bysel"

// QuoteMessage is a quote frame pushed by the stream, e.g.
// {"topic":"quote.TCS","data":{"symbol":"TCS","last":4100,"pctChange":0.5}}.
type QuoteMessage struct {
	Topic string       `json:"topic"`
	Data  bysel.Quote  `json:"data"`
	Ts    bysel.Millis `json:"ts,omitempty"`
}

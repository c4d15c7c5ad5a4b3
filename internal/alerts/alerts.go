package alerts

import (
	"errors"
	"fmt"
	"strings"

	"bysel/pkg/bysel"
)

var (
	ErrInvalidType      = errors.New("alert type must be ABOVE or BELOW")
	ErrInvalidThreshold = errors.New("alert threshold must be positive")
)

// Trigger is an active alert whose condition holds for the current quote.
type Trigger struct {
	Alert bysel.Alert
	Quote bysel.Quote
}

func (t Trigger) String() string {
	dir := "above"
	if t.Alert.AlertType == bysel.AlertBelow {
		dir = "below"
	}
	return fmt.Sprintf("%s at %.2f is %s %.2f", t.Quote.Symbol, t.Quote.Last, dir, t.Alert.ThresholdPrice)
}

// Validate normalizes alertType to upper case and checks the threshold.
func Validate(alertType string, threshold float64) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(alertType))
	if normalized != bysel.AlertAbove && normalized != bysel.AlertBelow {
		return "", fmt.Errorf("%w: got %q", ErrInvalidType, alertType)
	}
	if threshold <= 0 {
		return "", fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return normalized, nil
}

// Condition reports whether alert fires at price.
func Condition(alert bysel.Alert, price float64) bool {
	switch strings.ToUpper(alert.AlertType) {
	case bysel.AlertAbove:
		return price >= alert.ThresholdPrice
	case bysel.AlertBelow:
		return price <= alert.ThresholdPrice
	}
	return false
}

// Evaluate returns the active alerts triggered by quotes, in alert order.
// Alerts without a matching quote are skipped.
func Evaluate(alerts []bysel.Alert, quotes []bysel.Quote) []Trigger {
	bySymbol := make(map[string]bysel.Quote, len(quotes))
	for _, q := range quotes {
		bySymbol[strings.ToUpper(q.Symbol)] = q
	}

	var out []Trigger
	for _, a := range alerts {
		if !a.IsActive {
			continue
		}
		q, ok := bySymbol[strings.ToUpper(a.Symbol)]
		if !ok {
			continue
		}
		if Condition(a, q.Last) {
			out = append(out, Trigger{Alert: a, Quote: q})
		}
	}
	return out
}

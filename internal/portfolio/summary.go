package portfolio

import (
	"bysel/pkg/bysel"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summarize values holdings at their last price. Amounts are rounded to
// two decimal places; the percentage is 0 when nothing is invested.
func Summarize(holdings []bysel.Holding) bysel.PortfolioSummary {
	value := decimal.Zero
	invested := decimal.Zero
	for _, h := range holdings {
		qty := decimal.NewFromInt(int64(h.Qty))
		value = value.Add(qty.Mul(decimal.NewFromFloat(h.Last)))
		invested = invested.Add(qty.Mul(decimal.NewFromFloat(h.AvgPrice)))
	}

	pnl := value.Sub(invested)
	pct := decimal.Zero
	if !invested.IsZero() {
		pct = pnl.Div(invested).Mul(hundred)
	}

	return bysel.PortfolioSummary{
		TotalValue:      value.Round(2).InexactFloat64(),
		TotalInvested:   invested.Round(2).InexactFloat64(),
		TotalPnL:        pnl.Round(2).InexactFloat64(),
		TotalPnLPercent: pct.Round(2).InexactFloat64(),
		HoldingsCount:   len(holdings),
	}
}

// Value is Summarize projected onto the /portfolio/value shape.
func Value(holdings []bysel.Holding) bysel.PortfolioValue {
	s := Summarize(holdings)
	return bysel.PortfolioValue{
		Value:      s.TotalValue,
		Invested:   s.TotalInvested,
		PnL:        s.TotalPnL,
		PnLPercent: s.TotalPnLPercent,
	}
}

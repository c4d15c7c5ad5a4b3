package repository

import (
	"context"

	"bysel/internal/result"
	"bysel/pkg/bysel"
	"bysel/pkg/storage/cache"
)

// ==================== HOLDINGS ====================

func (r *Repository) Holdings(ctx context.Context) <-chan result.Result[[]bysel.Holding] {
	return stream(ctx, func(ctx context.Context) ([]bysel.Holding, error) {
		holdings, err := r.api.GetHoldings(ctx)
		if err != nil {
			return nil, err
		}
		r.writeCache("upsert holdings", func(ctx context.Context, c *cache.Client) error {
			return c.UpsertHoldings(ctx, holdings)
		})
		return holdings, nil
	})
}

func (r *Repository) Holding(ctx context.Context, symbol string) result.Result[bysel.Holding] {
	return once(ctx, func(ctx context.Context) (bysel.Holding, error) {
		h, err := r.api.GetHolding(ctx, symbol)
		if err != nil {
			return bysel.Holding{}, err
		}
		r.writeCache("upsert holding", func(ctx context.Context, c *cache.Client) error {
			return c.UpsertHolding(ctx, h)
		})
		return h, nil
	})
}

func (r *Repository) CachedHoldings(ctx context.Context) ([]bysel.Holding, error) {
	if r.cache == nil {
		return nil, nil
	}
	return r.cache.AllHoldings(ctx)
}

// ==================== TRADING OPERATIONS ====================

func (r *Repository) PlaceOrder(ctx context.Context, order bysel.Order) result.Result[bysel.OrderResponse] {
	return once(ctx, func(ctx context.Context) (bysel.OrderResponse, error) {
		return r.api.PlaceOrder(ctx, order)
	})
}

func (r *Repository) BuyStock(ctx context.Context, symbol string, qty int) result.Result[bysel.OrderResponse] {
	order := bysel.Order{Symbol: symbol, Qty: qty, Side: bysel.SideBuy}
	return once(ctx, func(ctx context.Context) (bysel.OrderResponse, error) {
		return r.api.BuyStock(ctx, order)
	})
}

func (r *Repository) SellStock(ctx context.Context, symbol string, qty int) result.Result[bysel.OrderResponse] {
	order := bysel.Order{Symbol: symbol, Qty: qty, Side: bysel.SideSell}
	return once(ctx, func(ctx context.Context) (bysel.OrderResponse, error) {
		return r.api.SellStock(ctx, order)
	})
}

func (r *Repository) TradeHistory(ctx context.Context) <-chan result.Result[[]bysel.TradeHistory] {
	return stream(ctx, r.api.GetTradeHistory)
}

func (r *Repository) TradeHistoryForSymbol(ctx context.Context, symbol string) <-chan result.Result[[]bysel.TradeHistory] {
	return stream(ctx, func(ctx context.Context) ([]bysel.TradeHistory, error) {
		return r.api.GetTradeHistoryForSymbol(ctx, symbol)
	})
}

// ==================== PORTFOLIO ====================

func (r *Repository) PortfolioSummary(ctx context.Context) result.Result[bysel.PortfolioSummary] {
	return once(ctx, r.api.GetPortfolio)
}

func (r *Repository) PortfolioValue(ctx context.Context) result.Result[bysel.PortfolioValue] {
	return once(ctx, r.api.GetPortfolioValue)
}

func (r *Repository) PortfolioHealth(ctx context.Context) result.Result[bysel.PortfolioHealthScore] {
	return once(ctx, r.api.GetPortfolioHealth)
}

// ==================== WALLET ====================

func (r *Repository) Wallet(ctx context.Context) result.Result[bysel.Wallet] {
	return once(ctx, r.api.GetWallet)
}

func (r *Repository) AddFunds(ctx context.Context, amount float64) result.Result[bysel.WalletResponse] {
	return once(ctx, func(ctx context.Context) (bysel.WalletResponse, error) {
		return r.api.AddFunds(ctx, amount)
	})
}

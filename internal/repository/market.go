package repository

import (
	"context"

	"bysel/internal/result"
	"bysel/pkg/bysel"
	"bysel/pkg/storage/cache"
)

// ==================== QUOTES ====================

func (r *Repository) Quotes(ctx context.Context, symbols []string) <-chan result.Result[[]bysel.Quote] {
	return stream(ctx, func(ctx context.Context) ([]bysel.Quote, error) {
		quotes, err := r.api.GetQuotes(ctx, symbols)
		if err != nil {
			return nil, err
		}
		r.mirrorQuotes(quotes)
		return quotes, nil
	})
}

func (r *Repository) AllQuotesFromAPI(ctx context.Context) <-chan result.Result[[]bysel.Quote] {
	return stream(ctx, func(ctx context.Context) ([]bysel.Quote, error) {
		quotes, err := r.api.GetAllQuotes(ctx)
		if err != nil {
			return nil, err
		}
		r.mirrorQuotes(quotes)
		return quotes, nil
	})
}

func (r *Repository) Quote(ctx context.Context, symbol string) result.Result[bysel.Quote] {
	return once(ctx, func(ctx context.Context) (bysel.Quote, error) {
		q, err := r.api.GetQuote(ctx, symbol)
		if err != nil {
			return bysel.Quote{}, err
		}
		r.writeCache("upsert quote", func(ctx context.Context, c *cache.Client) error {
			return c.UpsertQuote(ctx, q)
		})
		return q, nil
	})
}

func (r *Repository) mirrorQuotes(quotes []bysel.Quote) {
	r.writeCache("upsert quotes", func(ctx context.Context, c *cache.Client) error {
		return c.UpsertQuotes(ctx, quotes)
	})
}

func (r *Repository) CachedQuotes(ctx context.Context, symbols []string) ([]bysel.Quote, error) {
	if r.cache == nil {
		return nil, nil
	}
	return r.cache.QuotesBySymbols(ctx, symbols)
}

func (r *Repository) CachedAllQuotes(ctx context.Context) ([]bysel.Quote, error) {
	if r.cache == nil {
		return nil, nil
	}
	return r.cache.AllQuotes(ctx)
}

// ==================== SEARCH ====================

func (r *Repository) SearchStocks(ctx context.Context, query string) result.Result[[]bysel.StockSearchResult] {
	return once(ctx, func(ctx context.Context) ([]bysel.StockSearchResult, error) {
		return r.api.SearchStocks(ctx, query)
	})
}

func (r *Repository) AllSymbols(ctx context.Context) result.Result[[]bysel.StockSearchResult] {
	return once(ctx, r.api.GetAllSymbols)
}

// ==================== AI STOCK ASSISTANT ====================

func (r *Repository) AiAsk(ctx context.Context, query string) result.Result[bysel.AiAssistantResponse] {
	return once(ctx, func(ctx context.Context) (bysel.AiAssistantResponse, error) {
		return r.api.AiAsk(ctx, bysel.AiQuery{Query: query})
	})
}

func (r *Repository) AiAnalyze(ctx context.Context, symbol string) result.Result[bysel.StockAnalysis] {
	return once(ctx, func(ctx context.Context) (bysel.StockAnalysis, error) {
		return r.api.AiAnalyze(ctx, symbol)
	})
}

func (r *Repository) AiPredict(ctx context.Context, symbol string) result.Result[bysel.StockPredictionResponse] {
	return once(ctx, func(ctx context.Context) (bysel.StockPredictionResponse, error) {
		return r.api.AiPredict(ctx, symbol)
	})
}

// ==================== MARKET ====================

func (r *Repository) MarketHeatmap(ctx context.Context) result.Result[bysel.MarketHeatmap] {
	return once(ctx, r.api.GetMarketHeatmap)
}

func (r *Repository) SectorDetail(ctx context.Context, sector string) result.Result[bysel.HeatmapSector] {
	return once(ctx, func(ctx context.Context) (bysel.HeatmapSector, error) {
		return r.api.GetSectorDetail(ctx, sector)
	})
}

func (r *Repository) MarketStatus(ctx context.Context) result.Result[bysel.MarketStatus] {
	return once(ctx, r.api.GetMarketStatus)
}

func (r *Repository) Health(ctx context.Context) result.Result[map[string]string] {
	return once(ctx, r.api.HealthCheck)
}

package cache

import (
	"context"
	"errors"
	"fmt"

	"bysel/pkg/bysel"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== QUOTES ====================

// UpsertQuotes replaces cached quotes by symbol.
func (c *Client) UpsertQuotes(ctx context.Context, quotes []bysel.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	records := make([]QuoteRecord, 0, len(quotes))
	for _, q := range quotes {
		if q.Symbol == "" {
			continue
		}
		records = append(records, ToQuoteRecord(q))
	}
	if len(records) == 0 {
		return nil
	}

	err := c.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		UpdateAll: true,
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("upsert quotes: %w", err)
	}
	c.notify(TableQuotes)
	return nil
}

func (c *Client) UpsertQuote(ctx context.Context, q bysel.Quote) error {
	return c.UpsertQuotes(ctx, []bysel.Quote{q})
}

// QuotesBySymbols returns cached quotes in the order of symbols, skipping unknown ones.
func (c *Client) QuotesBySymbols(ctx context.Context, symbols []string) ([]bysel.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	var records []QuoteRecord
	if err := c.DB.WithContext(ctx).Where("symbol IN ?", symbols).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}

	bySymbol := make(map[string]QuoteRecord, len(records))
	for _, r := range records {
		bySymbol[r.Symbol] = r
	}
	out := make([]bysel.Quote, 0, len(records))
	for _, s := range symbols {
		if r, ok := bySymbol[s]; ok {
			out = append(out, r.Quote())
			delete(bySymbol, s)
		}
	}
	return out, nil
}

func (c *Client) AllQuotes(ctx context.Context) ([]bysel.Quote, error) {
	var records []QuoteRecord
	if err := c.DB.WithContext(ctx).Order("symbol").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	out := make([]bysel.Quote, len(records))
	for i, r := range records {
		out[i] = r.Quote()
	}
	return out, nil
}

func (c *Client) ClearQuotes(ctx context.Context) error {
	if err := c.DB.WithContext(ctx).Where("1 = 1").Delete(&QuoteRecord{}).Error; err != nil {
		return fmt.Errorf("clear quotes: %w", err)
	}
	c.notify(TableQuotes)
	return nil
}

// ==================== HOLDINGS ====================

func (c *Client) UpsertHoldings(ctx context.Context, holdings []bysel.Holding) error {
	if len(holdings) == 0 {
		return nil
	}
	records := make([]HoldingRecord, 0, len(holdings))
	for _, h := range holdings {
		if h.Symbol == "" {
			continue
		}
		records = append(records, ToHoldingRecord(h))
	}
	if len(records) == 0 {
		return nil
	}

	err := c.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		UpdateAll: true,
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("upsert holdings: %w", err)
	}
	c.notify(TableHoldings)
	return nil
}

func (c *Client) UpsertHolding(ctx context.Context, h bysel.Holding) error {
	return c.UpsertHoldings(ctx, []bysel.Holding{h})
}

func (c *Client) AllHoldings(ctx context.Context) ([]bysel.Holding, error) {
	var records []HoldingRecord
	if err := c.DB.WithContext(ctx).Order("symbol").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	out := make([]bysel.Holding, len(records))
	for i, r := range records {
		out[i] = r.Holding()
	}
	return out, nil
}

// HoldingBySymbol returns ErrNotFound when the symbol is not held.
func (c *Client) HoldingBySymbol(ctx context.Context, symbol string) (*bysel.Holding, error) {
	var record HoldingRecord
	err := c.DB.WithContext(ctx).Where("symbol = ?", symbol).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query holding: %w", err)
	}
	h := record.Holding()
	return &h, nil
}

func (c *Client) ClearHoldings(ctx context.Context) error {
	if err := c.DB.WithContext(ctx).Where("1 = 1").Delete(&HoldingRecord{}).Error; err != nil {
		return fmt.Errorf("clear holdings: %w", err)
	}
	c.notify(TableHoldings)
	return nil
}

// ==================== ALERTS ====================

// InsertAlert stores alert, replacing any row with the same ID. A zero ID
// autogenerates; the stored alert (with its ID) is returned.
func (c *Client) InsertAlert(ctx context.Context, alert bysel.Alert) (bysel.Alert, error) {
	record := ToAlertRecord(alert)
	err := c.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&record).Error
	if err != nil {
		return bysel.Alert{}, fmt.Errorf("insert alert: %w", err)
	}
	c.notify(TableAlerts)
	return record.Alert(), nil
}

func (c *Client) ActiveAlerts(ctx context.Context) ([]bysel.Alert, error) {
	return c.queryAlerts(ctx, c.DB.WithContext(ctx).Where("is_active = ?", true))
}

func (c *Client) AllAlerts(ctx context.Context) ([]bysel.Alert, error) {
	return c.queryAlerts(ctx, c.DB.WithContext(ctx))
}

func (c *Client) queryAlerts(_ context.Context, tx *gorm.DB) ([]bysel.Alert, error) {
	var records []AlertRecord
	if err := tx.Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	out := make([]bysel.Alert, len(records))
	for i, r := range records {
		out[i] = r.Alert()
	}
	return out, nil
}

func (c *Client) DeleteAlert(ctx context.Context, id int) error {
	tx := c.DB.WithContext(ctx).Delete(&AlertRecord{}, id)
	if tx.Error != nil {
		return fmt.Errorf("delete alert: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	c.notify(TableAlerts)
	return nil
}

// DeactivateAlert marks an alert inactive. Unknown IDs are not an error.
func (c *Client) DeactivateAlert(ctx context.Context, id int) error {
	err := c.DB.WithContext(ctx).
		Model(&AlertRecord{}).
		Where("id = ?", id).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("deactivate alert: %w", err)
	}
	c.notify(TableAlerts)
	return nil
}

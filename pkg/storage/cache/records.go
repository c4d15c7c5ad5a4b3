package cache

import "bysel/pkg/bysel"

// QuoteRecord is the cached latest quote for a symbol.
type QuoteRecord struct {
	Symbol    string  `gorm:"primaryKey;type:varchar(32)"`
	Last      float64 `gorm:"not null"`
	PctChange float64 `gorm:"not null"`
	Timestamp int64   `gorm:"not null;index:idx_quote_timestamp"` // ms since epoch
}

func (QuoteRecord) TableName() string { return TableQuotes }

// HoldingRecord is the cached position for a symbol.
type HoldingRecord struct {
	Symbol    string  `gorm:"primaryKey;type:varchar(32)"`
	Qty       int     `gorm:"not null"`
	AvgPrice  float64 `gorm:"not null"`
	Last      float64 `gorm:"not null"`
	PnL       float64 `gorm:"column:pnl;not null"`
	Timestamp int64   `gorm:"not null"`
}

func (HoldingRecord) TableName() string { return TableHoldings }

// AlertRecord is a locally stored price alert. ID 0 autogenerates on insert.
type AlertRecord struct {
	ID             int     `gorm:"primaryKey;autoIncrement"`
	Symbol         string  `gorm:"type:varchar(32);not null;index:idx_alert_symbol"`
	ThresholdPrice float64 `gorm:"not null"`
	AlertType      string  `gorm:"type:varchar(8);not null"`
	IsActive       bool    `gorm:"not null;index:idx_alert_active"`
	CreatedAt      int64   `gorm:"not null;autoCreateTime:false"`
}

func (AlertRecord) TableName() string { return TableAlerts }

func ToQuoteRecord(q bysel.Quote) QuoteRecord {
	ts := int64(q.Timestamp)
	if ts == 0 {
		ts = int64(bysel.Now())
	}
	return QuoteRecord{Symbol: q.Symbol, Last: q.Last, PctChange: q.PctChange, Timestamp: ts}
}

func (r QuoteRecord) Quote() bysel.Quote {
	return bysel.Quote{Symbol: r.Symbol, Last: r.Last, PctChange: r.PctChange, Timestamp: bysel.Millis(r.Timestamp)}
}

func ToHoldingRecord(h bysel.Holding) HoldingRecord {
	ts := int64(h.Timestamp)
	if ts == 0 {
		ts = int64(bysel.Now())
	}
	return HoldingRecord{Symbol: h.Symbol, Qty: h.Qty, AvgPrice: h.AvgPrice, Last: h.Last, PnL: h.PnL, Timestamp: ts}
}

func (r HoldingRecord) Holding() bysel.Holding {
	return bysel.Holding{Symbol: r.Symbol, Qty: r.Qty, AvgPrice: r.AvgPrice, Last: r.Last, PnL: r.PnL, Timestamp: bysel.Millis(r.Timestamp)}
}

func ToAlertRecord(a bysel.Alert) AlertRecord {
	created := int64(a.CreatedAt)
	if created == 0 {
		created = int64(bysel.Now())
	}
	return AlertRecord{
		ID:             a.ID,
		Symbol:         a.Symbol,
		ThresholdPrice: a.ThresholdPrice,
		AlertType:      a.AlertType,
		IsActive:       a.IsActive,
		CreatedAt:      created,
	}
}

func (r AlertRecord) Alert() bysel.Alert {
	return bysel.Alert{
		ID:             r.ID,
		Symbol:         r.Symbol,
		ThresholdPrice: r.ThresholdPrice,
		AlertType:      r.AlertType,
		IsActive:       r.IsActive,
		CreatedAt:      bysel.Millis(r.CreatedAt),
	}
}

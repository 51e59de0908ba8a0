package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradingResult is one normalized row of a daily exchange trading report:
// the trading activity of a single instrument on a single trading day.
//
// (Date, ExchangeProductID) is unique in storage.
//
// swagger:model TradingResult
type TradingResult struct {
	ID                  int64           `json:"id" example:"1"`
	ExchangeProductID   string          `json:"exchange_product_id" example:"A592ACH060F"`
	ExchangeProductName string          `json:"exchange_product_name" example:"Бензин (АИ-92-К5)"`
	OilID               string          `json:"oil_id" example:"A592"`
	DeliveryBasisID     string          `json:"delivery_basis_id" example:"ACH"`
	DeliveryBasisName   string          `json:"delivery_basis_name" example:"Ачинский НПЗ"`
	DeliveryTypeID      string          `json:"delivery_type_id" example:"F"`
	Volume              decimal.Decimal `json:"volume" swaggertype:"number" example:"60"`
	Total               decimal.Decimal `json:"total" swaggertype:"number" example:"3900000"`
	Count               int64           `json:"count" example:"1"`
	Date                time.Time       `json:"date" example:"2025-04-03T00:00:00Z"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// NewTradingResult builds a record and derives OilID, DeliveryBasisID and DeliveryTypeID
// from the product code.
func NewTradingResult(code, name, basisName string, volume, total decimal.Decimal, count int64, date time.Time) TradingResult {
	oil, basis, typ := DeriveIDs(code)
	return TradingResult{
		ExchangeProductID:   code,
		ExchangeProductName: name,
		OilID:               oil,
		DeliveryBasisID:     basis,
		DeliveryBasisName:   basisName,
		DeliveryTypeID:      typ,
		Volume:              volume,
		Total:               total,
		Count:               count,
		Date:                date,
	}
}

// DeriveIDs splits an exchange product code into oil, delivery basis and delivery type ids:
// runes [0:4], [4:7] and the last rune. Short codes yield truncated or empty parts.
func DeriveIDs(code string) (oilID, deliveryBasisID, deliveryTypeID string) {
	r := []rune(code)
	oilID = string(r[:min(4, len(r))])
	if len(r) > 4 {
		deliveryBasisID = string(r[4:min(7, len(r))])
	}
	if len(r) > 0 {
		deliveryTypeID = string(r[len(r)-1])
	}
	return oilID, deliveryBasisID, deliveryTypeID
}

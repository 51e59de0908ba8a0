package dto

import (
	"github.com/guttosm/spimexpulse/internal/domain/models"
	"github.com/shopspring/decimal"
)

// TradingResultResponse is the API representation of a persisted trading record.
// Date is rendered as YYYY-MM-DD.
type TradingResultResponse struct {
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
	Date                string          `json:"date" example:"2025-04-03"`
}

// NewTradingResultResponses maps domain records into response DTOs, preserving order.
func NewTradingResultResponses(in []models.TradingResult) []TradingResultResponse {
	out := make([]TradingResultResponse, 0, len(in))
	for _, r := range in {
		out = append(out, TradingResultResponse{
			ID:                  r.ID,
			ExchangeProductID:   r.ExchangeProductID,
			ExchangeProductName: r.ExchangeProductName,
			OilID:               r.OilID,
			DeliveryBasisID:     r.DeliveryBasisID,
			DeliveryBasisName:   r.DeliveryBasisName,
			DeliveryTypeID:      r.DeliveryTypeID,
			Volume:              r.Volume,
			Total:               r.Total,
			Count:               r.Count,
			Date:                r.Date.Format("2006-01-02"),
		})
	}
	return out
}

package models

import "time"

// TradingFilter is the fixed set of optional equality predicates accepted by trading queries.
// Nil fields do not constrain the result; set fields are combined with AND.
type TradingFilter struct {
	OilID           *string
	DeliveryTypeID  *string
	DeliveryBasisID *string
}

// DateRange bounds a query by trading date, both ends inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Page is a limit/offset window over an ordered result.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Normalize clamps the page into valid bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

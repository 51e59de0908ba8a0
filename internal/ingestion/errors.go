package ingestion

import (
	"errors"
	"fmt"
	"strings"
)

// ParseErrorKind classifies why a report was rejected as a whole.
type ParseErrorKind int

const (
	MissingTradingDate ParseErrorKind = iota + 1
	MissingUnitMarker
	MissingColumns
)

func (k ParseErrorKind) String() string {
	switch k {
	case MissingTradingDate:
		return "missing_trading_date"
	case MissingUnitMarker:
		return "missing_unit_marker"
	case MissingColumns:
		return "missing_columns"
	default:
		return "unknown"
	}
}

var (
	ErrMissingTradingDate = errors.New("trading date not found in report header")
	ErrMissingUnitMarker  = errors.New("metric tonne table not found in report")
	ErrMissingColumns     = errors.New("required columns not found in report")
)

// ParseError rejects a whole report file. It matches the Err* sentinels with errors.Is.
type ParseError struct {
	Path    string
	Kind    ParseErrorKind
	Missing []string
}

func (e *ParseError) Error() string {
	msg := e.sentinel().Error()
	if len(e.Missing) > 0 {
		msg += ": " + strings.Join(e.Missing, ", ")
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	return msg
}

func (e *ParseError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *ParseError) sentinel() error {
	switch e.Kind {
	case MissingTradingDate:
		return ErrMissingTradingDate
	case MissingUnitMarker:
		return ErrMissingUnitMarker
	case MissingColumns:
		return ErrMissingColumns
	default:
		return errors.New("invalid report")
	}
}

// RowError describes a data row that was skipped because it cannot be represented
// as a trading record. Row is 1-based, as shown by spreadsheet software.
type RowError struct {
	Row    int
	Code   string
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%q): %s", e.Row, e.Code, e.Reason)
}

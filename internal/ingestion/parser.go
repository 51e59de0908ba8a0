package ingestion

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/guttosm/spimexpulse/internal/domain/models"
)

const (
	tradingDateRow    = 3
	tradingDateLayout = "02.01.2006"
	unitMarker        = "Единица измерения: Метрическая тонна"
	unitMarkerPrefix  = "Единица измерения:"
	totalMarker       = "Итого"
)

var tradingDateRe = regexp.MustCompile(`Дата торгов:\s*(\d{2}\.\d{2}\.\d{4})`)

// Report column headers, after normalization.
const (
	colCode   = "Код Инструмента"
	colName   = "Наименование Инструмента"
	colBasis  = "Базис поставки"
	colVolume = "Объем Договоров в единицах измерения"
	colTotal  = "Обьем Договоров, руб." // the exchange spells it with a soft sign
	colCount  = "Количество Договоров, шт."
)

var requiredColumns = []string{colCode, colName, colBasis, colVolume, colTotal, colCount}

// ParsedReport is the content of one report file.
type ParsedReport struct {
	Path        string
	TradingDate time.Time
	Records     []models.TradingResult
	RowErrors   []RowError
}

// ParseReport reads a daily report (.xls or .xlsx) and returns the trading records of its
// metric tonne table.
//
// The report is rejected with a *ParseError when the trading date, the table marker or one
// of the required columns is missing. Rows with a non-positive volume, total or count are
// dropped silently; rows that have trading values but cannot be stored are returned in
// RowErrors.
func ParseReport(path string) (*ParsedReport, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	report, err := parseRows(rows)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	report.Path = path
	return report, nil
}

func parseRows(rows [][]string) (*ParsedReport, error) {
	date, ok := extractTradingDate(rows)
	if !ok {
		return nil, &ParseError{Kind: MissingTradingDate}
	}

	marker := findUnitMarker(rows)
	if marker < 0 {
		return nil, &ParseError{Kind: MissingUnitMarker}
	}

	headerIdx := marker + 1
	for headerIdx < len(rows) && isBlank(rows[headerIdx]) {
		headerIdx++
	}
	if headerIdx >= len(rows) {
		return nil, &ParseError{Kind: MissingColumns, Missing: append([]string(nil), requiredColumns...)}
	}

	cols, missing := mapColumns(rows[headerIdx])
	if len(missing) > 0 {
		return nil, &ParseError{Kind: MissingColumns, Missing: missing}
	}

	report := &ParsedReport{TradingDate: date}
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) || isTotalRow(row, cols[colCode]) {
			continue
		}
		if startsNewTable(row) {
			break
		}

		code := strings.TrimSpace(cell(row, cols[colCode]))
		volume := parseNumber(cell(row, cols[colVolume]))
		total := parseNumber(cell(row, cols[colTotal]))
		count := parseNumber(cell(row, cols[colCount]))

		if !volume.IsPositive() || !total.IsPositive() || !count.IsPositive() {
			continue
		}
		if code == "" {
			report.RowErrors = append(report.RowErrors, RowError{Row: i + 1, Reason: "empty instrument code"})
			continue
		}
		if !count.Equal(count.Truncate(0)) {
			report.RowErrors = append(report.RowErrors, RowError{Row: i + 1, Code: code, Reason: "fractional contract count " + count.String()})
			continue
		}
		if count.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
			report.RowErrors = append(report.RowErrors, RowError{Row: i + 1, Code: code, Reason: "contract count out of range " + count.String()})
			continue
		}

		report.Records = append(report.Records, models.NewTradingResult(
			code,
			strings.TrimSpace(cell(row, cols[colName])),
			strings.TrimSpace(cell(row, cols[colBasis])),
			volume,
			total,
			count.IntPart(),
			date,
		))
	}
	return report, nil
}

// extractTradingDate reads the "Дата торгов: DD.MM.YYYY" line of the report header.
func extractTradingDate(rows [][]string) (time.Time, bool) {
	if len(rows) <= tradingDateRow {
		return time.Time{}, false
	}
	m := tradingDateRe.FindStringSubmatch(strings.Join(rows[tradingDateRow], " "))
	if m == nil {
		return time.Time{}, false
	}
	d, err := time.Parse(tradingDateLayout, m[1])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func findUnitMarker(rows [][]string) int {
	for i, row := range rows {
		for _, c := range row {
			if strings.Contains(normalizeHeader(c), unitMarker) {
				return i
			}
		}
	}
	return -1
}

// mapColumns returns the index of every required header and the ones that are absent.
func mapColumns(header []string) (map[string]int, []string) {
	cols := make(map[string]int, len(requiredColumns))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	return cols, missing
}

// normalizeHeader applies NFC and collapses runs of whitespace, line breaks included.
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// parseNumber coerces a report cell into a decimal. Thousands separators (spaces, NBSP),
// comma decimals and dash placeholders are accepted; anything unparsable is zero.
func parseNumber(s string) decimal.Decimal {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\t':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)
	if s == "" || s == "-" || s == "—" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// isTotalRow matches the aggregate footer by its instrument code, or by a leading label
// when the exchange merges the footer across the first columns.
func isTotalRow(row []string, codeIdx int) bool {
	if strings.HasPrefix(strings.TrimSpace(cell(row, codeIdx)), totalMarker) {
		return true
	}
	for _, c := range row {
		if t := strings.TrimSpace(c); t != "" {
			return strings.HasPrefix(t, totalMarker)
		}
	}
	return false
}

// startsNewTable reports a section marker for another unit of measure.
func startsNewTable(row []string) bool {
	for _, c := range row {
		if strings.HasPrefix(normalizeHeader(c), unitMarkerPrefix) {
			return true
		}
	}
	return false
}

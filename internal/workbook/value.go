package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Value is the raw content of one cell: its unformatted text, plus what is
// needed to interpret a numeric date serial.
type Value struct {
	Raw      string
	Date1904 bool
}

// Text returns the cell text with surrounding whitespace removed.
func (v Value) Text() string {
	return strings.TrimSpace(v.Raw)
}

// IsEmpty reports whether the cell holds nothing but whitespace.
func (v Value) IsEmpty() bool {
	return v.Text() == ""
}

// Decimal parses the cell as an exact decimal. Native numbers and
// Italian-formatted text ("1.234,56", "-50,00 €") are both accepted.
// An empty cell yields zero.
func (v Value) Decimal() (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.NewReplacer("€", "", " ", "", "\u00a0", "").Replace(v.Raw))
	if s == "" {
		return decimal.Zero, nil
	}
	if i := strings.LastIndex(s, ","); i >= 0 {
		if strings.Contains(s[i:], ".") {
			return decimal.Zero, fmt.Errorf("parsing decimal %q: ambiguous separators, expected Italian format", v.Raw)
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if significantDigits(s) > maxExactDigits {
		// Spreadsheets store typed numbers as 17-digit doubles; keep the
		// shortest form that reads back as the same double.
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing decimal %q: %w", v.Raw, err)
		}
		return decimal.NewFromFloat(f), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing decimal %q: %w", v.Raw, err)
	}
	return d, nil
}

// maxExactDigits is the number of significant digits a double always
// carries exactly.
const maxExactDigits = 15

// significantDigits counts the mantissa digits of s, ignoring leading zeros.
func significantDigits(s string) int {
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimLeft(s, "+-0.")
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// Date parses the cell as a calendar date. Text is tried against each layout
// in order; a bare number is read as a spreadsheet date serial.
func (v Value) Date(layouts ...string) (time.Time, error) {
	s := v.Text()
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: expected %s or a date serial", v.Raw, strings.Join(layouts, ", "))
	}
	t, err := excelize.ExcelDateToTime(serial, v.Date1904)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date serial %q: %w", v.Raw, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

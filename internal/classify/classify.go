// Package classify maps bank free text onto the closed movement taxonomy.
package classify

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/intesasp/xlsx2ofx/internal/model"
)

// ErrUnknownCurrency is returned when a currency cell matches no synonym.
var ErrUnknownCurrency = errors.New("unknown currency")

// DefaultDescriptionType is assigned to transaction-list movements whose
// description is not in the table.
const DefaultDescriptionType = model.TrnDirectDebit

// Classifier resolves lookups for a single conversion run and records every
// fallback it takes.
type Classifier struct {
	tables *Tables
	logger *log.Logger
	layout model.Variant
	misses []model.Miss
}

// New creates a Classifier over tables for one statement of the given layout.
func New(tables *Tables, layout model.Variant, logger *log.Logger) *Classifier {
	return &Classifier{tables: tables, logger: logger, layout: layout}
}

// Currency maps a free-text currency cell onto an ISO code.
func (c *Classifier) Currency(text string) (string, error) {
	code, ok := c.tables.Currencies[Key(text)]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownCurrency, text)
	}
	return code, nil
}

// ByDescription classifies a transaction-list movement by its short
// description. Unknown text yields DefaultDescriptionType.
func (c *Classifier) ByDescription(text string, row int) model.TrnType {
	if tt, ok := c.tables.Descriptions[Key(text)]; ok {
		return tt
	}
	c.record(model.Miss{
		Layout:   c.layout,
		Field:    "description",
		Text:     text,
		Fallback: DefaultDescriptionType,
		Reason:   "description not in table",
		Row:      row,
	})
	return DefaultDescriptionType
}

// ByCategory classifies an operation-list movement by its category. Unknown
// text falls back on the amount sign: CREDIT for amount >= 0, DEBIT otherwise.
func (c *Classifier) ByCategory(text string, amount decimal.Decimal, row int) model.TrnType {
	if tt, ok := c.tables.Categories[Key(text)]; ok {
		return tt
	}
	fallback := model.TrnCredit
	if amount.IsNegative() {
		fallback = model.TrnDebit
	}
	c.record(model.Miss{
		Layout:   c.layout,
		Field:    "category",
		Text:     text,
		Fallback: fallback,
		Reason:   "category not in table, type from amount sign",
		Row:      row,
	})
	return fallback
}

// Misses returns the fallbacks taken so far, in encounter order.
func (c *Classifier) Misses() []model.Miss {
	return c.misses
}

func (c *Classifier) record(m model.Miss) {
	c.misses = append(c.misses, m)
	c.logger.Warn("unmapped "+m.Field+", please report it upstream",
		"text", m.Text, "fallback", m.Fallback, "layout", m.Layout, "row", m.Row)
}

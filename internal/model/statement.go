package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant identifies which export template a workbook follows.
type Variant int

const (
	// VariantTransactionList is the legacy "Lista Movimenti" export.
	VariantTransactionList Variant = iota + 1
	// VariantOperationList is the "Lista Operazione" export.
	VariantOperationList
)

func (v Variant) String() string {
	switch v {
	case VariantTransactionList:
		return "v1"
	case VariantOperationList:
		return "v2"
	default:
		return "unknown"
	}
}

// Statement is the result of one conversion run.
type Statement struct {
	Layout    Variant
	BankID    string
	AccountID string
	Currency  string // ISO 4217

	// Zero only for an operation list with neither period cells nor rows.
	StartDate time.Time
	EndDate   time.Time

	// Invalid when the export carries no running balance (operation list).
	StartBalance decimal.NullDecimal
	EndBalance   decimal.NullDecimal

	Movements []Movement
	Misses    []Miss
}

// HasPeriod reports whether the statement period is known.
func (s *Statement) HasPeriod() bool {
	return !s.StartDate.IsZero() && !s.EndDate.IsZero()
}

// Total returns the sum of all movement amounts.
func (s *Statement) Total() decimal.Decimal {
	total := decimal.Zero
	for _, m := range s.Movements {
		total = total.Add(m.Amount)
	}
	return total
}

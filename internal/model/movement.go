package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement is one normalized statement line.
type Movement struct {
	ID          string
	Date        time.Time // posting date
	UserDate    time.Time // value date
	Description string
	Amount      decimal.Decimal // negative = outflow, positive = inflow
	Type        TrnType
}

// Package reconcile checks a statement against the figures its own header
// carries.
package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/intesasp/xlsx2ofx/internal/model"
)

// Check names.
const (
	CheckBalance   = "balance"
	CheckPeriod    = "period"
	CheckPrecision = "precision"
)

// Issue describes a single inconsistency.
type Issue struct {
	Check       string
	MovementID  string
	Description string
}

func (i Issue) Error() string {
	if i.MovementID == "" {
		return fmt.Sprintf("%s: %s", i.Check, i.Description)
	}
	return fmt.Sprintf("%s [%s]: %s", i.Check, i.MovementID, i.Description)
}

// Check runs all checks on st. Checks that need data the export lacks, such
// as balances of an operation list, are skipped.
func Check(st *model.Statement) []Issue {
	var issues []Issue

	// Opening balance plus movements equals closing balance.
	if st.StartBalance.Valid && st.EndBalance.Valid {
		want := st.StartBalance.Decimal.Add(st.Total())
		if !want.Equal(st.EndBalance.Decimal) {
			issues = append(issues, Issue{
				Check: CheckBalance,
				Description: fmt.Sprintf("opening %s + movements %s = %s, closing balance is %s",
					st.StartBalance.Decimal.StringFixed(2), st.Total().StringFixed(2),
					want.StringFixed(2), st.EndBalance.Decimal.StringFixed(2)),
			})
		}
	}

	hundred := decimal.NewFromInt(100)
	for _, m := range st.Movements {
		// Posting date inside the statement period.
		if st.HasPeriod() && (m.Date.Before(st.StartDate) || m.Date.After(st.EndDate)) {
			issues = append(issues, Issue{
				Check:      CheckPeriod,
				MovementID: m.ID,
				Description: fmt.Sprintf("date %s outside %s..%s", m.Date.Format(time.DateOnly),
					st.StartDate.Format(time.DateOnly), st.EndDate.Format(time.DateOnly)),
			})
		}

		// Cents at most.
		scaled := m.Amount.Mul(hundred)
		if !scaled.Equal(scaled.Floor()) {
			issues = append(issues, Issue{
				Check:       CheckPrecision,
				MovementID:  m.ID,
				Description: fmt.Sprintf("amount %s has more than 2 decimal places", m.Amount),
			})
		}
	}

	return issues
}

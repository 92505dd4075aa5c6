package importer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/intesasp/xlsx2ofx/internal/layout"
	"github.com/intesasp/xlsx2ofx/internal/model"
)

func (e *Extractor) normalize(row Row) (model.Movement, error) {
	var (
		m   model.Movement
		err error
	)
	switch l := e.layout.(type) {
	case *layout.TransactionList:
		m, err = e.normalizeTransaction(l, row)
	case *layout.OperationList:
		m, err = e.normalizeOperation(l, row)
	default:
		err = fmt.Errorf("unsupported layout %s", e.layout.Name())
	}
	if err != nil {
		return model.Movement{}, fmt.Errorf("row %d: %w", row.Number, err)
	}

	m.ID = e.ids.Next(m.Date, m.Description, m.Amount)
	e.logger.Debug("movement",
		"row", row.Number, "id", m.ID, "date", m.Date.Format(time.DateOnly),
		"amount", m.Amount.StringFixed(2), "type", m.Type)
	return m, nil
}

func (e *Extractor) normalizeTransaction(l *layout.TransactionList, row Row) (model.Movement, error) {
	v := row.Values
	date, err := v[l.ColDate].Date(l.RowDateLayouts...)
	if err != nil {
		return model.Movement{}, fmt.Errorf("parsing date: %w", err)
	}
	userDate, err := v[l.ColValueDate].Date(l.RowDateLayouts...)
	if err != nil {
		return model.Movement{}, fmt.Errorf("parsing value date: %w", err)
	}
	credit, err := v[l.ColCredit].Decimal()
	if err != nil {
		return model.Movement{}, fmt.Errorf("parsing credit: %w", err)
	}
	debit, err := v[l.ColDebit].Decimal()
	if err != nil {
		return model.Movement{}, fmt.Errorf("parsing debit: %w", err)
	}

	short := v[l.ColShortDesc].Text()
	return model.Movement{
		Date:        date,
		UserDate:    userDate,
		Description: fmt.Sprintf("(%s) %s", short, v[l.ColLongDesc].Text()),
		Amount:      transactionAmount(credit, debit),
		Type:        e.classifier.ByDescription(short, row.Number),
	}, nil
}

// transactionAmount picks the credit column when it holds a non-zero value,
// otherwise the debit column as written.
func transactionAmount(credit, debit decimal.Decimal) decimal.Decimal {
	if !credit.IsZero() {
		return credit
	}
	return debit
}

func (e *Extractor) normalizeOperation(l *layout.OperationList, row Row) (model.Movement, error) {
	v := row.Values
	date, err := v[l.ColDate].Date(l.RowDateLayouts...)
	if err != nil {
		return model.Movement{}, fmt.Errorf("parsing date: %w", err)
	}
	amount, err := v[l.ColAmount].Decimal()
	if err != nil {
		return model.Movement{}, fmt.Errorf("parsing amount: %w", err)
	}

	category := v[l.ColCategory].Text()
	return model.Movement{
		Date:        date,
		UserDate:    date,
		Description: fmt.Sprintf("[(%s)-(%s)] %s", category, v[l.ColOperation].Text(), v[l.ColDetails].Text()),
		Amount:      amount,
		Type:        e.classifier.ByCategory(category, amount, row.Number),
	}, nil
}

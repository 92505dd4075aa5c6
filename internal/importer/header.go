package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/intesasp/xlsx2ofx/internal/layout"
	"github.com/intesasp/xlsx2ofx/internal/model"
)

// HeaderError reports a required header cell that is missing or malformed.
type HeaderError struct {
	Field string
	Cell  string
	Err   error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("header %s (cell %s): %v", e.Field, e.Cell, e.Err)
}

func (e *HeaderError) Unwrap() error { return e.Err }

var errEmptyCell = errors.New("cell is empty")

// V2 exports without a currency cell and without rows are assumed to be in euro.
const fallbackCurrency = "EUR"

func (e *Extractor) header() (*model.Statement, error) {
	st := &model.Statement{
		Layout: e.layout.Variant(),
		BankID: e.bankID,
	}

	var err error
	switch l := e.layout.(type) {
	case *layout.TransactionList:
		err = e.transactionListHeader(l, st)
	case *layout.OperationList:
		err = e.operationListHeader(l, st)
	default:
		err = fmt.Errorf("unsupported layout %s", e.layout.Name())
	}
	if err != nil {
		return nil, err
	}

	e.logger.Debug("header read",
		"account", st.AccountID, "currency", st.Currency,
		"start", st.StartDate.Format(time.DateOnly), "end", st.EndDate.Format(time.DateOnly))
	return st, nil
}

func (e *Extractor) transactionListHeader(l *layout.TransactionList, st *model.Statement) error {
	var err error
	if st.AccountID, err = e.text(l.SheetName, l.AccountCell, "account"); err != nil {
		return err
	}
	if st.Currency, err = e.currency(l.SheetName, l.CurrencyCell); err != nil {
		return err
	}
	if st.StartBalance, err = e.balance(l.SheetName, l.StartBalanceCell, "start balance"); err != nil {
		return err
	}
	if st.EndBalance, err = e.balance(l.SheetName, l.EndBalanceCell, "end balance"); err != nil {
		return err
	}
	if st.StartDate, err = e.date(l.SheetName, l.StartDateCell, "start date", l.HeaderDateLayout); err != nil {
		return err
	}
	if st.EndDate, err = e.date(l.SheetName, l.EndDateCell, "end date", l.HeaderDateLayout); err != nil {
		return err
	}
	return nil
}

func (e *Extractor) operationListHeader(l *layout.OperationList, st *model.Statement) error {
	label, err := e.text(l.SheetName, l.AccountCell, "account")
	if err != nil {
		return err
	}
	st.AccountID, err = operationListAccount(label)
	if err != nil {
		return &HeaderError{Field: "account", Cell: l.AccountCell, Err: err}
	}

	currencyCell, err := cellName(l.Window.FirstCol, l.ColCurrency, l.Window.FirstRow)
	if err != nil {
		return &HeaderError{Field: "currency", Cell: l.Window.FirstCol, Err: err}
	}
	v, err := e.book.Cell(l.SheetName, currencyCell)
	if err != nil {
		return &HeaderError{Field: "currency", Cell: currencyCell, Err: err}
	}
	if v.IsEmpty() {
		e.logger.Warn("no currency in first row, assuming euro", "cell", currencyCell)
		st.Currency = fallbackCurrency
	} else if st.Currency, err = e.currency(l.SheetName, currencyCell); err != nil {
		return err
	}

	start, startErr := e.date(l.SheetName, l.StartDateCell, "start date", l.HeaderDateLayout)
	end, endErr := e.date(l.SheetName, l.EndDateCell, "end date", l.HeaderDateLayout)
	if startErr == nil && endErr == nil {
		st.StartDate, st.EndDate = start, end
		return nil
	}

	e.logger.Debug("period cells unusable, deriving period from rows",
		"start_err", startErr, "end_err", endErr)
	st.StartDate, st.EndDate, err = e.periodFromRows(l)
	if err != nil {
		return err
	}
	if !st.HasPeriod() {
		e.logger.Warn("statement period unknown: no period cells and no rows")
	}
	return nil
}

// periodFromRows derives the period of a newest-first operation list: the
// first row is the end, the last contiguous row is the start.
func (e *Extractor) periodFromRows(l *layout.OperationList) (start, end time.Time, err error) {
	rows := newRowScanner(e.book, l.SheetName, l.Window, nil)
	first := true
	for rows.Next() {
		row := rows.Row()
		d, err := row.Values[l.ColDate].Date(l.RowDateLayouts...)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("row %d: parsing date: %w", row.Number, err)
		}
		if first {
			end = d
			first = false
		}
		start = d
	}
	if err := rows.Err(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// operationListAccount extracts the account number from a label such as
// "Conto 12345/00": second whitespace token, slashes removed.
func operationListAccount(label string) (string, error) {
	fields := strings.Fields(label)
	if len(fields) < 2 {
		return "", fmt.Errorf("expected \"<label> <number>\", got %q", label)
	}
	return strings.ReplaceAll(fields[1], "/", ""), nil
}

// cellName returns the coordinate of the cell offset columns right of col.
func cellName(col string, offset, row int) (string, error) {
	n, err := excelize.ColumnNameToNumber(col)
	if err != nil {
		return "", err
	}
	return excelize.CoordinatesToCellName(n+offset, row)
}

func (e *Extractor) text(sheet, cell, field string) (string, error) {
	v, err := e.book.Cell(sheet, cell)
	if err != nil {
		return "", &HeaderError{Field: field, Cell: cell, Err: err}
	}
	if v.IsEmpty() {
		return "", &HeaderError{Field: field, Cell: cell, Err: errEmptyCell}
	}
	return v.Text(), nil
}

func (e *Extractor) currency(sheet, cell string) (string, error) {
	text, err := e.text(sheet, cell, "currency")
	if err != nil {
		return "", err
	}
	code, err := e.classifier.Currency(text)
	if err != nil {
		return "", &HeaderError{Field: "currency", Cell: cell, Err: err}
	}
	return code, nil
}

func (e *Extractor) balance(sheet, cell, field string) (decimal.NullDecimal, error) {
	v, err := e.book.Cell(sheet, cell)
	if err != nil {
		return decimal.NullDecimal{}, &HeaderError{Field: field, Cell: cell, Err: err}
	}
	if v.IsEmpty() {
		return decimal.NullDecimal{}, &HeaderError{Field: field, Cell: cell, Err: errEmptyCell}
	}
	d, err := v.Decimal()
	if err != nil {
		return decimal.NullDecimal{}, &HeaderError{Field: field, Cell: cell, Err: err}
	}
	return decimal.NewNullDecimal(d), nil
}

func (e *Extractor) date(sheet, cell, field, dateLayout string) (time.Time, error) {
	v, err := e.book.Cell(sheet, cell)
	if err != nil {
		return time.Time{}, &HeaderError{Field: field, Cell: cell, Err: err}
	}
	t, err := v.Date(dateLayout)
	if err != nil {
		return time.Time{}, &HeaderError{Field: field, Cell: cell, Err: err}
	}
	return t, nil
}

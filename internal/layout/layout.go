// Package layout describes the spreadsheet templates a bank export may use
// and detects which one a workbook follows.
//
// Coordinates live here as data. A new template revision is a new schema
// value registered in DefaultRegistry, not a new code path.
package layout

import (
	"github.com/intesasp/xlsx2ofx/internal/model"
)

// Layout is one supported export template. The set of implementations is
// closed: TransactionList and OperationList.
type Layout interface {
	Name() string
	Variant() model.Variant
	Sheet() string
	Rows() RowWindow
	sealed()
}

// RowWindow locates the transaction table: the first data row and the column
// span of each row.
type RowWindow struct {
	FirstRow  int
	FirstCol  string
	LastCol   string
	NumFields int
}

// TransactionList is the legacy "Lista Movimenti" template.
type TransactionList struct {
	SheetName string

	AccountCell      string
	CurrencyCell     string
	StartBalanceCell string
	EndBalanceCell   string
	StartDateCell    string
	EndDateCell      string
	HeaderDateLayout string

	Window RowWindow
	// Zero-based column indexes within a row.
	ColDate, ColValueDate, ColShortDesc, ColCredit, ColDebit, ColLongDesc, ColChannel int
	RowDateLayouts []string
}

// OperationList is the "Lista Operazione" template. It has no running
// balance and lists rows newest first.
type OperationList struct {
	SheetName string

	AccountCell      string
	StartDateCell    string
	EndDateCell      string
	HeaderDateLayout string

	Window RowWindow
	// Zero-based column indexes within a row.
	ColDate, ColOperation, ColDetails, ColAccount, ColStatus, ColCategory, ColCurrency, ColAmount int
	RowDateLayouts []string
	// Posting-status value of rows that have not cleared yet.
	UnpostedMarker string
}

func (l *TransactionList) Name() string           { return "v1" }
func (l *TransactionList) Variant() model.Variant { return model.VariantTransactionList }
func (l *TransactionList) Sheet() string          { return l.SheetName }
func (l *TransactionList) Rows() RowWindow        { return l.Window }
func (l *TransactionList) sealed()                {}

func (l *OperationList) Name() string           { return "v2" }
func (l *OperationList) Variant() model.Variant { return model.VariantOperationList }
func (l *OperationList) Sheet() string          { return l.SheetName }
func (l *OperationList) Rows() RowWindow        { return l.Window }
func (l *OperationList) sealed()                {}

// IntesaTransactionList returns the schema of the "Lista Movimenti" export.
// The header block spans 29 rows; transactions start at A30.
func IntesaTransactionList() *TransactionList {
	return &TransactionList{
		SheetName:        "Lista Movimenti",
		AccountCell:      "D8",
		CurrencyCell:     "D22",
		StartBalanceCell: "E11",
		EndBalanceCell:   "E12",
		StartDateCell:    "D11",
		EndDateCell:      "D12",
		HeaderDateLayout: "2.1.2006",
		Window:           RowWindow{FirstRow: 30, FirstCol: "A", LastCol: "G", NumFields: 7},
		ColDate:          0,
		ColValueDate:     1,
		ColShortDesc:     2,
		ColCredit:        3,
		ColDebit:         4,
		ColLongDesc:      5,
		ColChannel:       6,
		RowDateLayouts:   []string{"2.1.2006", "2/1/2006", "2006-01-02"},
	}
}

// IntesaOperationList returns the schema of the "Lista Operazione" export.
// The header block spans 19 rows; transactions start at A20.
func IntesaOperationList() *OperationList {
	return &OperationList{
		SheetName:        "Lista Operazione",
		AccountCell:      "A5",
		StartDateCell:    "B8",
		EndDateCell:      "B9",
		HeaderDateLayout: "2/1/2006",
		Window:           RowWindow{FirstRow: 20, FirstCol: "A", LastCol: "H", NumFields: 8},
		ColDate:          0,
		ColOperation:     1,
		ColDetails:       2,
		ColAccount:       3,
		ColStatus:        4,
		ColCategory:      5,
		ColCurrency:      6,
		ColAmount:        7,
		RowDateLayouts:   []string{"2/1/2006", "2.1.2006", "2006-01-02"},
		UnpostedMarker:   "NON CONTABILIZZATO",
	}
}

package importer

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intesasp/xlsx2ofx/internal/classify"
	"github.com/intesasp/xlsx2ofx/internal/layout"
	"github.com/intesasp/xlsx2ofx/internal/model"
	"github.com/intesasp/xlsx2ofx/internal/workbook"
)

const (
	v1Sheet = "Lista Movimenti"
	v2Sheet = "Lista Operazione"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// v1Book returns a transaction-list workbook with a valid header and the
// given rows starting at row 30.
func v1Book(rows ...[]string) *workbook.Memory {
	b := workbook.NewMemory().
		Set(v1Sheet, "D8", "000012345").
		Set(v1Sheet, "D22", "Euro").
		Set(v1Sheet, "E11", "100.00").
		Set(v1Sheet, "E12", "150.00").
		Set(v1Sheet, "D11", "01.01.2023").
		Set(v1Sheet, "D12", "31.01.2023")
	for i, r := range rows {
		b.SetRow(v1Sheet, 30+i, r...)
	}
	return b
}

// v2Book returns an operation-list workbook with the given rows starting at
// row 20. Period cells are only set when withPeriod is true.
func v2Book(withPeriod bool, rows ...[]string) *workbook.Memory {
	b := workbook.NewMemory().Set(v2Sheet, "A5", "Conto 12345/00")
	if withPeriod {
		b.Set(v2Sheet, "B8", "01/01/2023").Set(v2Sheet, "B9", "31/01/2023")
	}
	for i, r := range rows {
		b.SetRow(v2Sheet, 20+i, r...)
	}
	return b
}

func posRow(date, long, debit string) []string {
	return []string{date, date, "Pagamento POS", "", debit, long, "POS"}
}

func opRow(date, status, category, amount string) []string {
	return []string{date, "Pagamento carta", "BAR CENTRALE", "12345/00", status, category, "EUR", amount}
}

func newTestExtractor(t *testing.T, book workbook.Book, logger *log.Logger) *Extractor {
	t.Helper()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e, err := NewExtractor(book, Options{Logger: logger})
	require.NoError(t, err)
	return e
}

func TestExtract_TransactionListScenario(t *testing.T) {
	book := v1Book([]string{"05.01.2023", "05.01.2023", "Pagamento POS", "", "50.00", "SUPERMARKET", "POS"})

	st, err := newTestExtractor(t, book, nil).Extract()
	require.NoError(t, err)

	assert.Equal(t, model.VariantTransactionList, st.Layout)
	assert.Equal(t, DefaultBankID, st.BankID)
	assert.Equal(t, "000012345", st.AccountID)
	assert.Equal(t, "EUR", st.Currency)
	require.True(t, st.StartBalance.Valid)
	require.True(t, st.EndBalance.Valid)
	assert.Equal(t, "100.00", st.StartBalance.Decimal.StringFixed(2))
	assert.Equal(t, "150.00", st.EndBalance.Decimal.StringFixed(2))
	assert.Equal(t, day(2023, 1, 1), st.StartDate)
	assert.Equal(t, day(2023, 1, 31), st.EndDate)

	require.Len(t, st.Movements, 1)
	m := st.Movements[0]
	assert.Equal(t, day(2023, 1, 5), m.Date)
	assert.Equal(t, day(2023, 1, 5), m.UserDate)
	assert.Equal(t, "(Pagamento POS) SUPERMARKET", m.Description)
	assert.Equal(t, "50.00", m.Amount.StringFixed(2))
	assert.Equal(t, model.TrnPOS, m.Type)
	assert.Len(t, m.ID, 16)
	assert.Empty(t, st.Misses)
}

func TestExtract_UnpaddedDates(t *testing.T) {
	book := v1Book([]string{"5.1.2023", "6.1.2023", "Pagamento POS", "", "-12.300000000000001", "SUPERMARKET", "POS"})
	book.Set(v1Sheet, "D11", "1.1.2023")

	st, err := newTestExtractor(t, book, nil).Extract()
	require.NoError(t, err)
	assert.Equal(t, day(2023, 1, 1), st.StartDate)
	require.Len(t, st.Movements, 1)
	assert.Equal(t, day(2023, 1, 5), st.Movements[0].Date)
	assert.Equal(t, day(2023, 1, 6), st.Movements[0].UserDate)
	assert.Equal(t, "-12.3", st.Movements[0].Amount.String())

	book = v2Book(false, opRow("5/1/2023", "Contabilizzato", "Ristoranti e bar", "-4"))
	book.Set(v2Sheet, "B8", "1/1/2023").Set(v2Sheet, "B9", "31/1/2023")
	st, err = newTestExtractor(t, book, nil).Extract()
	require.NoError(t, err)
	assert.Equal(t, day(2023, 1, 1), st.StartDate)
	assert.Equal(t, day(2023, 1, 31), st.EndDate)
	require.Len(t, st.Movements, 1)
	assert.Equal(t, day(2023, 1, 5), st.Movements[0].Date)
}

func TestExtract_TransactionListAmounts(t *testing.T) {
	tests := []struct {
		name, credit, debit, want string
	}{
		{"credit only", "20.00", "", "20.00"},
		{"debit only", "", "-7.50", "-7.50"},
		{"zero credit falls to debit", "0", "-3.00", "-3.00"},
		{"credit wins over debit", "5.00", "-5.00", "5.00"},
		{"both empty", "", "", "0.00"},
		{"italian text", "1.234,56", "", "1234.56"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := v1Book([]string{"05.01.2023", "05.01.2023", "Pagamento POS", tt.credit, tt.debit, "X", "POS"})
			st, err := newTestExtractor(t, book, nil).Extract()
			require.NoError(t, err)
			require.Len(t, st.Movements, 1)
			assert.Equal(t, tt.want, st.Movements[0].Amount.StringFixed(2))
		})
	}
}

func TestExtract_ExactDecimals(t *testing.T) {
	book := v1Book([]string{"05.01.2023", "05.01.2023", "Pagamento POS", "0.1", "", "X", "POS"},
		[]string{"05.01.2023", "05.01.2023", "Pagamento POS", "0.2", "", "Y", "POS"})
	st, err := newTestExtractor(t, book, nil).Extract()
	require.NoError(t, err)
	assert.Equal(t, "0.3", st.Total().String())
}

func TestExtract_DescriptionMissWarnsOncePerRow(t *testing.T) {
	var buf bytes.Buffer
	book := v1Book(
		[]string{"05.01.2023", "05.01.2023", "Operazione ignota", "", "-1.00", "A", ""},
		[]string{"06.01.2023", "06.01.2023", "pagamento pos", "", "-2.00", "B", ""},
		[]string{"07.01.2023", "07.01.2023", "Operazione ignota", "", "-3.00", "C", ""},
	)

	st, err := newTestExtractor(t, book, log.New(&buf)).Extract()
	require.NoError(t, err)
	require.Len(t, st.Movements, 3)

	assert.Equal(t, model.TrnDirectDebit, st.Movements[0].Type)
	assert.Equal(t, model.TrnPOS, st.Movements[1].Type, "lookup ignores case")
	assert.Equal(t, model.TrnDirectDebit, st.Movements[2].Type)

	assert.Equal(t, 2, strings.Count(buf.String(), "unmapped description"))
	require.Len(t, st.Misses, 2)
	assert.Equal(t, 30, st.Misses[0].Row)
	assert.Equal(t, 32, st.Misses[1].Row)
	assert.Equal(t, "Operazione ignota", st.Misses[1].Text)
}

func TestExtract_OperationList(t *testing.T) {
	book := v2Book(true,
		opRow("20/01/2023", "Contabilizzato", "Ristoranti e bar", "-12.50"),
		opRow("15/01/2023", "Contabilizzato", "Categoria nuova", "-3.20"),
		opRow("10/01/2023", "Contabilizzato", "Categoria nuova", "0"),
		opRow("03/01/2023", "Contabilizzato", "Categoria nuova", "45.00"),
	)

	st, err := newTestExtractor(t, book, nil).Extract()
	require.NoError(t, err)

	assert.Equal(t, model.VariantOperationList, st.Layout)
	assert.Equal(t, "1234500", st.AccountID)
	assert.Equal(t, "EUR", st.Currency)
	assert.False(t, st.StartBalance.Valid)
	assert.False(t, st.EndBalance.Valid)
	assert.Equal(t, day(2023, 1, 1), st.StartDate)
	assert.Equal(t, day(2023, 1, 31), st.EndDate)

	require.Len(t, st.Movements, 4)
	m := st.Movements[0]
	assert.Equal(t, "[(Ristoranti e bar)-(Pagamento carta)] BAR CENTRALE", m.Description)
	assert.Equal(t, day(2023, 1, 20), m.Date)
	assert.Equal(t, m.Date, m.UserDate)
	assert.Equal(t, model.TrnPOS, m.Type)

	assert.Equal(t, model.TrnDebit, st.Movements[1].Type)
	assert.Equal(t, model.TrnCredit, st.Movements[2].Type, "zero amount counts as credit")
	assert.Equal(t, model.TrnCredit, st.Movements[3].Type)
	assert.Len(t, st.Misses, 3)
}

func TestOperationListAccount(t *testing.T) {
	tests := []struct {
		label, want string
	}{
		{"Conto 12345/00", "1234500"},
		{"Conto   100000/1234/56", "100000123456"},
		{"Conto 98765 extra", "98765"},
	}
	for _, tt := range tests {
		got, err := operationListAccount(tt.label)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := operationListAccount("Conto")
	assert.Error(t, err)
}

func TestRows_Termination(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		var rows [][]string
		for i := 0; i < n; i++ {
			rows = append(rows, posRow("05.01.2023", "row"+string(rune('a'+i)), "-1.00"))
		}
		book := v1Book(rows...)
		// Content after the sentinel row is never read.
		book.SetRow(v1Sheet, 30+n+1, posRow("06.01.2023", "after gap", "-9.00")...)

		scanner := newTestExtractor(t, book, nil).Rows()
		count := 0
		for scanner.Next() {
			assert.Equal(t, 30+count, scanner.Row().Number)
			count++
		}
		require.NoError(t, scanner.Err())
		assert.Equal(t, n, count, "rows=%d", n)
		assert.False(t, scanner.Next(), "exhausted scanner stays exhausted")
	}
}

func TestRows_SkipsUnposted(t *testing.T) {
	var buf bytes.Buffer
	book := v2Book(true,
		opRow("20/01/2023", "NON CONTABILIZZATO", "Ristoranti e bar", "-1.00"),
		opRow("19/01/2023", "Contabilizzato", "Ristoranti e bar", "-2.00"),
		opRow("18/01/2023", " non contabilizzato ", "Ristoranti e bar", "-3.00"),
		opRow("17/01/2023", "Contabilizzato", "Ristoranti e bar", "-4.00"),
	)

	st, err := newTestExtractor(t, book, log.New(&buf)).Extract()
	require.NoError(t, err)
	require.Len(t, st.Movements, 2)
	assert.Equal(t, "-2.00", st.Movements[0].Amount.StringFixed(2))
	assert.Equal(t, "-4.00", st.Movements[1].Amount.StringFixed(2))
	assert.NotContains(t, buf.String(), "WARN")
}

func TestOperationListHeader_PeriodFromRows(t *testing.T) {
	book := v2Book(false,
		opRow("20/01/2023", "Contabilizzato", "Ristoranti e bar", "-1.00"),
		opRow("15/01/2023", "NON CONTABILIZZATO", "Ristoranti e bar", "-1.00"),
		opRow("03/01/2023", "Contabilizzato", "Ristoranti e bar", "-1.00"),
	)

	st, err := newTestExtractor(t, book, nil).Header()
	require.NoError(t, err)
	assert.Equal(t, day(2023, 1, 3), st.StartDate)
	assert.Equal(t, day(2023, 1, 20), st.EndDate)
	assert.Empty(t, st.Movements)
}

func TestOperationListHeader_PartialPeriodCells(t *testing.T) {
	book := v2Book(false,
		opRow("20/01/2023", "Contabilizzato", "Ristoranti e bar", "-1.00"),
		opRow("03/01/2023", "Contabilizzato", "Ristoranti e bar", "-1.00"),
	)
	book.Set(v2Sheet, "B8", "01/01/2023")

	st, err := newTestExtractor(t, book, nil).Header()
	require.NoError(t, err)
	assert.Equal(t, day(2023, 1, 3), st.StartDate)
	assert.Equal(t, day(2023, 1, 20), st.EndDate)
}

func TestOperationListHeader_Empty(t *testing.T) {
	var buf bytes.Buffer
	st, err := newTestExtractor(t, v2Book(false), log.New(&buf)).Extract()
	require.NoError(t, err)

	assert.False(t, st.HasPeriod())
	assert.Equal(t, "EUR", st.Currency)
	assert.Empty(t, st.Movements)
	assert.Contains(t, buf.String(), "statement period unknown")
}

func TestOperationListHeader_UnknownCurrency(t *testing.T) {
	row := opRow("20/01/2023", "Contabilizzato", "Ristoranti e bar", "-1.00")
	row[6] = "Rublo"
	_, err := newTestExtractor(t, v2Book(true, row), nil).Extract()
	require.ErrorIs(t, err, classify.ErrUnknownCurrency)

	var herr *HeaderError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "G20", herr.Cell)
}

func TestTransactionListHeader_Errors(t *testing.T) {
	tests := []struct {
		name, cell, value string
		wantField         string
	}{
		{"missing account", "D8", "", "account"},
		{"missing currency", "D22", "", "currency"},
		{"missing start balance", "E11", "", "start balance"},
		{"bad end balance", "E12", "centocinquanta", "end balance"},
		{"bad start date", "D11", "2023/01/01", "start date"},
		{"missing end date", "D12", "", "end date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := v1Book(posRow("05.01.2023", "X", "-1.00"))
			book.Set(v1Sheet, tt.cell, tt.value)

			st, err := newTestExtractor(t, book, nil).Extract()
			require.Error(t, err)
			assert.Nil(t, st)

			var herr *HeaderError
			require.ErrorAs(t, err, &herr)
			assert.Equal(t, tt.wantField, herr.Field)
			assert.Equal(t, tt.cell, herr.Cell)
		})
	}
}

func TestTransactionListHeader_UnknownCurrency(t *testing.T) {
	book := v1Book().Set(v1Sheet, "D22", "Fiorino")
	_, err := newTestExtractor(t, book, nil).Header()
	require.ErrorIs(t, err, classify.ErrUnknownCurrency)
	assert.Contains(t, err.Error(), "Fiorino")
}

func TestExtract_RowErrorsAreFatal(t *testing.T) {
	book := v1Book(
		posRow("05.01.2023", "ok", "-1.00"),
		posRow("05.01.2023", "bad", "meno uno"),
	)
	st, err := newTestExtractor(t, book, nil).Extract()
	require.Error(t, err)
	assert.Nil(t, st)
	assert.Contains(t, err.Error(), "row 31")
	assert.Contains(t, err.Error(), "parsing debit")
}

func TestExtract_Deterministic(t *testing.T) {
	book := v1Book(
		posRow("05.01.2023", "CAFFE", "-1.20"),
		posRow("05.01.2023", "CAFFE", "-1.20"),
		posRow("06.01.2023", "PANE", "-2.00"),
	)

	e := newTestExtractor(t, book, nil)
	first, err := e.Extract()
	require.NoError(t, err)
	second, err := e.Extract()
	require.NoError(t, err)
	third, err := newTestExtractor(t, book, nil).Extract()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)

	ids := []string{first.Movements[0].ID, first.Movements[1].ID, first.Movements[2].ID}
	assert.Equal(t, ids[0]+"-2", ids[1], "repeated movement gets a suffix")
	assert.NotEqual(t, ids[0], ids[2])
}

func TestNewExtractor_Unrecognized(t *testing.T) {
	book := workbook.NewMemory().AddSheet("Foglio1")
	_, err := NewExtractor(book, Options{})
	require.ErrorIs(t, err, layout.ErrUnrecognized)
}

func TestNewExtractor_ForcedLayout(t *testing.T) {
	// The sheet name must still match the forced layout.
	book := v1Book(posRow("05.01.2023", "X", "-1.00")).AddSheet(v2Sheet)
	e, err := NewExtractor(book, Options{Layout: layout.IntesaTransactionList(), BankID: "BCITITMM"})
	require.NoError(t, err)
	assert.Equal(t, "v1", e.Layout().Name())

	st, err := e.Header()
	require.NoError(t, err)
	assert.Equal(t, "BCITITMM", st.BankID)
}

func TestExtractFile_ClosesWorkbook(t *testing.T) {
	tests := []struct {
		name    string
		book    *workbook.Memory
		wantErr bool
	}{
		{"success", v1Book(posRow("05.01.2023", "X", "-1.00")), false},
		{"header failure", v1Book().Set(v1Sheet, "D22", ""), true},
		{"unrecognized", workbook.NewMemory().AddSheet("Foglio1"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore := openBook
			t.Cleanup(func() { openBook = restore })
			openBook = func(string) (workbook.Book, error) { return tt.book, nil }

			_, err := ExtractFile("statement.xlsx", Options{})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "statement.xlsx")
			} else {
				require.NoError(t, err)
			}
			assert.True(t, tt.book.Closed())
		})
	}
}

func TestExtractFile_OpenError(t *testing.T) {
	_, err := ExtractFile("/nonexistent/statement.xlsx", Options{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, layout.ErrUnrecognized))
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/intesasp/xlsx2ofx/internal/model"
)

// CSVHeader is the header row of the movements CSV.
const CSVHeader = "id,date,user_date,type,amount,description"

const (
	numFields   = 6
	dateFormat  = "2006-01-02"
	colID       = 0
	colDate     = 1
	colUserDate = 2
	colType     = 3
	colAmount   = 4
	colDesc     = 5
)

// WriteCSV writes the movements of st, header first.
func WriteCSV(w io.Writer, st *model.Statement) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(CSVHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, m := range st.Movements {
		if err := cw.Write(MarshalMovement(m)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalMovement converts a Movement to a CSV row.
func MarshalMovement(m model.Movement) []string {
	row := make([]string, numFields)
	row[colID] = m.ID
	row[colDate] = m.Date.Format(dateFormat)
	if !m.UserDate.IsZero() {
		row[colUserDate] = m.UserDate.Format(dateFormat)
	}
	row[colType] = string(m.Type)
	row[colAmount] = m.Amount.StringFixed(2)
	row[colDesc] = m.Description
	return row
}

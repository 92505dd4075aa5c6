package export

import (
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/intesasp/xlsx2ofx/internal/model"
)

// MaxNameLength is the longest NAME an OFX 2.2 transaction may carry.
const MaxNameLength = 32

var (
	ledgerBal    = regexp.MustCompile(`(?s)[ \t]*<LEDGERBAL>.*?</LEDGERBAL>\r?\n?`)
	emptyBalList = regexp.MustCompile(`[ \t]*<BALLIST>\s*</BALLIST>\r?\n?`)
)

// WriteOFX writes st as an OFX 2.2 bank statement response. The ledger
// balance block is left out when the statement has no closing balance,
// which makes the output unreadable to strict OFX parsers; a statement
// without a period is dated now.
func WriteOFX(w io.Writer, st *model.Statement, now time.Time) error {
	resp, err := buildResponse(st, now)
	if err != nil {
		return err
	}
	buf, err := resp.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling OFX: %w", err)
	}

	out := emptyBalList.ReplaceAll(buf.Bytes(), nil)
	if !st.EndBalance.Valid {
		out = ledgerBal.ReplaceAll(out, nil)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("writing OFX: %w", err)
	}
	return nil
}

func buildResponse(st *model.Statement, now time.Time) (*ofxgo.Response, error) {
	cur, err := ofxgo.NewCurrSymbol(st.Currency)
	if err != nil {
		return nil, fmt.Errorf("currency %q: %w", st.Currency, err)
	}

	start, end := st.StartDate, st.EndDate
	if !st.HasPeriod() {
		start, end = now, now
	}

	list := &ofxgo.TransactionList{
		DtStart: ofxgo.Date{Time: start},
		DtEnd:   ofxgo.Date{Time: end},
	}
	for _, m := range st.Movements {
		tx, err := transaction(m)
		if err != nil {
			return nil, fmt.Errorf("movement %s: %w", m.ID, err)
		}
		list.Transactions = append(list.Transactions, tx)
	}

	stmt := &ofxgo.StatementResponse{
		TrnUID: ofxgo.UID("0"),
		Status: ofxgo.Status{Code: 0, Severity: "INFO"},
		CurDef: *cur,
		BankAcctFrom: ofxgo.BankAcct{
			BankID:   ofxgo.String(st.BankID),
			AcctID:   ofxgo.String(st.AccountID),
			AcctType: ofxgo.AcctTypeChecking,
		},
		BankTranList: list,
		DtAsOf:       ofxgo.Date{Time: end},
	}
	if st.EndBalance.Valid {
		stmt.BalAmt.SetString(st.EndBalance.Decimal.String())
	}

	return &ofxgo.Response{
		Version: ofxgo.OfxVersion220,
		Signon: ofxgo.SignonResponse{
			Status:   ofxgo.Status{Code: 0, Severity: "INFO"},
			DtServer: ofxgo.Date{Time: now},
			Language: "ENG",
		},
		Bank: []ofxgo.Message{stmt},
	}, nil
}

func transaction(m model.Movement) (ofxgo.Transaction, error) {
	tx := ofxgo.Transaction{
		DtPosted: ofxgo.Date{Time: m.Date},
		FiTID:    ofxgo.String(m.ID),
		Name:     ofxgo.String(truncate(m.Description, MaxNameLength)),
		Memo:     ofxgo.String(m.Description),
	}
	if err := tx.TrnType.FromString(string(m.Type)); err != nil {
		return ofxgo.Transaction{}, err
	}
	if !m.UserDate.IsZero() {
		tx.DtUser = &ofxgo.Date{Time: m.UserDate}
	}
	if _, ok := tx.TrnAmt.SetString(m.Amount.String()); !ok {
		return ofxgo.Transaction{}, fmt.Errorf("amount %s is not a rational", m.Amount)
	}
	return tx, nil
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package model

import (
	"fmt"
	"strings"
)

// TrnType is a movement classification tag. The set is closed: lookup tables
// may only map text onto these values.
type TrnType string

const (
	TrnCredit      TrnType = "CREDIT"
	TrnDebit       TrnType = "DEBIT"
	TrnInterest    TrnType = "INT"
	TrnDividend    TrnType = "DIV"
	TrnFee         TrnType = "FEE"
	TrnServiceChg  TrnType = "SRVCHG"
	TrnDeposit     TrnType = "DEP"
	TrnATM         TrnType = "ATM"
	TrnPOS         TrnType = "POS"
	TrnTransfer    TrnType = "XFER"
	TrnCheck       TrnType = "CHECK"
	TrnPayment     TrnType = "PAYMENT"
	TrnCash        TrnType = "CASH"
	TrnDirectDep   TrnType = "DIRECTDEP"
	TrnDirectDebit TrnType = "DIRECTDEBIT"
	TrnRepeatPmt   TrnType = "REPEATPMT"
	TrnOther       TrnType = "OTHER"
)

// TrnTypes lists every tag in the taxonomy.
var TrnTypes = []TrnType{
	TrnCredit, TrnDebit, TrnInterest, TrnDividend, TrnFee, TrnServiceChg,
	TrnDeposit, TrnATM, TrnPOS, TrnTransfer, TrnCheck, TrnPayment, TrnCash,
	TrnDirectDep, TrnDirectDebit, TrnRepeatPmt, TrnOther,
}

// ParseTrnType converts a tag name (any case) into a TrnType.
func ParseTrnType(s string) (TrnType, error) {
	want := TrnType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range TrnTypes {
		if t == want {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/intesasp/xlsx2ofx/internal/importer"
	"github.com/intesasp/xlsx2ofx/internal/model"
)

func newInspectCommand(a *app) *cobra.Command {
	var layoutName string

	cmd := &cobra.Command{
		Use:   "inspect <file.xlsx>",
		Short: "Show the detected layout and statement header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd.OutOrStdout(), args[0], layoutName)
		},
	}

	cmd.Flags().StringVar(&layoutName, "layout", "", "force the layout (v1 or v2) instead of detecting it")

	return cmd
}

func (a *app) runInspect(w io.Writer, path, layoutName string) error {
	opts, err := a.importOptions(layoutName)
	if err != nil {
		return err
	}
	st, err := importer.InspectFile(path, opts)
	if err != nil {
		return err
	}
	printHeader(w, path, st)
	return nil
}

func printHeader(w io.Writer, path string, st *model.Statement) {
	period := "unknown"
	if st.HasPeriod() {
		period = st.StartDate.Format(time.DateOnly) + " .. " + st.EndDate.Format(time.DateOnly)
	}

	fmt.Fprintf(w, "file:      %s\n", path)
	fmt.Fprintf(w, "layout:    %s\n", st.Layout)
	fmt.Fprintf(w, "bank:      %s\n", st.BankID)
	fmt.Fprintf(w, "account:   %s\n", st.AccountID)
	fmt.Fprintf(w, "currency:  %s\n", st.Currency)
	fmt.Fprintf(w, "period:    %s\n", period)
	fmt.Fprintf(w, "opening:   %s\n", balance(st.StartBalance))
	fmt.Fprintf(w, "closing:   %s\n", balance(st.EndBalance))
}

func balance(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return d.Decimal.StringFixed(2)
}

package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/intesasp/xlsx2ofx/internal/export"
	"github.com/intesasp/xlsx2ofx/internal/importer"
	"github.com/intesasp/xlsx2ofx/internal/reconcile"
)

func newConvertCommand(a *app) *cobra.Command {
	var output string
	var layoutName string

	cmd := &cobra.Command{
		Use:   "convert <file.xlsx>",
		Short: "Convert one export to OFX or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd.OutOrStdout(), args[0], output, layoutName)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().String("format", "", "output format: ofx or csv")
	cmd.Flags().String("bank-id", "", "bank identifier written to the statement")
	cmd.Flags().StringVar(&layoutName, "layout", "", "force the layout (v1 or v2) instead of detecting it")
	cmd.Flags().BoolVar(&a.strict, "strict", false, "fail when the statement does not reconcile")

	return cmd
}

func (a *app) runConvert(stdout io.Writer, path, output, layoutName string) error {
	format, err := export.ParseFormat(a.cfg.Format)
	if err != nil {
		return err
	}
	opts, err := a.importOptions(layoutName)
	if err != nil {
		return err
	}

	data, err := a.convert(path, format, opts)
	if err != nil {
		return err
	}

	if output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	a.logger.Info("statement written", "file", output)
	return nil
}

// convert extracts and encodes one workbook fully in memory, so a failure
// never leaves partial output behind.
func (a *app) convert(path string, format export.Format, opts importer.Options) ([]byte, error) {
	st, err := importer.ExtractFile(path, opts)
	if err != nil {
		return nil, err
	}
	a.logger.Info("statement extracted",
		"file", filepath.Base(path), "layout", st.Layout, "account", st.AccountID,
		"movements", len(st.Movements), "unmapped", len(st.Misses))

	if err := a.recordMisses(filepath.Base(path), st.Misses); err != nil {
		return nil, err
	}

	issues := reconcile.Check(st)
	for _, issue := range issues {
		a.logger.Warn("statement does not reconcile", "file", filepath.Base(path), "issue", issue.Error())
	}
	if a.strict && len(issues) > 0 {
		return nil, fmt.Errorf("%s: %d reconciliation issues (first: %w)", path, len(issues), issues[0])
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, st, a.now()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intesasp/xlsx2ofx/internal/export"
	"github.com/intesasp/xlsx2ofx/internal/importer"
)

func newBatchCommand(a *app) *cobra.Command {
	var outDir string
	var move bool

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Convert every .xlsx export in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd.OutOrStdout(), args[0], outDir, move)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default: the input directory)")
	cmd.Flags().BoolVar(&move, "move-processed", false, "move converted exports to <dir>/"+importer.ProcessedDir)
	cmd.Flags().String("format", "", "output format: ofx or csv")
	cmd.Flags().String("bank-id", "", "bank identifier written to the statements")
	cmd.Flags().BoolVar(&a.strict, "strict", false, "treat exports that do not reconcile as failures")

	return cmd
}

func (a *app) runBatch(stdout io.Writer, dir, outDir string, move bool) error {
	format, err := export.ParseFormat(a.cfg.Format)
	if err != nil {
		return err
	}
	opts, err := a.importOptions("")
	if err != nil {
		return err
	}

	files, err := importer.Scan(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		a.logger.Warn("no exports found", "dir", dir)
		return nil
	}

	if outDir == "" {
		outDir = dir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	var failed int
	for _, f := range files {
		data, err := a.convert(f.Path, format, opts)
		if err != nil {
			a.logger.Error("conversion failed", "file", f.Name, "err", err)
			failed++
			continue
		}

		name := strings.TrimSuffix(f.Name, filepath.Ext(f.Name)) + format.Extension()
		out := filepath.Join(outDir, name)
		if err := os.WriteFile(out, data, 0o644); err != nil {
			a.logger.Error("writing output failed", "file", out, "err", err)
			failed++
			continue
		}
		fmt.Fprintf(stdout, "%s -> %s\n", f.Name, out)

		if move {
			if err := importer.MarkProcessed(dir, f.Name); err != nil {
				a.logger.Error("moving export failed", "file", f.Name, "err", err)
				failed++
			}
		}
	}

	fmt.Fprintf(stdout, "%d converted, %d failed\n", len(files)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d exports failed", failed, len(files))
	}
	return nil
}

package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/intesasp/xlsx2ofx/internal/misslog"
)

func newMissesCommand(a *app) *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "misses",
		Short: "Summarize descriptions and categories missing from the tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMisses(cmd.OutOrStdout(), logPath)
		},
	}
	cmd.Flags().StringVar(&logPath, "log", "", "miss log to read (default: miss_log from config)")

	return cmd
}

func (a *app) runMisses(w io.Writer, logPath string) error {
	if logPath == "" {
		logPath = a.cfg.MissLog
	}
	if logPath == "" {
		return errors.New("no miss log configured: set miss_log or pass --log")
	}

	entries, err := misslog.Read(logPath)
	if err != nil {
		return err
	}
	counts := misslog.Summarize(entries)
	if len(counts) == 0 {
		fmt.Fprintln(w, "no unmapped texts recorded")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNT\tLAYOUT\tFIELD\tFALLBACK\tTEXT")
	for _, c := range counts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.Count, c.Layout, c.Field, c.Fallback, c.Text)
	}
	return tw.Flush()
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/cierres/internal/app"
	"github.com/MrJamesThe3rd/cierres/internal/closing"
	"github.com/MrJamesThe3rd/cierres/internal/config"
	"github.com/MrJamesThe3rd/cierres/internal/export"
	"github.com/MrJamesThe3rd/cierres/internal/logging"
)

type cli struct {
	app     *app.App
	verbose bool
	asJSON  bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "cierres",
		Short:        "Analyse monthly business closing sheets",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			level := cfg.Log.Level
			if c.verbose {
				level = "debug"
			}

			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, cfg.Log.Format))

			c.app, err = app.New(cmd.Context(), cfg)

			return err
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if c.app != nil {
				c.app.Close()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log discarded rows and column matching")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "Print JSON instead of tables")

	root.AddCommand(c.ingestCmd(), c.historyCmd(), c.exportCmd())

	return root
}

func (c *cli) ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Process closing sheets and store them in the history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]closing.File, 0, len(args))

			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("file not found: %s", path)
				}
				defer f.Close()

				files = append(files, closing.File{Name: filepath.Base(path), Reader: f})
			}

			results, err := c.app.Closing.IngestFiles(cmd.Context(), files)

			if c.asJSON {
				if jerr := writeJSON(cmd.OutOrStdout(), results); jerr != nil {
					return jerr
				}
			} else {
				printResults(cmd.OutOrStdout(), results)
			}

			return err
		},
	}
}

func printResults(w io.Writer, results []*closing.Result) {
	for _, r := range results {
		s := r.Snapshot
		fmt.Fprintf(w, "%s (%s): %d rows, %d discarded, revenue %.2f, margin %.2f (%.1f%%)\n",
			s.Period, s.FileName, r.Report.Accepted, r.Report.DiscardedTotal(),
			s.Totals.Revenue, s.Totals.Margin, s.MarginPct())

		if r.Derived.YoY.Available {
			fmt.Fprintf(w, "  year over year: revenue %+.1f%%, margin %+.1f%%\n",
				r.Derived.YoY.RevenueChangePct, r.Derived.YoY.MarginChangePct)
		}

		for _, a := range r.Report.Approximate {
			fmt.Fprintf(w, "  warning: column %s matched approximately by %q\n", a.Field, a.Header)
		}

		for _, msg := range r.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", msg)
		}
	}
}

func (c *cli) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and edit the stored closings",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored closings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items := c.app.Closing.History()

			if c.asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tPERIOD\tFILE\tREVENUE\tMARGIN\tMARGIN %")

			for i, s := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.2f\t%.1f\n",
					i, s.Period, s.FileName, s.Totals.Revenue, s.Totals.Margin, s.MarginPct())
			}

			return tw.Flush()
		},
	}

	rm := &cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the closing at index (as shown by list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}

			removed, err := c.app.Closing.DeleteHistory(cmd.Context(), index)
			if removed != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", removed.Period)
			}

			return err
		},
	}

	restore := &cobra.Command{
		Use:   "restore <backup.json>",
		Short: "Replace the history with a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			items, err := export.ReadBackup(f)
			if err != nil {
				return err
			}

			if err := c.app.Closing.RestoreHistory(cmd.Context(), items); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "restored %d closings\n", len(items))

			return nil
		},
	}

	cmd.AddCommand(list, rm, restore)

	return cmd
}

// exportAliases maps short command-line names to export kinds.
var exportAliases = map[string]export.Kind{
	"summary":  export.KindSummary,
	"snapshot": export.KindSnapshot,
	"csv":      export.KindCSV,
	"template": export.KindTemplate,
	"backup":   export.KindBackup,
}

func parseExportKind(s string) (export.Kind, error) {
	if k, ok := exportAliases[strings.ToLower(s)]; ok {
		return k, nil
	}

	return export.ParseKind(s)
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		outDir string
		period string
	)

	cmd := &cobra.Command{
		Use:   "export <summary|snapshot|csv|template|backup>...",
		Short: "Write export files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := make([]export.Kind, 0, len(args))

			for _, a := range args {
				k, err := parseExportKind(a)
				if err != nil {
					return err
				}

				kinds = append(kinds, k)
			}

			if period != "" {
				if _, _, err := c.app.Closing.Select(period); err != nil {
					return err
				}
			} else if items := c.app.Closing.History(); len(items) > 0 {
				if _, _, err := c.app.Closing.Select(items[len(items)-1].Period); err != nil {
					return err
				}
			}

			paths, err := c.app.Export.Export(cmd.Context(), kinds, outDir)
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}

			return err
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", "exports", "Output directory")
	cmd.Flags().StringVar(&period, "period", "", "Stored closing to export (default: the most recent)")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

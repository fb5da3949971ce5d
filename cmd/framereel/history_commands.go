package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/framereel/framereel-agent/internal/export"
	"github.com/framereel/framereel-agent/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage saved animations",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryExportCommand(ctx))
	historyCmd.AddCommand(newHistoryRemoveCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

type historyListing struct {
	Entries    []*history.Entry `json:"entries"`
	Count      int              `json:"count"`
	TotalBytes int64            `json:"total_bytes"`
	MaxItems   int              `json:"max_items"`
	MaxBytes   int64            `json:"max_bytes"`
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved animations, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, svc, _, err := ctx.historyStore(ctx.cliLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer database.Close()

			entries, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			limits := svc.Limits()

			if jsonOutput {
				if entries == nil {
					entries = []*history.Entry{}
				}
				return writeJSON(cmd, historyListing{
					Entries:    entries,
					Count:      stats.Count,
					TotalBytes: stats.TotalBytes,
					MaxItems:   limits.MaxItems,
					MaxBytes:   limits.MaxBytes,
				})
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "History is empty")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					shortID(e.ID),
					e.FileName,
					strconv.Itoa(e.FrameCount),
					fmt.Sprintf("%dx%d", e.Width, e.Height),
					humanize.IBytes(uint64(e.Size)),
					humanize.Time(e.CreatedAt),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "File", "Frames", "Size", "Bytes", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d of %d entries, %s of %s\n",
				stats.Count, limits.MaxItems,
				humanize.IBytes(uint64(stats.TotalBytes)), humanize.IBytes(uint64(limits.MaxBytes)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	return cmd
}

func newHistoryExportCommand(ctx *commandContext) *cobra.Command {
	var outDir string
	var name string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a saved animation to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			database, svc, _, err := ctx.historyStore(ctx.cliLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer database.Close()

			entry, err := findEntry(cmd.Context(), svc, args[0])
			if err != nil {
				return err
			}
			_, data, err := svc.Data(cmd.Context(), entry.ID)
			if err != nil {
				return err
			}

			dir := outDir
			if dir == "" {
				dir = cfg.ExportDir()
			}
			if abs, err := filepath.Abs(dir); err == nil {
				dir = abs
			}

			path, err := export.WriteArtifact(dir, export.GIFFileName(name, entry.FileName), data, overwrite)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%s)\n", path, humanize.IBytes(uint64(len(data))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "dir", "d", "", "Output directory (defaults to the export directory)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Output file name (defaults to the saved name)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file instead of picking a free name")
	return cmd
}

func newHistoryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Delete saved animations",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, svc, _, err := ctx.historyStore(ctx.cliLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer database.Close()

			for _, ref := range args {
				entry, err := findEntry(cmd.Context(), svc, ref)
				if err != nil {
					return err
				}
				if err := svc.Delete(cmd.Context(), entry.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", shortID(entry.ID), entry.FileName)
			}
			return nil
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved animation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			database, svc, _, err := ctx.historyStore(ctx.cliLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer database.Close()

			n, err := svc.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s\n", n, plural(n, "entry", "entries"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return cmd
}

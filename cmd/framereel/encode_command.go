package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/framereel/framereel-agent/internal/encoder"
	"github.com/framereel/framereel-agent/internal/export"
	"github.com/framereel/framereel-agent/internal/ingest"
	"github.com/framereel/framereel-agent/internal/studio"
)

type encodeOptions struct {
	output      string
	delayMs     int
	background  string
	noHistory   bool
	overwrite   bool
	jsonOutput  bool
	quietOutput bool
}

type encodeReport struct {
	OutputPath string `json:"output_path"`
	Size       int64  `json:"size"`
	Frames     int    `json:"frames"`
	Skipped    int    `json:"skipped"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	JobID      string `json:"job_id"`
	HistoryID  string `json:"history_id,omitempty"`
}

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var opts encodeOptions

	cmd := &cobra.Command{
		Use:   "encode <dir>",
		Short: "Encode the images in a directory into an animated GIF",
		Long: "Encode reads the PNG, JPEG and WebP files directly inside <dir>, orders them\n" +
			"by file name and writes one looping GIF.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output GIF path (required)")
	cmd.Flags().IntVar(&opts.delayMs, "delay", 0, "Frame delay in milliseconds (50-2000); defaults to the configured delay")
	cmd.Flags().StringVar(&opts.background, "background", "transparent", "Background: transparent, white, black or #rrggbb")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not keep the result in the history store")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Replace an existing output file instead of picking a free name")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVarP(&opts.quietOutput, "quiet", "q", false, "Suppress progress output")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runEncode(cmd *cobra.Command, cc *commandContext, dir string, opts encodeOptions) error {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	logger := cc.cliLogger(cmd.ErrOrStderr())

	bg, err := encoder.ParseBackground(opts.background)
	if err != nil {
		return err
	}

	res, err := ingest.FromDir(dir)
	if err != nil {
		return err
	}
	if len(res.Items) == 0 {
		return fmt.Errorf("no PNG, JPEG or WebP images in %s", dir)
	}

	database, hist, repo, err := cc.historyStore(logger)
	if err != nil {
		return err
	}
	defer database.Close()

	sopts := studio.Options{
		Encoder:        encoder.NewGIFEncoder(logger),
		Jobs:           repo,
		DefaultDelayMs: cfg.DefaultDelayMs(),
		Logger:         logger,
	}
	if !opts.noHistory {
		sopts.History = hist
	}
	st := studio.New(sopts)
	defer st.Close()

	if _, err := st.Import(res, false); err != nil {
		return err
	}

	if !opts.quietOutput && !opts.jsonOutput && isTerminal(cmd.ErrOrStderr()) {
		stop := showProgress(cmd.ErrOrStderr(), st)
		defer stop()
	}

	outDir, outName := filepath.Split(opts.output)
	outDir = filepath.Clean(outDir)
	if abs, err := filepath.Abs(outDir); err == nil {
		outDir = abs
	}

	out, err := st.Encode(cmd.Context(), studio.EncodeOptions{
		Background:     bg,
		DefaultDelayMs: opts.delayMs,
		FileName:       export.GIFFileName(outName, ""),
	})
	if err != nil {
		return err
	}

	path, err := export.WriteArtifact(outDir, export.GIFFileName(outName, ""), out.Artifact.Data, opts.overwrite)
	if err != nil {
		return err
	}

	report := encodeReport{
		OutputPath: path,
		Size:       int64(len(out.Artifact.Data)),
		Frames:     out.Artifact.FrameCount,
		Skipped:    res.Skipped,
		Width:      out.Artifact.Width,
		Height:     out.Artifact.Height,
		JobID:      out.Job.ID,
	}
	if out.Entry != nil {
		report.HistoryID = out.Entry.ID
	}

	if opts.jsonOutput {
		return writeJSON(cmd, report)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Wrote %s (%s, %d frames, %dx%d)\n",
		report.OutputPath, humanize.IBytes(uint64(report.Size)), report.Frames, report.Width, report.Height)
	if report.Skipped > 0 {
		fmt.Fprintf(w, "Skipped %d unsupported %s\n", report.Skipped, plural(report.Skipped, "file", "files"))
	}
	if report.HistoryID != "" {
		fmt.Fprintf(w, "Saved to history as %s\n", shortID(report.HistoryID))
	}
	return nil
}

// showProgress draws a single updating progress line until stop is called.
func showProgress(w io.Writer, st *studio.Studio) (stop func()) {
	changed := make(chan struct{}, 1)
	cancel := st.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		for {
			select {
			case <-done:
				fmt.Fprint(w, "\r"+strings.Repeat(" ", 24)+"\r")
				return
			case <-changed:
				if sum := st.Summary(); sum.Busy {
					fmt.Fprintf(w, "\rEncoding %3d%%", sum.Progress)
				}
			}
		}
	}()

	return func() {
		cancel()
		close(done)
		<-finished
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}


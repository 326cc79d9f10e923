package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docspace/internal/blobref"
	"docspace/internal/classify"
	"docspace/internal/ingest"
	"docspace/internal/logger"
	"docspace/internal/model"
	"docspace/internal/notifier"
	"docspace/internal/service"
	"docspace/internal/workspace"
)

// sniffLen matches the prefix the HTTP bridge hands to media-type detection.
const sniffLen = 3072

type ingestFlags struct {
	uploadURL     string
	uploadTimeout time.Duration
	concurrency   int
	selectAll     bool
	verbose       bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wsctl",
		Short:         "Inspect how files are classified and ingested",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newClassifyCmd(), newIngestCmd())
	return root
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <media-type>...",
		Short: "Print the decoding strategy and category for media types",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, mt := range args {
				class := classify.Classify(mt)
				fmt.Fprintf(out, "%-40s %-10s %s\n", quoted(mt), class.Strategy, class.Category)
			}
			return nil
		},
	}
}

func newIngestCmd() *cobra.Command {
	var flags ingestFlags
	cmd := &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Ingest local files into a fresh workspace",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), cmd.OutOrStdout(), args, flags)
		},
	}
	cmd.Flags().StringVar(&flags.uploadURL, "upload-url", "", "also send every file to this upload endpoint")
	cmd.Flags().DurationVar(&flags.uploadTimeout, "upload-timeout", 30*time.Second, "timeout for each upload")
	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "c", 4, "files decoded in parallel")
	cmd.Flags().BoolVar(&flags.selectAll, "select-all", false, "select every ingested document and list the sources")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log pipeline activity to stderr")
	return cmd
}

func runIngest(ctx context.Context, w io.Writer, paths []string, flags ingestFlags) error {
	// Upload notices arrive from pipeline goroutines.
	out := &lockedWriter{w: w}

	level := "error"
	if flags.verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(os.Stderr, logger.Options{Level: level})
	defer func() { _ = log.Sync() }()

	files := make([]model.RawFile, 0, len(paths))
	red := color.New(color.FgRed)
	for _, p := range paths {
		f, err := openLocal(p)
		if err != nil {
			red.Fprintf(out, "skip %s: %v\n", p, err)
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return errors.New("no readable files")
	}

	refs := blobref.New(blobref.WithLogger(log))
	opts := []ingest.Option{ingest.WithConcurrency(flags.concurrency), ingest.WithLogger(log)}
	if flags.uploadURL != "" {
		opts = append(opts,
			ingest.WithNotifier(notifier.NewHTTP(flags.uploadURL, flags.uploadTimeout)),
			ingest.WithNotifyTimeout(flags.uploadTimeout),
			ingest.WithNoticeHandler(func(n model.Notice) { printNotice(out, n) }),
		)
	}
	svc := service.NewWorkspaceService(refs, ingest.New(refs, opts...), workspace.NewStore(refs, workspace.WithLogger(log)), log)

	res := svc.Ingest(ctx, files)
	printResult(out, res)

	if flags.selectAll {
		svc.SelectAll()
		fmt.Fprintln(out)
		color.New(color.Bold).Fprintln(out, "sources:")
		for _, d := range svc.Sources() {
			fmt.Fprintf(out, "  %s\n", d.Name)
		}
	}

	// Waits for uploads still in flight.
	svc.Close()
	log.Debug("workspace_closed", zap.Int("documents", len(res.Documents)))
	return nil
}

func openLocal(path string) (model.RawFile, error) {
	head, err := readHead(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	return model.NewLocalFile(path, name, classify.DetectMediaType(name, head))
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

func printResult(out io.Writer, res model.IngestResult) {
	green := color.New(color.FgGreen)
	for _, d := range res.Documents {
		green.Fprintf(out, "%s", d.ID)
		fmt.Fprintf(out, "  %-30s %10s  %-13s %s\n", d.Name, classify.FormatSize(d.Size), d.Category, contentSummary(d))
	}
	red := color.New(color.FgRed)
	for _, fe := range res.Errors {
		red.Fprintf(out, "error %s\n", fe.Error())
	}
}

func printNotice(out io.Writer, n model.Notice) {
	if n.OK {
		color.New(color.FgCyan).Fprintf(out, "uploaded %s\n", n.Filename)
		return
	}
	color.New(color.FgYellow).Fprintf(out, "upload failed %s: %s\n", n.Filename, n.Message)
}

func contentSummary(d model.Document) string {
	if d.HasReference() {
		return d.Content
	}
	runes := []rune(d.Content)
	if len(runes) > 40 {
		return fmt.Sprintf("%q...", string(runes[:40]))
	}
	return fmt.Sprintf("%q", d.Content)
}

func quoted(s string) string {
	if s == "" {
		return `""`
	}
	return s
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

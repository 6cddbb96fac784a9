package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dgallion1/copywrite/internal/parser"
	"github.com/dgallion1/copywrite/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchOut      string
	watchDebounce time.Duration
	watchInitial  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-format source files whenever they change",
	Long: `Watches a directory (default: the site root) and re-formats every
Markdown, HTML or text file that is created or saved into the --out
directory. Without --site, the watched directory is also the site root
that the dictionary and site config are read from. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "directory for formatted <name>.html files (required)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a changed file is formatted")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "format every existing file once before watching")
	_ = watchCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	// A watched directory is the site root unless --site says otherwise.
	if len(args) == 1 && !cmd.Flags().Changed("site") {
		if err := cmd.Flags().Set("site", args[0]); err != nil {
			return err
		}
	}
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	dir := e.cfg.SiteRoot
	if len(args) == 1 {
		dir = args[0]
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	absOut, err := filepath.Abs(watchOut)
	if err != nil {
		return err
	}
	if absDir == absOut {
		return errors.New("--out must differ from the watched directory")
	}
	if err := os.MkdirAll(absOut, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle := func(ctx context.Context, path string) {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return
		}
		if err := e.formatPath(ctx, nil, cmd.ErrOrStderr(), path, absOut); err != nil {
			e.log.Error("format failed", "path", path, "error", err)
		}
	}

	if watchInitial {
		entries, err := os.ReadDir(absDir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if !entry.IsDir() && parser.IsSupportedExtension(entry.Name()) {
				handle(ctx, filepath.Join(absDir, entry.Name()))
			}
		}
	}

	w, err := watch.New(absDir, handle, e.log,
		watch.WithDebounce(watchDebounce),
		watch.WithIgnore(func(path string) bool {
			return path == absOut || strings.HasPrefix(path, absOut+string(filepath.Separator))
		}),
	)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return fmt.Errorf("watch %s: %w", absDir, err)
	}
	defer w.Stop()

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	st := w.Stats()
	e.log.Info("watch finished", "events", st.Events, "handled", st.Handled, "errors", st.Errors)
	return nil
}

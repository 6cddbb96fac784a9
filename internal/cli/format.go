package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/copywrite/internal/copywriting"
	"github.com/dgallion1/copywrite/internal/doctree"
	"github.com/dgallion1/copywrite/internal/parser"
	"github.com/spf13/cobra"
)

var outDir string

var formatCmd = &cobra.Command{
	Use:   "format [files...]",
	Short: "Format source files and print the resulting HTML",
	Long: `Parses each Markdown, HTML or text file, formats the CJK prose in it
and writes the HTML to stdout, or to <out>/<name>.html with --out.
A one-line summary per file is printed to stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().StringVarP(&outDir, "out", "o", "", "write <name>.html files to this directory instead of stdout")
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	var failed []string
	for _, path := range args {
		if err := e.formatPath(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), path, outDir); err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed = append(failed, path)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed: %s", len(failed), len(args), strings.Join(failed, ", "))
	}
	return nil
}

// formatPath formats one file. With an empty out the HTML goes to stdout;
// otherwise it is written to out/<stem>.html unless that file already holds
// the same bytes.
func (e *env) formatPath(ctx context.Context, stdout, stderr io.Writer, path, out string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	post, rep, err := e.formatFile(path)
	if err != nil {
		return err
	}

	if out == "" {
		if _, err := io.WriteString(stdout, post.Content); err != nil {
			return err
		}
	} else {
		dest := outputPath(out, path)
		written, err := writeIfChanged(dest, []byte(post.Content))
		if err != nil {
			return err
		}
		if !written {
			e.log.Debug("output unchanged", "path", dest)
		}
	}

	fmt.Fprintln(stderr, summary(path, rep))
	return nil
}

func (e *env) formatFile(path string) (*doctree.Post, copywriting.Report, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, copywriting.Report{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, copywriting.Report{}, err
	}
	defer f.Close()

	post, err := p.Parse(f, path)
	if err != nil {
		return nil, copywriting.Report{}, fmt.Errorf("parse: %w", err)
	}
	rep, err := e.filter.Apply(post, e.flags)
	if err != nil {
		return nil, rep, err
	}
	return post, rep, nil
}

func outputPath(out, src string) string {
	base := filepath.Base(src)
	return filepath.Join(out, strings.TrimSuffix(base, filepath.Ext(base))+".html")
}

// writeIfChanged writes data to path unless the file already has exactly
// that content. It reports whether it wrote.
func writeIfChanged(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func summary(path string, rep copywriting.Report) string {
	if rep.Skipped != "" {
		return fmt.Sprintf("%s: skipped (%s)", path, rep.Skipped)
	}
	return fmt.Sprintf("%s: %d/%d text nodes changed, %d protected, %d code spacing fixes (%s)",
		path, rep.Changed, rep.Eligible, rep.Protected, rep.CodeSpacing, rep.Duration.Round(time.Microsecond))
}

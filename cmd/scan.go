package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/abe-nagisa/zipcore/zipdir"
	humanize "github.com/dustin/go-humanize"
	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Check every archive under a directory",
	Long: `scan walks a directory tree, opens every file matching --pattern and
reads its central directory, printing one line per archive. SIGINT or
SIGTERM stop the walk after the current archive.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().String("pattern", "*.zip|*.jar|*.cbz", "archive glob patterns, separated by |")
	_ = viper.BindPFlag("pattern", scanCmd.Flags().Lookup("pattern"))
	rootCmd.AddCommand(scanCmd)
}

type scanResult struct {
	archives int
	entries  int
	bytes    uint64
	errs     int
	warnings int
}

// globMatcher reports whether the base name of a path matches any of the
// |-separated patterns.
func globMatcher(patterns string) (func(string) bool, error) {
	globs := strings.Split(patterns, "|")
	for _, g := range globs {
		if _, err := filepath.Match(g, ""); err != nil {
			return nil, errors.Wrapf(err, "invalid pattern <%s>", g)
		}
	}
	return func(name string) bool {
		base := strings.ToLower(filepath.Base(name))
		for _, g := range globs {
			if ok, _ := filepath.Match(g, base); ok {
				return true
			}
		}
		return false
	}, nil
}

func runScan(c *cobra.Command, args []string) error {
	logs := newLoggers(c.ErrOrStderr(), viper.GetBool("quiet"))
	match, err := globMatcher(viper.GetString("pattern"))
	if err != nil {
		return err
	}

	ctx := c.Context()
	var (
		res   scanResult
		out   = c.OutOrStdout()
		start = time.Now()
	)
	err = godirwalk.Walk(args[0], &godirwalk.Options{
		Callback: func(pathname string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if de.IsDir() || !match(pathname) {
				return nil
			}
			res.archives++
			scanArchive(ctx, pathname, logs, &res, func(line string) {
				fmt.Fprintln(out, line)
			})
			return nil
		},
		ErrorCallback: func(pathname string, err error) godirwalk.ErrorAction {
			if ctx.Err() != nil {
				return godirwalk.Halt
			}
			res.errs++
			logs.err.Printf("walk on <%s> failed: %v", pathname, err)
			return godirwalk.SkipNode
		},
	})

	logs.info.Printf("archives: %d | entries: %d (%s) | error: %d | warn: %d | elapsed: %v",
		res.archives, res.entries, humanize.Bytes(res.bytes), res.errs, res.warnings, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return errors.New("scan interrupted")
		}
		return errors.Wrapf(err, "can not walk directory <%s>", args[0])
	}
	return nil
}

// scanArchive opens one archive, walks its directory and emits a summary
// line. Problems are counted rather than returned so the walk goes on.
func scanArchive(ctx context.Context, pathname string, logs loggers, res *scanResult, emit func(string)) {
	opts, err := archiveOptions(logs.warn)
	if err != nil {
		res.errs++
		logs.err.Print(err)
		return
	}
	src, a, err := openArchive(ctx, pathname, opts)
	if err != nil {
		res.errs++
		logs.err.Printf("%+v", err)
		emit(fmt.Sprintf("FAIL %s: %v", pathname, errors.Cause(err)))
		return
	}
	defer src.Close()

	var n, bad, warnings int
	var size uint64
	err = a.Walk(func(e *zipdir.Entry) error {
		n++
		size += e.UncompressedSize
		warnings += len(e.Warnings)
		if e.Err != nil {
			bad++
		}
		return nil
	})
	warnings += len(a.Warnings())
	res.entries += n
	res.bytes += size
	res.warnings += warnings
	res.errs += bad

	status := "OK  "
	switch {
	case err != nil:
		res.errs++
		logs.err.Printf("%s: %v", pathname, err)
		status = "FAIL"
	case bad > 0:
		status = "BAD "
	case warnings > 0:
		status = "WARN"
	}
	zip64 := ""
	if a.End().IsZip64 {
		zip64 = " zip64"
	}
	emit(fmt.Sprintf("%s %s: %d entries, %s%s", status, pathname, n, humanize.Bytes(size), zip64))
}

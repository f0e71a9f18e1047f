package cmd

import (
	"context"
	"io"
	"log"

	"github.com/abe-nagisa/zipcore/internal/source"
	"github.com/abe-nagisa/zipcore/ucs4"
	"github.com/abe-nagisa/zipcore/zipdir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type loggers struct {
	err  *log.Logger
	warn *log.Logger
	info *log.Logger
}

// newLoggers returns the prefixed loggers commands report through. quiet
// discards warnings.
func newLoggers(out io.Writer, quiet bool) loggers {
	flag := log.LstdFlags | log.Lmicroseconds
	warnOut := out
	if quiet {
		warnOut = io.Discard
	}
	return loggers{
		err:  log.New(out, "[ERROR] ", flag),
		warn: log.New(warnOut, "[WARN ] ", flag),
		info: log.New(out, "[INFO ] ", flag),
	}
}

// archiveOptions turns the configuration into Open options. Library
// warnings go to warn.
func archiveOptions(warn *log.Logger) ([]zipdir.Option, error) {
	cs, err := ucs4.Lookup(viper.GetString("charset"))
	if err != nil {
		return nil, err
	}
	policy, err := zipdir.ParseMismatchPolicy(viper.GetString("unicode-mismatch"))
	if err != nil {
		return nil, err
	}
	return []zipdir.Option{
		zipdir.WithBufferSize(viper.GetInt("buffer-size")),
		zipdir.WithSearchLen(viper.GetInt64("search-len")),
		zipdir.WithCharset(cs),
		zipdir.WithEscapeAll(viper.GetBool("escape-all")),
		zipdir.WithUnicodeMismatch(policy),
		zipdir.WithLogger(warn),
	}, nil
}

// openArchive opens the source called name and reads its end records. The
// caller closes the returned source.
func openArchive(ctx context.Context, name string, opts []zipdir.Option) (source.Source, *zipdir.Archive, error) {
	src, err := source.Open(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	a, err := zipdir.Open(src, src.Size(), opts...)
	if err != nil {
		src.Close()
		return nil, nil, errors.WithMessagef(err, "open <%s>", name)
	}
	return src, a, nil
}

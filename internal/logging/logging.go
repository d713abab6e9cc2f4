// Package logging builds the logr.Logger used throughout gkectl. Records are
// written by zap: human readable on a terminal, JSON lines everywhere else.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures New.
type Options struct {
	// Verbosity enables logr V-levels up to and including this value.
	Verbosity int
	// Format is one of FormatAuto, FormatConsole or FormatJSON.
	Format string
	// Writer receives the records; defaults to os.Stderr.
	Writer io.Writer
}

// New creates a logger. FormatAuto picks the console encoder when the
// writer is a terminal.
func New(opts Options) (logr.Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	format := opts.Format
	if format == "" || format == FormatAuto {
		format = FormatJSON
		if isTerminal(w) {
			format = FormatConsole
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch format {
	case FormatConsole:
		if isTerminal(w) {
			encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		enc = zapcore.NewConsoleEncoder(encCfg)
	case FormatJSON:
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return logr.Discard(), fmt.Errorf("unknown log format %q (want %s, %s or %s)", opts.Format, FormatAuto, FormatConsole, FormatJSON)
	}

	verbosity := opts.Verbosity
	if verbosity < 0 {
		verbosity = 0
	}
	// logr V(n) maps to zap level -n.
	level := zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zapr.NewLogger(zap.New(core)), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Package cli parses bilinfo command lines.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Commands lists the accepted command names.
var Commands = []string{"header", "stats", "dump", "glb"}

// Config is a parsed bilinfo invocation. Either JobPath is set, or Command
// and Base are.
type Config struct {
	Command string
	Base    string
	Out     string // glb output path
	JobPath string

	LogLevel  string
	LogFormat string

	HonorByteOrder bool
	CheckRowBytes  bool
	Band           int
	VerticalScale  float64
}

// Parse processes command-line arguments. It returns the parsed Config, a
// boolean reporting that the program should exit cleanly, or an *ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("bilinfo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
bilinfo - inspect BIL raster datasets.

Usage:
  bilinfo [options] header BASE
  bilinfo [options] stats BASE
  bilinfo [options] dump BASE
  bilinfo [options] glb BASE OUT.glb
  bilinfo [options] -job FILE.hcl

Arguments:
  BASE
    Dataset path without extension; BASE.hdr and BASE.bil are read.

Options:
`)
		flagSet.PrintDefaults()
	}

	jobFlag := flagSet.String("job", "", "Path to an HCL job file listing datasets to process.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	byteOrderFlag := flagSet.Bool("honor-byte-order", false, "Read 16-bit samples in the byte order BYTEORDER declares.")
	rowBytesFlag := flagSet.Bool("check-row-bytes", false, "Reject headers whose BANDROWBYTES or TOTALROWBYTES disagree with the geometry.")
	bandFlag := flagSet.Int("band", 0, "Band exported by the glb command. Not allowed with -job.")
	scaleFlag := flagSet.Float64("vertical-scale", 1, "Multiplier applied to heights by the glb command. Not allowed with -job.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *bandFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid band: must not be negative"}
	}

	config := &Config{
		JobPath:        *jobFlag,
		LogLevel:       logLevel,
		LogFormat:      logFormat,
		HonorByteOrder: *byteOrderFlag,
		CheckRowBytes:  *rowBytesFlag,
		Band:           *bandFlag,
		VerticalScale:  *scaleFlag,
	}

	if config.JobPath != "" {
		if flagSet.NArg() > 0 {
			return nil, false, &ExitError{Code: 2, Message: "-job takes no positional arguments"}
		}
		var perDataset []string
		flagSet.Visit(func(f *flag.Flag) {
			if f.Name == "band" || f.Name == "vertical-scale" {
				perDataset = append(perDataset, "-"+f.Name)
			}
		})
		if len(perDataset) > 0 {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf(
				"%s cannot be combined with -job; set band and vertical_scale in the dataset block", strings.Join(perDataset, ", "))}
		}
		return config, false, nil
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	config.Command = flagSet.Arg(0)
	if !slices.Contains(Commands, config.Command) {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", config.Command)}
	}

	want := 2
	if config.Command == "glb" {
		want = 3
	}
	if flagSet.NArg() != want {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("%s: expected %d arguments, got %d", config.Command, want-1, flagSet.NArg()-1)}
	}
	config.Base = flagSet.Arg(1)
	if want == 3 {
		config.Out = flagSet.Arg(2)
	}
	return config, false, nil
}

// NewLogger creates a logger at the given level and format. It does not
// touch the global logger.
func NewLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(outW, handlerOpts))
}

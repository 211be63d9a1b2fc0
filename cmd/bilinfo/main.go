// Command bilinfo inspects BIL raster datasets: it prints headers,
// statistics and cell dumps, and exports bands as glTF heightmaps.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Mause/statistical-atlas-of-au/bil"
	"github.com/Mause/statistical-atlas-of-au/internal/cli"
	"github.com/Mause/statistical-atlas-of-au/internal/ctxlog"
	"github.com/Mause/statistical-atlas-of-au/internal/job"
)

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run holds the program logic; outW receives command output and logW the
// log stream.
func run(outW, logW io.Writer, args []string) error {
	config, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := cli.NewLogger(config.LogLevel, config.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	var opts []bil.Option
	if config.HonorByteOrder {
		opts = append(opts, bil.WithByteOrder())
	}
	if config.CheckRowBytes {
		opts = append(opts, bil.WithRowBytesCheck())
	}

	if config.JobPath != "" {
		return runJob(ctx, outW, config.JobPath, opts)
	}

	t := &task{
		Name:          config.Base,
		Base:          config.Base,
		Commands:      []string{config.Command},
		Out:           config.Out,
		Band:          config.Band,
		VerticalScale: config.VerticalScale,
		Options:       opts,
	}
	return t.run(ctx, outW)
}

// runJob runs every dataset of a job file. A failing dataset is logged and
// the remaining ones still run.
func runJob(ctx context.Context, outW io.Writer, path string, opts []bil.Option) error {
	logger := ctxlog.FromContext(ctx)

	f, err := job.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("Job loaded.", "path", path, "datasets", len(f.Datasets))

	var errs []error
	for _, ds := range f.Datasets {
		t := &task{
			Name:          ds.Name,
			Base:          ds.Base,
			Commands:      ds.Commands,
			Out:           ds.GLB,
			Band:          ds.Band,
			VerticalScale: ds.VerticalScale,
			Options:       append(ds.Options(), opts...),
		}
		fmt.Fprintf(outW, "== %s ==\n", ds.Name)
		if err := t.run(ctx, outW); err != nil {
			logger.Error("Dataset failed.", "dataset", ds.Name, slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

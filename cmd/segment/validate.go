package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"custseg/internal/dataprocessing"
	apperrors "custseg/internal/errors"
)

func runValidate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, configPath := newFlagSet("validate", stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: segment validate [flags] <data_file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return apperrors.NewValidationError("validate takes exactly one data file")
	}
	dataFile := fs.Arg(0)

	a, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.InfoContext(ctx, "Validating data file", slog.String("data_file", dataFile))

	ds, err := dataprocessing.NewLoader("", a.logger).Load(ctx, dataFile)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	info := dataprocessing.Info(ds)

	cleaner := dataprocessing.NewCleaner(dataprocessing.CleanOptions{
		MissingCustomers: a.cfg.Analysis.MissingCustomers,
		RemoveOutliers:   a.cfg.Analysis.RemoveOutliers,
		OutlierQuantile:  a.cfg.Analysis.OutlierQuantile,
	}, a.logger)
	cleaned, summary, err := cleaner.CleanAll(ctx, ds.Transactions)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	printValidation(stdout, info, summary)

	if len(cleaned) == 0 {
		return apperrors.NewValidationError("no valid records remain after cleaning")
	}
	fmt.Fprintln(stdout, "\nData validation passed")
	return nil
}

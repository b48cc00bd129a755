package main

import (
	"context"
	"io"
	"os"

	"transit/config"
	"transit/internal/delivery/batch"
	logs "transit/internal/infra/log"
	"transit/internal/usecase/impl"

	"github.com/pkg/errors"
)

type processOptions struct {
	input         string
	output        string
	indent        string
	implicitStops bool
	logLevel      string
}

func runProcess(ctx context.Context, opts processOptions) error {
	cfg := config.Default()
	cfg.Catalogue.ImplicitStops = opts.implicitStops
	cfg.Env.Log.Level = opts.logLevel

	// Stdout may carry the responses, so logs go to stderr
	logger, err := logs.NewWithWriter(cfg.Env.Log, os.Stderr)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(opts.input)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(opts.output)
	if err != nil {
		return err
	}

	service := impl.NewTransitService(impl.TransitServiceParams{Config: cfg, Logger: logger})
	processor := batch.NewProcessor(service, logger, batch.Options{Indent: opts.indent})

	if err := processor.Process(ctx, in, out); err != nil {
		closeOut()

		return err
	}

	return closeOut()
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open input %s", path)
	}

	return file, func() { file.Close() }, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create output %s", path)
	}

	return file, func() error { return errors.WithStack(file.Close()) }, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/phobologic/pqgram/internal/model"
	"github.com/phobologic/pqgram/internal/toon"
	"github.com/phobologic/pqgram/pqgram"
)

func runDiff(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pqgram diff", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	registerTreeFlags(fs, &o)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: pqgram diff [flags] FILE_A FILE_B

Print the PQ-gram distance between two files of the same language.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("diff needs exactly two files, got %d", fs.NArg())
	}

	logger := newLogger(stderr, o.verbose)
	cfg, err := loadConfig(fs, &o, ".", logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := profileFile(ctx, fs.Arg(0), cfg)
	if err != nil {
		return err
	}
	b, err := profileFile(ctx, fs.Arg(1), cfg)
	if err != nil {
		return err
	}
	if a.info.Language != b.info.Language {
		logger.Warn("comparing files of different languages",
			"a", a.info.Language, "b", b.info.Language)
	}

	shared, distance := pqgram.Measure(a.profile, b.profile)
	_, _ = fmt.Fprintln(stdout, toon.EncodeDiff(&model.Diff{
		A:        a.info,
		B:        b.info,
		Params:   model.Params{P: cfg.P, Q: cfg.Q},
		Shared:   shared,
		Distance: distance,
	}))
	return nil
}

func runProfile(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pqgram profile", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	registerTreeFlags(fs, &o)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: pqgram profile [flags] FILE

Print the sorted PQ-gram profile of one file. "*" marks padding.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("profile needs exactly one file, got %d", fs.NArg())
	}

	logger := newLogger(stderr, o.verbose)
	cfg, err := loadConfig(fs, &o, ".", logger)
	if err != nil {
		return err
	}

	pf, err := profileFile(context.Background(), fs.Arg(0), cfg)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(stdout, toon.EncodeProfile(pf.info, pf.profile))
	return nil
}

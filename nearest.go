package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/phobologic/pqgram/internal/config"
	"github.com/phobologic/pqgram/internal/discover"
	"github.com/phobologic/pqgram/internal/model"
	"github.com/phobologic/pqgram/internal/similarity"
	"github.com/phobologic/pqgram/internal/toon"
)

const defaultNeighbours = 10

func runNearest(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pqgram nearest", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	registerTreeFlags(fs, &o)
	fs.IntVar(&o.maxPairs, "n", defaultNeighbours, "number of neighbours to list (0 = all)")
	fs.IntVar(&o.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "skip files larger than this many bytes")
	fs.BoolVar(&o.crossLang, "cross-language", false, "also list files of other languages")
	fs.BoolVar(&o.skipTests, "skip-tests", false, "ignore test files")
	fs.IntVar(&o.jobs, "j", 0, "parallel workers (default GOMAXPROCS)")
	fs.IntVar(&o.jobs, "jobs", 0, "parallel workers (default GOMAXPROCS)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: pqgram nearest [flags] FILE [dir]

List the files under dir (default .) closest in structure to FILE.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return fmt.Errorf("nearest needs a file and an optional directory, got %d arguments", fs.NArg())
	}

	root := "."
	if fs.NArg() == 2 {
		root = fs.Arg(1)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	logger := newLogger(stderr, o.verbose)
	cfg, err := loadConfig(fs, &o, root, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	query, err := profileFile(ctx, fs.Arg(0), cfg)
	if err != nil {
		return err
	}
	// Inside root the query is named like the discovered files, so it is not
	// listed as its own neighbour.
	if abs, err := filepath.Abs(fs.Arg(0)); err == nil {
		if rel, err := filepath.Rel(root, abs); err == nil && !strings.HasPrefix(rel, "..") {
			query.info.Path = filepath.ToSlash(rel)
		}
	}

	langs := cfg.Langs
	if !cfg.CrossLanguage {
		langs = []string{query.info.Language}
	}
	files, err := discover.Files(root, discover.Options{
		Languages: langs,
		Exclude:   cfg.Exclude,
		SkipTests: cfg.SkipTests,
	})
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	files = filterBySize(root, files, cfg.MaxFileSize, logger)

	var entries []similarity.Entry
	for _, pf := range profileFilesConcurrent(ctx, root, files, cfg, logger) {
		entries = append(entries, similarity.Entry{Path: pf.info.Path, Language: pf.info.Language, Profile: pf.profile})
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	neighbours := similarity.Nearest(entries, similarity.Entry{
		Path:     query.info.Path,
		Language: query.info.Language,
		Profile:  query.profile,
	}, o.maxPairs)
	logger.Debug("compared files", "files", len(entries), "listed", len(neighbours))

	_, _ = fmt.Fprintln(stdout, toon.EncodeNearest(query.info, model.Params{P: cfg.P, Q: cfg.Q}, neighbours))
	return nil
}

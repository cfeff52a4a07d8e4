// pqgram reports structurally similar source files by PQ-gram tree distance.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/phobologic/pqgram/internal/config"
	"github.com/phobologic/pqgram/internal/discover"
	"github.com/phobologic/pqgram/internal/graph"
	"github.com/phobologic/pqgram/internal/model"
	"github.com/phobologic/pqgram/internal/ranking"
	"github.com/phobologic/pqgram/internal/similarity"
	"github.com/phobologic/pqgram/internal/toon"
	"github.com/phobologic/pqgram/internal/watch"
	"github.com/phobologic/pqgram/pqgram"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "init":
			return runInit(args[1:], stdout, stderr)
		case "diff":
			return runDiff(args[1:], stdout, stderr)
		case "profile":
			return runProfile(args[1:], stdout, stderr)
		case "nearest":
			return runNearest(args[1:], stdout, stderr)
		}
	}
	return runScan(args, stdout, stderr)
}

// options collects every flag; which ones a subcommand registers varies.
type options struct {
	p, q        int
	threshold   float64
	maxPairs    int
	langs       string
	file        string
	maxFileSize int
	cachePath   string
	configPath  string
	leafText    bool
	allNodes    bool
	xmlAttrs    bool
	xmlNS       bool
	crossLang   bool
	skipTests   bool
	jobs        int
	raw         bool
	verbose     bool
	showVersion bool
	watch       bool
}

// registerTreeFlags adds the flags that change how a file becomes a profile.
// Only flags set on the command line override the config.
func registerTreeFlags(fs *flag.FlagSet, o *options) {
	fs.IntVar(&o.p, "p", pqgram.DefaultP, "number of ancestors per gram")
	fs.IntVar(&o.q, "q", pqgram.DefaultQ, "number of siblings per gram")
	fs.BoolVar(&o.leafText, "leaf-text", false, "include identifier and literal text in labels")
	fs.BoolVar(&o.allNodes, "all-nodes", false, "keep anonymous syntax nodes (punctuation, keywords)")
	fs.BoolVar(&o.xmlAttrs, "xml-attributes", false, "turn XML attributes into leaf nodes")
	fs.BoolVar(&o.xmlNS, "xml-namespaces", false, "qualify XML names with their namespace URI")
	fs.StringVar(&o.configPath, "config", "", "config file (default: "+config.FileName+" if present)")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	fs.BoolVar(&o.verbose, "verbose", false, "verbose logging")
}

func runScan(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pqgram", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	registerTreeFlags(fs, &o)
	fs.Float64Var(&o.threshold, "t", 0, "report pairs with distance <= threshold")
	fs.Float64Var(&o.threshold, "threshold", 0, "report pairs with distance <= threshold")
	fs.IntVar(&o.maxPairs, "n", 0, "maximum number of pairs to report")
	fs.IntVar(&o.maxPairs, "max-pairs", 0, "maximum number of pairs to report")
	fs.StringVar(&o.langs, "l", "", "comma-separated languages to include")
	fs.StringVar(&o.langs, "langs", "", "comma-separated languages to include")
	fs.StringVar(&o.file, "file", "", "only report pairs involving paths containing this text")
	fs.IntVar(&o.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "skip files larger than this many bytes")
	fs.StringVar(&o.cachePath, "cache", "", "cache file path")
	fs.BoolVar(&o.crossLang, "cross-language", false, "compare files of different languages")
	fs.BoolVar(&o.skipTests, "skip-tests", false, "ignore test files")
	fs.IntVar(&o.jobs, "j", 0, "parallel workers (default GOMAXPROCS)")
	fs.IntVar(&o.jobs, "jobs", 0, "parallel workers (default GOMAXPROCS)")
	fs.BoolVar(&o.raw, "raw", false, "omit the explanatory header")
	fs.BoolVar(&o.watch, "watch", false, "keep running and print a new report when files change")
	fs.BoolVar(&o.showVersion, "V", false, "show version and exit")
	fs.BoolVar(&o.showVersion, "version", false, "show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: pqgram [flags] [dir]
       pqgram diff [flags] FILE_A FILE_B
       pqgram profile [flags] FILE
       pqgram nearest [flags] FILE [dir]
       pqgram init [--dry-run] [--with-config] [path-to-CLAUDE.md]

Scan dir (default .) for structurally similar files and print the pairs,
clusters and file ranking in TOON format.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if o.showVersion {
		_, _ = fmt.Fprintf(stdout, "pqgram %s\n", version)
		return nil
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	logger := newLogger(stderr, o.verbose)

	cfg, err := loadConfig(fs, &o, root, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	output, err := scan(ctx, root, cfg, &o, logger)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, output)

	if !o.watch {
		return nil
	}
	return watchAndRescan(ctx, root, cfg, &o, stdout, logger)
}

// scan discovers, profiles and compares the files under root, or reuses a
// fresh cache, and returns the printable report.
func scan(ctx context.Context, root string, cfg *config.Config, o *options, logger *slog.Logger) (string, error) {
	start := time.Now()

	// Discover files
	files, err := discover.Files(root, discover.Options{
		Languages: cfg.Langs,
		Exclude:   cfg.Exclude,
		SkipTests: cfg.SkipTests,
	})
	if err != nil {
		return "", fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no parseable files found")
	}

	// Check cache freshness
	fingerprint := cacheFingerprint(cfg, o.file, files)
	var (
		output string
		cached bool
	)
	if o.cachePath != "" {
		output, cached = readCache(o.cachePath, fingerprint, root, files)
		if cached {
			logger.Debug("using cache", "path", o.cachePath)
		}
	}

	if !cached {
		output, err = buildReport(ctx, root, files, cfg, o.file, logger)
		if err != nil {
			return "", err
		}
		logger.Debug("scan complete", "elapsed", time.Since(start).Round(time.Millisecond))

		// Write cache
		if o.cachePath != "" {
			data := cachePrefix + fingerprint + "\n" + output
			if err := os.WriteFile(o.cachePath, []byte(data), 0o644); err != nil {
				logger.Warn("cache not written", "path", o.cachePath, "err", err)
			}
		}
	}

	if !o.raw {
		output = reportHeader + output
	}
	return output, nil
}

// watchAndRescan prints a fresh report whenever files under root change,
// until ctx is cancelled. Failed rescans are logged and watching continues.
func watchAndRescan(ctx context.Context, root string, cfg *config.Config, o *options, stdout io.Writer, logger *slog.Logger) error {
	w, err := watch.New(root, watch.Options{SkipDir: discover.SkipDir, Logger: logger})
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	defer w.Close()

	// Writing the cache must not trigger another scan.
	var cacheRel string
	if o.cachePath != "" {
		if abs, err := filepath.Abs(o.cachePath); err == nil {
			if rel, err := filepath.Rel(root, abs); err == nil {
				cacheRel = filepath.ToSlash(rel)
			}
		}
	}

	logger.Info("watching for changes", "root", root)
	return w.Run(ctx, func(changed []string) error {
		changed = slices.DeleteFunc(changed, func(p string) bool { return p == cacheRel })
		if len(changed) == 0 {
			return nil
		}
		logger.Info("rescanning", "changed", len(changed))
		output, err := scan(ctx, root, cfg, o, logger)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("rescan failed", "err", err)
			return nil
		}
		_, _ = fmt.Fprintln(stdout, "\n"+output)
		return nil
	})
}

// buildReport profiles files, compares every pair and returns the report in
// TOON format.
func buildReport(ctx context.Context, root string, files []discover.FileEntry, cfg *config.Config, fileFilter string, logger *slog.Logger) (string, error) {
	// Filter by size
	files = filterBySize(root, files, cfg.MaxFileSize, logger)
	if len(files) == 0 {
		return "", fmt.Errorf("no parseable files found (all exceeded size limit)")
	}

	// Parse and profile concurrently
	profiled := profileFilesConcurrent(ctx, root, files, cfg, logger)
	if len(profiled) == 0 {
		return "", fmt.Errorf("no files could be parsed")
	}

	entries := make([]similarity.Entry, len(profiled))
	fileInfos := make([]model.FileInfo, len(profiled))
	for i, pf := range profiled {
		entries[i] = similarity.Entry{Path: pf.info.Path, Language: pf.info.Language, Profile: pf.profile}
		fileInfos[i] = pf.info
	}

	pairs, err := similarity.Pairs(ctx, entries, similarity.Options{
		Threshold:     cfg.Threshold,
		CrossLanguage: cfg.CrossLanguage,
		Jobs:          cfg.Jobs,
	})
	if err != nil {
		return "", fmt.Errorf("comparing files: %w", err)
	}

	// Build graph and rank
	graph.Rank(fileInfos, pairs)

	rep := &model.Report{
		RepoName: filepath.Base(root),
		Root:     filepath.Base(root),
		Params:   model.Params{P: cfg.P, Q: cfg.Q, Threshold: cfg.Threshold},
		Files:    fileInfos,
		Pairs:    pairs,
		Clusters: graph.Clusters(pairs),
	}
	logger.Debug("compared files", "files", len(fileInfos), "pairs", len(pairs), "clusters", len(rep.Clusters))

	if fileFilter != "" {
		rep = ranking.FilterByFile(rep, fileFilter)
		if len(rep.Files) == 0 {
			return "", fmt.Errorf("no files match %q", fileFilter)
		}
	}

	// Select top N pairs
	rep = ranking.SelectPairs(rep, cfg.MaxPairs)

	return toon.Encode(rep), nil
}

const reportHeader = `# Similarity Map
# Distance is PQ-gram tree distance: 0 = same structure, 1 = nothing in common.
# pairs: closest first. clusters: files linked by similar pairs.
# files: most duplicated first (rank); grams is the profile size.

`

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads --config, or the config file in dir if there is one, and
// lets flags given on the command line override it.
func loadConfig(fs *flag.FlagSet, o *options, dir string, logger *slog.Logger) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded config", "path", o.configPath)
	} else {
		var found bool
		cfg, found, err = config.LoadDir(dir)
		if err != nil {
			return nil, err
		}
		if found {
			logger.Debug("loaded config", "path", filepath.Join(dir, config.FileName))
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.P = o.p
		case "q":
			cfg.Q = o.q
		case "t", "threshold":
			cfg.Threshold = o.threshold
		case "n", "max-pairs":
			cfg.MaxPairs = o.maxPairs
		case "l", "langs":
			cfg.Langs = splitList(o.langs)
		case "max-file-size":
			cfg.MaxFileSize = o.maxFileSize
		case "leaf-text":
			cfg.LeafText = o.leafText
		case "all-nodes":
			cfg.AllNodes = o.allNodes
		case "xml-attributes":
			cfg.XMLAttributes = o.xmlAttrs
		case "xml-namespaces":
			cfg.XMLNamespaces = o.xmlNS
		case "cross-language":
			cfg.CrossLanguage = o.crossLang
		case "skip-tests":
			cfg.SkipTests = o.skipTests
		case "j", "jobs":
			cfg.Jobs = o.jobs
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-p": true, "--p": true,
	"-q": true, "--q": true,
	"-t": true, "--t": true,
	"-threshold": true, "--threshold": true,
	"-n": true, "--n": true,
	"-max-pairs": true, "--max-pairs": true,
	"-l": true, "--l": true,
	"-langs": true, "--langs": true,
	"-file": true, "--file": true,
	"-cache": true, "--cache": true,
	"-config": true, "--config": true,
	"-max-file-size": true, "--max-file-size": true,
	"-j": true, "--j": true,
	"-jobs": true, "--jobs": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}

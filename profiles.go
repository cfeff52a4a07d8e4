package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pqgram/internal/config"
	"github.com/phobologic/pqgram/internal/discover"
	"github.com/phobologic/pqgram/internal/lang"
	"github.com/phobologic/pqgram/internal/model"
	"github.com/phobologic/pqgram/internal/parse"
	"github.com/phobologic/pqgram/pqgram"
)

func filterBySize(root string, files []discover.FileEntry, maxSize int, logger *slog.Logger) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			logger.Warn("skipped large file", "path", f.Path, "size", fi.Size(), "limit", maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

type profiledFile struct {
	info    model.FileInfo
	profile *pqgram.Profile
}

var errUnsupported = errors.New("unsupported file type")

// profileFile parses and profiles a single file named on the command line.
func profileFile(ctx context.Context, path string, cfg *config.Config) (profiledFile, error) {
	name := lang.ForExtension(filepath.Ext(path))
	if name == "" {
		return profiledFile{}, fmt.Errorf("%s: %w", path, errUnsupported)
	}
	l := lang.Languages[name]

	parser := l.NewParser()
	if parser != nil {
		defer parser.Close()
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return profiledFile{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return buildProfile(ctx, l, parser, path, source, cfg)
}

func buildProfile(ctx context.Context, l *lang.Language, parser *sitter.Parser, path string, source []byte, cfg *config.Config) (profiledFile, error) {
	tree, err := parse.Tree(ctx, l, parser, source, parseOptions(cfg))
	if err != nil {
		return profiledFile{}, fmt.Errorf("%s: %w", path, err)
	}
	pr, err := pqgram.Build(tree, cfg.P, cfg.Q)
	if err != nil {
		return profiledFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return profiledFile{
		info: model.FileInfo{
			Path:     path,
			Language: l.Name,
			Nodes:    tree.Size(),
			Grams:    pr.Len(),
		},
		profile: pr,
	}, nil
}

func profileFilesConcurrent(ctx context.Context, root string, files []discover.FileEntry, cfg *config.Config, logger *slog.Logger) []profiledFile {
	type result struct {
		index int
		pf    profiledFile
	}

	numWorkers := cfg.Jobs
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parsers
			parsers := make(map[string]*sitter.Parser)
			defer func() {
				for _, p := range parsers {
					p.Close()
				}
			}()

			for idx := range work {
				if ctx.Err() != nil {
					continue
				}
				f := files[idx]
				l := lang.Languages[f.Language]

				parser, ok := parsers[f.Language]
				if !ok && l.HasGrammar() {
					parser = l.NewParser()
					parsers[f.Language] = parser
				}

				source, err := os.ReadFile(filepath.Join(root, f.Path))
				if err != nil {
					logger.Warn("skipped unreadable file", "path", f.Path, "err", err)
					continue
				}

				pf, err := buildProfile(ctx, l, parser, f.Path, source, cfg)
				if err != nil {
					logger.Warn("skipped unparseable file", "path", f.Path, "err", err)
					continue
				}
				results <- result{index: idx, pf: pf}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([]profiledFile, len(files))
	valid := make([]bool, len(files))
	for r := range results {
		indexed[r.index] = r.pf
		valid[r.index] = true
	}

	var out []profiledFile
	for i, v := range valid {
		if v {
			out = append(out, indexed[i])
		}
	}

	return out
}

func parseOptions(cfg *config.Config) parse.Options {
	return parse.Options{
		LeafText:      cfg.LeafText,
		AllNodes:      cfg.AllNodes,
		XMLAttributes: cfg.XMLAttributes,
		XMLNamespaces: cfg.XMLNamespaces,
	}
}

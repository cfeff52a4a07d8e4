package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phobologic/pqgram/internal/config"
)

const (
	sentinelStart = "<!-- pqgram:start -->"
	sentinelEnd   = "<!-- pqgram:end -->"
)

// runInit implements the `pqgram init` subcommand. It writes (or updates) a
// pqgram usage section in a CLAUDE.md file and, with --with-config, a starter
// config file next to it.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pqgram init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dryRun, withConfig bool
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying any file")
	fs.BoolVar(&withConfig, "with-config", false, "also write a default "+config.FileName+" if none exists")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: pqgram init [flags] [path-to-CLAUDE.md]

Write a pqgram usage section to a CLAUDE.md file. The section is wrapped in
sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-CLAUDE.md defaults to ./CLAUDE.md.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && fs.NArg() == 0 && !withConfig {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := "CLAUDE.md"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
	} else {
		if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		_, _ = fmt.Fprintf(stderr, "wrote pqgram section to %s\n", path)
	}

	if withConfig {
		return writeDefaultConfig(filepath.Join(filepath.Dir(path), config.FileName), dryRun, stdout, stderr)
	}
	return nil
}

// writeDefaultConfig writes the default settings to path unless a file is
// already there.
func writeDefaultConfig(path string, dryRun bool, stdout, stderr io.Writer) error {
	if _, err := os.Stat(path); err == nil {
		_, _ = fmt.Fprintf(stderr, "kept existing %s\n", path)
		return nil
	}

	data, err := config.Default().Encode()
	if err != nil {
		return err
	}

	if dryRun {
		_, _ = fmt.Fprintf(stdout, "\n--- %s\n%s", path, data)
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(stderr, "wrote default config to %s\n", path)
	return nil
}

// generateSection returns the full sentinel-wrapped pqgram documentation block.
func generateSection() string {
	body := `## pqgram: Structural Duplicate Map

Run ` + "`pqgram`" + ` via the Bash tool before refactoring, deduplicating, or adding
code that may already exist in a similar form. It compares the syntax trees of
every pair of files and lists the pairs whose structure is nearly the same.

**Availability:** Check with ` + "`pqgram --version`" + ` first; skip gracefully if
not found.

**Run it:**
` + "```" + `bash
pqgram                                  # current directory, all languages
pqgram /path/to/repo                    # explicit path
pqgram -l go,python                     # filter by language
pqgram -t 0.2                           # only very close pairs (default 0.3)
pqgram -n 20                            # top 20 pairs only (large repos)
pqgram --file handlers                  # pairs involving matching paths
pqgram --cache .pqgram-cache            # cache output (fast on repeat runs)
pqgram diff a.go b.go                   # distance between two files
pqgram nearest a.go                     # files closest to a.go
` + "```" + `

**Caching:** Use ` + "`--cache <file>`" + ` to avoid re-parsing on every call. Add the
cache file to ` + "`.gitignore`" + `. A conventional path is ` + "`.pqgram-cache`" + `.

**Config:** Settings can live in ` + "`.pqgram.yaml`" + ` at the repo root; flags win.

**All flags:** ` + "`pqgram --help`" + `

**How to use the output:**

1. **Start with ` + "`pairs`" + `.** Sorted by distance, closest first. A distance near
   0 means the two files have the same shape; read both before writing a third.

2. **Use ` + "`clusters`" + ` to find families.** Files linked by chains of similar
   pairs. A large cluster is a candidate for a shared abstraction.

3. **Use ` + "`files`" + ` rank to find the template.** The highest-ranked file in a
   cluster is the one the others resemble most.

4. **Structure only by default.** Identifiers and literals are ignored unless
   ` + "`--leaf-text`" + ` is given, so renamed copies still match.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}

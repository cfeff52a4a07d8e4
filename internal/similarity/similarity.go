// Package similarity compares many profiles at once.
package similarity

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/pqgram/internal/model"
	"github.com/phobologic/pqgram/pqgram"
)

// Entry is one profiled file.
type Entry struct {
	Path     string
	Language string
	Profile  *pqgram.Profile
}

// Options controls pairwise comparison.
type Options struct {
	// Threshold keeps pairs with distance <= Threshold.
	Threshold float64
	// CrossLanguage also compares files of different languages.
	CrossLanguage bool
	// Jobs bounds the number of concurrent rows; 0 means GOMAXPROCS.
	Jobs int
}

// Pairs computes the distance of every unordered pair of entries and returns
// those within the threshold, sorted by distance, then by paths.
//
// Rows of the comparison matrix run concurrently. Profiles are read-only, so
// workers share nothing but their own output row. Pairs fails if two profiles
// have different (p, q) or ctx is cancelled.
func Pairs(ctx context.Context, entries []Entry, opts Options) ([]model.Pair, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	rows := make([][]model.Pair, len(entries))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i := range entries {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			a := &entries[i]
			var row []model.Pair
			for j := i + 1; j < len(entries); j++ {
				b := &entries[j]
				if !opts.CrossLanguage && a.Language != b.Language {
					continue
				}
				if err := pqgram.Compatible(a.Profile, b.Profile); err != nil {
					return err
				}
				if p := compare(a, b); p.Distance <= opts.Threshold {
					row = append(row, p)
				}
			}
			rows[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pairs []model.Pair
	for _, row := range rows {
		pairs = append(pairs, row...)
	}
	SortPairs(pairs)
	return pairs, nil
}

// Nearest returns the k entries closest to query, nearest first. Entries with
// the query's path are skipped. k <= 0 returns all of them.
func Nearest(entries []Entry, query Entry, k int) []model.Pair {
	var out []model.Pair
	for i := range entries {
		if entries[i].Path == query.Path {
			continue
		}
		shared, d := pqgram.Measure(query.Profile, entries[i].Profile)
		out = append(out, model.Pair{
			A:        query.Path,
			B:        entries[i].Path,
			Distance: d,
			Shared:   shared,
		})
	}
	SortPairs(out)
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// SortPairs orders pairs by distance, then A, then B.
func SortPairs(pairs []model.Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Distance != pairs[j].Distance {
			return pairs[i].Distance < pairs[j].Distance
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
}

func compare(a, b *Entry) model.Pair {
	first, second := a.Path, b.Path
	if second < first {
		first, second = second, first
	}
	shared, d := pqgram.Measure(a.Profile, b.Profile)
	return model.Pair{A: first, B: second, Distance: d, Shared: shared}
}

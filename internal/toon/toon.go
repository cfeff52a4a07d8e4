// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/pqgram/internal/model"
	"github.com/phobologic/pqgram/pqgram"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a Report into TOON format.
func Encode(rep *model.Report) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("repo: %s", encodeValue(rep.RepoName)))
	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(rep.Root)))
	parts = append(parts, encodeParams(rep.Params)...)
	parts = append(parts, fmt.Sprintf("threshold: %.4f", rep.Params.Threshold))

	var fileRows [][]string
	for i := range rep.Files {
		fi := &rep.Files[i]
		fileRows = append(fileRows, []string{
			fi.Path,
			fi.Language,
			strconv.Itoa(fi.Nodes),
			strconv.Itoa(fi.Grams),
			fmt.Sprintf("%.4f", fi.Rank),
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "language", "nodes", "grams", "rank"}, fileRows))

	var pairRows [][]string
	for i := range rep.Pairs {
		p := &rep.Pairs[i]
		pairRows = append(pairRows, []string{
			p.A,
			p.B,
			fmt.Sprintf("%.4f", p.Distance),
			strconv.Itoa(p.Shared),
		})
	}
	parts = append(parts, formatTabular("pairs", []string{"a", "b", "distance", "shared"}, pairRows))

	var clusterRows [][]string
	for i := range rep.Clusters {
		c := &rep.Clusters[i]
		clusterRows = append(clusterRows, []string{
			strconv.Itoa(c.ID),
			strconv.Itoa(len(c.Files)),
			strings.Join(c.Files, " "),
		})
	}
	parts = append(parts, formatTabular("clusters", []string{"id", "size", "files"}, clusterRows))

	return strings.Join(parts, "\n")
}

// EncodeDiff converts the comparison of two files into TOON format.
func EncodeDiff(d *model.Diff) string {
	var parts []string

	parts = append(parts, encodeParams(d.Params)...)
	rows := [][]string{
		{d.A.Path, d.A.Language, strconv.Itoa(d.A.Nodes), strconv.Itoa(d.A.Grams)},
		{d.B.Path, d.B.Language, strconv.Itoa(d.B.Nodes), strconv.Itoa(d.B.Grams)},
	}
	parts = append(parts, formatTabular("files", []string{"path", "language", "nodes", "grams"}, rows))
	parts = append(parts, fmt.Sprintf("shared: %d", d.Shared))
	parts = append(parts, fmt.Sprintf("distance: %.4f", d.Distance))

	return strings.Join(parts, "\n")
}

// EncodeProfile lists the grams of one profile in sort order. Labels within
// the ancestor and sibling columns are space-separated; the placeholder
// prints as "*".
func EncodeProfile(fi model.FileInfo, pr *pqgram.Profile) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("file: %s", encodeValue(fi.Path)))
	parts = append(parts, fmt.Sprintf("language: %s", encodeValue(fi.Language)))
	parts = append(parts, encodeParams(model.Params{P: pr.P(), Q: pr.Q()})...)
	parts = append(parts, fmt.Sprintf("nodes: %d", fi.Nodes))

	var rows [][]string
	for _, g := range pr.All() {
		rows = append(rows, []string{joinLabels(g.Ancestors()), joinLabels(g.Siblings())})
	}
	parts = append(parts, formatTabular("grams", []string{"ancestors", "siblings"}, rows))

	return strings.Join(parts, "\n")
}

// EncodeNearest formats the files closest to fi. Each pair's B is the
// neighbour.
func EncodeNearest(fi model.FileInfo, params model.Params, pairs []model.Pair) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("file: %s", encodeValue(fi.Path)))
	parts = append(parts, fmt.Sprintf("language: %s", encodeValue(fi.Language)))
	parts = append(parts, encodeParams(params)...)

	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{p.B, fmt.Sprintf("%.4f", p.Distance), strconv.Itoa(p.Shared)}
	}
	parts = append(parts, formatTabular("nearest", []string{"path", "distance", "shared"}, rows))

	return strings.Join(parts, "\n")
}

func encodeParams(p model.Params) []string {
	return []string{fmt.Sprintf("p: %d", p.P), fmt.Sprintf("q: %d", p.Q)}
}

// joinLabels separates labels with spaces. The placeholder prints as a bare
// "*"; a label that could be confused with it or contains whitespace, quotes
// or backslashes is quoted, so every row splits back into its labels.
func joinLabels(labels []pqgram.Label) string {
	s := make([]string, len(labels))
	for i, l := range labels {
		switch {
		case l.IsPlaceholder():
			s[i] = "*"
		case l.Value() == "" || l.Value() == "*" || strings.ContainsAny(l.Value(), " \t\n\r\"\\"):
			s[i] = quote(l.Value())
		default:
			s[i] = l.Value()
		}
	}
	return strings.Join(s, " ")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}

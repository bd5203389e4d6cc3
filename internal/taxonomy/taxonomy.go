// Package taxonomy builds the label similarity tables the retrieval flows
// read: it gathers the label vocabularies from the reference data, embeds them
// through an embeddings provider and writes the cosine table as CSV.
package taxonomy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kamusis/studymatch/internal/catalog"
	"github.com/kamusis/studymatch/internal/embeddings"
	"github.com/kamusis/studymatch/internal/labels"
	"github.com/kamusis/studymatch/internal/profile"
	"github.com/kamusis/studymatch/internal/simtable"
	"github.com/kamusis/studymatch/internal/vecstore"
)

// Kind names one similarity table.
type Kind string

const (
	// Program is interests ∪ field tags on both axes.
	Program Kind = "program"
	// Core is interests ∪ field tags against the core clusters.
	Core Kind = "core"
	// Mentor is field tags ∪ expertise tags on both axes.
	Mentor Kind = "mentor"
)

// DefaultCoreClusters are the migration-aligned study areas used as the core
// table columns when none are given.
var DefaultCoreClusters = []string{
	"nursing", "education", "engineering", "information technology",
	"cyber security", "construction", "mining", "trades",
	"agriculture", "logistics", "health sciences",
}

// ParseKind validates a --kind value.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(labels.Normalize(s)); k {
	case Program, Core, Mentor:
		return k, nil
	default:
		return "", fmt.Errorf("unknown table kind %q (want program, core or mentor)", s)
	}
}

// Decimals is the rounding applied to each table's cells.
func (k Kind) Decimals() int {
	if k == Core {
		return 3
	}
	return 2
}

// Vocab returns the sorted (rows, cols) vocabularies of kind k.
func Vocab(k Kind, c *catalog.Catalog, students []profile.Student, clusters []string) (rows, cols []string, err error) {
	var words []string
	switch k {
	case Program, Core:
		for _, s := range students {
			words = append(words, s.InterestLabels()...)
		}
		for _, p := range c.Programs {
			words = append(words, p.Tags()...)
		}
	case Mentor:
		for _, p := range c.Programs {
			words = append(words, p.Tags()...)
		}
		for _, m := range c.Mentors {
			words = append(words, labels.Parse(m.ExpertiseTags)...)
		}
	default:
		return nil, nil, fmt.Errorf("unknown table kind %q", k)
	}
	rows = distinct(words, true)
	if len(rows) == 0 {
		return nil, nil, vecstore.ErrNoLabels
	}
	if k != Core {
		return rows, rows, nil
	}
	if len(clusters) == 0 {
		clusters = DefaultCoreClusters
	}
	var norm []string
	for _, cl := range clusters {
		norm = append(norm, labels.Normalize(cl))
	}
	return rows, distinct(norm, false), nil
}

// BuildOptions controls Build.
type BuildOptions struct {
	Kind Kind
	// Rows and Cols are the table vocabularies, usually from Vocab.
	Rows []string
	Cols []string
	// StoreDir caches label vectors between builds.
	StoreDir string
	// Out is the CSV file to write.
	Out   string
	Force bool
}

// Build embeds every label of both vocabularies and writes the similarity
// table to opts.Out. The vector store is rebuilt next to StoreDir and swapped
// in only after a successful build.
func Build(ctx context.Context, prov embeddings.Provider, opts BuildOptions) (*simtable.Table, error) {
	if opts.Out == "" || opts.StoreDir == "" {
		return nil, fmt.Errorf("output file and store dir are required")
	}
	tmp := opts.StoreDir + ".tmp"
	_ = os.RemoveAll(tmp)
	if !opts.Force {
		// Seed the temp dir with the current store so unchanged labels are reused.
		if old, err := vecstore.Load(opts.StoreDir); err == nil {
			if err := vecstore.Write(tmp, old); err != nil {
				return nil, err
			}
		}
	}

	words := append(append([]string(nil), opts.Rows...), opts.Cols...)
	store, err := vecstore.Build(ctx, prov, vecstore.BuildOptions{
		OutDir:    tmp,
		Labels:    words,
		Force:     opts.Force,
		Normalize: true,
	})
	if err != nil {
		_ = os.RemoveAll(tmp)
		return nil, fmt.Errorf("cannot embed %s labels: %w", opts.Kind, err)
	}
	if err := vecstore.AtomicSwap(tmp, opts.StoreDir); err != nil {
		return nil, fmt.Errorf("cannot replace label store %s: %w", opts.StoreDir, err)
	}

	t, err := simtable.FromVectors(store, opts.Rows, opts.Cols, opts.Kind.Decimals())
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(opts.Out), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", filepath.Dir(opts.Out), err)
	}
	if err := simtable.Write(opts.Out, t); err != nil {
		return nil, err
	}
	return t, nil
}

func distinct(in []string, sorted bool) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, w := range in {
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	if sorted {
		sort.Strings(out)
	}
	return out
}

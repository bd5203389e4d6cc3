package vecstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kamusis/studymatch/internal/embeddings"
	"github.com/kamusis/studymatch/internal/labels"
)

// BuildOptions controls label store building.
type BuildOptions struct {
	OutDir    string
	Labels    []string
	Force     bool
	Normalize bool
}

// Build embeds every distinct label and writes the store to OutDir.
//
// The build is incremental when an existing store in OutDir was written by
// the same model with the same dimension and normalization (unless Force is
// true): labels whose text hash is unchanged keep their stored vector. It is
// the caller's responsibility to apply an atomic swap strategy.
func Build(ctx context.Context, prov embeddings.Provider, opts BuildOptions) (*Store, error) {
	if opts.OutDir == "" {
		return nil, fmt.Errorf("out dir is required")
	}
	vocab := distinctSorted(opts.Labels)
	if len(vocab) == 0 {
		return nil, ErrNoLabels
	}

	reuse := map[string][]float32{}
	reusedDim := 0
	if old, err := Load(opts.OutDir); err == nil && !opts.Force && reusable(old.Manifest, prov, opts) {
		for _, e := range old.Labels {
			if e.TextHash != TextHash(e.Label) {
				continue
			}
			if v, ok := old.Vector(e.Label); ok {
				reuse[e.Label] = append([]float32(nil), v...)
			}
		}
		reusedDim = old.Manifest.Dim
	}

	var missing []string
	for _, l := range vocab {
		if _, ok := reuse[l]; !ok {
			missing = append(missing, l)
		}
	}
	if len(missing) > 0 {
		embs, err := embed(ctx, prov, missing)
		if err != nil {
			return nil, err
		}
		if len(reuse) > 0 && len(embs[0]) != reusedDim {
			// The model now returns a different dimension; nothing cached is usable.
			reuse = map[string][]float32{}
			missing = vocab
			if embs, err = embed(ctx, prov, vocab); err != nil {
				return nil, err
			}
		}
		for i, l := range missing {
			reuse[l] = embs[i]
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var (
		entries []LabelEntry
		vectors []float32
		dim     int
	)
	for _, l := range vocab {
		v := reuse[l]
		if dim == 0 {
			dim = len(v)
		}
		if len(v) != dim {
			return nil, fmt.Errorf("%w: label %q has dim %d want %d", ErrVectorLengthMismatch, l, len(v), dim)
		}
		if opts.Normalize {
			v = unit(v)
		}
		entries = append(entries, LabelEntry{Label: l, TextHash: TextHash(l), UpdatedAt: now})
		vectors = append(vectors, v...)
	}

	s, err := NewStore(Manifest{
		StoreVersion: StoreVersion,
		CreatedAt:    now,
		ModelID:      prov.ModelID(),
		Dim:          dim,
		Normalize:    opts.Normalize,
		VectorFile:   defaultVectorFile,
		LabelsFile:   defaultLabelsFile,
	}, entries, vectors)
	if err != nil {
		return nil, err
	}
	if err := Write(opts.OutDir, s); err != nil {
		return nil, err
	}
	return s, nil
}

func embed(ctx context.Context, prov embeddings.Provider, texts []string) ([][]float32, error) {
	embs, err := prov.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embs) != len(texts) {
		return nil, fmt.Errorf("provider returned %d vectors for %d labels", len(embs), len(texts))
	}
	return embs, nil
}

// reusable reports whether vectors in a store described by m can stand in
// for fresh embeddings from prov. A provider that does not know its
// dimension yet reports 0 and is checked against the embedded vectors.
func reusable(m Manifest, prov embeddings.Provider, opts BuildOptions) bool {
	if m.ModelID != prov.ModelID() || m.Normalize != opts.Normalize {
		return false
	}
	return prov.Dim() == 0 || prov.Dim() == m.Dim
}

// AtomicSwap replaces destDir with srcDir by renaming.
func AtomicSwap(srcDir, destDir string) error {
	if err := os.MkdirAll(filepath.Dir(destDir), 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		// rollback best-effort
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}

func distinctSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, l := range in {
		l = labels.Normalize(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

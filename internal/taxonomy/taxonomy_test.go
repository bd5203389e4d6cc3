package taxonomy

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kamusis/studymatch/internal/catalog"
	"github.com/kamusis/studymatch/internal/profile"
	"github.com/kamusis/studymatch/internal/simtable"
)

type mapProvider struct {
	vecs  map[string][]float32
	calls int
}

func (p *mapProvider) ModelID() string { return "test:map" }
func (p *mapProvider) Dim() int        { return 2 }

func (p *mapProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	p.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := p.vecs[t]
		if !ok {
			v = []float32{0, 0}
		}
		out[i] = v
	}
	return out, nil
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" Mentor "); err != nil || k != Mentor {
		t.Fatalf("ParseKind: %v %v", k, err)
	}
	if _, err := ParseKind("students"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestVocab(t *testing.T) {
	c, err := catalog.Load("../../testdata/data", catalog.DefaultFiles())
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	students := []profile.Student{{Interests: "Marine Biology; AI"}}

	rows, cols, err := Vocab(Program, c, students, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ai", "data science", "marine biology", "nursing", "public health", "robotics", "statistics"}
	if !reflect.DeepEqual(rows, want) || !reflect.DeepEqual(cols, want) {
		t.Fatalf("program vocab = %v / %v", rows, cols)
	}

	rows, cols, err = Vocab(Core, c, students, []string{"Nursing", "Data Science", "nursing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(want) || !reflect.DeepEqual(cols, []string{"nursing", "data science"}) {
		t.Fatalf("core vocab = %v / %v", rows, cols)
	}

	_, cols, _ = Vocab(Core, c, students, nil)
	if len(cols) != len(DefaultCoreClusters) {
		t.Fatalf("expected default clusters, got %v", cols)
	}

	rows, _, err = Vocab(Mentor, c, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rows, []string{"ai", "data science", "machine learning", "nursing", "public health", "robotics", "statistics"}) {
		t.Fatalf("mentor vocab = %v", rows)
	}
}

func TestBuild_WritesCosineTable(t *testing.T) {
	dir := t.TempDir()
	prov := &mapProvider{vecs: map[string][]float32{
		"ai":               {1, 0},
		"machine learning": {1, 1},
		"nursing":          {0, 1},
	}}
	out := filepath.Join(dir, "taxonomy", "label_matrix_mentor.csv")
	opts := BuildOptions{
		Kind:     Mentor,
		Rows:     []string{"ai", "machine learning", "nursing"},
		Cols:     []string{"ai", "machine learning", "nursing"},
		StoreDir: filepath.Join(dir, "store"),
		Out:      out,
	}
	if _, err := Build(context.Background(), prov, opts); err != nil {
		t.Fatalf("Build: %v", err)
	}

	tbl, err := simtable.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cases := []struct {
		row, col string
		want     float64
	}{
		{"ai", "ai", 1},
		{"ai", "machine learning", 0.71},
		{"ai", "nursing", 0},
		{"nursing", "machine learning", 0.71},
	}
	for _, c := range cases {
		if got := tbl.Lookup(c.row, c.col); got != c.want {
			t.Fatalf("Lookup(%q, %q) = %v, want %v", c.row, c.col, got, c.want)
		}
	}

	// A second build reuses the stored vectors.
	if _, err := Build(context.Background(), prov, opts); err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if prov.calls != 1 {
		t.Fatalf("expected cached vectors on rebuild, provider called %d times", prov.calls)
	}

	opts.Force = true
	if _, err := Build(context.Background(), prov, opts); err != nil {
		t.Fatalf("forced Build: %v", err)
	}
	if prov.calls != 2 {
		t.Fatalf("force should re-embed, provider called %d times", prov.calls)
	}
}

func TestBuild_RequiresPaths(t *testing.T) {
	if _, err := Build(context.Background(), &mapProvider{}, BuildOptions{Kind: Program}); err == nil {
		t.Fatalf("expected error without output paths")
	}
}

package simtable

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kamusis/studymatch/internal/vecstore"
)

func TestLookup_MissingPairIsZero(t *testing.T) {
	tbl, err := New([]string{"ai"}, []string{"robotics"}, [][]float64{{0.2}})
	if err != nil {
		t.Fatal(err)
	}
	if got := tbl.Lookup("ai", "robotics"); got != 0.2 {
		t.Fatalf("Lookup(ai, robotics) = %v", got)
	}
	if got := tbl.Lookup("ai", "nursing"); got != 0 {
		t.Fatalf("unknown column must be 0, got %v", got)
	}
	if got := tbl.Lookup("law", "robotics"); got != 0 {
		t.Fatalf("unknown row must be 0, got %v", got)
	}
	var nilTable *Table
	if got := nilTable.Lookup("ai", "robotics"); got != 0 {
		t.Fatalf("nil table must be 0, got %v", got)
	}
}

func TestLookup_PreservesAsymmetry(t *testing.T) {
	tbl, err := New([]string{"a", "b"}, []string{"a", "b"}, [][]float64{{1, 0.9}, {0.1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Lookup("a", "b") == tbl.Lookup("b", "a") {
		t.Fatalf("table orientation must be preserved")
	}
}

func TestNew_ClampsAndRejectsDuplicates(t *testing.T) {
	tbl, err := New([]string{"x"}, []string{"y", "z"}, [][]float64{{1.5, -0.2}})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Lookup("x", "y") != 1 || tbl.Lookup("x", "z") != 0 {
		t.Fatalf("values must be clamped to [0,1]")
	}
	if _, err := New([]string{"x", "X"}, []string{"y"}, [][]float64{{1}, {1}}); err == nil {
		t.Fatalf("expected duplicate label error")
	}
}

func TestRead_LabelMatrixCSV(t *testing.T) {
	in := "\ufeff,AI,Robotics\nai,1.0,0.2\nData Science,0.5,\n"
	tbl, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if r, c := tbl.Shape(); r != 2 || c != 2 {
		t.Fatalf("unexpected shape %dx%d", r, c)
	}
	if got := tbl.Lookup("data science", "ai"); got != 0.5 {
		t.Fatalf("Lookup(data science, ai) = %v", got)
	}
	if got := tbl.Lookup("data science", "robotics"); got != 0 {
		t.Fatalf("empty cell must read as 0, got %v", got)
	}
}

func TestRead_RejectsNonNumeric(t *testing.T) {
	if _, err := Read(strings.NewReader(",a\nx,high\n")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	tbl, _ := New([]string{"ai"}, []string{"nursing", "law"}, [][]float64{{0.12, 0.5}})
	p := filepath.Join(t.TempDir(), "label_matrix.csv")
	if err := Write(p, tbl); err != nil {
		t.Fatal(err)
	}
	got, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if got.Lookup("ai", "law") != 0.5 {
		t.Fatalf("round trip lost values")
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatal(err)
	}
}

func TestFromVectors(t *testing.T) {
	store, err := vecstore.NewStore(vecstore.Manifest{Dim: 2},
		[]vecstore.LabelEntry{{Label: "ai"}, {Label: "robotics"}, {Label: "law"}},
		[]float32{1, 0, 1, 1, -1, 0})
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := FromVectors(store, []string{"ai", "unknown"}, []string{"ai", "robotics", "law"}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := tbl.Lookup("ai", "ai"); got != 1 {
		t.Fatalf("self similarity = %v", got)
	}
	if got := tbl.Lookup("ai", "robotics"); got != 0.71 {
		t.Fatalf("cos 45deg rounded = %v, want 0.71", got)
	}
	if got := tbl.Lookup("ai", "law"); got != 0 {
		t.Fatalf("negative cosine must clip to 0, got %v", got)
	}
	if got := tbl.Lookup("unknown", "ai"); got != 0 {
		t.Fatalf("label without vector must be 0, got %v", got)
	}
}

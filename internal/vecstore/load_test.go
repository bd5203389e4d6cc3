package vecstore

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
)

func TestLoad_StoreHappyPath(t *testing.T) {
	dir := t.TempDir()
	m := Manifest{
		StoreVersion: 1,
		CreatedAt:    "2026-01-01T00:00:00Z",
		ModelID:      "openai:test",
		Dim:          2,
		Normalize:    true,
		VectorFile:   "vectors.f32",
		LabelsFile:   "labels.jsonl",
	}
	mb, _ := json.Marshal(m)
	if err := os.WriteFile(filepath.Join(dir, manifestFile), mb, 0o644); err != nil {
		t.Fatal(err)
	}

	var lines []byte
	for _, l := range []string{"ai", "robotics"} {
		b, _ := json.Marshal(LabelEntry{Label: l, TextHash: TextHash(l)})
		lines = append(lines, b...)
		lines = append(lines, '\n')
	}
	if err := os.WriteFile(filepath.Join(dir, "labels.jsonl"), lines, 0o644); err != nil {
		t.Fatal(err)
	}

	vf, err := os.Create(filepath.Join(dir, "vectors.f32"))
	if err != nil {
		t.Fatal(err)
	}
	if err := binary.Write(vf, binary.LittleEndian, []float32{1, 0, 0, 1}); err != nil {
		_ = vf.Close()
		t.Fatal(err)
	}
	_ = vf.Close()

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Labels) != 2 || len(s.Vectors) != 4 {
		t.Fatalf("unexpected store shape: %d labels, %d floats", len(s.Labels), len(s.Vectors))
	}
	v, ok := s.Vector("robotics")
	if !ok || v[0] != 0 || v[1] != 1 {
		t.Fatalf("unexpected vector for robotics: %v", v)
	}
}

func TestLoad_SizeMismatch(t *testing.T) {
	dir := t.TempDir()
	mb, _ := json.Marshal(Manifest{Dim: 3})
	_ = os.WriteFile(filepath.Join(dir, manifestFile), mb, 0o644)
	_ = os.WriteFile(filepath.Join(dir, defaultLabelsFile), []byte(`{"label":"ai"}`+"\n"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, defaultVectorFile), []byte{0, 0, 0, 0}, 0o644)

	if _, err := Load(dir); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}

func writeStore(t *testing.T, dir string, m Manifest, names []string, vectors []float32) {
	t.Helper()
	mb, _ := json.Marshal(m)
	if err := os.WriteFile(filepath.Join(dir, manifestFile), mb, 0o644); err != nil {
		t.Fatal(err)
	}
	var lines []byte
	for _, l := range names {
		b, _ := json.Marshal(LabelEntry{Label: l, TextHash: TextHash(l)})
		lines = append(append(lines, b...), '\n')
	}
	if err := os.WriteFile(filepath.Join(dir, defaultLabelsFile), lines, 0o644); err != nil {
		t.Fatal(err)
	}
	raw := make([]byte, 4*len(vectors))
	for i, v := range vectors {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	if err := os.WriteFile(filepath.Join(dir, defaultVectorFile), raw, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_RejectsDuplicateLabels(t *testing.T) {
	dir := t.TempDir()
	writeStore(t, dir, Manifest{Dim: 2}, []string{"ai", "ai"}, []float32{1, 0, 0, 1})

	_, err := Load(dir)
	if !errors.Is(err, ErrDuplicateLabel) {
		t.Fatalf("expected ErrDuplicateLabel, got %v", err)
	}
}

func TestLoad_RejectsNonNormalizedLabels(t *testing.T) {
	for _, l := range []string{"Robotics", " ai", ""} {
		dir := t.TempDir()
		writeStore(t, dir, Manifest{Dim: 2}, []string{l}, []float32{1, 0})

		if _, err := Load(dir); !errors.Is(err, ErrLabelNotNormalized) {
			t.Fatalf("label %q: expected ErrLabelNotNormalized, got %v", l, err)
		}
	}
}

func TestLoad_RejectsNonUnitRowsInNormalizedStore(t *testing.T) {
	dir := t.TempDir()
	writeStore(t, dir, Manifest{Dim: 2, Normalize: true}, []string{"ai"}, []float32{3, 4})

	if _, err := Load(dir); !errors.Is(err, ErrNotUnitLength) {
		t.Fatalf("expected ErrNotUnitLength, got %v", err)
	}
}

func TestLoad_IndexesEveryLabel(t *testing.T) {
	dir := t.TempDir()
	names := []string{"ai", "law", "nursing", "robotics"}
	var vectors []float32
	for i := range names {
		vectors = append(vectors, float32(i), 1)
	}
	writeStore(t, dir, Manifest{Dim: 2}, names, vectors)

	s, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i, l := range names {
		v, ok := s.Vector(l)
		if !ok || v[0] != float32(i) {
			t.Fatalf("Vector(%q) = %v, %v", l, v, ok)
		}
	}
	if _, ok := s.Vector("Law"); ok {
		t.Fatalf("lookup is exact on the normalized label")
	}
}

package match

import (
	"reflect"
	"testing"

	"github.com/kamusis/studymatch/internal/simtable"
)

func scenarioTable(t *testing.T) *simtable.Table {
	t.Helper()
	tbl, err := simtable.New(
		[]string{"ai", "data science"},
		[]string{"ai", "robotics"},
		[][]float64{{1.0, 0.2}, {0.5, 0.0}},
	)
	if err != nil {
		t.Fatalf("simtable.New: %v", err)
	}
	return tbl
}

func TestLabelMatch_ScenarioA(t *testing.T) {
	got := LabelMatchCells("ai;data science", "ai;robotics", scenarioTable(t))
	// 1.7/4 is stored just below 0.425.
	if got != 0.42 {
		t.Fatalf("LabelMatch = %v, want 0.42", got)
	}
}

func TestLabelMatch_ExactTieRoundsToEven(t *testing.T) {
	tbl, err := simtable.New([]string{"a", "b"}, []string{"x", "y", "z", "w"}, [][]float64{{1, 0, 0, 0}, {0, 0, 0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	// One hit over 2x4 pairs is exactly 0.125.
	if got := LabelMatch([]string{"a", "b"}, []string{"x", "y", "z", "w"}, tbl); got != 0.12 {
		t.Fatalf("LabelMatch = %v, want 0.12", got)
	}
}

func TestRound(t *testing.T) {
	cases := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{0.125, 2, 0.12},
		{0.375, 2, 0.38},
		{2.675, 2, 2.67},
		{0.8500000000000001, 2, 0.85},
		{0.44999999999999996, 2, 0.45},
		{0.81235, 4, 0.8124},
		{0.5, 0, 0},
		{1.5, 0, 2},
	}
	for _, c := range cases {
		if got := Round(c.v, c.decimals); got != c.want {
			t.Fatalf("Round(%v, %d) = %v, want %v", c.v, c.decimals, got, c.want)
		}
	}
}

func TestLabelMatch_EmptyLists(t *testing.T) {
	tbl := scenarioTable(t)
	if got := LabelMatchCells("", "ai", tbl); got != 0 {
		t.Fatalf("empty interests should score 0, got %v", got)
	}
	if got := LabelMatchCells("ai", " ; ", tbl); got != 0 {
		t.Fatalf("empty tags should score 0, got %v", got)
	}
	if got := LabelMatch(nil, nil, nil); got != 0 {
		t.Fatalf("nil everything should score 0, got %v", got)
	}
}

func TestLabelMatch_UnknownLabelsContributeZero(t *testing.T) {
	got := LabelMatchCells("ai;quantum", "ai", scenarioTable(t))
	if got != 0.5 {
		t.Fatalf("LabelMatch = %v, want 0.5", got)
	}
}

func TestLabelMatch_AsymmetryPreserved(t *testing.T) {
	tbl, err := simtable.New(
		[]string{"a", "b"},
		[]string{"a", "b"},
		[][]float64{{1, 0.9}, {0.1, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	ab := LabelMatchCells("a", "b", tbl)
	ba := LabelMatchCells("b", "a", tbl)
	if ab != 0.9 || ba != 0.1 {
		t.Fatalf("orientation lost: a->b=%v b->a=%v", ab, ba)
	}
}

func TestLabelMatch_DuplicatesCounted(t *testing.T) {
	tbl := scenarioTable(t)
	// [ai, ai] x [robotics]: (0.2+0.2)/2 = 0.2; [ai, data science] x [robotics] = 0.1
	if got := LabelMatchCells("ai;ai", "robotics", tbl); got != 0.2 {
		t.Fatalf("duplicate interests = %v, want 0.2", got)
	}
	// [ai] x [ai, ai, robotics]: (1+1+0.2)/3 = 0.73, not the deduplicated 0.6
	if got := LabelMatchCells("ai", "ai;ai;robotics", tbl); got != 0.73 {
		t.Fatalf("duplicate tags = %v, want 0.73", got)
	}
}

func TestLabelMatch_Bounded(t *testing.T) {
	tbl := scenarioTable(t)
	cells := []string{"", "ai", "ai;data science", "robotics;ai;ai", "unknown"}
	for _, a := range cells {
		for _, b := range cells {
			if v := LabelMatchCells(a, b, tbl); v < 0 || v > 1 {
				t.Fatalf("LabelMatch(%q,%q) = %v out of range", a, b, v)
			}
		}
	}
}

func TestRankWeight(t *testing.T) {
	cases := []struct {
		match         float64
		rank, maxRank int
		want          float64
	}{
		{1.0, 1, 100, 1.0},
		{1.0, 100, 100, 0.0},
		{0.8, 50, 100, 0.41},
		{0.8, 0, 100, 0.0},
		{0.8, 150, 100, 0.0},
		{0.5, 1, 1, 0.5},
		{0.5, 52, 100, 0.24},
		{0.9, 2, 0, 0.0},
	}
	for _, c := range cases {
		if got := RankWeight(c.match, c.rank, c.maxRank); got != c.want {
			t.Fatalf("RankWeight(%v,%d,%d) = %v, want %v", c.match, c.rank, c.maxRank, got, c.want)
		}
	}
}

func TestEffectiveTuition_ScenarioD(t *testing.T) {
	got := EffectiveTuition(30000, 0.2, 3.5, 3.6)
	if got.Reduction != 6000 || got.Effective != 24000 {
		t.Fatalf("gpa 3.6: %+v", got)
	}
	got = EffectiveTuition(30000, 0.2, 3.5, 3.0)
	if got.Reduction != 0 || got.Effective != 30000 {
		t.Fatalf("gpa 3.0: %+v", got)
	}
	got = EffectiveTuition(30000, 0, 0, 4.0)
	if got.Reduction != 0 || got.Effective != 30000 {
		t.Fatalf("no scholarship: %+v", got)
	}
}

func TestOverlapStrategy(t *testing.T) {
	interests := []string{"ai", "data science"}
	items := []Item{
		{Interests: interests, Tags: []string{"ai", "robotics"}, Rank: 1},
		{Interests: interests, Tags: []string{"data science", "ai"}, Rank: 50},
		{Interests: interests, Tags: []string{"nursing"}, Rank: 100},
	}
	got := DefaultOverlap().Score(items)
	want := []float64{0.7, 0.8, 0}
	for i := range want {
		if got[i].Relevance != want[i] || got[i].Composite != want[i] {
			t.Fatalf("item %d: %+v, want relevance %v", i, got[i], want[i])
		}
	}

	single := DefaultOverlap().Score(items[:1])
	if single[0].Relevance != 0.3 {
		t.Fatalf("degenerate rank range should drop the rank term, got %v", single[0].Relevance)
	}
}

func TestPairwiseStrategy(t *testing.T) {
	s := PairwiseStrategy{Table: scenarioTable(t), MaxRank: 100}
	got := s.Score([]Item{{Interests: []string{"ai", "data science"}, Tags: []string{"ai", "robotics"}, Rank: 50}})
	if got[0].LabelMatch != 0.42 || got[0].Weight != 0.21 || got[0].Composite != got[0].Weight {
		t.Fatalf("unexpected score: %+v", got[0])
	}
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy("overlap", nil, 0, 0.5, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if o := s.(OverlapStrategy); o.WInterest != 0.5 || o.WRank != 0.5 {
		t.Fatalf("weights not applied: %+v", o)
	}
	if _, err := NewStrategy("bogus", nil, 0, 0, 0); err == nil {
		t.Fatalf("expected an error for an unknown strategy")
	}
}

func TestSortByKey_TieBreaks(t *testing.T) {
	rows := []Key{
		{Score: 0.5, StudentID: "S2", GroupID: "P1"},
		{Score: 0.9, StudentID: "S9", GroupID: "P3"},
		{Score: 0.5, StudentID: "S1", GroupID: "P10"},
		{Score: 0.5, StudentID: "S1", GroupID: "P2"},
	}
	SortByKey(rows, func(k Key) Key { return k })
	var got []string
	for _, r := range rows {
		got = append(got, r.StudentID+"/"+r.GroupID)
	}
	want := []string{"S9/P3", "S1/P2", "S1/P10", "S2/P1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestCompareIDs(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"P2", "P10", -1},
		{"P10", "P2", 1},
		{"P2", "P2", 0},
		{"A", "B", -1},
		{"P02", "P2", 1},
		{"P1a", "P1b", -1},
		{"P", "P1", -1},
	}
	for _, c := range cases {
		if got := CompareIDs(c.a, c.b); got != c.want {
			t.Fatalf("CompareIDs(%q,%q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

type row struct {
	group string
	score float64
}

func TestTopK_GroupSizes(t *testing.T) {
	var rows []row
	for i, n := range []int{5, 2, 7} {
		g := []string{"B", "A", "C"}[i]
		for j := 0; j < n; j++ {
			rows = append(rows, row{group: g, score: float64(j)})
		}
	}
	out := TopK(rows, func(r row) string { return r.group }, func(r row) float64 { return r.score }, 3)

	var order []string
	sizes := map[string]int{}
	for _, r := range out {
		if len(order) == 0 || order[len(order)-1] != r.group {
			order = append(order, r.group)
		}
		sizes[r.group]++
	}
	if !reflect.DeepEqual(order, []string{"B", "A", "C"}) {
		t.Fatalf("group order = %v", order)
	}
	if sizes["B"] != 3 || sizes["A"] != 2 || sizes["C"] != 3 {
		t.Fatalf("group sizes = %v", sizes)
	}
	if out[0].score != 4 || out[1].score != 3 {
		t.Fatalf("rows inside a group should be sorted by score desc: %+v", out[:3])
	}
}

func TestTopK_StableWithinGroup(t *testing.T) {
	type tagged struct {
		row
		id int
	}
	rows := []tagged{{row{"G", 1}, 1}, {row{"G", 1}, 2}, {row{"G", 2}, 3}}
	out := TopK(rows, func(r tagged) string { return r.group }, func(r tagged) float64 { return r.score }, 0)
	if len(out) != 3 || out[0].id != 3 || out[1].id != 1 || out[2].id != 2 {
		t.Fatalf("unexpected: %+v", out)
	}
}

func TestHead(t *testing.T) {
	if got := Head([]int{1, 2, 3}, 2); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("Head = %v", got)
	}
	if got := Head([]int{1, 2}, 0); len(got) != 2 {
		t.Fatalf("Head with n=0 should keep all rows")
	}
}

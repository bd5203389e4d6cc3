package retrieval

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kamusis/studymatch/internal/artifact"
	"github.com/kamusis/studymatch/internal/catalog"
	"github.com/kamusis/studymatch/internal/match"
	"github.com/kamusis/studymatch/internal/model"
	"github.com/kamusis/studymatch/internal/profile"
	"github.com/kamusis/studymatch/internal/simtable"
)

const (
	dataDir     = "../../testdata/data"
	taxonomyDir = "../../testdata/taxonomy"
	studentsDir = "../../testdata/students"
)

func newEngine(t *testing.T, models Models) *Engine {
	t.Helper()
	c, err := catalog.Load(dataDir, catalog.DefaultFiles())
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	load := func(name string) *simtable.Table {
		tbl, err := simtable.Load(taxonomyDir + "/" + name)
		if err != nil {
			t.Fatalf("simtable.Load(%s): %v", name, err)
		}
		return tbl
	}
	return New(c, Tables{
		Program: load("label_matrix_program.csv"),
		Core:    load("label_matrix_core.csv"),
		Mentor:  load("label_matrix_mentor.csv"),
	}, models)
}

func loadStudent(t *testing.T, name string) profile.Student {
	t.Helper()
	s, err := profile.LoadFile(studentsDir + "/" + name)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return s
}

func programIDs(rows []artifact.ProgramRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ProgramID)
	}
	return out
}

func TestPrograms_Pairwise(t *testing.T) {
	e := newEngine(t, Models{})
	res, err := e.Programs(Request{Student: loadStudent(t, "s001.json"), TopN: 3})
	if err != nil {
		t.Fatalf("Programs: %v", err)
	}
	if res.Eligible != 3 || res.Core != nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := programIDs(res.Rows); !reflect.DeepEqual(got, []string{"P1", "P2", "P4"}) {
		t.Fatalf("order = %v", got)
	}

	p1, p2, p4 := res.Rows[0], res.Rows[1], res.Rows[2]
	if p1.LabelMatch != 0.78 || p1.Weight != 0.78 || p1.PredLabelMatch != 0.78 {
		t.Fatalf("P1 scores: %+v", p1)
	}
	if p1.ScholarshipReduction != 6000 || p1.EffectiveTuition != 24000 || p1.DesignatedRegional {
		t.Fatalf("P1 tuition: %+v", p1)
	}
	if p2.LabelMatch != 0.42 || p2.Weight != 0.21 || !p2.DesignatedRegional {
		t.Fatalf("P2 scores: %+v", p2)
	}
	if p4.LabelMatch != 0.65 || p4.Weight != 0 || p4.EffectiveTuition != 18000 {
		t.Fatalf("P4 scores: %+v", p4)
	}
	if p1.Interests != "ai;data science" || p1.FieldTags != "ai;data science" || p1.InstitutionName != "Harbour University" {
		t.Fatalf("P1 display fields: %+v", p1)
	}
}

func TestPrograms_TopN(t *testing.T) {
	e := newEngine(t, Models{})
	res, err := e.Programs(Request{Student: loadStudent(t, "s001.json"), TopN: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Eligible != 3 || len(res.Rows) != 1 || res.Rows[0].ProgramID != "P1" {
		t.Fatalf("unexpected: %+v", res)
	}
}

func TestPrograms_Overlap(t *testing.T) {
	e := newEngine(t, Models{})
	s, _ := match.NewStrategy(match.Overlap, nil, 0, 0, 0)
	res, err := e.Programs(Request{Student: loadStudent(t, "s001.json"), Strategy: s})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{"P1": 1.0, "P2": 0.5, "P4": 0.3}
	for _, r := range res.Rows {
		if r.Relevance != want[r.ProgramID] || r.PredLabelMatch != r.Relevance {
			t.Fatalf("%s relevance = %v, want %v", r.ProgramID, r.Relevance, want[r.ProgramID])
		}
	}
}

func TestPrograms_BudgetAndMigration(t *testing.T) {
	e := newEngine(t, Models{})
	s := loadStudent(t, "s002.json")

	res, err := e.Programs(Request{Student: s, TopN: 3})
	if err != nil {
		t.Fatal(err)
	}
	if got := programIDs(res.Rows); !reflect.DeepEqual(got, []string{"P4"}) {
		t.Fatalf("budget 25000 should leave only P4, got %v", got)
	}
	if !res.Rows[0].StudentMigration || res.Rows[0].LabelMatch != 0.85 {
		t.Fatalf("unexpected row: %+v", res.Rows[0])
	}
}

func TestPrograms_ViaCore(t *testing.T) {
	e := newEngine(t, Models{})
	res, err := e.Programs(Request{Student: loadStudent(t, "s002.json"), TopN: 3, ViaCore: true, CoreTopN: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Core) != 3 || res.Core[0].CoreProgram != "data science" || res.Core[0].ProgramMatch != 0.9 {
		t.Fatalf("unexpected core ranking: %+v", res.Core)
	}
	if res.Eligible != 1 || res.Rows[0].ProgramID != "P4" {
		t.Fatalf("unexpected programs: %+v", res)
	}

	// Students without migration interest skip the core stage.
	res, err = e.Programs(Request{Student: loadStudent(t, "s001.json"), ViaCore: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Core != nil || res.Eligible != 3 {
		t.Fatalf("core stage should be skipped: %+v", res)
	}
}

func TestPrograms_NoSurvivorsIsNotAnError(t *testing.T) {
	e := newEngine(t, Models{})
	s := loadStudent(t, "s001.json")
	s.DegreeGoal = "Diploma"
	res, err := e.Programs(Request{Student: s})
	if err != nil {
		t.Fatalf("Programs: %v", err)
	}
	if len(res.Rows) != 0 || res.Eligible != 0 {
		t.Fatalf("expected no rows, got %+v", res)
	}
}

func TestPrograms_InvalidStudent(t *testing.T) {
	e := newEngine(t, Models{})
	_, err := e.Programs(Request{Student: profile.Student{StudentID: "S1"}})
	var verr *profile.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPrograms_Idempotent(t *testing.T) {
	e := newEngine(t, Models{})
	req := Request{Student: loadStudent(t, "s001.json"), TopN: 3}
	a, _ := e.Programs(req)
	b, _ := e.Programs(req)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("results differ between runs")
	}
}

func TestPrograms_ModelRefinesOrder(t *testing.T) {
	// A model that only likes robotics flips P2 to the top.
	pair, err := model.Bundle{
		LeftVocab:  []string{"ai"},
		RightVocab: []string{"robotics", "statistics"},
		Weights:    []float64{0, 0.9, 0.1},
	}.Pair()
	if err != nil {
		t.Fatal(err)
	}
	e := newEngine(t, Models{Program: pair})
	res, err := e.Programs(Request{Student: loadStudent(t, "s001.json")})
	if err != nil {
		t.Fatal(err)
	}
	if got := programIDs(res.Rows); !reflect.DeepEqual(got, []string{"P2", "P4", "P1"}) {
		t.Fatalf("order = %v", got)
	}
	if res.Rows[0].PredLabelMatch != 0.9 || res.Rows[0].LabelMatch != 0.42 {
		t.Fatalf("unexpected top row: %+v", res.Rows[0])
	}
}

func TestProgramsBatch(t *testing.T) {
	e := newEngine(t, Models{})
	students := []profile.Student{loadStudent(t, "s002.json"), loadStudent(t, "s001.json")}
	rows, _, err := e.ProgramsBatch(students, Request{TopN: 2})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, r := range rows {
		got = append(got, r.StudentID+"/"+r.ProgramID)
	}
	// Scores: S001/P1 .78, S001/P2 .22, S002/P4 0.
	if want := []string{"S001/P1", "S001/P2", "S002/P4"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("batch order = %v, want %v", got, want)
	}
}

func TestCore(t *testing.T) {
	e := newEngine(t, Models{})
	rows, err := e.Core(loadStudent(t, "s001.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, r := range rows {
		got = append(got, r.CoreProgram)
	}
	// ai;data science vs data science: (0.8+0.9)/2, robotics: (0.7+0.1)/2, nursing: 0
	if !reflect.DeepEqual(got, []string{"data science", "robotics", "nursing"}) {
		t.Fatalf("core order = %v", got)
	}
	if rows[0].ProgramMatch != 0.85 || rows[1].ProgramMatch != 0.4 || rows[2].ProgramMatch != 0 {
		t.Fatalf("core scores: %+v", rows)
	}
}

func mentorPairs(rows []artifact.MentorRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ProgramID+"/"+r.MentorID)
	}
	return out
}

func s001Programs(t *testing.T, e *Engine) []artifact.ProgramRow {
	t.Helper()
	res, err := e.Programs(Request{Student: loadStudent(t, "s001.json"), TopN: 3})
	if err != nil {
		t.Fatal(err)
	}
	return res.Rows
}

func TestMentors_TopProgramsAndPerProgram(t *testing.T) {
	e := newEngine(t, Models{})
	rows := e.Mentors(MentorRequest{Programs: s001Programs(t, e), TopPrograms: 2, PerProgram: 2})
	if got := mentorPairs(rows); !reflect.DeepEqual(got, []string{"P1/M1", "P1/M3", "P2/M2", "P2/M1"}) {
		t.Fatalf("mentors = %v", got)
	}
	if rows[0].LabelMatch != 0.75 || rows[2].LabelMatch != 0.7 {
		t.Fatalf("mentor scores: %+v", rows)
	}
	if rows[0].Languages != "english;mandarin" || rows[0].YearsExperience != 8 {
		t.Fatalf("mentor fields: %+v", rows[0])
	}
}

func TestMentors_GroupOrderIsFirstSeen(t *testing.T) {
	e := newEngine(t, Models{})
	rows := e.Mentors(MentorRequest{Programs: s001Programs(t, e), TopPrograms: 3, PerProgram: 2})
	want := []string{"P4/M3", "P4/M1", "P1/M1", "P1/M3", "P2/M2", "P2/M1"}
	if got := mentorPairs(rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("mentors = %v, want %v", got, want)
	}
}

func TestMentors_LanguageFilter(t *testing.T) {
	e := newEngine(t, Models{})
	rows := e.Mentors(MentorRequest{Programs: s001Programs(t, e), Language: "hindi", PerProgram: 3})
	if got := mentorPairs(rows); !reflect.DeepEqual(got, []string{"P4/M3", "P1/M3", "P2/M3"}) {
		t.Fatalf("mentors = %v", got)
	}
}

func TestMentors_DuplicateProgramsCollapse(t *testing.T) {
	e := newEngine(t, Models{})
	progs := s001Programs(t, e)
	dup := append(append([]artifact.ProgramRow{}, progs...), progs[0])
	dup[len(dup)-1].StudentID = "S999"
	rows := e.Mentors(MentorRequest{Programs: dup, TopPrograms: 1, PerProgram: 1})
	if got := mentorPairs(rows); !reflect.DeepEqual(got, []string{"P1/M1"}) {
		t.Fatalf("mentors = %v", got)
	}
}

func TestEngineStrategy(t *testing.T) {
	e := newEngine(t, Models{})
	s, err := e.Strategy("overlap", 0.5, 0.5)
	if err != nil || s.Name() != match.Overlap {
		t.Fatalf("Strategy: %v %v", s, err)
	}
	if _, err := e.Strategy("bm25", 0, 0); err == nil {
		t.Fatalf("expected unknown strategy error")
	}
}

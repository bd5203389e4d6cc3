package catalog

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
)

// Files names every reference table inside a data directory. Scholarships
// and RegionalArea are optional; a file that does not exist is skipped.
type Files struct {
	Programs     string
	Requirements string
	Institutions string
	Mentors      string
	Scholarships string
	RegionalArea string
}

// DefaultFiles returns the conventional file names.
func DefaultFiles() Files {
	return Files{
		Programs:     "programs.csv",
		Requirements: "program_requirements.csv",
		Institutions: "institutions.csv",
		Mentors:      "mentors.csv",
		Scholarships: "scholarships.csv",
		RegionalArea: "regional_area.csv",
	}
}

var (
	programColsRequired = []column{
		col("program_id"),
		col("program_name", "name"),
		col("institution_id"),
		col("degree_level"),
		col("field_tags"),
	}
	programColsOptional = []column{
		col("tuition_per_year", "tuition_aud_per_year"),
		col("is_migration_aligned"),
	}
	requirementColsRequired = []column{
		col("program_id"),
		col("min_gpa", "min_gpa_std_4"),
		col("english_required_type"),
		col("english_min_score", "english_min_overall"),
	}
	institutionColsRequired = []column{
		col("institution_id"),
		col("name", "institution_name"),
		col("overall_rank", "overall_ranking", "rank"),
	}
	institutionColsOptional = []column{
		col("location", "locations", "city"),
		col("website"),
		col("tuition_low", "tuition_fee_low"),
		col("tuition_high", "tuition_fee_up", "tuition_fee_high"),
		col("scholarship_percent"),
		col("scholarship_gpa_threshold"),
	}
	scholarshipColsRequired = []column{
		col("institution_id"),
		col("scholarship_percent"),
		col("scholarship_gpa_threshold"),
	}
	mentorColsRequired = []column{
		col("mentor_id"),
		col("expertise_tags"),
	}
	mentorColsOptional = []column{
		col("languages"),
		col("education_background"),
		col("years_experience"),
	}
	regionalColsRequired = []column{col("city")}
)

// Load reads every table under dir and joins programs with their
// requirement and institution. Programs without a requirement or a known
// institution are dropped (inner join) and counted in Catalog.Skipped.
func Load(dir string, files Files) (*Catalog, error) {
	def := DefaultFiles()
	pick := func(name, fallback string) string {
		if name == "" {
			name = fallback
		}
		return filepath.Join(dir, name)
	}

	insts, maxRank, err := loadInstitutions(pick(files.Institutions, def.Institutions))
	if err != nil {
		return nil, err
	}
	if p := pick(files.Scholarships, def.Scholarships); fileExists(p) {
		if err := mergeScholarships(p, insts); err != nil {
			return nil, err
		}
	}
	regional := map[string]struct{}{}
	if p := pick(files.RegionalArea, def.RegionalArea); fileExists(p) {
		if regional, err = loadRegional(p); err != nil {
			return nil, err
		}
	}
	reqs, err := loadRequirements(pick(files.Requirements, def.Requirements))
	if err != nil {
		return nil, err
	}
	programs, err := loadPrograms(pick(files.Programs, def.Programs))
	if err != nil {
		return nil, err
	}
	mentors, err := loadMentors(pick(files.Mentors, def.Mentors))
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		Mentors:      mentors,
		Institutions: insts,
		MaxRank:      maxRank,
		regional:     regional,
	}
	for _, p := range programs {
		req, ok := reqs[p.ID]
		if !ok {
			c.Skipped++
			continue
		}
		inst, ok := insts[p.InstitutionID]
		if !ok {
			c.Skipped++
			continue
		}
		c.Programs = append(c.Programs, ProgramRecord{
			Program:     p,
			Requirement: req,
			Institution: inst,
			Regional:    c.IsRegional(inst.Location),
		})
	}
	return c, nil
}

// Check loads every table and returns all load errors instead of stopping at
// the first one.
func Check(dir string, files Files) []error {
	def := DefaultFiles()
	pick := func(name, fallback string) string {
		if name == "" {
			name = fallback
		}
		return filepath.Join(dir, name)
	}
	var errs []error
	if _, _, err := loadInstitutions(pick(files.Institutions, def.Institutions)); err != nil {
		errs = append(errs, err)
	}
	if _, err := loadRequirements(pick(files.Requirements, def.Requirements)); err != nil {
		errs = append(errs, err)
	}
	if _, err := loadPrograms(pick(files.Programs, def.Programs)); err != nil {
		errs = append(errs, err)
	}
	if _, err := loadMentors(pick(files.Mentors, def.Mentors)); err != nil {
		errs = append(errs, err)
	}
	if p := pick(files.Scholarships, def.Scholarships); fileExists(p) {
		if err := mergeScholarships(p, map[string]Institution{}); err != nil {
			errs = append(errs, err)
		}
	}
	if p := pick(files.RegionalArea, def.RegionalArea); fileExists(p) {
		if _, err := loadRegional(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// IsConfigurationError reports whether err is or wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func loadInstitutions(path string) (map[string]Institution, int, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, 0, err
	}
	if err := t.resolve(institutionColsRequired, institutionColsOptional); err != nil {
		return nil, 0, err
	}
	out := make(map[string]Institution, len(t.rows))
	maxRank := 0
	for i, rec := range t.rows {
		line := i + 2
		inst := Institution{
			ID:       t.str(rec, "institution_id"),
			Name:     t.str(rec, "name"),
			Location: t.str(rec, "location"),
			Website:  t.str(rec, "website"),
		}
		if inst.ID == "" {
			continue
		}
		rank, err := t.num(rec, line, "overall_rank")
		if err != nil {
			return nil, 0, err
		}
		inst.OverallRank = int(math.Round(rank))
		if inst.OverallRank > maxRank {
			maxRank = inst.OverallRank
		}
		if inst.TuitionLow, err = t.num(rec, line, "tuition_low"); err != nil {
			return nil, 0, err
		}
		if inst.TuitionHigh, err = t.num(rec, line, "tuition_high"); err != nil {
			return nil, 0, err
		}
		if inst.ScholarshipPercent, err = t.num(rec, line, "scholarship_percent"); err != nil {
			return nil, 0, err
		}
		if inst.ScholarshipGPAThreshold, err = t.num(rec, line, "scholarship_gpa_threshold"); err != nil {
			return nil, 0, err
		}
		inst.ScholarshipPercent = fraction(inst.ScholarshipPercent)
		out[inst.ID] = inst
	}
	return out, maxRank, nil
}

func mergeScholarships(path string, insts map[string]Institution) error {
	t, err := readTable(path)
	if err != nil {
		return err
	}
	if err := t.resolve(scholarshipColsRequired, nil); err != nil {
		return err
	}
	for i, rec := range t.rows {
		line := i + 2
		pct, err := t.num(rec, line, "scholarship_percent")
		if err != nil {
			return err
		}
		threshold, err := t.num(rec, line, "scholarship_gpa_threshold")
		if err != nil {
			return err
		}
		id := t.str(rec, "institution_id")
		inst, ok := insts[id]
		if !ok {
			continue
		}
		inst.ScholarshipPercent = fraction(pct)
		inst.ScholarshipGPAThreshold = threshold
		insts[id] = inst
	}
	return nil
}

func loadRequirements(path string) (map[string]Requirement, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.resolve(requirementColsRequired, nil); err != nil {
		return nil, err
	}
	out := make(map[string]Requirement, len(t.rows))
	for i, rec := range t.rows {
		line := i + 2
		id := t.str(rec, "program_id")
		if id == "" {
			continue
		}
		minGPA, err := t.num(rec, line, "min_gpa")
		if err != nil {
			return nil, err
		}
		minScore, err := t.num(rec, line, "english_min_score")
		if err != nil {
			return nil, err
		}
		if _, dup := out[id]; dup {
			continue
		}
		out[id] = Requirement{
			MinGPA:              minGPA,
			EnglishRequiredType: t.str(rec, "english_required_type"),
			EnglishMinScore:     minScore,
		}
	}
	return out, nil
}

func loadPrograms(path string) ([]Program, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.resolve(programColsRequired, programColsOptional); err != nil {
		return nil, err
	}
	out := make([]Program, 0, len(t.rows))
	seen := make(map[string]struct{}, len(t.rows))
	for i, rec := range t.rows {
		p := Program{
			ID:               t.str(rec, "program_id"),
			Name:             t.str(rec, "program_name"),
			InstitutionID:    t.str(rec, "institution_id"),
			DegreeLevel:      t.str(rec, "degree_level"),
			FieldTags:        t.str(rec, "field_tags"),
			MigrationAligned: t.boolean(rec, "is_migration_aligned"),
		}
		if p.ID == "" {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		if p.TuitionPerYear, err = t.num(rec, i+2, "tuition_per_year"); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func loadMentors(path string) ([]Mentor, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.resolve(mentorColsRequired, mentorColsOptional); err != nil {
		return nil, err
	}
	out := make([]Mentor, 0, len(t.rows))
	for i, rec := range t.rows {
		m := Mentor{
			ID:                  t.str(rec, "mentor_id"),
			ExpertiseTags:       t.str(rec, "expertise_tags"),
			Languages:           t.str(rec, "languages"),
			EducationBackground: t.str(rec, "education_background"),
		}
		if m.ID == "" {
			continue
		}
		if m.YearsExperience, err = t.num(rec, i+2, "years_experience"); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func loadRegional(path string) (map[string]struct{}, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.resolve(regionalColsRequired, nil); err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(t.rows))
	for _, rec := range t.rows {
		if c := strings.ToLower(t.str(rec, "city")); c != "" {
			out[c] = struct{}{}
		}
	}
	return out, nil
}

// fraction accepts both 0.2 and 20 (percent) for scholarship_percent.
func fraction(v float64) float64 {
	if v > 1 {
		v = v / 100
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

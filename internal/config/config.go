package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tables names the reference CSV files inside DataDir.
type Tables struct {
	Programs     string `yaml:"programs"`
	Requirements string `yaml:"requirements"`
	Institutions string `yaml:"institutions"`
	Mentors      string `yaml:"mentors"`
	Scholarships string `yaml:"scholarships,omitempty"`
	RegionalArea string `yaml:"regional_area,omitempty"`
}

// Matrices names the similarity tables inside TaxonomyDir.
type Matrices struct {
	Program string `yaml:"program"`
	Core    string `yaml:"core"`
	Mentor  string `yaml:"mentor"`
}

// Models names the optional trained scorer bundles inside ModelsDir.
type Models struct {
	Program string `yaml:"program,omitempty"`
	Core    string `yaml:"core,omitempty"`
	Mentor  string `yaml:"mentor,omitempty"`
}

// Weights are the blend weights of the overlap scoring strategy.
type Weights struct {
	Interest float64 `yaml:"interest"`
	Rank     float64 `yaml:"rank"`
}

// Log configures the structured logger.
type Log struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Config is the in-memory representation of ~/.studymatch/studymatch.yaml.
type Config struct {
	DataDir           string   `yaml:"data_dir"`
	TaxonomyDir       string   `yaml:"taxonomy_dir"`
	OutputDir         string   `yaml:"output_dir"`
	ModelsDir         string   `yaml:"models_dir,omitempty"`
	Strategy          string   `yaml:"strategy,omitempty"`
	TopN              int      `yaml:"top_n,omitempty"`
	CoreTopN          int      `yaml:"core_top_n,omitempty"`
	MentorPrograms    int      `yaml:"mentor_programs,omitempty"`
	MentorsPerProgram int      `yaml:"mentors_per_program,omitempty"`
	SQLite            bool     `yaml:"sqlite,omitempty"`
	Weights           Weights  `yaml:"weights"`
	Tables            Tables   `yaml:"tables"`
	Matrices          Matrices `yaml:"matrices"`
	Models            Models   `yaml:"models,omitempty"`
	Log               Log      `yaml:"log,omitempty"`
}

// Strategy names accepted in Config.Strategy.
const (
	StrategyPairwise = "pairwise"
	StrategyOverlap  = "overlap"
)

// Dir returns the absolute path to ~/.studymatch/.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".studymatch"), nil
}

// ConfigPath returns the absolute path to ~/.studymatch/studymatch.yaml.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "studymatch.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first studymatch init.
func DefaultConfig() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		DataDir:     filepath.Join(dir, "data_clean"),
		TaxonomyDir: filepath.Join(dir, "taxonomy"),
		OutputDir:   filepath.Join(dir, "retrieval"),
		ModelsDir:   filepath.Join(dir, "models"),
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills every unset field with its default value.
func (c *Config) ApplyDefaults() {
	if c.Strategy == "" {
		c.Strategy = StrategyPairwise
	}
	if c.TopN <= 0 {
		c.TopN = 3
	}
	if c.CoreTopN <= 0 {
		c.CoreTopN = 3
	}
	if c.MentorPrograms <= 0 {
		c.MentorPrograms = 3
	}
	if c.MentorsPerProgram <= 0 {
		c.MentorsPerProgram = 3
	}
	if c.Weights.Interest == 0 && c.Weights.Rank == 0 {
		c.Weights = Weights{Interest: 0.6, Rank: 0.4}
	}
	setDefault(&c.Tables.Programs, "programs.csv")
	setDefault(&c.Tables.Requirements, "program_requirements.csv")
	setDefault(&c.Tables.Institutions, "institutions.csv")
	setDefault(&c.Tables.Mentors, "mentors.csv")
	setDefault(&c.Tables.Scholarships, "scholarships.csv")
	setDefault(&c.Tables.RegionalArea, "regional_area.csv")
	setDefault(&c.Matrices.Program, "label_matrix_program.csv")
	setDefault(&c.Matrices.Core, "label_matrix_core.csv")
	setDefault(&c.Matrices.Mentor, "label_matrix_mentor.csv")
	setDefault(&c.Models.Program, "program_labelmatch.json")
	setDefault(&c.Models.Core, "core_program_labelmatch.json")
	setDefault(&c.Models.Mentor, "mentor_labelmatch.json")
	setDefault(&c.Log.Level, "info")
	setDefault(&c.Log.Format, "console")
}

// Validate reports settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategyPairwise, StrategyOverlap:
	default:
		return fmt.Errorf("unsupported strategy %q (want %s or %s)", c.Strategy, StrategyPairwise, StrategyOverlap)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Weights.Interest < 0 || c.Weights.Rank < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	return nil
}

// DataPath joins name onto DataDir.
func (c *Config) DataPath(name string) string { return filepath.Join(c.DataDir, name) }

// TaxonomyPath joins name onto TaxonomyDir.
func (c *Config) TaxonomyPath(name string) string { return filepath.Join(c.TaxonomyDir, name) }

// ModelPath joins name onto ModelsDir, or returns "" when no models dir is set.
func (c *Config) ModelPath(name string) string {
	if c.ModelsDir == "" || name == "" {
		return ""
	}
	return filepath.Join(c.ModelsDir, name)
}

// OutputPath joins name onto OutputDir.
func (c *Config) OutputPath(name string) string { return filepath.Join(c.OutputDir, name) }

// Load reads and parses the config at path, or ~/.studymatch/studymatch.yaml
// when path is empty. STUDYMATCH_DATA_DIR and STUDYMATCH_OUTPUT_DIR override
// the file.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if v, err := GetConfigValue("STUDYMATCH_DATA_DIR"); err == nil && v != "" {
		cfg.DataDir = v
	}
	if v, err := GetConfigValue("STUDYMATCH_OUTPUT_DIR"); err == nil && v != "" {
		cfg.OutputDir = v
	}
	for _, p := range []*string{&cfg.DataDir, &cfg.TaxonomyDir, &cfg.OutputDir, &cfg.ModelsDir} {
		if *p, err = ExpandPath(*p); err != nil {
			return nil, err
		}
	}
	if cfg.TaxonomyDir == "" {
		cfg.TaxonomyDir = cfg.DataDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(filepath.Dir(path), "retrieval")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save marshals cfg and writes it to path, or the default config path when
// path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

func setDefault(p *string, v string) {
	if *p == "" {
		*p = v
	}
}

package artifact

import (
	"errors"
	"path/filepath"
	"time"
)

// Sink receives the ranked tables of a run.
type Sink interface {
	Programs(rows []ProgramRow) error
	Core(rows []CoreRow) error
	Mentors(rows []MentorRow) error
}

// Dir writes artifacts as CSV files into one output directory, holding the
// directory lock for the duration of each write.
type Dir struct {
	Path        string
	LockTimeout time.Duration
}

// NewDir returns a CSV sink rooted at path.
func NewDir(path string) *Dir {
	return &Dir{Path: path, LockTimeout: DefaultLockTimeout}
}

func (d *Dir) write(name string, header []string, records [][]string) error {
	unlock, err := Lock(d.Path, d.LockTimeout)
	if err != nil {
		return err
	}
	defer unlock()
	return WriteCSV(filepath.Join(d.Path, name), header, records)
}

func (d *Dir) Programs(rows []ProgramRow) error {
	return d.write(ProgramFile, ProgramHeader, programRecords(rows))
}

func (d *Dir) Core(rows []CoreRow) error {
	return d.write(CoreFile, CoreHeader, coreRecords(rows))
}

func (d *Dir) Mentors(rows []MentorRow) error {
	return d.write(MentorFile, MentorHeader, mentorRecords(rows))
}

// ProgramPath returns the location of the program artifact.
func (d *Dir) ProgramPath() string { return filepath.Join(d.Path, ProgramFile) }

// Multi fans every table out to several sinks, stopping at the first error.
type Multi []Sink

func (m Multi) Programs(rows []ProgramRow) error {
	for _, s := range m {
		if err := s.Programs(rows); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Core(rows []CoreRow) error {
	for _, s := range m {
		if err := s.Core(rows); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Mentors(rows []MentorRow) error {
	for _, s := range m {
		if err := s.Mentors(rows); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

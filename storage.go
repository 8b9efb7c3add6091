package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrNotExist = errors.New("doesn't exist")
)

// ResultsDir is the subdirectory under the data dir where finished runs go
const ResultsDir = "results"

var badNameRegex = regexp.MustCompile(`[<>:"/\\|?\*.]`)

// ValidateName rejects names that are unsafe as a path segment.
func ValidateName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s cannot be blank", ErrValidation, kind)
	}

	m := badNameRegex.FindAllString(name, -1)

	if len(m) > 0 {
		return fmt.Errorf("%w: %s contains disallowed characters %s", ErrValidation, kind, strings.Join(m, " "))
	}

	return nil
}

type Storage struct {
	fs afero.Fs
}

func NewStorage(fs RingFS, config *Config) *Storage {
	return &Storage{
		fs: afero.NewBasePathFs(fs, config.DataDir()),
	}
}

func runPath(puzzle, id string) string {
	return filepath.Join(ResultsDir, puzzle, id+".json")
}

// SaveRun writes a finished run, replacing any earlier copy.
func (s *Storage) SaveRun(run Run) error {
	if err := ValidateName("puzzle name", run.Puzzle); err != nil {
		return err
	}
	if err := ValidateName("run id", run.ID); err != nil {
		return err
	}

	path := runPath(run.Puzzle, run.ID)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := s.fs.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return err
	}

	return f.Sync()
}

func (s *Storage) LoadRun(puzzle, id string) (Run, error) {
	if err := ValidateName("puzzle name", puzzle); err != nil {
		return Run{}, err
	}
	if err := ValidateName("run id", id); err != nil {
		return Run{}, err
	}

	f, err := s.fs.Open(runPath(puzzle, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Run{}, fmt.Errorf("run %q of %s %w", id, puzzle, ErrNotExist)
		}
		return Run{}, err
	}
	defer f.Close()

	var run Run
	err = json.NewDecoder(f).Decode(&run)
	return run, err
}

// FindRun looks for a run under every puzzle directory.
func (s *Storage) FindRun(id string) (Run, error) {
	if err := ValidateName("run id", id); err != nil {
		return Run{}, err
	}

	entries, err := afero.ReadDir(s.fs, ResultsDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Run{}, err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		run, err := s.LoadRun(entry.Name(), id)
		if err == nil {
			return run, nil
		}
		if !errors.Is(err, ErrNotExist) {
			return Run{}, err
		}
	}

	return Run{}, fmt.Errorf("run %q %w", id, ErrNotExist)
}

// ListRuns returns the ids of stored runs of a puzzle, sorted.
func (s *Storage) ListRuns(puzzle string) ([]string, error) {
	if err := ValidateName("puzzle name", puzzle); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(s.fs, filepath.Join(ResultsDir, puzzle))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	sort.Strings(ids)

	return ids, nil
}

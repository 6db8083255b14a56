// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package survey

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// Store persists per-paper extraction and summary results as a JSON file
// (summaries.json next to the papers). Each value keeps its trial history
// ("trial_0", "trial_1", ...) so re-extraction appends instead of clobbering;
// reads return the latest trial.
type Store struct {
	path string
	// info maps paper name → key → trial name → value.
	info map[string]map[string]map[string]string
}

// NewStore returns a store backed by path. The file is created on first save.
func NewStore(path string) *Store {
	return &Store{path: path, info: make(map[string]map[string]map[string]string)}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the backing file. A missing file leaves the store empty.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading store %s: %w", s.path, err)
	}
	info := make(map[string]map[string]map[string]string)
	if err := json.Unmarshal(data, &info); err != nil {
		return fmt.Errorf("parsing store %s: %w", s.path, err)
	}
	s.info = info
	return nil
}

// Save writes the store to its backing file.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store: %w", err)
	}
	return os.WriteFile(s.path, data, 0o644)
}

// AddTrial appends a new trial for the paper's key and persists the store.
func (s *Store) AddTrial(paper, key, value string) error {
	if s.info[paper] == nil {
		s.info[paper] = make(map[string]map[string]string)
	}
	if s.info[paper][key] == nil {
		s.info[paper][key] = make(map[string]string)
	}
	trials := s.info[paper][key]
	trials[fmt.Sprintf("trial_%d", len(trials))] = value
	return s.Save()
}

// Latest returns the most recent trial for the paper's key.
func (s *Store) Latest(paper, key string) (string, bool) {
	trials := s.info[paper][key]
	if len(trials) == 0 {
		return "", false
	}
	return trials[fmt.Sprintf("trial_%d", len(trials)-1)], true
}

// Sections returns the paper's cached section extraction, if every section
// key has been stored before.
func (s *Store) Sections(paper string) (types.Sections, bool) {
	abstract, okA := s.Latest(paper, "abstract")
	intro, okI := s.Latest(paper, "introduction")
	discussion, okD := s.Latest(paper, "discussion")
	conclusion, okC := s.Latest(paper, "conclusion")
	if !okA || !okI || !okD || !okC {
		return types.Sections{}, false
	}
	return types.Sections{
		Abstract:     abstract,
		Introduction: intro,
		Discussion:   discussion,
		Conclusion:   conclusion,
	}, true
}

// SetSections stores a fresh section extraction as new trials.
func (s *Store) SetSections(paper string, sections types.Sections) error {
	for key, value := range map[string]string{
		"abstract":     sections.Abstract,
		"introduction": sections.Introduction,
		"discussion":   sections.Discussion,
		"conclusion":   sections.Conclusion,
	} {
		if err := s.AddTrial(paper, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Papers returns the stored paper names in sorted order.
func (s *Store) Papers() []string {
	papers := make([]string, 0, len(s.info))
	for p := range s.info {
		papers = append(papers, p)
	}
	sort.Strings(papers)
	return papers
}

// Summary returns the paper's latest stored summary.
func (s *Store) Summary(paper string) (string, bool) {
	return s.Latest(paper, "summary")
}

// Package store holds the session's mutable application state: tracked
// applications, the applicant-info snapshot, and the cumulative generator
// draft. Every mutation is persisted through the configured backend under
// three fixed keys; raw generator responses are kept in memory only.
package store

import (
	"fmt"
	"sync"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Fixed persistence keys. These match the shape older clients wrote, so
// existing state files rehydrate cleanly.
const (
	KeyApplications    = "applications"
	KeyApplicantInfo   = "applicantInfo"
	KeyGeneratorOutput = "generatorOutput"
)

// State is the persisted portion of the store.
type State struct {
	Applications    []types.Application   `json:"applications"`
	ApplicantInfo   types.ProfileSnapshot `json:"applicantInfo"`
	GeneratorOutput types.GeneratorDraft  `json:"generatorOutput"`
}

// Persistence saves and restores the store's state.
type Persistence interface {
	Load() (*State, error)
	Save(state *State) error
}

// Store is the draft store. All access is mutex-guarded with
// last-write-wins semantics; there is no background mutation.
type Store struct {
	mu    sync.Mutex
	state State

	// Raw generator responses are threaded from the experience/project
	// steps into the skills request. Session-only, never persisted.
	rawExperience []types.GeneratedExperienceItem
	rawProject    []types.GeneratedProjectItem

	persistence Persistence
}

// Open creates a store backed by the given persistence, rehydrating any
// previously saved state.
func Open(p Persistence) (*Store, error) {
	s := &Store{persistence: p}
	if p != nil {
		state, err := p.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load draft state: %w", err)
		}
		if state != nil {
			s.state = *state
		}
	}
	return s, nil
}

// persistLocked writes the current state. Callers must hold the mutex.
func (s *Store) persistLocked() error {
	if s.persistence == nil {
		return nil
	}
	if err := s.persistence.Save(&s.state); err != nil {
		return fmt.Errorf("failed to persist draft state: %w", err)
	}
	return nil
}

// Applications returns the tracked applications.
func (s *Store) Applications() []types.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Application(nil), s.state.Applications...)
}

// SetApplications replaces the tracked applications.
func (s *Store) SetApplications(apps []types.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Applications = apps
	return s.persistLocked()
}

// ApplicantInfo returns the stored profile snapshot.
func (s *Store) ApplicantInfo() types.ProfileSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ApplicantInfo
}

// SetApplicantInfo replaces the stored profile snapshot.
func (s *Store) SetApplicantInfo(info types.ProfileSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ApplicantInfo = info
	return s.persistLocked()
}

// Draft returns the current generator draft.
func (s *Store) Draft() types.GeneratorDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GeneratorOutput
}

// SetExperiences replaces only the experience slice of the draft.
func (s *Store) SetExperiences(experiences []types.DraftExperience) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.GeneratorOutput.Experiences = experiences
	return s.persistLocked()
}

// UpdateExperience replaces a single draft experience entry in place.
func (s *Store) UpdateExperience(index int, entry types.DraftExperience) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.state.GeneratorOutput.Experiences) {
		return fmt.Errorf("experience index %d out of range", index)
	}
	s.state.GeneratorOutput.Experiences[index] = entry
	return s.persistLocked()
}

// SetProjects replaces only the project slice of the draft.
func (s *Store) SetProjects(projects []types.DraftProject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.GeneratorOutput.Projects = projects
	return s.persistLocked()
}

// UpdateProject replaces a single draft project entry in place.
func (s *Store) UpdateProject(index int, entry types.DraftProject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.state.GeneratorOutput.Projects) {
		return fmt.Errorf("project index %d out of range", index)
	}
	s.state.GeneratorOutput.Projects[index] = entry
	return s.persistLocked()
}

// SetSkills replaces only the skills slice of the draft.
func (s *Store) SetSkills(skills types.SkillsByCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.GeneratorOutput.Skills = skills
	return s.persistLocked()
}

// AddSkillCategory adds an empty category to the draft skills.
func (s *Store) AddSkillCategory(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.GeneratorOutput.Skills.AddCategory(name)
	return s.persistLocked()
}

// RemoveSkillCategory removes a category from the draft skills.
func (s *Store) RemoveSkillCategory(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.GeneratorOutput.Skills.RemoveCategory(name)
	return s.persistLocked()
}

// SetCategorySkills replaces the skill list of one category.
func (s *Store) SetCategorySkills(name string, skills []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.GeneratorOutput.Skills.SetSkills(name, skills)
	return s.persistLocked()
}

// RawExperience returns the verbatim experience-generation response.
func (s *Store) RawExperience() []types.GeneratedExperienceItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawExperience
}

// SetRawExperience stores the verbatim experience-generation response.
func (s *Store) SetRawExperience(items []types.GeneratedExperienceItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawExperience = items
}

// RawProject returns the verbatim project-generation response.
func (s *Store) RawProject() []types.GeneratedProjectItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawProject
}

// SetRawProject stores the verbatim project-generation response.
func (s *Store) SetRawProject(items []types.GeneratedProjectItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawProject = items
}

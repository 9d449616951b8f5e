package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists state as a single JSON file, written atomically on
// every save and rehydrated on load.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed persistence at path. Parent directories
// are created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// fileState is the on-disk layout: the three fixed keys at the top level.
type fileState struct {
	Applications    json.RawMessage `json:"applications,omitempty"`
	ApplicantInfo   json.RawMessage `json:"applicantInfo,omitempty"`
	GeneratorOutput json.RawMessage `json:"generatorOutput,omitempty"`
}

// Load reads the state file. A missing file yields an empty state, not an error.
func (f *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", f.path, err)
	}

	var raw fileState
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", f.path, err)
	}

	// Each key decodes independently; a missing key leaves its zero value so
	// partially written files from older versions still load.
	var state State
	if len(raw.Applications) > 0 {
		if err := json.Unmarshal(raw.Applications, &state.Applications); err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", KeyApplications, err)
		}
	}
	if len(raw.ApplicantInfo) > 0 {
		if err := json.Unmarshal(raw.ApplicantInfo, &state.ApplicantInfo); err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", KeyApplicantInfo, err)
		}
	}
	if len(raw.GeneratorOutput) > 0 {
		if err := json.Unmarshal(raw.GeneratorOutput, &state.GeneratorOutput); err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", KeyGeneratorOutput, err)
		}
	}
	return &state, nil
}

// Save writes the state atomically (temp file + rename).
func (f *FileStore) Save(state *State) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

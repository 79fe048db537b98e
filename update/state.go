package update

import (
	"encoding/json"
	"path/filepath"
	"time"

	"ota-checker-go/internal"

	"github.com/spf13/afero"
)

const stateFileName = "update-state.json"

// Error categories recorded in the state file. Raw errors go to the debug log
// only.
const (
	ErrorManifest    = "manifest_unreachable"
	ErrorNoBuild     = "local_build_unknown"
	ErrorDownload    = "download_failed"
	ErrorNotCompared = "comparison_failed"
)

// State is the persisted outcome of the last update check.
type State struct {
	LastCheckTime   string `json:"last_check_time"`
	LastLocalBuild  string `json:"last_local_build,omitempty"`
	LastRemoteBuild string `json:"last_remote_build,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
	LastError       string `json:"last_error,omitempty"`
	LastDownload    string `json:"last_download,omitempty"`
}

// StateStore reads and writes update-state.json in a directory.
type StateStore struct {
	fs  afero.Fs
	dir string
}

// NewStateStore returns a store for dir. A nil fs means the OS filesystem. An
// empty dir gives a store that remembers nothing.
func NewStateStore(fs afero.Fs, dir string) *StateStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &StateStore{fs: fs, dir: dir}
}

// Dir is the directory holding the state file.
func (s *StateStore) Dir() string {
	return s.dir
}

func (s *StateStore) path() string {
	if s.dir == "" {
		return ""
	}
	return filepath.Join(s.dir, stateFileName)
}

// Load reads the state from disk. Returns a zero-value state if the file
// doesn't exist or is corrupted.
func (s *StateStore) Load() State {
	path := s.path()
	if path == "" {
		return State{}
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return State{}
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		// Corruption recovery: rename to .corrupted and start fresh
		internal.DebugPrint("Corrupted update state file, resetting: %v", err)
		s.fs.Rename(path, path+".corrupted")
		return State{}
	}
	return state
}

// Save writes the state to disk with 0600 permissions.
func (s *StateStore) Save(state State) {
	path := s.path()
	if path == "" {
		return
	}

	if err := s.fs.MkdirAll(s.dir, 0700); err != nil {
		internal.DebugPrint("Failed to create state directory: %v", err)
		return
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		internal.DebugPrint("Failed to marshal update state: %v", err)
		return
	}

	if err := afero.WriteFile(s.fs, path, data, 0600); err != nil {
		internal.DebugPrint("Failed to write update state: %v", err)
	}
}

// LastCheckTime returns the time of the last update check, or zero time if
// never checked.
func (s *StateStore) LastCheckTime() time.Time {
	state := s.Load()
	if state.LastCheckTime == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, state.LastCheckTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ShouldCheck reports whether the cooldown since the last check has expired.
// A zero interval always allows a check.
func (s *StateStore) ShouldCheck(interval time.Duration) bool {
	if interval <= 0 {
		return true
	}
	return time.Since(s.LastCheckTime()) >= interval
}

// RecordCheck stores the outcome of a successful check and advances the
// cooldown.
func (s *StateStore) RecordCheck(res *Result) {
	state := s.Load()
	state.LastCheckTime = time.Now().UTC().Format(time.RFC3339)
	state.LastError = ""
	if res != nil {
		state.LastLocalBuild = res.LocalBuild
		state.LastRemoteBuild = res.RemoteBuild
		state.UpdateAvailable = res.Available
		if res.LocalBuild == "" {
			state.LastError = ErrorNoBuild
		} else if res.Entry != nil && res.Comparison.Err != nil {
			state.LastError = ErrorNotCompared
		}
	}
	s.Save(state)
}

// RecordError stores a sanitized error category and advances the cooldown.
func (s *StateStore) RecordError(category string) {
	state := s.Load()
	state.LastCheckTime = time.Now().UTC().Format(time.RFC3339)
	state.LastError = category
	s.Save(state)
}

// RecordDownload remembers the path of the last completed download.
func (s *StateStore) RecordDownload(path string) {
	state := s.Load()
	state.LastDownload = path
	state.LastError = ""
	s.Save(state)
}

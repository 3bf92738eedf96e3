package session

import (
	"encoding/json"
	"errors"
	"os"

	"nammauto/internal/api"
)

// File persists the logged-in user's profile across restarts, the way the
// browser app keeps it in local storage.
type File struct {
	path string
}

// NewFile creates a session file handle at path. The file is only written
// on login and removed on logout.
func NewFile(path string) *File {
	return &File{path: path}
}

// Save stores the user profile.
func (f *File) Save(user *api.User) error {
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

// Load restores the stored profile. Returns nil, nil when no session exists.
func (f *File) Load() (*api.User, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var user api.User
	if err := json.Unmarshal(data, &user); err != nil {
		// A corrupt session file is treated as no session.
		return nil, nil
	}
	if user.ID == "" {
		return nil, nil
	}
	return &user, nil
}

// Clear removes the stored session.
func (f *File) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

package conversation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const currentFile = "current_conversation"

// ErrTurnInProgress indicates another process holds the turn lock for
// the current conversation.
var ErrTurnInProgress = errors.New("another turn is in progress")

// CurrentFile tracks which conversation consecutive CLI invocations
// resume, and holds a file lock for the duration of a turn so two
// processes never mutate the same conversation state concurrently.
type CurrentFile struct {
	path string
	lock *flock.Flock
}

// NewCurrentFile creates the tracker rooted at dir (typically
// ~/.remembra).
func NewCurrentFile(dir string) *CurrentFile {
	path := filepath.Join(dir, currentFile)
	return &CurrentFile{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Acquire takes the cross-process turn lock without blocking. Callers
// must Release when the turn commits or aborts.
func (c *CurrentFile) Acquire() error {
	locked, err := c.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring turn lock: %w", err)
	}
	if !locked {
		return ErrTurnInProgress
	}
	return nil
}

// Release drops the turn lock.
func (c *CurrentFile) Release() error {
	if err := c.lock.Unlock(); err != nil {
		return fmt.Errorf("releasing turn lock: %w", err)
	}
	return nil
}

// Load returns the current conversation ID, or nil when none is set.
// A missing file is not an error.
func (c *CurrentFile) Load() (*uuid.UUID, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID in state file: %w", err)
	}
	return &id, nil
}

// Save records id as the current conversation.
func (c *CurrentFile) Save(id uuid.UUID) error {
	if err := os.WriteFile(c.path, []byte(id.String()), 0o600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}

// Clear forgets the current conversation. Idempotent.
func (c *CurrentFile) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing state file: %w", err)
	}
	return nil
}

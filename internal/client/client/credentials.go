package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/journeyconnect/journeyconnect/internal/filex"
)

// TokenFile keeps the session credential on disk between runs.
type TokenFile struct {
	Path string
}

// Load returns the stored credential, or "" when none is stored.
func (f TokenFile) Load() (string, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (f TokenFile) Save(token string) error {
	if _, err := filex.EnsureParentDir(f.Path, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	if err := filex.WriteFileAtomic(f.Path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

func (f TokenFile) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

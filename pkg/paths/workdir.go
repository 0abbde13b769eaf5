package paths

import (
	"fmt"
	"os"
	"sync"
)

// WorkingDirectory is the single owner of the process working directory.
// Changing it affects every later relative-path resolution in the process, so
// all reads and writes go through one mutex. Code that relies on a stable
// working directory across several calls must still confine itself to one
// goroutine.
type WorkingDirectory struct {
	mu sync.Mutex
}

//nolint:gochecknoglobals // The working directory is process-wide state
var workdir = &WorkingDirectory{}

// Workdir returns the process working-directory service.
func Workdir() *WorkingDirectory {
	return workdir
}

// Get returns the current working directory.
func (w *WorkingDirectory) Get() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.get()
}

// Set changes the working directory to dir.
func (w *WorkingDirectory) Set(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.set(dir)
}

// Swap changes the working directory to dir and returns the previous one.
func (w *WorkingDirectory) Swap(dir string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	previous, err := w.get()
	if err != nil {
		return "", err
	}

	if err := w.set(dir); err != nil {
		return "", err
	}

	return previous, nil
}

func (w *WorkingDirectory) get() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	return dir, nil
}

func (w *WorkingDirectory) set(dir string) error {
	if err := validate(dir); err != nil {
		return err
	}

	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("failed to change working directory to %s: %w", dir, err)
	}

	return nil
}

// CurrentWorkingDirectory returns Workdir().Get().
func CurrentWorkingDirectory() (string, error) {
	return Workdir().Get()
}

// SetCurrentWorkingDirectory calls Workdir().Set(dir).
func SetCurrentWorkingDirectory(dir string) error {
	return Workdir().Set(dir)
}

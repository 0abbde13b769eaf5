package fileops

import (
	"fmt"
	"strconv"

	pkgerrors "github.com/joe/efs/pkg/errors"
	"github.com/joe/efs/pkg/paths"
)

// NameOptions controls NextAvailableFileName.
type NameOptions struct {
	// Separator goes between the stem and the number: "f-1.txt".
	Separator string
	// Start is the first number tried.
	Start int
	// Max is the exclusive upper bound on the number. Zero means 1,000,000.
	Max int
	// Step is the increment between tries. Zero means 1.
	Step int
}

const defaultNameMax = 1_000_000

// NextAvailableFileName returns path when no file exists there. Otherwise it
// returns the first "<dir>/<stem><sep><n>.<ext>" for n = Start, Start+Step,
// ... below Max that is not an existing file, or an error wrapping
// ErrOverflow. Names without an extension get no trailing dot.
//
// Failures are always returned, whatever the policy.
func (fo *FileOps) NextAvailableFileName(path string, opts NameOptions) (string, error) {
	if opts.Max == 0 {
		opts.Max = defaultNameMax
	}

	if opts.Step == 0 {
		opts.Step = 1
	}

	if opts.Step < 0 {
		return "", fmt.Errorf("invalid step %d: %w", opts.Step, pkgerrors.ErrMalformed)
	}

	strict := fo.WithPolicy(pkgerrors.Raise)

	taken, err := strict.IsFile(path)
	if err != nil {
		return "", err
	}

	if !taken {
		return path, nil
	}

	dir, stem, ext := paths.PartsAndExtension(path)

	for i := opts.Start; i < opts.Max; i += opts.Step {
		name := stem + opts.Separator + strconv.Itoa(i)
		if ext != "" {
			name += "." + ext
		}

		candidate := paths.Join(dir, name)

		taken, err := strict.IsFile(candidate)
		if err != nil {
			return "", err
		}

		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("reached maximum limit of %d for file %s: %w", opts.Max, path, pkgerrors.ErrOverflow)
}

// Package config handles application configuration and command-line argument parsing.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexflint/go-arg"

	pkgerrors "github.com/joe/efs/pkg/errors"
	"github.com/joe/efs/pkg/logger"
)

// Configuration errors.
var (
	ErrNoCommand     = errors.New("a command is required (scan, path, swarm, next-name)")
	ErrInvalidFilter = errors.New("invalid filter")
	ErrInvalidPathOp = errors.New("invalid path operation")
	ErrMissingArgs   = errors.New("missing arguments")
)

// Filter selects which predefined scan callback to use.
type Filter int

const (
	// AllEntries emits every entry.
	AllEntries Filter = iota
	// FilesOnly emits everything that is not a directory.
	FilesOnly
	// DirsOnly emits directories.
	DirsOnly
	// NamesOnly emits bare file names.
	NamesOnly
)

// String returns the string representation of Filter
func (f Filter) String() string {
	switch f {
	case AllEntries:
		return "all"
	case FilesOnly:
		return "files"
	case DirsOnly:
		return "dirs"
	case NamesOnly:
		return "names"
	default:
		return "unknown"
	}
}

// ParseFilter parses a string into a Filter
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(s) {
	case "all", "":
		return AllEntries, nil
	case "files", "file":
		return FilesOnly, nil
	case "dirs", "dir", "directories":
		return DirsOnly, nil
	case "names", "name":
		return NamesOnly, nil
	default:
		return AllEntries, fmt.Errorf("%w: %s (valid: all, files, dirs, names)", ErrInvalidFilter, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg
func (f *Filter) UnmarshalText(text []byte) error {
	parsed, err := ParseFilter(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// PathOps lists the operations the path command understands, with the number
// of extra arguments each one needs.
//
//nolint:gochecknoglobals // Read-only lookup table
var PathOps = map[string]int{
	"join":           -1,
	"split":          0,
	"dir":            0,
	"name":           0,
	"stem":           0,
	"ext":            0,
	"parent":         0,
	"clean":          0,
	"expand":         0,
	"to-unix":        0,
	"to-windows":     0,
	"is-absolute":    0,
	"node":           1,
	"set-node":       2,
	"strip":          1,
	"strip-reversed": 1,
	"parent-sibling": 1,
	"replace-ext":    1,
}

// ScanCmd lists entries below a root.
type ScanCmd struct {
	Root        string   `arg:"positional,required" help:"Directory to scan (local path or user@host:path)"`
	Recursive   bool     `arg:"-r,--recursive" help:"Descend into subdirectories"`
	Filter      Filter   `arg:"-f,--filter" default:"all" help:"Which entries to emit: all|files|dirs|names"`
	Match       string   `arg:"-m,--match" help:"Regular expression matched against the start of each entry name"`
	Extensions  []string `arg:"-e,--ext,separate" help:"Only emit names ending in this suffix (repeatable)"`
	Glob        string   `arg:"-g,--glob" help:"Case-insensitive doublestar pattern matched against the relative path"`
	Interactive bool     `arg:"-i,--interactive" help:"Show a live progress view while scanning"`
}

// PathCmd applies one path-model operation and prints the result.
type PathCmd struct {
	Op        string   `arg:"positional,required" help:"Operation: join|split|dir|name|stem|ext|parent|clean|expand|to-unix|to-windows|is-absolute|node|set-node|strip|strip-reversed|parent-sibling|replace-ext"`
	Path      string   `arg:"positional,required" help:"Path to operate on"`
	Args      []string `arg:"positional" help:"Extra operation arguments"`
	Inclusive bool     `arg:"--inclusive" help:"For strip operations, keep the matched node"`
}

// SwarmCmd reads several files in lockstep and prints one record per line.
type SwarmCmd struct {
	Files     []string `arg:"positional,required" help:"Files to read together"`
	Separator string   `arg:"-s,--separator" default:"\t" help:"Text placed between the fields of a record"`
	Absent    string   `arg:"--absent" help:"Text printed for a file that has run out of lines"`
}

// NextNameCmd prints the first free numbered variant of a file name.
type NextNameCmd struct {
	Path      string `arg:"positional,required" help:"Desired file path"`
	Separator string `arg:"-s,--separator" help:"Text placed between the stem and the number"`
	Start     int    `arg:"--start" default:"0" help:"First number tried"`
	Max       int    `arg:"--max" default:"1000000" help:"Exclusive upper bound on the number"`
	Step      int    `arg:"--step" default:"1" help:"Increment between tries"`
}

// Config holds the application configuration
type Config struct {
	LogLevel string           `arg:"--log-level,env:EFS_LOG_LEVEL" default:"info" help:"Log level: trace|debug|info|warn|error"`
	OnError  pkgerrors.Policy `arg:"--on-error" default:"log" help:"What to do with filesystem failures: ignore|log|raise"`
	Timeout  time.Duration    `arg:"--timeout" default:"30s" help:"Dial timeout for remote locations"`

	Scan     *ScanCmd     `arg:"subcommand:scan" help:"List directory entries"`
	Path     *PathCmd     `arg:"subcommand:path" help:"Apply a path operation"`
	Swarm    *SwarmCmd    `arg:"subcommand:swarm" help:"Read several files line by line in lockstep"`
	NextName *NextNameCmd `arg:"subcommand:next-name" help:"Find the next free numbered file name"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Extended file-system toolkit: path algebra, directory scans and lockstep file reading"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "efs 1.0.0"
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg := &Config{}

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// Parse parses the given arguments (without the program name). Help and
// version requests surface as arg.ErrHelp and arg.ErrVersion.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}

	parser, err := arg.NewParser(arg.Config{Program: "efs"}, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build argument parser: %w", err)
	}

	if err := parser.Parse(args); err != nil {
		return nil, err //nolint:wrapcheck // Callers compare against arg.ErrHelp
	}

	return PostProcessConfig(cfg)
}

// PostProcessConfig applies post-processing logic to a parsed config
func PostProcessConfig(cfg *Config) (*Config, error) {
	cfg.LogLevel = logger.NormalizeLevel(cfg.LogLevel)

	if cfg.Swarm != nil && cfg.Swarm.Separator == "" {
		cfg.Swarm.Separator = "\t"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that exactly one command was chosen and that its
// arguments make sense.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Scan != nil:
		if cfg.Scan.Root == "" {
			return fmt.Errorf("%w: scan root is required", ErrMissingArgs)
		}
	case cfg.Path != nil:
		return cfg.Path.validate()
	case cfg.Swarm != nil:
		if len(cfg.Swarm.Files) == 0 {
			return fmt.Errorf("%w: swarm needs at least one file", ErrMissingArgs)
		}
	case cfg.NextName != nil:
		if cfg.NextName.Step <= 0 {
			return fmt.Errorf("%w: step must be positive, got %d", pkgerrors.ErrMalformed, cfg.NextName.Step)
		}

		if cfg.NextName.Max <= cfg.NextName.Start {
			return fmt.Errorf("%w: max %d must exceed start %d", pkgerrors.ErrMalformed, cfg.NextName.Max, cfg.NextName.Start)
		}
	default:
		return ErrNoCommand
	}

	return nil
}

func (cmd *PathCmd) validate() error {
	want, ok := PathOps[cmd.Op]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidPathOp, cmd.Op)
	}

	if want >= 0 && len(cmd.Args) != want {
		return fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrMissingArgs, cmd.Op, want, len(cmd.Args))
	}

	return nil
}

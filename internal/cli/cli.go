// Package cli runs the non-interactive efs commands.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joe/efs/internal/config"
	"github.com/joe/efs/internal/tui/shared"
	pkgerrors "github.com/joe/efs/pkg/errors"
	"github.com/joe/efs/pkg/fileops"
	"github.com/joe/efs/pkg/filesystem"
	"github.com/joe/efs/pkg/logger"
	"github.com/joe/efs/pkg/paths"
	"github.com/joe/efs/pkg/scan"
	"github.com/joe/efs/pkg/swarm"
)

// App carries what every command needs: output streams, the logger and the
// failure handler built from the global flags.
type App struct {
	cfg     *config.Config
	stdout  io.Writer
	log     logger.Logger
	handler *pkgerrors.Handler
}

// NewApp builds an App writing results to stdout and diagnostics to stderr.
func NewApp(cfg *config.Config, stdout, stderr io.Writer) *App {
	log := logger.NewConsoleLogger(stderr, cfg.LogLevel)

	return &App{
		cfg:     cfg,
		stdout:  stdout,
		log:     log,
		handler: pkgerrors.NewHandler(log),
	}
}

// Run executes the command selected in cfg.
func Run(cfg *config.Config, stdout, stderr io.Writer) error {
	return NewApp(cfg, stdout, stderr).Run()
}

// Run executes the selected command.
func (a *App) Run() error {
	switch {
	case a.cfg.Scan != nil:
		return a.runScan(a.cfg.Scan)
	case a.cfg.Path != nil:
		return a.runPath(a.cfg.Path)
	case a.cfg.Swarm != nil:
		return a.runSwarm(a.cfg.Swarm)
	case a.cfg.NextName != nil:
		return a.runNextName(a.cfg.NextName)
	default:
		return config.ErrNoCommand
	}
}

// Handler returns the failure handler commands report through.
func (a *App) Handler() *pkgerrors.Handler {
	return a.handler
}

// ScanCallback turns the scan flags into a callback. The filters narrow
// which entries are visited; --filter decides what is emitted for them.
func ScanCallback(cmd *config.ScanCmd) (scan.Callback[string], error) {
	var emit scan.Callback[string]

	switch cmd.Filter {
	case config.FilesOnly:
		emit = scan.FilesOnly
	case config.DirsOnly:
		emit = scan.DirectoriesOnly
	case config.NamesOnly:
		emit = scan.FileNamesOnly
	default:
		emit = scan.Identity
	}

	var filters []scan.Callback[string]

	if cmd.Match != "" {
		match, err := scan.MatchPattern(cmd.Match)
		if err != nil {
			return nil, err
		}

		filters = append(filters, match)
	}

	if len(cmd.Extensions) > 0 {
		filters = append(filters, scan.FileExtensions(cmd.Extensions...))
	}

	if cmd.Glob != "" {
		glob, err := scan.Glob(cmd.Glob)
		if err != nil {
			return nil, err
		}

		filters = append(filters, glob)
	}

	if len(filters) == 0 {
		return emit, nil
	}

	keep := scan.All(filters...)

	return scan.CallbackFunc[string](func(entry scan.Entry, args scan.Args) (string, bool) {
		if _, ok := keep.Visit(entry, args); !ok {
			return "", false
		}

		return emit.Visit(entry, args)
	}), nil
}

// ScanJob is a scan ready to run: the filesystem the root lives on, the
// root within it, the callback and the options. Close releases any remote
// connection.
type ScanJob struct {
	FS       filesystem.FileSystem
	Root     string
	Callback scan.Callback[string]
	Options  []scan.Option
	Close    func()
}

// Run scans the root.
func (j *ScanJob) Run() ([]string, error) {
	return scan.Directory(j.Root, j.Callback, j.Options...)
}

// PrepareScan resolves the scan root and builds the callback and options
// from the flags.
func (a *App) PrepareScan(cmd *config.ScanCmd) (*ScanJob, error) {
	callback, err := ScanCallback(cmd)
	if err != nil {
		return nil, err
	}

	fsys, root, closer, err := filesystem.CreateFileSystem(cmd.Root, a.cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &ScanJob{
		FS:       fsys,
		Root:     root,
		Callback: callback,
		Options: []scan.Option{
			scan.WithFileSystem(fsys),
			scan.WithRecursive(cmd.Recursive),
			scan.WithHandler(a.handler),
			scan.WithPolicy(a.cfg.OnError),
		},
		Close: closer,
	}, nil
}

// PrintResults writes one result per line to stdout.
func (a *App) PrintResults(results []string) {
	for _, result := range results {
		fmt.Fprintln(a.stdout, result)
	}
}

func (a *App) runScan(cmd *config.ScanCmd) error {
	job, err := a.PrepareScan(cmd)
	if err != nil {
		return err
	}
	defer job.Close()

	results, err := job.Run()
	a.PrintResults(results)

	if err != nil {
		return err
	}

	a.log.LogDebug(fmt.Sprintf("scanned %s: %d entries", cmd.Root, len(results)))

	return nil
}

//nolint:cyclop,funlen // One case per path operation
func (a *App) runPath(cmd *config.PathCmd) error {
	p := cmd.Path
	args := cmd.Args

	var (
		out string
		err error
	)

	switch cmd.Op {
	case "join":
		out = paths.Join(p, args...)
	case "split":
		out = strings.Join(paths.Split(p), "\n")
	case "dir":
		out = paths.Dir(p)
	case "name":
		out = paths.Name(p)
	case "stem":
		out = paths.Stem(p)
	case "ext":
		out = paths.Ext(p)
	case "parent":
		out = paths.Parent(p)
	case "clean":
		out = paths.Clean(p)
	case "expand":
		out, err = paths.ExpandRelative(p)
	case "to-unix":
		out = paths.ToUnix(p)
	case "to-windows":
		out = paths.ToWindows(p)
	case "is-absolute":
		out = strconv.FormatBool(paths.IsAbsolute(p))
	case "node":
		var index int
		if index, err = parseIndex(args[0]); err == nil {
			out, err = paths.NodeAt(p, index)
		}
	case "set-node":
		var index int
		if index, err = parseIndex(args[0]); err == nil {
			out, err = paths.SetNodeAt(p, index, args[1])
		}
	case "strip":
		out, err = paths.StripUpToNode(p, args[0], cmd.Inclusive)
	case "strip-reversed":
		out, err = paths.StripUpToNodeReversed(p, args[0], cmd.Inclusive)
	case "parent-sibling":
		var found paths.Path
		if found, err = paths.FromParentSibling(p, args[0]); err == nil {
			out = found.String()
		}
	case "replace-ext":
		out = paths.ReplaceExtension(p, args[0])
	default:
		err = fmt.Errorf("%w: %s", config.ErrInvalidPathOp, cmd.Op)
	}

	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, out)

	return nil
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", s, pkgerrors.ErrMalformed)
	}

	return index, nil
}

func (a *App) runSwarm(cmd *config.SwarmCmd) error {
	fsys, files, closer, err := a.resolveAll(cmd.Files)
	if err != nil {
		return err
	}
	defer closer()

	opts := []swarm.Option{swarm.WithLogger(a.log)}
	if fsys != nil {
		opts = append(opts, swarm.WithFileSystem(fsys))
	}

	return swarm.Use(files, func(reader *swarm.Reader) error {
		fields := make([]string, len(files))

		for record := range reader.Records() {
			for i, line := range record {
				fields[i] = cmd.Absent
				if line.Valid {
					fields[i] = line.Text
				}
			}

			fmt.Fprintln(a.stdout, strings.Join(fields, cmd.Separator))
		}

		return reader.Err()
	}, opts...)
}

// resolveAll maps every argument onto one filesystem. Mixing local files
// with remote ones, or remotes on different hosts, is refused.
func (a *App) resolveAll(raw []string) (filesystem.FileSystem, []string, func(), error) {
	locations := make([]filesystem.Location, 0, len(raw))

	for _, arg := range raw {
		location, err := filesystem.ParseLocation(arg)
		if err != nil {
			return nil, nil, nil, err
		}

		if len(locations) > 0 && !sameHost(locations[0], location) {
			return nil, nil, nil, fmt.Errorf("%w: %s is not on the same host as %s", pkgerrors.ErrMalformed, arg, raw[0])
		}

		locations = append(locations, location)
	}

	files := make([]string, 0, len(locations))
	for _, location := range locations {
		files = append(files, location.Path)
	}

	if len(locations) == 0 || !locations[0].IsRemote() {
		return nil, files, func() {}, nil
	}

	fsys, _, closer, err := filesystem.CreateFileSystem(raw[0], a.cfg.Timeout)
	if err != nil {
		return nil, nil, nil, err
	}

	return fsys, files, closer, nil
}

func sameHost(a, b filesystem.Location) bool {
	if a.IsRemote() != b.IsRemote() {
		return false
	}

	return !a.IsRemote() || a.Remote.String() == b.Remote.String()
}

func (a *App) runNextName(cmd *config.NextNameCmd) error {
	fsys, target, closer, err := filesystem.CreateFileSystem(cmd.Path, a.cfg.Timeout)
	if err != nil {
		return err
	}
	defer closer()

	ops := fileops.New(fsys).WithHandler(a.handler).WithPolicy(a.cfg.OnError)

	name, err := ops.NextAvailableFileName(target, fileops.NameOptions{
		Separator: cmd.Separator,
		Start:     cmd.Start,
		Max:       cmd.Max,
		Step:      cmd.Step,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, name)

	return nil
}

// ReportError prints err to stderr in the error style.
func ReportError(stderr io.Writer, err error) {
	fmt.Fprintln(stderr, shared.RenderError("Error: "+err.Error()))
}

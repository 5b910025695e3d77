package generator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/blimu-dev/tsclientgen/pkg/generator/typescript"
	"github.com/blimu-dev/tsclientgen/pkg/ir"
	"github.com/blimu-dev/tsclientgen/pkg/openapi"
	"github.com/blimu-dev/tsclientgen/pkg/utils"
)

// ErrNoInputFiles is returned when a run is started without inputs.
var ErrNoInputFiles = errors.New("No input files specified")

// Emitter renders client source for one target language
type Emitter interface {
	// Language returns the identifier of the target (e.g., "typescript")
	Language() string
	// FileName returns the output file name for a document
	FileName(doc ir.IRDocument) string
	// RenderClient renders the type declarations and client class for a document
	RenderClient(doc ir.IRDocument) ([]byte, error)
	// SharedFiles returns files every run writes once, keyed by file name
	SharedFiles() (map[string][]byte, error)
}

// Loader reads a schema document
type Loader func(ctx context.Context, input string) (*openapi3.T, error)

// Options configures a generation run
type Options struct {
	Inputs      []string
	Output      string
	ClassNames  map[string]string
	Formatter   []string
	IncludeTags []string
	ExcludeTags []string
	DryRun      bool
}

// PlannedFile is one file a run writes (or would write, in dry-run mode)
type PlannedFile struct {
	Path  string
	Bytes int
}

// Service runs generation
type Service struct {
	emitter Emitter
	load    Loader
	log     zerolog.Logger
}

// NewService creates a service emitting TypeScript
func NewService() *Service {
	return NewServiceWithEmitter(typescript.New())
}

// NewServiceWithEmitter creates a service with a custom emitter
func NewServiceWithEmitter(e Emitter) *Service {
	return &Service{
		emitter: e,
		load: func(ctx context.Context, input string) (*openapi3.T, error) {
			return openapi.Load(ctx, input, openapi.Options{})
		},
		log: log.With().Str("component", "generator").Logger(),
	}
}

// WithLoader replaces the document loader
func (s *Service) WithLoader(l Loader) *Service {
	s.load = l
	return s
}

// Generate processes every input in order and writes one client file per
// input plus the shared files. Everything is rendered before anything is
// written, so a failing input leaves the output directory untouched.
func (s *Service) Generate(ctx context.Context, opts Options) ([]PlannedFile, error) {
	if len(opts.Inputs) == 0 {
		return nil, ErrNoInputFiles
	}
	filter, err := CompileTagFilters(opts.IncludeTags, opts.ExcludeTags)
	if err != nil {
		return nil, err
	}
	outDir := opts.Output
	if outDir == "" {
		outDir = "."
	}

	files := map[string][]byte{}
	owner := map[string]string{}
	for _, input := range opts.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := s.build(ctx, input, opts.ClassNames, filter)
		if err != nil {
			return nil, err
		}
		content, err := s.emitter.RenderClient(doc)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", input, err)
		}
		name := s.emitter.FileName(doc)
		if prev, ok := owner[name]; ok {
			return nil, fmt.Errorf("inputs %s and %s both generate %s", prev, input, name)
		}
		owner[name] = input
		files[filepath.Join(outDir, name)] = content
		s.log.Debug().Str("input", input).Int("methods", len(doc.Methods)).Int("definitions", len(doc.Definitions)).Msg("rendered client")
	}

	shared, err := s.emitter.SharedFiles()
	if err != nil {
		return nil, fmt.Errorf("rendering shared files: %w", err)
	}
	for name, content := range shared {
		if prev, ok := owner[name]; ok {
			return nil, fmt.Errorf("input %s generates %s, which is reserved", prev, name)
		}
		files[filepath.Join(outDir, name)] = content
	}

	plan := planFiles(files)
	if opts.DryRun {
		return plan, nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	for _, f := range plan {
		if err := writeFileAtomic(f.Path, files[f.Path]); err != nil {
			return nil, err
		}
		s.log.Info().Str("file", f.Path).Msg("wrote")
	}

	if len(opts.Formatter) > 0 {
		if err := executeCommand(ctx, opts.Formatter, outDir); err != nil {
			return plan, err
		}
	}
	return plan, nil
}

// build loads one input and produces its IR document.
func (s *Service) build(ctx context.Context, input string, classNames map[string]string, filter TagFilter) (ir.IRDocument, error) {
	doc, err := s.load(ctx, input)
	if err != nil {
		return ir.IRDocument{}, fmt.Errorf("loading %s: %w", input, err)
	}
	name := inputBase(input)
	className := classNames[name]
	if className == "" {
		className = defaultClassName(name)
	}
	out, err := BuildDocument(doc, filter, s.log)
	if err != nil {
		return ir.IRDocument{}, fmt.Errorf("%s: %w", input, err)
	}
	out.Source = input
	out.Name = name
	out.ClassName = className
	return out, nil
}

// defaultClassName derives a class name from an input basename.
func defaultClassName(name string) string {
	className := utils.ToPascalCase(name)
	if className == "" {
		return "Client"
	}
	if c := className[0]; c >= '0' && c <= '9' {
		className = "_" + className
	}
	return className
}

// Inspect loads one input and returns its IR document without rendering it.
func (s *Service) Inspect(ctx context.Context, input string) (ir.IRDocument, error) {
	return s.build(ctx, input, nil, TagFilter{})
}

// BuildDocument derives definitions, operations and methods from doc.
func BuildDocument(doc *openapi3.T, filter TagFilter, logger zerolog.Logger) (ir.IRDocument, error) {
	defs, err := Normalize(doc)
	if err != nil {
		return ir.IRDocument{}, err
	}
	out := ir.IRDocument{
		Definitions: buildModelDefs(defs),
		Operations:  filter.apply(Describe(doc, logger)),
	}
	if doc.Info != nil {
		out.Title = doc.Info.Title
	}
	seen := map[string]string{}
	for _, op := range out.Operations {
		if prev, ok := seen[op.OperationID]; ok {
			return ir.IRDocument{}, fmt.Errorf("operationId %q used by %s and %s %s", op.OperationID, prev, strings.ToUpper(op.Method), op.Path)
		}
		seen[op.OperationID] = strings.ToUpper(op.Method) + " " + op.Path
		out.Methods = append(out.Methods, BuildMethod(op))
	}
	return out, nil
}

// inputBase is the file name of input without extension; for URLs it is
// taken from the URL path.
func inputBase(input string) string {
	name := utils.FileBase(input)
	if openapi.IsURL(input) {
		if u, err := url.Parse(input); err == nil {
			base := path.Base(u.Path)
			name = strings.TrimSuffix(base, path.Ext(base))
		}
	}
	if name == "" || name == "." || name == "/" {
		return "client"
	}
	return name
}

func planFiles(files map[string][]byte) []PlannedFile {
	plan := make([]PlannedFile, 0, len(files))
	for p, content := range files {
		plan = append(plan, PlannedFile{Path: p, Bytes: len(content)})
	}
	sort.Slice(plan, func(i, j int) bool { return plan[i].Path < plan[j].Path })
	return plan
}

// writeFileAtomic writes via a temp file in the same directory and renames
// it into place.
func writeFileAtomic(target string, content []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(target)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", target, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into %s: %w", target, err)
	}
	return nil
}

// executeCommand runs a command in Docker Compose array format in workDir
func executeCommand(ctx context.Context, command []string, workDir string) error {
	if len(command) == 0 {
		return nil
	}
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = workDir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("formatter (%s) failed: %w", strings.Join(command, " "), err)
	}
	return nil
}

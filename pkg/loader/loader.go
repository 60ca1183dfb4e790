// Package loader reads scored task nodes from JSONL files or analysis report JSON.
package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/starmap/pkg/metrics"
	"github.com/vanderheijden86/starmap/pkg/model"
)

// DataDirEnvVar names a directory searched when no input path is given.
const DataDirEnvVar = "STARMAP_DATA"

// PreferredNames defines the lookup order for node files inside a directory.
var PreferredNames = []string{"nodes.jsonl", "analysis_report.json", "report.json", "star_map.json"}

var (
	ErrNotFound          = errors.New("node file not found")
	ErrUnsupportedFormat = errors.New("unsupported node file format")
)

// Dataset is the result of loading one input file.
type Dataset struct {
	Path        string
	Repository  string // from the report header, empty for JSONL
	GeneratedAt string
	Nodes       []model.Node
}

// FindDataFile locates a node file in dir, preferring PreferredNames, then any
// non-empty .jsonl or .json file. Backup files are skipped.
func FindDataFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read data directory: %w", err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".jsonl" && ext != ".json" {
			continue
		}
		if strings.Contains(name, ".backup") || strings.Contains(name, ".orig") {
			continue
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
	}

	nonEmpty := func(name string) bool {
		info, err := os.Stat(filepath.Join(dir, name))
		return err == nil && info.Size() > 0
	}
	for _, preferred := range PreferredNames {
		for _, name := range candidates {
			if name == preferred && nonEmpty(name) {
				return filepath.Join(dir, name), nil
			}
		}
	}
	for _, name := range candidates {
		if nonEmpty(name) {
			return filepath.Join(dir, name), nil
		}
	}
	return filepath.Join(dir, candidates[0]), nil
}

// ResolvePath turns a CLI argument into a node file. An empty arg uses
// $STARMAP_DATA or the working directory; directories are searched with FindDataFile.
func ResolvePath(arg string) (string, error) {
	if arg == "" {
		arg = os.Getenv(DataDirEnvVar)
	}
	if arg == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
		arg = wd
	}
	info, err := os.Stat(arg)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, arg)
		}
		return "", err
	}
	if info.IsDir() {
		return FindDataFile(arg)
	}
	return arg, nil
}

// DefaultMaxBufferSize is the default buffer size for the scanner (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ParseOptions configures parsing.
type ParseOptions struct {
	// WarningHandler is called with warning messages (e.g., malformed JSON).
	// If nil, warnings are printed to os.Stderr unless STARMAP_QUIET=1.
	WarningHandler func(string)

	// BufferSize sets the maximum JSONL line size in bytes.
	// Lines longer than this are skipped with a warning.
	// If 0, uses DefaultMaxBufferSize (10MB).
	BufferSize int

	// NodeFilter optionally filters parsed nodes. Return true to include.
	NodeFilter func(*model.Node) bool

	// IncludeClosed keeps closed and merged nodes, which are dropped by default.
	IncludeClosed bool
}

func (o ParseOptions) warner() func(string) {
	if o.WarningHandler != nil {
		return o.WarningHandler
	}
	if os.Getenv("STARMAP_QUIET") == "1" {
		return func(string) {}
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// LoadNodes reads nodes from path with default options.
func LoadNodes(path string) ([]model.Node, error) {
	ds, err := Load(path, ParseOptions{})
	if err != nil {
		return nil, err
	}
	return ds.Nodes, nil
}

// Load reads a node file, choosing the parser by extension: .jsonl/.ndjson are read
// line by line, .json is an analysis report or a bare array of nodes.
func Load(path string, opts ParseOptions) (*Dataset, error) {
	defer metrics.Timer(metrics.NodeLoad)()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open node file: %w", err)
	}
	defer file.Close()

	var ds *Dataset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		nodes, perr := ParseNodesWithOptions(file, opts)
		if perr != nil {
			return nil, perr
		}
		ds = &Dataset{Nodes: nodes}
	case ".json":
		ds, err = ParseReportWithOptions(file, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	ds.Path = path
	return ds, nil
}

// ParseNodes parses JSONL content into nodes.
func ParseNodes(r io.Reader) ([]model.Node, error) {
	return ParseNodesWithOptions(r, ParseOptions{})
}

// ParseNodesWithOptions parses JSONL content. Malformed lines, over-long lines and
// invalid nodes are skipped with a warning; only read errors fail the parse.
func ParseNodesWithOptions(r io.Reader, opts ParseOptions) ([]model.Node, error) {
	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}
	reader := bufio.NewReaderSize(r, maxCapacity)
	warn := opts.warner()
	acc := newAccumulator(opts, warn)

	lineNum := 0
	for {
		lineNum++
		// ReadLine returns a single line, not including the end-of-line bytes.
		// If the line was too long for the buffer then isPrefix is set and the
		// beginning of the line is returned.
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading node stream at line %d: %w", lineNum, err)
		}

		if isPrefix {
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err != nil && err != io.EOF {
					return nil, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
				if err == io.EOF {
					break
				}
			}
			continue
		}

		// Strip UTF-8 BOM if present on the first line
		if lineNum == 1 {
			line = stripBOM(line)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var w wireNode
		if err := json.Unmarshal(line, &w); err != nil {
			warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}
		acc.add(w, fmt.Sprintf("line %d", lineNum))
	}

	return acc.nodes, nil
}

// accumulator applies normalization, validation, de-duplication and filtering.
type accumulator struct {
	opts  ParseOptions
	warn  func(string)
	seen  map[string]struct{}
	nodes []model.Node
}

func newAccumulator(opts ParseOptions, warn func(string)) *accumulator {
	return &accumulator{opts: opts, warn: warn, seen: make(map[string]struct{})}
}

func (a *accumulator) add(w wireNode, where string) {
	n := w.toNode()
	n.Normalize()
	if n.Kind == model.KindPullRequest && n.ReferenceID == "" {
		n.ReferenceID = ExtractReference(n.Title + " " + n.Description)
	}

	if err := n.Validate(); err != nil {
		a.warn(fmt.Sprintf("skipping invalid node on %s: %v", where, err))
		return
	}
	if _, dup := a.seen[n.ID]; dup {
		a.warn(fmt.Sprintf("skipping duplicate id %q on %s", n.ID, where))
		return
	}
	if !a.opts.IncludeClosed && n.Status.IsClosed() {
		return
	}
	if a.opts.NodeFilter != nil && !a.opts.NodeFilter(&n) {
		return
	}
	a.seen[n.ID] = struct{}{}
	a.nodes = append(a.nodes, n)
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}

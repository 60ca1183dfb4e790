package loader

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/starmap/pkg/model"
)

// analysisReport is the analyzer's report document. Only the fields the layout
// needs are decoded.
type analysisReport struct {
	GeneratedAt string     `json:"generated_at"`
	Repository  string     `json:"repository"`
	Debts       []wireNode `json:"debts"`
	StarMap     *struct {
		Nodes []wireNode `json:"nodes"`
	} `json:"star_map"`
}

// ParseReport parses a .json node document with default options.
func ParseReport(r io.Reader) (*Dataset, error) {
	return ParseReportWithOptions(r, ParseOptions{})
}

// ParseReportWithOptions parses either an analysis report ({"repository", "debts"})
// or a bare array of nodes. A report without debts falls back to its star_map nodes.
// Invalid nodes are skipped with a warning.
func ParseReportWithOptions(r io.Reader, opts ParseOptions) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	data = bytes.TrimSpace(stripBOM(data))
	if len(data) == 0 {
		return &Dataset{}, nil
	}

	warn := opts.warner()
	acc := newAccumulator(opts, warn)
	ds := &Dataset{}

	var items []wireNode
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parsing node array: %w", err)
		}
	case '{':
		var rep analysisReport
		if err := json.Unmarshal(data, &rep); err != nil {
			return nil, fmt.Errorf("parsing report: %w", err)
		}
		ds.Repository = rep.Repository
		ds.GeneratedAt = rep.GeneratedAt
		items = rep.Debts
		if len(items) == 0 && rep.StarMap != nil {
			items = rep.StarMap.Nodes
		}
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or array", ErrUnsupportedFormat)
	}

	for i, w := range items {
		acc.add(w, fmt.Sprintf("item %d", i))
	}
	ds.Nodes = acc.nodes
	if ds.Nodes == nil {
		ds.Nodes = []model.Node{}
	}
	return ds, nil
}

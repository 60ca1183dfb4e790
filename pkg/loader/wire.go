package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/starmap/pkg/model"
)

// wireNode accepts both analyzer debt items and star map nodes.
type wireNode struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Label          string        `json:"label"`
	Module         string        `json:"module"`
	Category       string        `json:"category"`
	SourceType     string        `json:"source_type"`
	Kind           string        `json:"kind"`
	ReferenceID    flexString    `json:"reference_id"`
	Priority       priorityValue `json:"priority"`
	Difficulty     string        `json:"difficulty"`
	Status         string        `json:"status"`
	Assignees      []string      `json:"assignees"`
	Skills         []string      `json:"skills"`
	Recommendation string        `json:"recommendation"`
	URL            string        `json:"html_url"`
	Description    string        `json:"description"`
}

func (w wireNode) toNode() model.Node {
	title := w.Title
	if title == "" {
		title = w.Label
	}
	kind := w.SourceType
	if kind == "" {
		kind = w.Kind
	}
	if kind == "" {
		kind = string(model.KindTodo)
	}
	return model.Node{
		ID:             strings.TrimSpace(w.ID),
		Title:          title,
		Module:         w.Module,
		Category:       model.Category(w.Category),
		Kind:           model.Kind(kind),
		ReferenceID:    strings.TrimSpace(string(w.ReferenceID)),
		Priority:       float64(w.Priority),
		Difficulty:     model.Difficulty(w.Difficulty),
		Status:         model.Status(w.Status),
		Assignees:      w.Assignees,
		Skills:         w.Skills,
		Recommendation: w.Recommendation,
		URL:            w.URL,
		Description:    w.Description,
	}
}

// priorityValue is either a bare number or a score breakdown carrying "total".
type priorityValue float64

func (p *priorityValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if data[0] == '{' {
		var breakdown struct {
			Total *float64 `json:"total"`
		}
		if err := json.Unmarshal(data, &breakdown); err != nil {
			return fmt.Errorf("priority breakdown: %w", err)
		}
		if breakdown.Total == nil {
			return fmt.Errorf("priority breakdown has no total")
		}
		*p = priorityValue(*breakdown.Total)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("priority: %w", err)
	}
	*p = priorityValue(f)
	return nil
}

// flexString accepts a JSON string or number; GitHub issue numbers arrive as either.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("reference_id must be a string or number: %w", err)
	}
	*s = flexString(num.String())
	return nil
}

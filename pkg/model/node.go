// Package model defines the task nodes plotted on the star map.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Category is the kind of work a node represents.
type Category string

const (
	CategorySecurity        Category = "security"
	CategoryPerformance     Category = "performance"
	CategoryMaintainability Category = "maintainability"
	CategoryDocumentation   Category = "documentation"
	CategoryTesting         Category = "testing"
	CategoryCI              Category = "ci"
	CategoryFeature         Category = "feature"
	CategoryUnknown         Category = "unknown"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategorySecurity,
	CategoryPerformance,
	CategoryMaintainability,
	CategoryDocumentation,
	CategoryTesting,
	CategoryCI,
	CategoryFeature,
	CategoryUnknown,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Kind is where a node came from.
type Kind string

const (
	KindTodo        Kind = "todo"
	KindIssue       Kind = "issue"
	KindPullRequest Kind = "pr"
)

// IsValid reports whether k is a known source kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindTodo, KindIssue, KindPullRequest:
		return true
	}
	return false
}

// Difficulty is the effort class assigned by the scorer.
type Difficulty string

const (
	DifficultyEntry        Difficulty = "entry"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// IsValid reports whether d is a known difficulty.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEntry, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Status is the lifecycle state reported by the source host.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
	StatusMerged Status = "merged"
	StatusDraft  Status = "draft"
)

// IsClosed reports whether the node no longer needs work.
func (s Status) IsClosed() bool {
	return s == StatusClosed || s == StatusMerged
}

// Node is one schedulable unit of work: an issue, a pull request or a code TODO.
// Nodes are inputs to a layout pass and are never mutated by it.
type Node struct {
	ID             string     `json:"id"`
	Title          string     `json:"title,omitempty"`
	Module         string     `json:"module,omitempty"`
	Category       Category   `json:"category"`
	Kind           Kind       `json:"source_type"`
	ReferenceID    string     `json:"reference_id,omitempty"`
	Priority       float64    `json:"priority"`
	Difficulty     Difficulty `json:"difficulty"`
	Status         Status     `json:"status"`
	Assignees      []string   `json:"assignees,omitempty"`
	Skills         []string   `json:"skills,omitempty"`
	Recommendation string     `json:"recommendation,omitempty"`
	URL            string     `json:"html_url,omitempty"`
	Description    string     `json:"description,omitempty"`
}

// Validation errors.
var (
	ErrMissingID       = errors.New("node id is required")
	ErrNonFinitePrio   = errors.New("priority must be a finite number")
	ErrUnknownKind     = errors.New("unknown source kind")
	ErrSelfReferencePR = errors.New("pull request references itself")
)

// Validate checks the fields the layout engine relies on.
func (n *Node) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return ErrMissingID
	}
	if math.IsNaN(n.Priority) || math.IsInf(n.Priority, 0) {
		return fmt.Errorf("%s: %w", n.ID, ErrNonFinitePrio)
	}
	if !n.Kind.IsValid() {
		return fmt.Errorf("%s: %w %q", n.ID, ErrUnknownKind, n.Kind)
	}
	if n.Kind == KindPullRequest && n.ReferenceID != "" && n.ReferenceID == n.ID {
		return fmt.Errorf("%s: %w", n.ID, ErrSelfReferencePR)
	}
	return nil
}

// Normalize lower-cases enum fields and maps unknown values onto their defaults.
func (n *Node) Normalize() {
	n.Category = Category(strings.ToLower(strings.TrimSpace(string(n.Category))))
	if !n.Category.IsValid() {
		n.Category = CategoryUnknown
	}
	n.Kind = normalizeKind(string(n.Kind))
	n.Difficulty = Difficulty(strings.ToLower(strings.TrimSpace(string(n.Difficulty))))
	if !n.Difficulty.IsValid() {
		n.Difficulty = DifficultyIntermediate
	}
	status := strings.ToLower(strings.TrimSpace(string(n.Status)))
	if status == "" {
		status = string(StatusOpen)
	}
	n.Status = Status(status)
}

func normalizeKind(raw string) Kind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "todo", "code-todo", "code_todo":
		return KindTodo
	case "issue":
		return KindIssue
	case "pr", "pull-request", "pull_request", "pullrequest":
		return KindPullRequest
	}
	return Kind(strings.ToLower(strings.TrimSpace(raw)))
}

// Label returns the text shown next to a node marker.
func (n *Node) Label() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RunID names a stored comparison run; BenchID a stored bench report.
// Both are time-ordered UUIDs so listings sort by creation.
type (
	RunID   string
	BenchID string
)

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

func NewRunID() RunID     { return RunID(newUUID()) }
func NewBenchID() BenchID { return BenchID(newUUID()) }

func (id RunID) String() string   { return string(id) }
func (id BenchID) String() string { return string(id) }

// ParseRunID accepts only UUIDs, so a typo fails before any lookup.
func ParseRunID(s string) (RunID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("run ID %q is not a UUID: %w", s, err)
	}
	return RunID(s), nil
}

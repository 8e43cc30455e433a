package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// RunID identifies one evaluated execution ordering (one iteration of one technique).
	RunID ID
	// SessionID identifies an experiment session (many iterations, many techniques).
	SessionID ID
	// TechniqueKey labels a selection/prioritization technique under evaluation.
	TechniqueKey ID
	// TestID is the opaque identifier of a single test case.
	TestID ID
	// FaultID is the opaque identifier of an injected or historical fault.
	FaultID ID
)

// String conversions for domain IDs
func (id RunID) String() string        { return ID(id).String() }
func (id SessionID) String() string    { return ID(id).String() }
func (id TechniqueKey) String() string { return ID(id).String() }
func (id TestID) String() string       { return ID(id).String() }
func (id FaultID) String() string      { return ID(id).String() }

// ParseTechniqueKey parses a string into TechniqueKey
func ParseTechniqueKey(s string) (TechniqueKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("technique key cannot be empty")
	}
	return TechniqueKey(s), nil
}

// ParseSessionID parses a string into SessionID
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(s), nil
}

// ParseTestID parses a string into TestID
func ParseTestID(s string) (TestID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("test ID cannot be empty")
	}
	return TestID(s), nil
}

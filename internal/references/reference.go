// Package references implements the reference material catalog: case studies
// matched to leads by industry during the pipeline's best-effort matching
// stage and offered to the content generator for mention.
package references

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reference is one published case study or collateral piece.
type Reference struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Industry  string    `json:"industry"`
	Summary   string    `json:"summary"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommand carries the data needed to register a reference material.
type CreateCommand struct {
	Title    string `json:"title"`
	Industry string `json:"industry"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// Validate checks the required reference fields.
func (cmd *CreateCommand) Validate() error {
	if cmd.Title == "" {
		return fmt.Errorf("%w: title required", ErrInvalidReference)
	}
	if cmd.Industry == "" {
		return fmt.Errorf("%w: industry required", ErrInvalidReference)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalidMindMap wraps every structural validation failure.
var ErrInvalidMindMap = errors.New("invalid mind map")

// MindMap is a generated mind map: one central idea and an ordered list of
// branches. Branch order is significant; node ids and layouts derive from it.
type MindMap struct {
	// CentralIdea is the root concept of the map.
	CentralIdea string `json:"centralIdea" yaml:"central_idea" validate:"required"`

	// Branches are the first-level groupings under the central idea.
	Branches []Branch `json:"branches" yaml:"branches" validate:"dive"`
}

// Branch is a first-level grouping with its ordered sub-branch concepts.
type Branch struct {
	Title       string   `json:"title" yaml:"title" validate:"required"`
	SubBranches []string `json:"subBranches" yaml:"sub_branches"`
}

// ConceptCount returns the number of concepts in the map: the central idea,
// every branch title, and every sub-branch item.
func (m MindMap) ConceptCount() int {
	n := 1 + len(m.Branches)
	for _, b := range m.Branches {
		n += len(b.SubBranches)
	}
	return n
}

// Validate checks the structural rules a MindMap must satisfy before it is
// analyzed or stored: a non-empty central idea and a title on every branch.
func (m MindMap) Validate() error {
	if err := validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidMindMap, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidMindMap, err)
	}
	return nil
}

// MindMapRecord is a saved mind map together with the topic text that
// produced it.
type MindMapRecord struct {
	ID        string    `json:"id" yaml:"id"`
	MindMap   MindMap   `json:"mindMap" yaml:"mind_map"`
	UserInput string    `json:"userInput" yaml:"user_input"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

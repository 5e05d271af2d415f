// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mindgraph/pkg/types"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export writes every saved mind map to w as a JSON array or a YAML
// sequence.
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	records, err := s.All(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	return nil
}

// Import reads a JSON array of records from r and upserts them in one
// transaction. Records without an id get a fresh one; missing timestamps
// default to now. It returns the number of records written.
func (s *Store) Import(ctx context.Context, r io.Reader) (int, error) {
	var records []types.MindMapRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("parsing import JSON: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	for i, rec := range records {
		if err := rec.MindMap.Validate(); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = rec.CreatedAt
		}
		if err := upsert(ctx, tx, rec); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return len(records), nil
}

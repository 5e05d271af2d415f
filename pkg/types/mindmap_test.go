// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMindMapConceptCount(t *testing.T) {
	mm := MindMap{
		CentralIdea: "Learning Guitar",
		Branches: []Branch{
			{Title: "Technique", SubBranches: []string{"Chords", "Scales"}},
			{Title: "Theory", SubBranches: []string{"Intervals", "Keys"}},
		},
	}
	assert.Equal(t, 7, mm.ConceptCount())
	assert.Equal(t, 1, MindMap{CentralIdea: "Solo"}.ConceptCount())
}

func TestMindMapValidate(t *testing.T) {
	tests := []struct {
		name    string
		mm      MindMap
		wantErr string
	}{
		{name: "central only", mm: MindMap{CentralIdea: "x"}},
		{name: "with branches", mm: MindMap{CentralIdea: "x", Branches: []Branch{{Title: "a"}}}},
		{name: "missing central idea", mm: MindMap{}, wantErr: "CentralIdea failed required"},
		{name: "blank branch title", mm: MindMap{CentralIdea: "x", Branches: []Branch{{Title: "a"}, {}}}, wantErr: "Branches[1].Title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mm.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidMindMap)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMindMapJSONKeys(t *testing.T) {
	data, err := json.Marshal(MindMap{CentralIdea: "c", Branches: []Branch{{Title: "t", SubBranches: []string{"s"}}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"centralIdea":"c","branches":[{"title":"t","subBranches":["s"]}]}`, string(data))
}

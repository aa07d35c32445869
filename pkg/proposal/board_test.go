package proposal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededBoard(t *testing.T) *Board {
	t.Helper()
	b := NewBoard()
	require.True(t, b.Seed(StandardSections()))
	return b
}

func TestBoard_SeedOnlyOnce(t *testing.T) {
	b := seededBoard(t)

	assert.False(t, b.Seed([]Section{{ID: "x", Title: "Other"}}))
	assert.Equal(t, 11, b.Len())

	for _, s := range b.All() {
		assert.False(t, s.IsCustom, s.Title)
		assert.Equal(t, StatusIncomplete, s.Status, s.Title)
	}
}

func TestBoard_PatchSetsAIGeneratedAndNeverReverts(t *testing.T) {
	b := seededBoard(t)

	patches := []SectionPatch{
		{SectionID: "1", Status: StatusPtr(StatusInProgress)},
		{SectionID: "1"},
		{SectionID: "1", Content: StringPtr("draft")},
		{SectionID: "1", Status: StatusPtr(StatusIncomplete)},
	}

	for i, p := range patches {
		require.True(t, b.Patch(p))
		s, ok := b.Get("1")
		require.True(t, ok)
		assert.True(t, s.AIGenerated, "after patch %d", i)
	}

	s, _ := b.Get("1")
	assert.Equal(t, "draft", s.Content)
	assert.Equal(t, StatusIncomplete, s.Status, "status direction is not enforced")
}

func TestBoard_PatchOnlyProvidedFields(t *testing.T) {
	b := seededBoard(t)

	require.True(t, b.Patch(SectionPatch{SectionID: "2", Content: StringPtr("context")}))
	require.True(t, b.Patch(SectionPatch{SectionID: "2", Status: StatusPtr(StatusComplete)}))

	s, _ := b.Get("2")
	assert.Equal(t, "context", s.Content)
	assert.Equal(t, StatusComplete, s.Status)
}

func TestBoard_PatchUnknownIsNoop(t *testing.T) {
	b := seededBoard(t)
	before := b.All()

	assert.False(t, b.Patch(SectionPatch{SectionID: "404", Status: StatusPtr(StatusComplete)}))
	assert.Equal(t, before, b.All())
}

func TestBoard_Remove(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		wantRemoved bool
	}{
		{name: "standard locked section", id: "1", wantRemoved: false},
		{name: "another locked section", id: "9", wantRemoved: false},
		{name: "deletable standard section", id: "10", wantRemoved: true},
		{name: "unknown section", id: "99", wantRemoved: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := seededBoard(t)
			before := b.All()

			assert.Equal(t, tt.wantRemoved, b.Remove(tt.id))

			if !tt.wantRemoved {
				assert.Equal(t, before, b.All())
				return
			}

			after := b.All()
			require.Len(t, after, len(before)-1)
			var ids []string
			for _, s := range after {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "11"}, ids)
		})
	}
}

func TestBoard_InsertThirteenthSection(t *testing.T) {
	b := seededBoard(t)
	b.Insert("Elder Involvement")
	require.Equal(t, 12, b.Len())

	s := b.Insert("Youth Impact & Training Plan")

	assert.Equal(t, 13, b.Len())
	assert.Equal(t, "13", s.ID)
	assert.True(t, s.IsCustom)
	assert.True(t, s.CanDelete)
	assert.Equal(t, StatusInProgress, s.Status)

	all := b.All()
	assert.Equal(t, s, all[len(all)-1])
}

func TestBoard_InsertNeverReusesIDs(t *testing.T) {
	b := seededBoard(t)

	first := b.Insert("Timeline")
	require.True(t, b.Remove(first.ID))
	require.True(t, b.Remove("11"))

	second := b.Insert("Timeline again")
	assert.NotEqual(t, first.ID, second.ID)

	seen := map[string]bool{}
	for _, s := range b.All() {
		assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true
	}
}

func TestBoard_Progress(t *testing.T) {
	b := NewBoard()
	assert.Equal(t, Progress{}, b.Progress())
	assert.Equal(t, float64(0), b.Progress().Percent())

	b.Seed(StandardSections())
	b.Patch(SectionPatch{SectionID: "1", Status: StatusPtr(StatusComplete)})
	b.Patch(SectionPatch{SectionID: "2", Status: StatusPtr(StatusComplete)})
	b.Patch(SectionPatch{SectionID: "3", Status: StatusPtr(StatusInProgress)})

	p := b.Progress()
	assert.Equal(t, Progress{Completed: 2, Total: 11}, p)
	assert.InDelta(t, 18.18, p.Percent(), 0.01)

	b.Insert("Custom")
	assert.Equal(t, b.Len(), b.Progress().Total)
	assert.LessOrEqual(t, b.Progress().Completed, b.Progress().Total)
}

func TestBoard_SnapshotIsACopy(t *testing.T) {
	b := NewBoard()
	b.Seed([]Section{{ID: "1", Title: "Sources", Sources: []string{"plan.pdf"}}})

	snap := b.All()
	snap[0].Title = "changed"
	snap[0].Sources[0] = "changed"

	s, _ := b.Get("1")
	assert.Equal(t, "Sources", s.Title)
	assert.Equal(t, []string{"plan.pdf"}, s.Sources)
}

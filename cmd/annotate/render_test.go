package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"qualcode/internal/domain/models/coding"
	"qualcode/internal/workspace"
)

func testView() *workspace.View {
	docs := []coding.Document{{ID: "d1", Name: "Interview 1", Content: "The quick brown fox"}}
	themeID := "t1"
	codes := []coding.Code{
		{ID: "c1", Name: "Speed", Color: "#3B82F6", ThemeID: &themeID},
		{ID: "c2", Name: "Animal", Color: "#10B981"},
	}
	themes := []coding.Theme{{ID: themeID, Name: "Motion", CodeIDs: []string{"c1"}}}
	assignments := []coding.CodeAssignment{
		{ID: "a2", DocumentID: "d1", CodeID: "c2", StartChar: 16, EndChar: 19, TextSnapshot: "fox", CodeName: "Animal", CreatedAt: time.Now()},
		{ID: "a1", DocumentID: "d1", CodeID: "c1", StartChar: 4, EndChar: 9, TextSnapshot: "quick", CodeName: "Speed", Note: "pace", CreatedAt: time.Now()},
	}

	store := workspace.NewProjectStore()
	store.ApplySnapshot(&workspace.Snapshot{
		Project:         coding.Project{ID: "p1", Title: "Study"},
		Documents:       &docs,
		Codes:           &codes,
		CodeAssignments: &assignments,
		Themes:          &themes,
	})
	return store.View()
}

func TestRenderDocumentOrdersByPosition(t *testing.T) {
	view := testView()
	doc, ok := view.Document("d1")
	assert.True(t, ok)

	var buf bytes.Buffer
	renderDocument(&buf, view, doc)
	out := buf.String()

	assert.Contains(t, out, "The quick brown fox")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(`"quick"`)), bytes.Index(buf.Bytes(), []byte(`"fox"`)))
	assert.Contains(t, out, "note: pace")
}

func TestRenderProjectListsCodes(t *testing.T) {
	var buf bytes.Buffer
	renderProject(&buf, testView())
	out := buf.String()

	assert.Contains(t, out, "Study")
	assert.Contains(t, out, "Interview 1")
	assert.Contains(t, out, "Speed")
	assert.Contains(t, out, "Animal")
	assert.Contains(t, out, "Themes:")
	assert.Contains(t, out, "Motion")
}

func TestFindCodeIgnoresCase(t *testing.T) {
	codes := []coding.Code{{ID: "c1", Name: "Speed"}}

	found := findCode(codes, "  speed ")
	if assert.NotNil(t, found) {
		assert.Equal(t, "c1", found.ID)
	}
	assert.Nil(t, findCode(codes, "Slow"))
}

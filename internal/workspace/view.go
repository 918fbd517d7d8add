package workspace

import (
	"slices"
	"sort"

	"qualcode/internal/domain/models/coding"
)

// View is an immutable projection of the project store. Accessors return copies.
type View struct {
	loaded        bool
	generation    uint64
	codesStamp    uint64
	project       coding.Project
	collaborators []coding.Collaborator
	documents     []coding.Document
	codes         []coding.Code
	assignments   []coding.CodeAssignment
	annotations   []coding.Annotation
	codebooks     []coding.Codebook
	themes        []coding.Theme
}

// Loaded reports whether any snapshot has been applied.
func (v *View) Loaded() bool { return v.loaded }

// Generation identifies the snapshot the view was taken from.
func (v *View) Generation() uint64 { return v.generation }

func (v *View) Project() coding.Project                { return v.project }
func (v *View) Collaborators() []coding.Collaborator   { return slices.Clone(v.collaborators) }
func (v *View) Documents() []coding.Document           { return slices.Clone(v.documents) }
func (v *View) Codes() []coding.Code                   { return slices.Clone(v.codes) }
func (v *View) Assignments() []coding.CodeAssignment   { return slices.Clone(v.assignments) }
func (v *View) Annotations() []coding.Annotation       { return slices.Clone(v.annotations) }
func (v *View) Codebooks() []coding.Codebook           { return slices.Clone(v.codebooks) }
func (v *View) Themes() []coding.Theme                 { return slices.Clone(v.themes) }

// Document looks up a document by id.
func (v *View) Document(id string) (coding.Document, bool) {
	i := slices.IndexFunc(v.documents, func(d coding.Document) bool { return d.ID == id })
	if i < 0 {
		return coding.Document{}, false
	}
	return v.documents[i], true
}

// Code looks up a code by id.
func (v *View) Code(id string) (coding.Code, bool) {
	i := slices.IndexFunc(v.codes, func(c coding.Code) bool { return c.ID == id })
	if i < 0 {
		return coding.Code{}, false
	}
	return v.codes[i], true
}

// Assignment looks up an assignment by id.
func (v *View) Assignment(id string) (coding.CodeAssignment, bool) {
	i := slices.IndexFunc(v.assignments, func(a coding.CodeAssignment) bool { return a.ID == id })
	if i < 0 {
		return coding.CodeAssignment{}, false
	}
	return v.assignments[i], true
}

// AssignmentsForDocument returns a document's assignments ordered by position.
func (v *View) AssignmentsForDocument(documentID string) []coding.CodeAssignment {
	var out []coding.CodeAssignment
	for _, a := range v.assignments {
		if a.DocumentID == documentID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartChar != out[j].StartChar {
			return out[i].StartChar < out[j].StartChar
		}
		return out[i].EndChar < out[j].EndChar
	})
	return out
}

// Overlapping returns the assignments of a document sharing at least one
// character with [start, end). Overlap is legal; this only reports it.
func (v *View) Overlapping(documentID string, start, end int) []coding.CodeAssignment {
	span := coding.CodeAssignment{DocumentID: documentID, StartChar: start, EndChar: end}
	var out []coding.CodeAssignment
	for _, a := range v.assignments {
		if a.Overlaps(&span) {
			out = append(out, a)
		}
	}
	return out
}

// CodeCount pairs a code with the number of assignments that use it.
type CodeCount struct {
	Code  coding.Code
	Count int
}

// CodeDistribution counts local assignments per code, most used first.
// Codes without assignments are included with a zero count.
func (v *View) CodeDistribution() []CodeCount {
	counts := make(map[string]int, len(v.codes))
	for _, a := range v.assignments {
		counts[a.CodeID]++
	}

	out := make([]CodeCount, 0, len(v.codes))
	for _, c := range v.codes {
		out = append(out, CodeCount{Code: c, Count: counts[c.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// CodesByTheme returns the codes filed under a theme, in code order. An empty
// themeID selects the codes that belong to no theme.
func (v *View) CodesByTheme(themeID string) []coding.Code {
	var out []coding.Code
	for _, c := range v.codes {
		if (c.ThemeID == nil && themeID == "") || (c.ThemeID != nil && *c.ThemeID == themeID) {
			out = append(out, c)
		}
	}
	return out
}

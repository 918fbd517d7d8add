package main

import (
	"fmt"
	"io"
	"strings"

	"qualcode/internal/domain/models/coding"
	"qualcode/internal/workspace"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// codeLabel renders a code name in its own display color
func codeLabel(name, color string) string {
	if color == "" {
		return name
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(name)
}

func renderProject(w io.Writer, view *workspace.View) {
	project := view.Project()
	fmt.Fprintln(w, titleStyle.Render(project.Title))
	if project.Description != "" {
		fmt.Fprintln(w, dimStyle.Render(project.Description))
	}

	if q := project.ResearchDetails.ResearchQuestions; len(q) > 0 {
		fmt.Fprintln(w, "\nResearch questions:")
		for _, item := range q {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}

	fmt.Fprintln(w, "\nDocuments:")
	for _, doc := range view.Documents() {
		fmt.Fprintf(w, "  %s  %s (%d chars, %d assignments)\n",
			dimStyle.Render(doc.ID), doc.Name, doc.Length(), len(view.AssignmentsForDocument(doc.ID)))
	}

	fmt.Fprintln(w, "\nCodes:")
	for _, cc := range view.CodeDistribution() {
		fmt.Fprintf(w, "  %4d  %s  %s\n", cc.Count, codeLabel(cc.Code.Name, cc.Code.Color), dimStyle.Render(cc.Code.ID))
	}

	if themes := view.Themes(); len(themes) > 0 {
		fmt.Fprintln(w, "\nThemes:")
		for _, th := range themes {
			var names []string
			for _, code := range view.CodesByTheme(th.ID) {
				names = append(names, codeLabel(code.Name, code.Color))
			}
			fmt.Fprintf(w, "  %s  %s\n", titleStyle.Render(th.Name), strings.Join(names, ", "))
		}
	}

	if annotations := view.Annotations(); len(annotations) > 0 {
		fmt.Fprintln(w, "\nComments:")
		for _, n := range annotations {
			fmt.Fprintf(w, "  [%s] %s\n", n.AnnotationType, n.Content)
		}
	}
}

// renderDocument prints the text followed by each assignment, ordered by position
func renderDocument(w io.Writer, view *workspace.View, doc coding.Document) {
	fmt.Fprintln(w, titleStyle.Render(doc.Name))
	fmt.Fprintln(w, doc.Content)
	fmt.Fprintln(w)
	for _, a := range view.AssignmentsForDocument(doc.ID) {
		renderAssignment(w, a)
	}
}

func renderAssignment(w io.Writer, a coding.CodeAssignment) {
	fmt.Fprintf(w, "%s [%d,%d) %s %q\n",
		dimStyle.Render(a.ID), a.StartChar, a.EndChar, codeLabel(a.CodeName, a.CodeColor), a.TextSnapshot)
	if note := strings.TrimSpace(a.Note); note != "" {
		fmt.Fprintf(w, "    note: %s\n", note)
	}
}

// Package seed creates demo projects through the coding services, so seeded
// data passes the same validation and cache invalidation as API traffic.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"qualcode/internal/domain/models/coding"
	codingSvc "qualcode/internal/domain/services/coding"
	serviceCoding "qualcode/internal/service/coding"
)

// Seeder populates a demo project: interview transcripts, a starter codebook,
// a handful of coded passages, comments and themes grouping the codes.
type Seeder struct {
	services *serviceCoding.Services
	logger   *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(services *serviceCoding.Services, logger *slog.Logger) *Seeder {
	return &Seeder{
		services: services,
		logger:   logger,
	}
}

// Result describes what SeedDemoProject created
type Result struct {
	Project     *coding.Project
	Documents   int
	Codes       int
	Assignments int
	Annotations int
	Themes      int
}

type seedDocument struct {
	name    string
	content string
	// passages are coded by exact phrase; each phrase must occur in content
	passages []seedPassage
}

type seedPassage struct {
	phrase string
	code   string
	color  string
	note   string
}

// SeedDemoProject creates a project owned by actor and fills it with demo content.
// The thematic-analysis template is applied first so its codes are reused by name.
func (s *Seeder) SeedDemoProject(ctx context.Context, actor codingSvc.Actor, title string) (*Result, error) {
	project, err := s.services.Projects.CreateProject(ctx, actor, &codingSvc.CreateProjectRequest{
		Title:       title,
		Description: "Demo project: remote work interviews",
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.logger.Info("seeded project", "project_id", project.ID, "title", project.Title)

	result := &Result{Project: project}

	if _, err := s.services.Projects.SaveResearchDetails(ctx, actor, project.ID, &codingSvc.ResearchDetailsRequest{
		ResearchQuestions: []string{
			"How do employees experience the shift to remote work?",
			"Which practices help teams stay connected?",
		},
		ResearchObjectives: []string{
			"Identify recurring themes of isolation and autonomy",
		},
	}); err != nil {
		return nil, fmt.Errorf("save research details: %w", err)
	}

	if _, err := s.services.Codebooks.ApplyTemplate(ctx, actor, project.ID, "thematic-analysis"); err != nil {
		// Templates are optional decoration; the rest of the demo still works
		s.logger.Warn("template not applied", "template", "thematic-analysis", "error", err)
	}

	codes := make(map[string]string)
	for _, data := range demoDocuments() {
		doc, err := s.services.Documents.CreateDocument(ctx, actor, &codingSvc.CreateDocumentRequest{
			ProjectID: project.ID,
			Name:      data.name,
			Content:   data.content,
		})
		if err != nil {
			return nil, fmt.Errorf("create document %q: %w", data.name, err)
		}
		result.Documents++

		for _, p := range data.passages {
			start, end, ok := phraseSpan(doc.Content, p.phrase)
			if !ok {
				return nil, fmt.Errorf("phrase %q not found in %q", p.phrase, data.name)
			}

			assigned, err := s.services.Assignments.AssignCode(ctx, actor, &codingSvc.AssignCodeRequest{
				DocumentID: doc.ID,
				CodeName:   p.code,
				CodeColor:  p.color,
				StartChar:  start,
				EndChar:    end,
				Text:       p.phrase,
			})
			if err != nil {
				return nil, fmt.Errorf("assign %q: %w", p.code, err)
			}
			result.Assignments++
			codes[assigned.Code.Name] = assigned.Code.ID

			if p.note == "" {
				continue
			}
			if _, err := s.services.Assignments.UpdateNote(ctx, actor, assigned.CodeAssignment.ID,
				&codingSvc.UpdateAssignmentRequest{Note: p.note}); err != nil {
				return nil, fmt.Errorf("note on %q: %w", p.code, err)
			}
		}

		documentID := doc.ID
		if _, err := s.services.Annotations.CreateAnnotation(ctx, actor, &codingSvc.CreateAnnotationRequest{
			ProjectID:      project.ID,
			DocumentID:     &documentID,
			Content:        "Follow up with the participant about " + strings.ToLower(data.passages[0].code) + ".",
			AnnotationType: coding.AnnotationTypeTodo,
		}); err != nil {
			return nil, fmt.Errorf("annotate %q: %w", data.name, err)
		}
		result.Annotations++
	}
	result.Codes = len(codes)

	for _, th := range demoThemes() {
		theme, err := s.services.Themes.CreateTheme(ctx, actor, &codingSvc.CreateThemeRequest{
			ProjectID:   project.ID,
			Name:        th.name,
			Description: th.description,
		})
		if err != nil {
			return nil, fmt.Errorf("create theme %q: %w", th.name, err)
		}
		for _, name := range th.codes {
			if _, err := s.services.Themes.SetCodeTheme(ctx, actor, codes[name], &theme.ID); err != nil {
				return nil, fmt.Errorf("file %q under %q: %w", name, th.name, err)
			}
		}
		result.Themes++
	}

	s.logger.Info("seeding complete",
		"project_id", project.ID,
		"documents", result.Documents,
		"codes", result.Codes,
		"assignments", result.Assignments,
		"themes", result.Themes,
	)
	return result, nil
}

// phraseSpan returns the rune offsets of the first occurrence of phrase
func phraseSpan(content, phrase string) (int, int, bool) {
	i := strings.Index(content, phrase)
	if i < 0 || phrase == "" {
		return 0, 0, false
	}
	start := utf8.RuneCountInString(content[:i])
	return start, start + utf8.RuneCountInString(phrase), true
}

func demoDocuments() []seedDocument {
	return []seedDocument{
		{
			name: "Interview 01 - Product designer",
			content: "I started working from home in March. At first I loved the quiet, " +
				"I could finally focus for hours without interruptions. " +
				"After a few months I missed the small talk at the coffee machine. " +
				"Now we have a video call every Friday that is just for chatting, and it helps.",
			passages: []seedPassage{
				{phrase: "I could finally focus for hours without interruptions", code: "Autonomy", color: "#10B981"},
				{phrase: "I missed the small talk at the coffee machine", code: "Isolation", color: "#EF4444",
					note: "Informal contact is what is missed, not meetings."},
				{phrase: "a video call every Friday that is just for chatting", code: "Team rituals", color: "#8B5CF6"},
			},
		},
		{
			name: "Interview 02 - Support engineer",
			content: "Honestly the hardest part is that nobody sees how much I do. " +
				"In the office my manager would notice when I stayed late. " +
				"Remote, I have to write everything down in the ticket so it counts. " +
				"On the plus side I choose my own hours, which matters with two kids.",
			passages: []seedPassage{
				{phrase: "nobody sees how much I do", code: "Visibility", color: "#F59E0B"},
				{phrase: "I have to write everything down in the ticket so it counts", code: "Visibility", color: "#F59E0B"},
				{phrase: "I choose my own hours", code: "Autonomy", color: "#10B981",
					note: "Autonomy framed around caregiving."},
			},
		},
		{
			name: "Interview 03 - Team lead",
			content: "Onboarding new people remotely is tough. They don't absorb the culture by osmosis. " +
				"We pair them with a buddy for the first month and keep cameras optional. " +
				"I still worry that some of them feel alone but won't say it.",
			passages: []seedPassage{
				{phrase: "They don't absorb the culture by osmosis", code: "Onboarding", color: "#3B82F6"},
				{phrase: "We pair them with a buddy for the first month", code: "Team rituals", color: "#8B5CF6"},
				{phrase: "some of them feel alone but won't say it", code: "Isolation", color: "#EF4444"},
			},
		},
	}
}

type seedTheme struct {
	name        string
	description string
	codes       []string
}

// demoThemes group codes that demoDocuments assigns
func demoThemes() []seedTheme {
	return []seedTheme{
		{name: "Connection", description: "Staying in touch without an office", codes: []string{"Isolation", "Team rituals", "Onboarding"}},
		{name: "Ways of working", description: "Control over time and recognition", codes: []string{"Autonomy", "Visibility"}},
	}
}

package workspace

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models/coding"
	codingSvc "qualcode/internal/domain/services/coding"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAPI is an in-process project server. It keeps authoritative state like
// the real backend and counts calls per operation.
type fakeAPI struct {
	mu     sync.Mutex
	nextID int
	calls  map[string]int

	project       coding.Project
	collaborators []coding.Collaborator
	documents     []coding.Document
	codes         []coding.Code
	assignments   []coding.CodeAssignment
	annotations   []coding.Annotation
	themes        []coding.Theme

	// failures by operation name
	fail map[string]error

	// getGates block GetProjectWithContent per project until the gate yields.
	// getStarted is signalled when a gated get begins.
	getGates   map[string]chan struct{}
	getStarted chan string

	// assignGate, when set, blocks AssignCode until closed.
	assignGate chan struct{}

	// omitCreatedAt drops created_at from assign responses
	omitCreatedAt bool
}

func newFakeAPI(projectID string) *fakeAPI {
	return &fakeAPI{
		calls:   map[string]int{},
		fail:    map[string]error{},
		project: coding.Project{ID: projectID, OwnerID: "owner-1", Title: "Interviews"},
	}
}

func (f *fakeAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeAPI) addDocument(name, content string) coding.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := coding.Document{ID: f.id("doc"), ProjectID: f.project.ID, Name: name, Content: content, DocumentType: coding.DocumentTypeText}
	f.documents = append(f.documents, doc)
	return doc
}

// gate makes gets for projectID block until the returned channel yields
func (f *fakeAPI) gate(projectID string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getGates == nil {
		f.getGates = map[string]chan struct{}{}
	}
	if f.getStarted == nil {
		f.getStarted = make(chan string, 4)
	}
	ch := make(chan struct{})
	f.getGates[projectID] = ch
	return ch
}

func (f *fakeAPI) ungate(projectID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.getGates, projectID)
}

func (f *fakeAPI) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) setFailure(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, op)
		return
	}
	f.fail[op] = err
}

func (f *fakeAPI) begin(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.fail[op]
}

func remoteStatus(op string, status int, detail string) error {
	return &domain.RemoteError{Op: op, StatusCode: status, Detail: detail}
}

func (f *fakeAPI) GetProjectWithContent(ctx context.Context, projectID string) (*Snapshot, error) {
	if err := f.begin("get"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	gate, started := f.getGates[projectID], f.getStarted
	f.mu.Unlock()
	if gate != nil {
		if started != nil {
			started <- projectID
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &domain.RemoteError{Op: "get project", Err: ctx.Err()}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	project := f.project
	project.ID = projectID
	codes := slices.Clone(f.codes)
	for i := range codes {
		for _, a := range f.assignments {
			if a.CodeID == codes[i].ID {
				codes[i].AssignmentsCount++
			}
		}
	}
	return &Snapshot{
		Project:         project,
		Collaborators:   ptrTo(slices.Clone(f.collaborators)),
		Documents:       ptrTo(slices.Clone(f.documents)),
		Codes:           ptrTo(codes),
		CodeAssignments: ptrTo(slices.Clone(f.assignments)),
		Annotations:     ptrTo(slices.Clone(f.annotations)),
		Codebooks:       ptrTo([]coding.Codebook{}),
		Themes:          ptrTo(f.themesWithCodes()),
	}, nil
}

// themesWithCodes fills in each theme's code ids. Caller holds f.mu.
func (f *fakeAPI) themesWithCodes() []coding.Theme {
	themes := slices.Clone(f.themes)
	for i := range themes {
		themes[i].CodeIDs = []string{}
		for _, c := range f.codes {
			if c.ThemeID != nil && *c.ThemeID == themes[i].ID {
				themes[i].CodeIDs = append(themes[i].CodeIDs, c.ID)
			}
		}
	}
	return themes
}

func (f *fakeAPI) CreateCode(_ context.Context, req *codingSvc.CreateCodeRequest) (*coding.Code, error) {
	if err := f.begin("create_code"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if strings.EqualFold(c.Name, req.Name) {
			return nil, remoteStatus("create code", http.StatusConflict, "code already exists")
		}
	}
	code := coding.Code{ID: f.id("code"), ProjectID: req.ProjectID, Name: req.Name, Description: req.Description, Color: req.Color}
	f.codes = append(f.codes, code)
	return &code, nil
}

func (f *fakeAPI) AssignCode(_ context.Context, req *codingSvc.AssignCodeRequest) (*coding.AssignCodeResult, error) {
	if err := f.begin("assign"); err != nil {
		return nil, err
	}
	if f.assignGate != nil {
		<-f.assignGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := slices.IndexFunc(f.documents, func(d coding.Document) bool { return d.ID == req.DocumentID })
	if i < 0 {
		return nil, remoteStatus("assign code", http.StatusNotFound, "document not found")
	}
	doc := f.documents[i]
	if req.StartChar < 0 || req.EndChar > doc.Length() || req.StartChar >= req.EndChar {
		return nil, remoteStatus("assign code", http.StatusBadRequest, "span out of bounds")
	}

	var code coding.Code
	j := slices.IndexFunc(f.codes, func(c coding.Code) bool { return c.Name == req.CodeName })
	if j >= 0 {
		code = f.codes[j]
	} else {
		code = coding.Code{ID: f.id("code"), ProjectID: doc.ProjectID, Name: req.CodeName, Description: req.CodeDescription, Color: req.CodeColor}
		f.codes = append(f.codes, code)
	}

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a := coding.CodeAssignment{
		ID:           f.id("asg"),
		DocumentID:   doc.ID,
		CodeID:       code.ID,
		StartChar:    req.StartChar,
		EndChar:      req.EndChar,
		TextSnapshot: doc.Slice(req.StartChar, req.EndChar),
		CreatedAt:    created,
		DocumentName: doc.Name,
		CodeName:     code.Name,
		CodeColor:    code.Color,
	}
	f.assignments = append(f.assignments, a)

	span := coding.AssignedSpan{ID: a.ID, DocumentID: a.DocumentID, Text: a.TextSnapshot, StartChar: a.StartChar, EndChar: a.EndChar}
	if !f.omitCreatedAt {
		span.CreatedAt = &created
	}
	return &coding.AssignCodeResult{CodeAssignment: span, Code: code, CodeCreated: j < 0}, nil
}

func (f *fakeAPI) DeleteAssignment(_ context.Context, id string) error {
	if err := f.begin("delete_assignment"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.assignments, func(a coding.CodeAssignment) bool { return a.ID == id })
	if i < 0 {
		return remoteStatus("delete assignment", http.StatusNotFound, "assignment not found")
	}
	f.assignments = slices.Delete(f.assignments, i, i+1)
	return nil
}

func (f *fakeAPI) UpdateAssignmentNote(_ context.Context, id, note string) (*coding.CodeAssignment, error) {
	if err := f.begin("update_note"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.assignments, func(a coding.CodeAssignment) bool { return a.ID == id })
	if i < 0 {
		return nil, remoteStatus("update note", http.StatusNotFound, "assignment not found")
	}
	f.assignments[i].Note = note
	a := f.assignments[i]
	return &a, nil
}

func (f *fakeAPI) UpdateProject(_ context.Context, _ string, req *codingSvc.UpdateProjectRequest) (*coding.Project, error) {
	if err := f.begin("update_project"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.project.Title = req.Title
	f.project.Description = req.Description
	p := f.project
	return &p, nil
}

func (f *fakeAPI) AddCollaborator(_ context.Context, _ string, email string) error {
	if err := f.begin("add_collaborator"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collaborators = append(f.collaborators, coding.Collaborator{Email: email})
	return nil
}

func (f *fakeAPI) RemoveCollaborator(_ context.Context, _ string, email string) error {
	if err := f.begin("remove_collaborator"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collaborators = slices.DeleteFunc(f.collaborators, func(c coding.Collaborator) bool { return c.Email == email })
	return nil
}

func (f *fakeAPI) SaveResearchDetails(_ context.Context, _ string, req *codingSvc.ResearchDetailsRequest) error {
	if err := f.begin("save_research"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.project.ResearchDetails = coding.ResearchDetails{
		ResearchQuestions:  req.ResearchQuestions,
		ResearchObjectives: req.ResearchObjectives,
	}
	return nil
}

func (f *fakeAPI) CreateAnnotation(_ context.Context, req *codingSvc.CreateAnnotationRequest) (*coding.Annotation, error) {
	if err := f.begin("create_annotation"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kind := req.AnnotationType
	if kind == "" {
		kind = coding.AnnotationTypeComment
	}
	a := coding.Annotation{
		ID:             f.id("ann"),
		ProjectID:      req.ProjectID,
		DocumentID:     req.DocumentID,
		CodeID:         req.CodeID,
		StartChar:      req.StartChar,
		EndChar:        req.EndChar,
		Content:        req.Content,
		AnnotationType: kind,
	}
	f.annotations = append(f.annotations, a)
	return &a, nil
}

func (f *fakeAPI) DeleteAnnotation(_ context.Context, id string) error {
	if err := f.begin("delete_annotation"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.annotations = slices.DeleteFunc(f.annotations, func(a coding.Annotation) bool { return a.ID == id })
	return nil
}

func (f *fakeAPI) CreateTheme(_ context.Context, req *codingSvc.CreateThemeRequest) (*coding.Theme, error) {
	if err := f.begin("create_theme"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.themes {
		if t.Name == req.Name {
			return nil, remoteStatus("create theme", http.StatusConflict, "theme already exists")
		}
	}
	theme := coding.Theme{ID: f.id("theme"), ProjectID: req.ProjectID, Name: req.Name, Description: req.Description, CodeIDs: []string{}}
	f.themes = append(f.themes, theme)
	return &theme, nil
}

func (f *fakeAPI) SetCodeTheme(_ context.Context, codeID string, themeID *string) (*coding.Code, error) {
	if err := f.begin("set_code_theme"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.codes, func(c coding.Code) bool { return c.ID == codeID })
	if i < 0 {
		return nil, remoteStatus("set code theme", http.StatusNotFound, "code not found")
	}
	f.codes[i].ThemeID = themeID
	code := f.codes[i]
	return &code, nil
}

func (f *fakeAPI) MergeCodesToDefault(_ context.Context, _ string, codeIDs []string) (*coding.MergeResult, error) {
	if err := f.begin("merge_codes"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	def := "codebook-default"
	moved := 0
	for i := range f.codes {
		if slices.Contains(codeIDs, f.codes[i].ID) {
			f.codes[i].CodebookID = &def
			moved++
		}
	}
	return &coding.MergeResult{DefaultCodebookID: def, MovedCodesCount: moved}, nil
}

func ptrTo[T any](v T) *T { return &v }

var _ ProjectAPI = (*fakeAPI)(nil)

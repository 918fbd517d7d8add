// Command annotate drives a coding workspace against a running API server:
// it opens a project, applies one action, and prints the refreshed state.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"qualcode/internal/apiclient"
	"qualcode/internal/config"
	"qualcode/internal/domain/models/coding"
	"qualcode/internal/workspace"

	"github.com/joho/godotenv"
)

const usage = `usage: annotate [-project ID] <command> [flags] [args]

commands:
  show                                   project summary and code distribution
  doc -doc ID                            document text with its assignments
  assign -doc ID -start N -end N -code NAME [-color HEX] [-description TEXT]
  reassign ASSIGNMENT_ID CODE_ID
  unassign ASSIGNMENT_ID
  note ASSIGNMENT_ID TEXT
  overlaps -doc ID -start N -end N
  comment [-doc ID -start N -end N] [-type TYPE] TEXT
  collaborator add|remove EMAIL
  research -q QUESTION... -o OBJECTIVE...
  theme add NAME | theme set CODE_ID THEME_ID | theme clear CODE_ID
  merge CODE_ID...                       move codes into your default codebook
`

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	projectID := flag.String("project", os.Getenv("QUALCODE_PROJECT_ID"), "Project to open")
	apiURL := flag.String("api", cfg.APIBaseURL, "API base URL")
	token := flag.String("token", cfg.APIToken, "Bearer token")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger, closeLog, err := config.NewLogger(&config.Config{
		Environment: "prod", // info level; debug request tracing would drown the output
		LogDir:      cfg.LogDir,
		LogMaxFiles: cfg.LogMaxFiles,
	}, "annotate")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	client := apiclient.New(*apiURL, *token,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		apiclient.WithLogger(logger),
	)
	ws := workspace.New(client, logger)

	ctx := context.Background()
	if err := ws.Open(ctx, *projectID); err != nil {
		fail(err)
	}

	cmd := &command{ws: ws, out: os.Stdout}
	if err := cmd.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fail(err)
	}
}

// fail prints a displayable message; usage errors exit 2, everything else 1
func fail(err error) {
	var usageErr usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "annotate: %s\n\n%s", usageErr, usage)
		os.Exit(2)
	}
	fmt.Fprintf(os.Stderr, "annotate: %s\n", workspace.Describe(err))
	os.Exit(1)
}

type usageError string

func (e usageError) Error() string { return string(e) }

type command struct {
	ws  *workspace.Workspace
	out io.Writer
}

func (c *command) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "show":
		renderProject(c.out, c.ws.View())
		return nil
	case "doc":
		return c.doc(args)
	case "assign":
		return c.assign(ctx, args)
	case "reassign":
		return c.reassign(ctx, args)
	case "unassign":
		if len(args) != 1 {
			return usageError("unassign takes one assignment id")
		}
		if err := c.ws.DeleteAssignment(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "removed assignment %s\n", args[0])
		return nil
	case "note":
		if len(args) < 2 {
			return usageError("note takes an assignment id and the note text")
		}
		if err := c.ws.UpdateNote(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "note saved on %s\n", args[0])
		return nil
	case "overlaps":
		return c.overlaps(args)
	case "comment":
		return c.comment(ctx, args)
	case "collaborator":
		return c.collaborator(ctx, args)
	case "research":
		return c.research(ctx, args)
	case "theme":
		return c.theme(ctx, args)
	case "merge":
		if len(args) == 0 {
			return usageError("merge takes one or more code ids")
		}
		result, err := c.ws.MergeCodesToDefault(ctx, args)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%d codes moved to codebook %s\n", result.MovedCodesCount, result.DefaultCodebookID)
		return nil
	default:
		return usageError("unknown command " + name)
	}
}

// spanFlags registers the -doc/-start/-end flags shared by span commands
type spanFlags struct {
	doc        *string
	start, end *int
}

func newSpanFlags(fs *flag.FlagSet) spanFlags {
	return spanFlags{
		doc:   fs.String("doc", "", "Document id"),
		start: fs.Int("start", -1, "Selection anchor (rune offset)"),
		end:   fs.Int("end", -1, "Selection focus (rune offset)"),
	}
}

func (f spanFlags) set() bool { return *f.doc != "" }

func (f spanFlags) selection() workspace.Selection {
	return workspace.Selection{
		AnchorDocumentID: *f.doc,
		FocusDocumentID:  *f.doc,
		Anchor:           *f.start,
		Focus:            *f.end,
	}
}

func parse(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	return nil
}

func (c *command) doc(args []string) error {
	fs := flag.NewFlagSet("doc", flag.ContinueOnError)
	docID := fs.String("doc", "", "Document id")
	if err := parse(fs, args); err != nil {
		return err
	}

	view := c.ws.View()
	doc, ok := view.Document(*docID)
	if !ok {
		return usageError("unknown document " + *docID)
	}
	renderDocument(c.out, view, doc)
	return nil
}

// assign follows the UI flow: select text, pick or create the code, assign
func (c *command) assign(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("assign", flag.ContinueOnError)
	span := newSpanFlags(fs)
	codeName := fs.String("code", "", "Code name; created when it does not exist")
	color := fs.String("color", "", "Color for a new code")
	description := fs.String("description", "", "Description for a new code")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !span.set() || strings.TrimSpace(*codeName) == "" {
		return usageError("assign needs -doc, -start, -end and -code")
	}

	if _, err := c.ws.SelectText(span.selection()); err != nil {
		return err
	}

	if code := findCode(c.ws.Codes(), *codeName); code != nil {
		if err := c.ws.SelectCode(code.ID); err != nil {
			return err
		}
	} else {
		// CreateCode selects the new code for the pending assignment
		if _, err := c.ws.CreateCode(ctx, workspace.CodeInput{
			Name:        *codeName,
			Description: *description,
			Color:       *color,
		}); err != nil {
			return err
		}
	}

	record, err := c.ws.AssignSelected(ctx)
	if err != nil {
		return err
	}
	if record == nil {
		return errors.New("nothing to assign")
	}
	renderAssignment(c.out, *record)
	return nil
}

func (c *command) reassign(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("reassign takes an assignment id and a code id")
	}
	record, err := c.ws.Reassign(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	renderAssignment(c.out, *record)
	return nil
}

func (c *command) overlaps(args []string) error {
	fs := flag.NewFlagSet("overlaps", flag.ContinueOnError)
	span := newSpanFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if !span.set() {
		return usageError("overlaps needs -doc, -start and -end")
	}

	found := c.ws.View().Overlapping(*span.doc, *span.start, *span.end)
	if len(found) == 0 {
		fmt.Fprintln(c.out, "no overlapping assignments")
		return nil
	}
	for _, a := range found {
		renderAssignment(c.out, a)
	}
	return nil
}

func (c *command) comment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("comment", flag.ContinueOnError)
	span := newSpanFlags(fs)
	kind := fs.String("type", "", "COMMENT, MEMO, QUESTION, INSIGHT, TODO or REVIEW")
	if err := parse(fs, args); err != nil {
		return err
	}

	in := workspace.CommentInput{
		Content: strings.Join(fs.Args(), " "),
		Type:    coding.AnnotationType(strings.ToUpper(*kind)),
	}
	if span.set() {
		s, err := c.ws.SelectText(span.selection())
		if err != nil {
			return err
		}
		in.Span = &s
	}

	annotation, err := c.ws.AddComment(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "comment %s added (%s)\n", annotation.ID, annotation.AnnotationType)
	return nil
}

func (c *command) collaborator(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("collaborator takes add|remove and an email")
	}
	var err error
	switch args[0] {
	case "add":
		err = c.ws.AddCollaborator(ctx, args[1])
	case "remove":
		err = c.ws.RemoveCollaborator(ctx, args[1])
	default:
		return usageError("collaborator takes add or remove")
	}
	if err != nil {
		return err
	}
	for _, collab := range c.ws.View().Collaborators() {
		fmt.Fprintln(c.out, collab.Email)
	}
	return nil
}

// multiFlag collects a repeated string flag
type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, "; ") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

func (c *command) research(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("research", flag.ContinueOnError)
	var questions, objectives multiFlag
	fs.Var(&questions, "q", "Research question (repeatable)")
	fs.Var(&objectives, "o", "Research objective (repeatable)")
	if err := parse(fs, args); err != nil {
		return err
	}

	if err := c.ws.SaveResearchDetails(ctx, questions, objectives); err != nil {
		return err
	}
	details := c.ws.View().Project().ResearchDetails
	fmt.Fprintf(c.out, "%d questions, %d objectives saved\n",
		len(details.ResearchQuestions), len(details.ResearchObjectives))
	return nil
}

func (c *command) theme(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("theme takes add, set or clear")
	}
	switch {
	case args[0] == "add":
		theme, err := c.ws.CreateTheme(ctx, strings.Join(args[1:], " "), "")
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "theme %s created (%s)\n", theme.Name, theme.ID)
		return nil
	case args[0] == "set" && len(args) == 3:
		return c.ws.SetCodeTheme(ctx, args[1], args[2])
	case args[0] == "clear" && len(args) == 2:
		return c.ws.SetCodeTheme(ctx, args[1], "")
	default:
		return usageError("theme takes add NAME, set CODE_ID THEME_ID or clear CODE_ID")
	}
}

// findCode matches by name, ignoring case and surrounding space
func findCode(codes []coding.Code, name string) *coding.Code {
	name = strings.TrimSpace(name)
	for i := range codes {
		if strings.EqualFold(codes[i].Name, name) {
			return &codes[i]
		}
	}
	return nil
}

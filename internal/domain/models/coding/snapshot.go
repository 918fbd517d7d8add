package coding

// ProjectSnapshot is the full read model of a project, returned by one call.
// It is the only read path clients use to rebuild their local state.
type ProjectSnapshot struct {
	Project
	Collaborators   []Collaborator   `json:"collaborators"`
	Documents       []Document       `json:"documents"`
	Codes           []Code           `json:"codes"`
	CodeAssignments []CodeAssignment `json:"code_assignments"`
	Annotations     []Annotation     `json:"annotations"`
	Codebooks       []Codebook       `json:"codebooks"`
	Themes          []Theme          `json:"themes"`
}

package coding

// Actor identifies the authenticated caller.
// Email matches collaborator entries; UserID matches project ownership.
type Actor struct {
	UserID string
	Email  string
}

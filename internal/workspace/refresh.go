package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"qualcode/internal/domain"
)

// RefreshState is the phase of the current refresh cycle.
type RefreshState int

const (
	StateIdle RefreshState = iota
	StateFetching
	StateApplying
	// StateFailed is transient: a failed cycle records its error and returns to Idle.
	StateFailed
)

func (s RefreshState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateApplying:
		return "applying"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("RefreshState(%d)", int(s))
}

// RefreshOutcome says what happened to one refresh request.
type RefreshOutcome int

const (
	// RefreshApplied means the response replaced the local state.
	RefreshApplied RefreshOutcome = iota
	// RefreshSkipped means a cycle was already in flight; the request was dropped.
	RefreshSkipped
	// RefreshDiscarded means a newer cycle started, or the project changed, before the response landed.
	RefreshDiscarded
	// RefreshFailed means the fetch failed, or answered for another project, and local state was kept.
	RefreshFailed
)

func (o RefreshOutcome) String() string {
	switch o {
	case RefreshApplied:
		return "applied"
	case RefreshSkipped:
		return "skipped"
	case RefreshDiscarded:
		return "discarded"
	case RefreshFailed:
		return "failed"
	}
	return fmt.Sprintf("RefreshOutcome(%d)", int(o))
}

// Refresher runs fetch-and-replace cycles against the store. At most one cycle
// is current: Refresh while one is in flight is skipped, while Open supersedes
// it. Responses are tagged with a sequence number and dropped when stale.
type Refresher struct {
	api    ProjectAPI
	store  *ProjectStore
	logger *slog.Logger

	mu        sync.Mutex
	projectID string
	seq       uint64
	state     RefreshState
	lastErr   error
	observer  func(RefreshState)
}

// NewRefresher creates a refresher writing to store.
func NewRefresher(api ProjectAPI, store *ProjectStore, logger *slog.Logger) *Refresher {
	return &Refresher{api: api, store: store, logger: logger}
}

// Observe registers fn to be called on every state change. fn runs with the
// refresher's lock held and must not call back into it.
func (r *Refresher) Observe(fn func(RefreshState)) {
	r.mu.Lock()
	r.observer = fn
	r.mu.Unlock()
}

// Open switches to projectID and starts a cycle, superseding any in flight.
// Switching to another project empties the store in the same step, so no
// response for the previous project can land in between.
func (r *Refresher) Open(ctx context.Context, projectID string) (RefreshOutcome, error) {
	r.mu.Lock()
	if r.projectID != projectID {
		r.store.Reset()
	}
	r.projectID = projectID
	seq, stamp := r.beginLocked()
	r.mu.Unlock()

	return r.run(ctx, seq, stamp, projectID)
}

// Refresh starts a cycle for the current project unless one is in flight.
func (r *Refresher) Refresh(ctx context.Context) (RefreshOutcome, error) {
	r.mu.Lock()
	if r.projectID == "" {
		r.mu.Unlock()
		return RefreshSkipped, ErrNoProject
	}
	projectID := r.projectID
	if r.state == StateFetching || r.state == StateApplying {
		r.mu.Unlock()
		r.logger.Debug("refresh skipped, cycle in flight", "project_id", projectID)
		return RefreshSkipped, nil
	}
	seq, stamp := r.beginLocked()
	r.mu.Unlock()

	return r.run(ctx, seq, stamp, projectID)
}

// Reset forgets the project and empties the store; responses still in
// flight will be discarded.
func (r *Refresher) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store.Reset()
	r.projectID = ""
	r.seq++
	r.lastErr = nil
	r.setLocked(StateIdle)
}

// State returns the current cycle state.
func (r *Refresher) State() RefreshState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LastError returns the error of the last failed cycle, cleared by the next applied one.
func (r *Refresher) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// ProjectID returns the project being tracked, or "".
func (r *Refresher) ProjectID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projectID
}

func (r *Refresher) beginLocked() (seq, stamp uint64) {
	r.seq++
	stamp = r.store.Stamp()
	r.setLocked(StateFetching)
	return r.seq, stamp
}

func (r *Refresher) setLocked(s RefreshState) {
	r.state = s
	if r.observer != nil {
		r.observer(s)
	}
}

func (r *Refresher) run(ctx context.Context, seq, stamp uint64, projectID string) (RefreshOutcome, error) {
	snap, err := r.api.GetProjectWithContent(ctx, projectID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq != r.seq || projectID != r.projectID {
		r.logger.Debug("stale refresh response discarded",
			"project_id", projectID,
			"seq", seq,
			"latest_seq", r.seq,
		)
		return RefreshDiscarded, nil
	}

	if err != nil {
		r.lastErr = fmt.Errorf("refresh project: %w", err)
		r.setLocked(StateFailed)
		r.setLocked(StateIdle)
		r.logger.Warn("refresh failed", "project_id", projectID, "seq", seq, "error", err)
		return RefreshFailed, r.lastErr
	}

	if snap == nil || snap.ID != projectID {
		got := ""
		if snap != nil {
			got = snap.ID
		}
		r.lastErr = fmt.Errorf("refresh project: %w", &domain.RemoteError{
			Op:     "get project",
			Detail: fmt.Sprintf("response is for project %q", got),
		})
		r.setLocked(StateFailed)
		r.setLocked(StateIdle)
		r.logger.Warn("refresh response for another project rejected", "project_id", projectID, "got", got)
		return RefreshFailed, r.lastErr
	}

	r.setLocked(StateApplying)
	r.store.applyFetched(snap, stamp)
	r.lastErr = nil
	r.setLocked(StateIdle)

	r.logger.Debug("refresh applied", "project_id", projectID, "seq", seq)
	return RefreshApplied, nil
}

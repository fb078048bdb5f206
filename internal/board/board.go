// Package board owns the client-side task state: the canonical list, the search filter,
// drag reordering, the editor form and the two modal dialogs. It performs no I/O;
// callers run repository calls and report results back through the *Succeeded /
// *Failed methods, which apply the post-call effects.
package board

import (
	"context"
	"errors"

	"taskdesk/internal/model"

	log "github.com/sirupsen/logrus"
)

// Repository is the backend the board's operations are run against.
type Repository interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, f model.Fields) (model.Task, error)
	UpdateTask(ctx context.Context, id string, f model.Fields) (model.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status model.Status) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Notification texts.
const (
	MsgCreated    = "Created Tasks Successful"
	MsgUpdated    = "Updated Tasks Successful"
	MsgComplete   = "Complete Tasks Successful"
	MsgUncomplete = "Uncomplete Tasks Successful"
	MsgDeleted    = "Deleted Tasks Successful"
)

// Effect tells the caller what follow-up a completed operation needs.
type Effect int

const (
	EffectNone Effect = iota
	// EffectRefetchNow asks for an immediate full re-fetch.
	EffectRefetchNow
	// EffectRefetchLater asks for a re-fetch after the configured delay.
	EffectRefetchLater
)

type Notice struct {
	Text string
	// Seq increases with every notification so timers can tell stale ones apart.
	Seq int
}

// Submission is a validated editor submit waiting for the backend.
type Submission struct {
	Mode    Mode
	ID      string
	Fields  model.Fields
	session int
}

// StatusRequest is a pending status toggle. Previous is restored if the call fails.
type StatusRequest struct {
	ID       string
	Status   model.Status
	Previous model.Status
}

type Board struct {
	List List
	Form Form

	drag Drag

	editorOpen bool
	// editorSession changes every time the editor opens, so a late response for an
	// earlier session does not close a newer one.
	editorSession int
	submitting    bool

	confirmOpen bool
	selected    model.Task
	hasSelected bool

	notice Notice
	log    log.FieldLogger
}

func New(logger log.FieldLogger) *Board {
	if logger == nil {
		l := log.New()
		l.SetLevel(log.PanicLevel)
		logger = l
	}
	return &Board{log: logger}
}

func (b *Board) EditorOpen() bool  { return b.editorOpen }
func (b *Board) ConfirmOpen() bool { return b.confirmOpen }
func (b *Board) Submitting() bool  { return b.submitting }
func (b *Board) Notice() Notice    { return b.notice }

// Selected is the task the open edit or delete dialog refers to.
func (b *Board) Selected() (model.Task, bool) { return b.selected, b.hasSelected }

func (b *Board) notify(text string) {
	b.notice.Seq++
	b.notice.Text = text
}

// ClearNotice hides the notification if it is still the one identified by seq.
func (b *Board) ClearNotice(seq int) {
	if b.notice.Seq == seq {
		b.notice.Text = ""
	}
}

// Loading

func (b *Board) Loaded(tasks []model.Task) {
	b.List.Replace(tasks)
	if a := b.drag.Active(); a != "" {
		if _, ok := b.List.Find(a); !ok {
			b.drag.Cancel()
		}
	}
}

// LoadFailed keeps whatever was shown before.
func (b *Board) LoadFailed(err error) {
	b.logFailure("list tasks", "", err)
}

// Editor

func (b *Board) OpenCreate() {
	b.Form.LoadCreate()
	b.hasSelected = false
	b.selected = model.Task{}
	b.editorOpen = true
	b.editorSession++
}

func (b *Board) OpenEdit(id string) bool {
	t, ok := b.List.Find(id)
	if !ok {
		return false
	}
	b.selected, b.hasSelected = t, true
	b.Form.LoadEdit(t)
	b.editorOpen = true
	b.editorSession++
	return true
}

func (b *Board) CloseEditor() {
	b.editorOpen = false
}

// SubmitEditor validates the form. On validation failure the editor stays open with
// field errors and nothing should be sent. A second submit while one is in flight is ignored.
func (b *Board) SubmitEditor() (Submission, bool) {
	if !b.editorOpen || b.submitting {
		return Submission{}, false
	}
	fields, err := b.Form.Submit()
	if err != nil {
		b.log.WithField("mode", b.Form.Mode.String()).WithError(err).Debug("editor validation failed")
		return Submission{}, false
	}
	b.submitting = true
	return Submission{
		Mode:    b.Form.Mode,
		ID:      b.Form.TargetID,
		Fields:  fields,
		session: b.editorSession,
	}, true
}

func (b *Board) closeEditorFor(sub Submission) bool {
	if b.editorOpen && b.editorSession == sub.session {
		b.editorOpen = false
		return true
	}
	return false
}

// CreateSucceeded closes the editor, notifies, clears the form and merges the
// server's record so the task shows up before the delayed re-fetch.
func (b *Board) CreateSucceeded(sub Submission, created model.Task) Effect {
	b.submitting = false
	if b.closeEditorFor(sub) {
		b.Form.Clear()
	}
	b.notify(MsgCreated)
	b.List.Upsert(created)
	return EffectRefetchLater
}

func (b *Board) UpdateSucceeded(sub Submission, updated model.Task) Effect {
	b.submitting = false
	b.closeEditorFor(sub)
	b.notify(MsgUpdated)
	if updated.ID == "" {
		// No record in the response; apply what we sent.
		if cur, ok := b.List.Find(sub.ID); ok {
			cur.Title, cur.Detail, cur.Due = sub.Fields.Title, sub.Fields.Detail, sub.Fields.Due
			updated = cur
		}
	}
	b.List.Upsert(updated)
	return EffectRefetchLater
}

// SubmitFailed leaves the editor open and unchanged.
func (b *Board) SubmitFailed(sub Submission, err error) {
	b.submitting = false
	op := "create task"
	if sub.Mode == ModeEdit {
		op = "update task"
	}
	b.logFailure(op, sub.ID, err)
}

// Status

// ToggleStatus flips the task's switch immediately and returns the request to send.
func (b *Board) ToggleStatus(id string) (StatusRequest, bool) {
	t, ok := b.List.Find(id)
	if !ok {
		return StatusRequest{}, false
	}
	return b.SetStatus(id, t.Status.Toggled())
}

// SetStatus shows status on the task's switch and returns the request to send.
func (b *Board) SetStatus(id string, status model.Status) (StatusRequest, bool) {
	t, ok := b.List.Find(id)
	if !ok {
		return StatusRequest{}, false
	}
	b.List.SetStatus(id, status)
	return StatusRequest{ID: id, Status: status, Previous: t.Status}, true
}

// StatusSucceeded notifies and closes any open modal. The switch keeps the requested
// value rather than whatever the server echoes back.
func (b *Board) StatusSucceeded(req StatusRequest) Effect {
	b.List.SetStatus(req.ID, req.Status)
	if req.Status.Complete() {
		b.notify(MsgComplete)
	} else {
		b.notify(MsgUncomplete)
	}
	b.editorOpen = false
	b.confirmOpen = false
	return EffectNone
}

func (b *Board) StatusFailed(req StatusRequest, err error) {
	b.List.SetStatus(req.ID, req.Previous)
	b.logFailure("update task status", req.ID, err)
}

// Delete

func (b *Board) AskDelete(id string) bool {
	t, ok := b.List.Find(id)
	if !ok {
		return false
	}
	b.selected, b.hasSelected = t, true
	b.confirmOpen = true
	return true
}

func (b *Board) CancelDelete() {
	b.confirmOpen = false
}

// ConfirmDelete returns the id to delete; the dialog stays open until the call returns.
func (b *Board) ConfirmDelete() (string, bool) {
	if !b.confirmOpen || !b.hasSelected || b.selected.ID == "" {
		return "", false
	}
	return b.selected.ID, true
}

func (b *Board) DeleteSucceeded(id string) Effect {
	b.confirmOpen = false
	b.notify(MsgDeleted)
	b.List.Remove(id)
	if b.drag.Active() == id {
		b.drag.Cancel()
	}
	return EffectRefetchNow
}

func (b *Board) DeleteFailed(id string, err error) {
	b.logFailure("delete task", id, err)
}

// Drag

func (b *Board) BeginDrag(id string) bool {
	t, ok := b.List.Find(id)
	if !ok || !b.List.Matches(t) {
		return false
	}
	b.drag.Begin(id)
	return true
}

func (b *Board) DragOver(id string) { b.drag.Over(id) }

func (b *Board) DraggingID() string { return b.drag.Active() }

func (b *Board) DropTargetID() string {
	if !b.drag.Dragging() {
		return ""
	}
	return b.drag.Target()
}

// DropDrag applies the gesture to the canonical order. It reports whether anything moved.
func (b *Board) DropDrag() bool {
	active, over := b.drag.Drop()
	return b.List.Move(active, over)
}

func (b *Board) CancelDrag() { b.drag.Cancel() }

// Nudge moves id one visible row up (delta<0) or down (delta>0), i.e. a drag onto
// its neighbour in the filtered view.
func (b *Board) Nudge(id string, delta int) bool {
	visible := b.List.Filtered()
	for i := range visible {
		if visible[i].ID != id {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(visible) {
			return false
		}
		return b.List.Move(id, visible[j].ID)
	}
	return false
}

var _ DragHandle = (*Board)(nil)

// payloadCarrier is implemented by backend errors that carry the server's error body.
type payloadCarrier interface {
	ResponsePayload() string
}

// logFailure is the error policy for backend calls: log, no toast, state unchanged.
func (b *Board) logFailure(op, taskID string, err error) {
	entry := b.log.WithField("op", op)
	if taskID != "" {
		entry = entry.WithField("task_id", taskID)
	}
	var pc payloadCarrier
	if errors.As(err, &pc) {
		if p := pc.ResponsePayload(); p != "" {
			entry = entry.WithField("payload", p)
		}
	}
	entry.WithError(err).Error("backend call failed")
}

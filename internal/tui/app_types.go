package tui

import (
	"taskdesk/internal/board"
	"taskdesk/internal/model"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalEditor
	modalConfirmDelete
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

// editorFocus is the Tab order inside the create/edit modal.
type editorFocus int

const (
	editorFocusTitle editorFocus = iota
	editorFocusDetail
	editorFocusStart
	editorFocusEnd
	editorFocusSubmit
	editorFocusCancel
	editorFocusCount
)

func (f editorFocus) next() editorFocus { return (f + 1) % editorFocusCount }

func (f editorFocus) prev() editorFocus { return (f + editorFocusCount - 1) % editorFocusCount }

// Results of backend calls, delivered back to Update.

type tasksLoadedMsg struct {
	tasks []model.Task
	err   error
}

type submitDoneMsg struct {
	sub  board.Submission
	task model.Task
	err  error
}

type statusDoneMsg struct {
	req board.StatusRequest
	err error
}

type deleteDoneMsg struct {
	id  string
	err error
}

type refetchMsg struct{}

type noticeExpiredMsg struct{ seq int }

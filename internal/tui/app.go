package tui

import (
	"context"
	"time"

	"taskdesk/internal/board"
	"taskdesk/internal/model"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultTimeout = 15 * time.Second
	noticeTTL      = 3 * time.Second
)

type appModel struct {
	repo         board.Repository
	timeout      time.Duration
	refetchDelay time.Duration

	board *board.Board

	width  int
	height int

	// cursor indexes the filtered view; offset is the first row drawn.
	cursor int
	offset int

	loading bool
	// deleting is the id of a delete in flight; the dialog ignores further confirms.
	deleting string

	searching bool
	search    textinput.Model

	confirmFocus confirmModalFocus

	editorFocus editorFocus
	titleInput  textinput.Model
	detailInput textarea.Model
	startInput  textinput.Model
	endInput    textinput.Model
}

func newAppModel(opts Options) appModel {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	delay := opts.RefetchDelay
	if delay < 0 {
		delay = 0
	}
	m := appModel{
		repo:         opts.Repo,
		timeout:      timeout,
		refetchDelay: delay,
		board:        board.New(opts.Logger),
		width:        100,
		height:       30,
	}

	m.search = newInput("Search tasks", 256)
	m.titleInput = newInput("Title", 256)
	m.startInput = newInput(model.DisplayLayout, 32)
	m.endInput = newInput(model.DisplayLayout, 32)
	m.detailInput = textarea.New()
	m.detailInput.Placeholder = "Detail (HTML allowed)"
	m.detailInput.ShowLineNumbers = false
	m.detailInput.SetHeight(4)
	m.resizeInputs()
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	return ti
}

func (m appModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeInputs()
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.board.LoadFailed(msg.err)
			return m, nil
		}
		selected := m.selectedID()
		m.board.Loaded(msg.tasks)
		m.followTask(selected)
		return m, nil

	case refetchMsg:
		m.loading = true
		return m, m.loadCmd()

	case submitDoneMsg:
		if msg.err != nil {
			m.board.SubmitFailed(msg.sub, msg.err)
			return m, nil
		}
		var eff board.Effect
		if msg.sub.Mode == board.ModeEdit {
			eff = m.board.UpdateSucceeded(msg.sub, msg.task)
		} else {
			eff = m.board.CreateSucceeded(msg.sub, msg.task)
		}
		m.afterModalChange()
		m.clampCursor()
		cmd := tea.Batch(m.effectCmd(eff), m.noticeCmd())
		return m, cmd

	case statusDoneMsg:
		if msg.err != nil {
			m.board.StatusFailed(msg.req, msg.err)
			return m, nil
		}
		eff := m.board.StatusSucceeded(msg.req)
		m.afterModalChange()
		cmd := tea.Batch(m.effectCmd(eff), m.noticeCmd())
		return m, cmd

	case deleteDoneMsg:
		m.deleting = ""
		if msg.err != nil {
			m.board.DeleteFailed(msg.id, msg.err)
			return m, nil
		}
		eff := m.board.DeleteSucceeded(msg.id)
		m.afterModalChange()
		m.clampCursor()
		cmd := tea.Batch(m.effectCmd(eff), m.noticeCmd())
		return m, cmd

	case noticeExpiredMsg:
		m.board.ClearNotice(msg.seq)
		return m, nil
	}

	if m.activeModal() == modalEditor {
		return m.updateEditorInput(msg)
	}
	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) activeModal() modalKind {
	switch {
	case m.board.EditorOpen():
		return modalEditor
	case m.board.ConfirmOpen():
		return modalConfirmDelete
	default:
		return modalNone
	}
}

// afterModalChange blurs the editor inputs once the board has closed the editor.
func (m *appModel) afterModalChange() {
	if !m.board.EditorOpen() {
		m.blurEditor()
	}
}

// Commands

func (m appModel) loadCmd() tea.Cmd {
	repo, timeout := m.repo, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		tasks, err := repo.ListTasks(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m appModel) submitCmd(sub board.Submission) tea.Cmd {
	repo, timeout := m.repo, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var (
			t   model.Task
			err error
		)
		if sub.Mode == board.ModeEdit {
			t, err = repo.UpdateTask(ctx, sub.ID, sub.Fields)
		} else {
			t, err = repo.CreateTask(ctx, sub.Fields)
		}
		return submitDoneMsg{sub: sub, task: t, err: err}
	}
}

func (m appModel) statusCmd(req board.StatusRequest) tea.Cmd {
	repo, timeout := m.repo, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := repo.UpdateTaskStatus(ctx, req.ID, req.Status)
		return statusDoneMsg{req: req, err: err}
	}
}

func (m appModel) deleteCmd(id string) tea.Cmd {
	repo, timeout := m.repo, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return deleteDoneMsg{id: id, err: repo.DeleteTask(ctx, id)}
	}
}

func (m *appModel) effectCmd(eff board.Effect) tea.Cmd {
	switch eff {
	case board.EffectRefetchNow:
		m.loading = true
		return m.loadCmd()
	case board.EffectRefetchLater:
		if m.refetchDelay <= 0 {
			return nil
		}
		return tea.Tick(m.refetchDelay, func(time.Time) tea.Msg { return refetchMsg{} })
	default:
		return nil
	}
}

func (m appModel) noticeCmd() tea.Cmd {
	n := m.board.Notice()
	if n.Text == "" {
		return nil
	}
	seq := n.Seq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{seq: seq} })
}

// Selection

func (m appModel) selectedTask() (model.Task, bool) {
	visible := m.board.List.Filtered()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return model.Task{}, false
	}
	return visible[m.cursor], true
}

func (m appModel) selectedID() string {
	t, _ := m.selectedTask()
	return t.ID
}

// followTask moves the cursor onto id if it is visible, otherwise clamps it.
func (m *appModel) followTask(id string) {
	if id != "" {
		for i, t := range m.board.List.Filtered() {
			if t.ID == id {
				m.cursor = i
				m.clampCursor()
				return
			}
		}
	}
	m.clampCursor()
}

func (m *appModel) clampCursor() {
	n := len(m.board.List.Filtered())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	rows := m.tableRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if rows > 0 && m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset > 0 && m.offset > n-rows {
		m.offset = max(0, n-rows)
	}
}

package tui

import (
	"taskdesk/internal/board"

	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.activeModal() {
	case modalEditor:
		return m.updateEditor(msg)
	case modalConfirmDelete:
		return m.updateConfirm(msg)
	}
	if m.searching {
		return m.updateSearch(msg)
	}
	return m.updateTable(msg)
}

func (m appModel) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	dragging := m.board.DraggingID() != ""

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "home", "g":
		m.moveCursor(-len(m.board.List.Filtered()))
	case "end", "G":
		m.moveCursor(len(m.board.List.Filtered()))

	case " ":
		if dragging {
			return m.drop()
		}
		if id := m.selectedID(); id != "" {
			m.board.BeginDrag(id)
		}
	case "enter":
		if dragging {
			return m.drop()
		}
		return m.openEdit()
	case "esc":
		if dragging {
			m.board.CancelDrag()
			return m, nil
		}
		if m.board.List.Query() != "" {
			m.search.SetValue("")
			m.setQuery("")
		}
	case "shift+up", "K":
		m.nudge(-1)
	case "shift+down", "J":
		m.nudge(1)

	case "/":
		if dragging {
			return m, nil
		}
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case "n":
		m.board.CancelDrag()
		m.board.OpenCreate()
		cmd := m.loadEditorInputs()
		return m, cmd
	case "e":
		return m.openEdit()
	case "d":
		if id := m.selectedID(); id != "" {
			m.board.CancelDrag()
			if m.board.AskDelete(id) {
				m.confirmFocus = confirmFocusConfirm
			}
		}
	case "t":
		if id := m.selectedID(); id != "" {
			if req, ok := m.board.ToggleStatus(id); ok {
				return m, m.statusCmd(req)
			}
		}
	case "r":
		m.loading = true
		return m, m.loadCmd()
	}
	return m, nil
}

func (m *appModel) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
	if m.board.DraggingID() != "" {
		m.board.DragOver(m.selectedID())
	}
}

func (m appModel) drop() (tea.Model, tea.Cmd) {
	active := m.board.DraggingID()
	m.board.DropDrag()
	m.followTask(active)
	return m, nil
}

func (m *appModel) nudge(delta int) {
	id := m.selectedID()
	if id == "" || m.board.DraggingID() != "" {
		return
	}
	if m.board.Nudge(id, delta) {
		m.followTask(id)
	}
}

func (m appModel) openEdit() (tea.Model, tea.Cmd) {
	id := m.selectedID()
	if id == "" {
		return m, nil
	}
	m.board.CancelDrag()
	if !m.board.OpenEdit(id) {
		return m, nil
	}
	cmd := m.loadEditorInputs()
	return m, cmd
}

func (m *appModel) setQuery(q string) {
	selected := m.selectedID()
	m.board.List.SetQuery(q)
	m.followTask(selected)
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "tab":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.setQuery("")
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.setQuery(m.search.Value())
	return m, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g", "n":
		m.board.CancelDelete()
		return m, nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case "y":
		return m.confirmDelete()
	case "enter":
		if m.confirmFocus == confirmFocusCancel {
			m.board.CancelDelete()
			return m, nil
		}
		return m.confirmDelete()
	}
	return m, nil
}

func (m appModel) confirmDelete() (tea.Model, tea.Cmd) {
	if m.deleting != "" {
		return m, nil
	}
	id, ok := m.board.ConfirmDelete()
	if !ok {
		return m, nil
	}
	m.deleting = id
	return m, m.deleteCmd(id)
}

func (m appModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.board.CloseEditor()
		m.blurEditor()
		return m, nil
	case "ctrl+s":
		return m.submitEditor()
	case "tab":
		cmd := m.focusEditor(m.editorFocus.next())
		return m, cmd
	case "shift+tab":
		cmd := m.focusEditor(m.editorFocus.prev())
		return m, cmd
	case "enter":
		switch m.editorFocus {
		case editorFocusSubmit:
			return m.submitEditor()
		case editorFocusCancel:
			m.board.CloseEditor()
			m.blurEditor()
			return m, nil
		case editorFocusDetail:
			// newline inside the textarea
		default:
			cmd := m.focusEditor(m.editorFocus.next())
			return m, cmd
		}
	}
	return m.updateEditorInput(msg)
}

// updateEditorInput routes msg to the focused field and mirrors its value into the form.
func (m appModel) updateEditorInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.editorFocus {
	case editorFocusTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case editorFocusDetail:
		m.detailInput, cmd = m.detailInput.Update(msg)
	case editorFocusStart:
		m.startInput, cmd = m.startInput.Update(msg)
	case editorFocusEnd:
		m.endInput, cmd = m.endInput.Update(msg)
	}
	m.syncEditorToForm()
	return m, cmd
}

func (m appModel) submitEditor() (tea.Model, tea.Cmd) {
	m.syncEditorToForm()
	sub, ok := m.board.SubmitEditor()
	if !ok {
		if !m.board.Form.HasErrors() {
			return m, nil
		}
		// Jump to the first invalid field.
		focus := editorFocusStart
		if m.board.Form.Error(board.FieldTitle) != "" {
			focus = editorFocusTitle
		}
		cmd := m.focusEditor(focus)
		return m, cmd
	}
	return m, m.submitCmd(sub)
}

// loadEditorInputs copies the freshly loaded form into the inputs and focuses Title.
func (m *appModel) loadEditorInputs() tea.Cmd {
	f := m.board.Form
	m.titleInput.SetValue(f.Title)
	m.detailInput.SetValue(f.Detail)
	m.startInput.SetValue(f.Start)
	m.endInput.SetValue(f.End)
	m.titleInput.CursorEnd()
	return m.focusEditor(editorFocusTitle)
}

// syncEditorToForm only touches fields whose input differs, so untouched errors stay visible.
func (m *appModel) syncEditorToForm() {
	f := &m.board.Form
	if f.Title != m.titleInput.Value() {
		f.Set(board.FieldTitle, m.titleInput.Value())
	}
	if f.Detail != m.detailInput.Value() {
		f.Set(board.FieldDetail, m.detailInput.Value())
	}
	if f.Start != m.startInput.Value() {
		f.Set(board.FieldStart, m.startInput.Value())
	}
	if f.End != m.endInput.Value() {
		f.Set(board.FieldEnd, m.endInput.Value())
	}
}

func (m *appModel) focusEditor(f editorFocus) tea.Cmd {
	m.blurEditor()
	m.editorFocus = f
	switch f {
	case editorFocusTitle:
		return m.titleInput.Focus()
	case editorFocusDetail:
		return m.detailInput.Focus()
	case editorFocusStart:
		return m.startInput.Focus()
	case editorFocusEnd:
		return m.endInput.Focus()
	}
	return nil
}

func (m *appModel) blurEditor() {
	m.titleInput.Blur()
	m.detailInput.Blur()
	m.startInput.Blur()
	m.endInput.Blur()
}

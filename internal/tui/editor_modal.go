package tui

import (
	"strings"

	"taskdesk/internal/board"
	"taskdesk/internal/model"

	"github.com/charmbracelet/lipgloss"
)

func editorLabels(mode board.Mode) (title, submit string) {
	if mode == board.ModeEdit {
		return "Edit Task", "EDIT"
	}
	return "Create Task", "CREATE"
}

func (m *appModel) resizeInputs() {
	bodyW := modalBodyWidth(m.width)
	m.titleInput.Width = bodyW - 4
	m.detailInput.SetWidth(bodyW - 2)
	half := (bodyW - 16) / 2
	m.startInput.Width = max(half, len(model.DisplayLayout))
	m.endInput.Width = max(half, len(model.DisplayLayout))
	m.search.Width = max(m.width/3, 16)
}

func (m appModel) renderEditorModal() string {
	f := m.board.Form
	title, submit := editorLabels(f.Mode)
	bodyW := modalBodyWidth(m.width)

	label := func(s string, focused bool) string {
		st := lipgloss.NewStyle().Bold(true)
		if focused {
			st = st.Foreground(colorAccent)
		}
		return st.Render(s)
	}
	field := lipgloss.NewStyle().Background(colorInputBg).Padding(0, 1)
	errLine := func(msg string) []string {
		if msg == "" {
			return nil
		}
		return []string{styleError().Width(bodyW - 2).Render(msg)}
	}

	lines := []string{
		label("Title", m.editorFocus == editorFocusTitle),
		field.Render(m.titleInput.View()),
	}
	lines = append(lines, errLine(f.Error(board.FieldTitle))...)
	lines = append(lines,
		"",
		label("Detail", m.editorFocus == editorFocusDetail),
		m.detailInput.View(),
		"",
		label("Date", m.editorFocus == editorFocusStart || m.editorFocus == editorFocusEnd),
		lipgloss.JoinHorizontal(lipgloss.Top,
			styleMuted().Render("Start "), field.Render(m.startInput.View()),
			"  ",
			styleMuted().Render("End "), field.Render(m.endInput.View()),
		),
	)
	lines = append(lines, errLine(f.Error(model.FieldDueDate))...)

	active := -1
	switch m.editorFocus {
	case editorFocusSubmit:
		active = 0
	case editorFocusCancel:
		active = 1
	}
	lines = append(lines, "", renderButtons(active, submit, "Cancel"))
	if m.board.Submitting() {
		lines = append(lines, styleMuted().Render("Saving…"))
	}
	lines = append(lines, "", styleMuted().Width(bodyW).Render("tab: next field   ctrl+s: save   esc: cancel"))

	return renderModalBox(m.width, title, strings.Join(lines, "\n"))
}

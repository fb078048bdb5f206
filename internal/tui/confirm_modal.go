package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const deletePrompt = "Do you want to delete this task ?"

// renderButtons draws a row of buttons; active is the index of the focused one (-1 for none).
func renderButtons(active int, labels ...string) string {
	// No borders: nested bordered boxes leave background artifacts in some terminals.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	sep := lipgloss.NewStyle().Background(colorModalSurfaceBg).Render(" ")
	parts := make([]string, 0, len(labels)*2)
	for i, l := range labels {
		if i > 0 {
			parts = append(parts, sep)
		}
		if i == active {
			parts = append(parts, btnActive.Render(l))
		} else {
			parts = append(parts, btnBase.Render(l))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderConfirmModal(width int, title string, body string, confirmLabel string, cancelLabel string, focus confirmModalFocus) string {
	active := 0
	if focus == confirmFocusCancel {
		active = 1
	}
	controls := renderButtons(active, confirmLabel, cancelLabel)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   y: delete   esc: cancel")

	content := strings.Join([]string{
		body,
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}

func (m appModel) renderDeleteModal() string {
	t, _ := m.board.Selected()
	body := deletePrompt + "\n\n" + lipgloss.NewStyle().Bold(true).Render(truncateCell(t.Title, modalBodyWidth(m.width)-2))
	if m.deleting != "" {
		body += "\n" + styleMuted().Render("Deleting…")
	}
	return renderConfirmModal(m.width, "Delete task", body, "Delete", "Cancel", m.confirmFocus)
}

func modalBodyWidth(width int) int {
	w := width - 8
	if w > 72 {
		w = 72
	}
	if w < 30 {
		w = 30
	}
	return w
}

func renderModalBox(width int, title string, content string) string {
	bodyW := modalBodyWidth(width)
	header := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Width(bodyW).
		Foreground(colorModalHeaderFg).
		Background(colorModalHeaderBg).
		Render(title)
	body := lipgloss.NewStyle().
		Padding(1, 1).
		Width(bodyW).
		Foreground(colorModalSurfaceFg).
		Background(colorModalSurfaceBg).
		Render(content)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCardBorder).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

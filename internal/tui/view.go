package tui

import (
	"strconv"
	"strings"

	"taskdesk/internal/model"
	"taskdesk/internal/richtext"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	appTitle      = "Task Management"
	createTrigger = "Create New Task"

	// header line, controls line, blank line above the table, footer
	chromeLines = 4
	// top border, header row, header separator, bottom border
	tableChrome = 4
)

// Fixed column widths (content only, excluding the 1-column padding on each side).
const (
	colHandleW   = 2
	colDateW     = len(model.DisplayLayout)
	colActionW   = len("[e]dit [d]elete")
	colCompleteW = len("Complete")
)

func (m appModel) View() string {
	switch m.activeModal() {
	case modalEditor:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderEditorModal())
	case modalConfirmDelete:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderDeleteModal())
	}

	parts := []string{
		normalizePane(m.renderHeader(), m.width, 1),
		normalizePane(m.renderControls(), m.width, 1),
		"",
		normalizePane(m.renderTable(), m.width, m.tableRows()+tableChrome),
	}
	if h := m.previewHeight(); h > 0 {
		parts = append(parts, normalizePane(m.renderPreview(h), m.width, h))
	}
	parts = append(parts, normalizePane(m.renderFooter(), m.width, 1))
	return strings.Join(parts, "\n")
}

func (m appModel) previewHeight() int {
	if m.height < 20 {
		return 0
	}
	return min(8, m.height/4)
}

// tableRows is how many task rows fit on screen.
func (m appModel) tableRows() int {
	return max(1, m.height-chromeLines-tableChrome-m.previewHeight())
}

func (m appModel) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Render(appTitle)
	var status []string
	if m.loading {
		status = append(status, "Loading…")
	}
	total := m.board.List.Len()
	visible := len(m.board.List.Filtered())
	if visible != total {
		status = append(status, strconv.Itoa(visible)+"/"+strconv.Itoa(total)+" tasks")
	} else {
		status = append(status, strconv.Itoa(total)+" tasks")
	}
	right := styleMuted().Render(strings.Join(status, "  "))
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + right
}

func (m appModel) renderControls() string {
	btn := renderButtons(-1, "+ "+createTrigger) + styleMuted().Render(" (n)")
	search := m.search.View()
	label := styleMuted().Render("Search (/): ")
	if m.searching {
		label = lipgloss.NewStyle().Foreground(colorAccent).Render("Search: ")
	}
	return btn + "   " + label + search
}

func (m appModel) renderTable() string {
	visible := m.board.List.Filtered()
	if len(visible) == 0 {
		msg := "No tasks yet. Press n to create one."
		if m.board.List.Query() != "" {
			msg = "No tasks match “" + m.board.List.Query() + "”."
		} else if m.loading {
			msg = "Loading…"
		}
		return styleMuted().Render(msg)
	}

	start := min(m.offset, len(visible))
	end := min(start+m.tableRows(), len(visible))

	titleW, detailW := m.flexColumns()
	dragging := m.board.DraggingID()
	target := m.board.DropTargetID()

	rows := make([][]string, 0, end-start)
	for _, t := range visible[start:end] {
		handle := glyphDragHandle()
		switch {
		case dragging != "" && t.ID == dragging:
			handle = glyphGrabbed()
		case dragging != "" && t.ID == target:
			handle = glyphDropTarget()
		}
		row := []string{handle, truncateCell(t.Title, titleW)}
		if detailW > 0 {
			row = append(row, truncateCell(richtext.PlainText(t.Detail), detailW))
		}
		startText, endText := "", ""
		if t.Due != nil {
			startText, endText = model.FormatTimestamp(t.Due.Start), model.FormatTimestamp(t.Due.End)
		}
		row = append(row, startText, endText, "[e]dit [d]elete", glyphSwitch(t.Status.Complete()))
		rows = append(rows, row)
	}

	headers := []string{"", "Title"}
	if detailW > 0 {
		headers = append(headers, "Detail")
	}
	headers = append(headers, "Start Date", "End Date", "Action", "Complete")

	base := lipgloss.NewStyle().Padding(0, 1)
	headerStyle := base.Bold(true).Foreground(colorMuted)
	selected := base.Foreground(colorSelectedFg).Background(colorSelectedBg)
	grabbed := base.Bold(true).Foreground(colorAccent)
	drop := base.Underline(true).Foreground(colorAccent)
	cursorRow := m.cursor - start

	tb := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorCardBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			id := visible[start+row].ID
			switch {
			case dragging != "" && id == dragging:
				return grabbed
			case dragging != "" && id == target && target != dragging:
				return drop
			case row == cursorRow:
				return selected
			}
			return base
		})
	return tb.Render()
}

// flexColumns splits the space left by the fixed columns between Title and Detail.
// Detail is dropped on narrow terminals.
func (m appModel) flexColumns() (titleW, detailW int) {
	const pad = 2
	fixed := colHandleW + 2*colDateW + colActionW + colCompleteW + 5*pad
	// one border per column plus the closing one, title column padding
	flex := m.width - fixed - 7 - pad
	if flex < 40 {
		// no detail column: one fewer border
		return max(flex+1, 8), 0
	}
	titleW = flex * 3 / 5
	detailW = flex - titleW - pad - 1
	return titleW, detailW
}

func (m appModel) renderPreview(height int) string {
	t, ok := m.selectedTask()
	rule := styleMuted().Render(strings.Repeat(glyphHRule(), max(m.width, 0)))
	if !ok {
		return rule
	}
	head := lipgloss.NewStyle().Bold(true).Render("Detail") + styleMuted().Render("  "+t.Title)
	md := richtext.ToMarkdown(t.Detail)
	if md == "" {
		return strings.Join([]string{rule, head, styleMuted().Render("No detail.")}, "\n")
	}
	body := renderMarkdown(md, m.width-2)
	return strings.Join([]string{rule, head, normalizePane(body, m.width, max(height-2, 0))}, "\n")
}

func (m appModel) renderFooter() string {
	if n := m.board.Notice(); n.Text != "" {
		return styleToast().Render(glyphCheck() + " " + n.Text)
	}
	var help string
	switch {
	case m.board.DraggingID() != "":
		help = "↑/↓: choose position   enter: drop   esc: cancel"
	case m.searching:
		help = "type to filter   enter: done   esc: clear"
	default:
		help = "n: new   /: search   space: grab   shift+↑/↓: move   t: toggle   e: edit   d: delete   r: refresh   q: quit"
	}
	return styleMuted().Render(help)
}

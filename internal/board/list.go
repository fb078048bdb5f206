package board

import (
	"strings"

	"taskdesk/internal/model"

	"golang.org/x/text/cases"
)

// List is the canonical, client-ordered task sequence plus the current search text.
// Display order is the slice order; a Replace (full re-fetch) discards local reordering.
type List struct {
	tasks   []model.Task
	query   string
	folded  string
	version int
}

// Tasks returns the canonical sequence. Callers must not modify it.
func (l *List) Tasks() []model.Task { return l.tasks }

func (l *List) Len() int { return len(l.tasks) }

// Version increments on every mutation of the canonical sequence.
func (l *List) Version() int { return l.version }

// Replace swaps in a fresh server snapshot wholesale.
func (l *List) Replace(tasks []model.Task) {
	l.tasks = append([]model.Task(nil), tasks...)
	l.version++
}

func (l *List) Find(id string) (model.Task, bool) {
	if i := l.index(id); i >= 0 {
		return l.tasks[i], true
	}
	return model.Task{}, false
}

func (l *List) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *List) Query() string { return l.query }

// SetQuery changes the filter. It never touches the canonical sequence.
func (l *List) SetQuery(q string) {
	l.query = q
	l.folded = foldString(q)
}

// Matches reports whether the task's title contains the query, case-folded.
func (l *List) Matches(t model.Task) bool {
	if l.folded == "" {
		return true
	}
	return strings.Contains(foldString(t.Title), l.folded)
}

// Filtered returns the tasks matching the query, in canonical order.
func (l *List) Filtered() []model.Task {
	out := make([]model.Task, 0, len(l.tasks))
	for _, t := range l.tasks {
		if l.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Move drops activeID onto overID: the active task takes the target's index and the
// tasks in between shift by one. Both must be visible in the filtered view. Cancelled
// drops (empty overID) and drops onto itself are no-ops and leave the slice untouched.
func (l *List) Move(activeID, overID string) bool {
	if activeID == "" || overID == "" || activeID == overID {
		return false
	}
	from, to := l.index(activeID), l.index(overID)
	if from < 0 || to < 0 {
		return false
	}
	if !l.Matches(l.tasks[from]) || !l.Matches(l.tasks[to]) {
		return false
	}

	next := make([]model.Task, len(l.tasks))
	copy(next, l.tasks)
	moved := next[from]
	if from < to {
		copy(next[from:to], next[from+1:to+1])
	} else {
		copy(next[to+1:from+1], next[to:from])
	}
	next[to] = moved

	l.tasks = next
	l.version++
	return true
}

// Upsert replaces the task with the same ID in place, or appends it.
func (l *List) Upsert(t model.Task) {
	if t.ID == "" {
		return
	}
	if i := l.index(t.ID); i >= 0 {
		l.tasks[i] = t
	} else {
		l.tasks = append(l.tasks, t)
	}
	l.version++
}

func (l *List) Remove(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	next := make([]model.Task, 0, len(l.tasks)-1)
	next = append(next, l.tasks[:i]...)
	next = append(next, l.tasks[i+1:]...)
	l.tasks = next
	l.version++
	return true
}

func (l *List) SetStatus(id string, s model.Status) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	if l.tasks[i].Status != s {
		l.tasks[i].Status = s
		l.version++
	}
	return true
}

func foldString(s string) string {
	return cases.Fold().String(s)
}

package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DisplayLayout is how timestamps are shown and typed in the editor (YYYY-MM-DD HH:mm:ss).
const DisplayLayout = "2006-01-02 15:04:05"

type Status int

const (
	StatusIncomplete Status = 0
	StatusComplete   Status = 1
)

func (s Status) Complete() bool { return s == StatusComplete }

// Toggled returns the opposite status.
func (s Status) Toggled() Status {
	if s == StatusComplete {
		return StatusIncomplete
	}
	return StatusComplete
}

func StatusFromBool(complete bool) Status {
	if complete {
		return StatusComplete
	}
	return StatusIncomplete
}

func (s Status) String() string {
	if s == StatusComplete {
		return "complete"
	}
	return "incomplete"
}

// DateRange is the due-date range of a task. Start and End are always set together.
type DateRange struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

type Task struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Detail string     `json:"detail,omitempty"`
	Due    *DateRange `json:"due,omitempty"`
	Status Status     `json:"status"`
}

// Fields is the editable part of a task, sent on create and update.
type Fields struct {
	Title  string
	Detail string
	Due    *DateRange
}

func (t Task) Fields() Fields {
	f := Fields{Title: t.Title, Detail: t.Detail}
	if t.Due != nil {
		d := *t.Due
		f.Due = &d
	}
	return f
}

// FormatTimestamp renders t in DisplayLayout (local time); zero values render empty.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DisplayLayout)
}

// ParseTimestamp parses a user-entered timestamp in DisplayLayout (local time).
// Date-only input ("2024-05-01") is accepted and means midnight.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range []string{DisplayLayout, "2006-01-02 15:04", "2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q (want YYYY-MM-DD HH:mm:ss)", s)
}

const (
	FieldTitle   = "title"
	FieldDetail  = "detail"
	FieldDueDate = "dueDate"
)

// ValidationError carries per-field messages keyed by FieldTitle / FieldDueDate.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid task: " + strings.Join(parts, "; ")
}

// Field returns the message for one field, or "".
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

// ValidateFields checks the required fields and the date range ordering.
func ValidateFields(f Fields) error {
	errs := map[string]string{}
	if strings.TrimSpace(f.Title) == "" {
		errs[FieldTitle] = "Title is required"
	}
	switch {
	case f.Due == nil, f.Due.Start.IsZero(), f.Due.End.IsZero():
		errs[FieldDueDate] = "Date is required"
	case f.Due.Start.After(f.Due.End):
		errs[FieldDueDate] = "Start must not be after end"
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

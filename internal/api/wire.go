package api

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskdesk/internal/model"
)

// WireTask is a task as the backend serializes it.
type WireTask struct {
	RowID     WireID     `json:"row_id"`
	ID        WireID     `json:"id,omitempty"`
	Title     string     `json:"title"`
	Detail    string     `json:"detail"`
	StartDate WireTime   `json:"startdate"`
	EndDate   WireTime   `json:"enddate"`
	Status    WireStatus `json:"status"`
}

// taskBody is the create/update request payload.
type taskBody struct {
	Title     string     `json:"title"`
	Detail    string     `json:"detail"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type statusBody struct {
	Status model.Status `json:"status"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

func newTaskBody(f model.Fields) taskBody {
	b := taskBody{Title: strings.TrimSpace(f.Title), Detail: f.Detail}
	if f.Due != nil {
		s, e := f.Due.Start, f.Due.End
		b.StartDate, b.EndDate = &s, &e
	}
	return b
}

func (w WireTask) Task() model.Task {
	id := string(w.RowID)
	if id == "" {
		id = string(w.ID)
	}
	t := model.Task{
		ID:     id,
		Title:  w.Title,
		Detail: w.Detail,
		Status: model.Status(w.Status),
	}
	start, end := time.Time(w.StartDate), time.Time(w.EndDate)
	if !start.IsZero() && !end.IsZero() {
		t.Due = &model.DateRange{Start: start, End: end}
	}
	return t
}

// FromTask converts a task to its wire shape (used by the reference server).
func FromTask(t model.Task) WireTask {
	w := WireTask{
		RowID:  WireID(t.ID),
		Title:  t.Title,
		Detail: t.Detail,
		Status: WireStatus(t.Status),
	}
	if t.Due != nil {
		w.StartDate = WireTime(t.Due.Start)
		w.EndDate = WireTime(t.Due.End)
	}
	return w
}

// WireID accepts either a JSON number or a string and keeps it as text.
type WireID string

func (id *WireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("task id: %w", err)
		}
		*id = WireID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("task id: unexpected %s", b)
	}
	*id = WireID(b)
	return nil
}

// MarshalJSON emits numeric ids as numbers so row_id keeps its numeric wire form.
func (id WireID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	// Only canonical integers go out bare; "001" or "+1" would be invalid JSON numbers.
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return []byte(strconv.Quote(string(id))), nil
}

var (
	zonedTimeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05Z07:00",
	}
	// Values without an offset are wall-clock times in the local zone.
	localTimeLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
)

// WireTime decodes the ISO-ish timestamps the backend returns; null and "" are zero.
type WireTime time.Time

func (t *WireTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*t = WireTime{}
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("timestamp: unexpected %s", b)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*t = WireTime{}
		return nil
	}
	for _, layout := range zonedTimeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			*t = WireTime(v)
			return nil
		}
	}
	for _, layout := range localTimeLayouts {
		if v, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*t = WireTime(v)
			return nil
		}
	}
	return fmt.Errorf("timestamp: unsupported format %q", s)
}

func (t WireTime) MarshalJSON() ([]byte, error) {
	v := time.Time(t)
	if v.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(v.Format(time.RFC3339Nano))), nil
}

// WireStatus accepts 0/1 numbers and booleans.
type WireStatus model.Status

func (s *WireStatus) UnmarshalJSON(b []byte) error {
	switch strings.TrimSpace(string(b)) {
	case "null", "0", "false", `"0"`:
		*s = WireStatus(model.StatusIncomplete)
	case "1", "true", `"1"`:
		*s = WireStatus(model.StatusComplete)
	default:
		return fmt.Errorf("status: unexpected %s", b)
	}
	return nil
}

func (s WireStatus) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(s))), nil
}

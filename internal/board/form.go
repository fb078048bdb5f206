package board

import (
	"strings"

	"taskdesk/internal/model"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Editable fields. The date range is edited as two texts but validated as one value.
const (
	FieldTitle  = model.FieldTitle
	FieldDetail = model.FieldDetail
	FieldStart  = "startDate"
	FieldEnd    = "endDate"
)

// Form holds the editor's field values and the errors from the last submit.
type Form struct {
	Mode     Mode
	TargetID string

	Title  string
	Detail string
	Start  string
	End    string

	errors map[string]string
}

// LoadCreate resets every field to empty.
func (f *Form) LoadCreate() {
	*f = Form{Mode: ModeCreate}
}

// LoadEdit pre-populates the form from task, mapping its stored range into the
// paired start/end value (empty when the task has no range).
func (f *Form) LoadEdit(t model.Task) {
	*f = Form{
		Mode:     ModeEdit,
		TargetID: t.ID,
		Title:    t.Title,
		Detail:   t.Detail,
	}
	if t.Due != nil {
		f.Start = model.FormatTimestamp(t.Due.Start)
		f.End = model.FormatTimestamp(t.Due.End)
	}
}

// Clear empties the values but keeps the mode (after a successful create).
func (f *Form) Clear() {
	mode := f.Mode
	*f = Form{Mode: mode}
}

func (f *Form) Set(field, value string) {
	switch field {
	case FieldTitle:
		f.Title = value
		delete(f.errors, model.FieldTitle)
	case FieldDetail:
		f.Detail = value
	case FieldStart:
		f.Start = value
		delete(f.errors, model.FieldDueDate)
	case FieldEnd:
		f.End = value
		delete(f.errors, model.FieldDueDate)
	}
}

// Error returns the message for a field from the last Submit (FieldTitle or model.FieldDueDate).
func (f *Form) Error(field string) string {
	return f.errors[field]
}

func (f *Form) HasErrors() bool { return len(f.errors) > 0 }

// Submit parses and validates the form. Field errors are kept on the form;
// the returned error is a *model.ValidationError.
func (f *Form) Submit() (model.Fields, error) {
	out := model.Fields{Title: strings.TrimSpace(f.Title), Detail: f.Detail}
	errs := map[string]string{}

	start, end := strings.TrimSpace(f.Start), strings.TrimSpace(f.End)
	if start != "" && end != "" {
		s, serr := model.ParseTimestamp(start)
		e, eerr := model.ParseTimestamp(end)
		switch {
		case serr != nil:
			errs[model.FieldDueDate] = "Invalid start: want YYYY-MM-DD HH:mm:ss"
		case eerr != nil:
			errs[model.FieldDueDate] = "Invalid end: want YYYY-MM-DD HH:mm:ss"
		default:
			out.Due = &model.DateRange{Start: s, End: e}
		}
	}

	if err := model.ValidateFields(out); err != nil {
		if verr, ok := err.(*model.ValidationError); ok {
			for k, v := range verr.Fields {
				if _, exists := errs[k]; !exists {
					errs[k] = v
				}
			}
		}
	}

	f.errors = errs
	if len(errs) > 0 {
		return model.Fields{}, &model.ValidationError{Fields: errs}
	}
	return out, nil
}

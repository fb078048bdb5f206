package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateFields(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)
	end := start.Add(2 * time.Hour)

	cases := []struct {
		name      string
		fields    Fields
		wantTitle bool
		wantDate  string
	}{
		{name: "ok", fields: Fields{Title: "Write report", Due: &DateRange{Start: start, End: end}}},
		{name: "same instant ok", fields: Fields{Title: "x", Due: &DateRange{Start: start, End: start}}},
		{name: "blank title", fields: Fields{Title: "   ", Due: &DateRange{Start: start, End: end}}, wantTitle: true},
		{name: "missing range", fields: Fields{Title: "x"}, wantDate: "Date is required"},
		{name: "half range", fields: Fields{Title: "x", Due: &DateRange{Start: start}}, wantDate: "Date is required"},
		{name: "reversed range", fields: Fields{Title: "x", Due: &DateRange{Start: end, End: start}}, wantDate: "Start must not be after end"},
		{name: "everything missing", fields: Fields{}, wantTitle: true, wantDate: "Date is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFields(tc.fields)
			if !tc.wantTitle && tc.wantDate == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
			}
			if got := verr.Field(FieldTitle); tc.wantTitle != (got != "") {
				t.Fatalf("title error=%q, want present=%v", got, tc.wantTitle)
			}
			if got := verr.Field(FieldDueDate); got != tc.wantDate {
				t.Fatalf("dueDate error=%q, want %q", got, tc.wantDate)
			}
		})
	}
}

func TestValidationError_MessageIsStable(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{FieldTitle: "Title is required", FieldDueDate: "Date is required"}}
	want := "invalid task: dueDate: Date is required; title: Title is required"
	if got := err.Error(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestParseTimestamp_AcceptsDisplayAndDateOnly(t *testing.T) {
	got, err := ParseTimestamp("2024-05-01 13:45:10")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if FormatTimestamp(got) != "2024-05-01 13:45:10" {
		t.Fatalf("round trip mismatch: %q", FormatTimestamp(got))
	}

	d, err := ParseTimestamp("2024-05-01")
	if err != nil {
		t.Fatalf("parse date-only: %v", err)
	}
	if d.Hour() != 0 || d.Minute() != 0 {
		t.Fatalf("expected midnight, got %v", d)
	}

	if _, err := ParseTimestamp("tomorrow"); err == nil || !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Fatalf("expected layout hint in error, got %v", err)
	}
}

func TestStatus_Toggled(t *testing.T) {
	if StatusIncomplete.Toggled() != StatusComplete || StatusComplete.Toggled() != StatusIncomplete {
		t.Fatalf("toggle is not an involution")
	}
	if !StatusFromBool(true).Complete() || StatusFromBool(false).Complete() {
		t.Fatalf("StatusFromBool mismatch")
	}
}

func TestTask_FieldsCopiesRange(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	task := Task{ID: "1", Title: "a", Due: &DateRange{Start: start, End: start}}
	f := task.Fields()
	f.Due.End = start.Add(time.Hour)
	if !task.Due.End.Equal(start) {
		t.Fatalf("Fields must not alias the task's range")
	}
}

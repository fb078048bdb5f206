package board

import (
	"errors"
	"testing"
	"time"

	"taskdesk/internal/model"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

type payloadErr struct{ payload string }

func (e payloadErr) Error() string           { return "backend said no" }
func (e payloadErr) ResponsePayload() string { return e.payload }

func loadedBoard(t *testing.T, ids ...string) (*Board, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	b := New(logger)
	b.Loaded(tasks(ids...))
	return b, hook
}

func fillValid(b *Board) {
	b.Form.Set(FieldTitle, "Write report")
	b.Form.Set(FieldDetail, "<p>quarterly</p>")
	b.Form.Set(FieldStart, "2024-01-01 09:00:00")
	b.Form.Set(FieldEnd, "2024-01-02 17:00:00")
}

func TestCreate_ValidationFailureSendsNothing(t *testing.T) {
	b, _ := loadedBoard(t, "A")
	b.OpenCreate()
	b.Form.Set(FieldDetail, "only detail")

	if _, ok := b.SubmitEditor(); ok {
		t.Fatalf("expected no submission for an empty title and range")
	}
	if !b.EditorOpen() {
		t.Fatalf("expected editor to stay open")
	}
	if b.Form.Error(FieldTitle) == "" || b.Form.Error(model.FieldDueDate) == "" {
		t.Fatalf("expected title and date errors, got title=%q date=%q",
			b.Form.Error(FieldTitle), b.Form.Error(model.FieldDueDate))
	}
	if b.Submitting() {
		t.Fatalf("expected no call in flight")
	}

	b.Form.Set(FieldTitle, "x")
	if b.Form.Error(FieldTitle) != "" {
		t.Fatalf("expected editing a field to clear its error")
	}
}

func TestCreate_SuccessClosesNotifiesAndMerges(t *testing.T) {
	b, _ := loadedBoard(t, "A")
	b.OpenCreate()
	fillValid(b)

	sub, ok := b.SubmitEditor()
	if !ok {
		t.Fatalf("expected submission, form errors: %v", b.Form.errors)
	}
	if sub.Mode != ModeCreate || sub.Fields.Title != "Write report" || sub.Fields.Due == nil {
		t.Fatalf("unexpected submission: %+v", sub)
	}
	if _, again := b.SubmitEditor(); again {
		t.Fatalf("expected second submit to be ignored while in flight")
	}

	created := model.Task{ID: "B", Title: sub.Fields.Title, Due: sub.Fields.Due}
	if eff := b.CreateSucceeded(sub, created); eff != EffectRefetchLater {
		t.Fatalf("expected delayed refetch, got %v", eff)
	}
	if b.EditorOpen() || b.Submitting() {
		t.Fatalf("expected editor closed and idle")
	}
	if b.Notice().Text != MsgCreated {
		t.Fatalf("expected %q, got %q", MsgCreated, b.Notice().Text)
	}
	if b.Form.Title != "" || b.Form.Start != "" || b.Form.Mode != ModeCreate {
		t.Fatalf("expected cleared create form, got %+v", b.Form)
	}
	if got := idsOf(b.List.Tasks()); got != "A,B" {
		t.Fatalf("expected created task merged, got %s", got)
	}
}

func TestCreate_FailureKeepsEditorAndLogsPayload(t *testing.T) {
	b, hook := loadedBoard(t, "A")
	b.OpenCreate()
	fillValid(b)
	sub, _ := b.SubmitEditor()

	b.SubmitFailed(sub, payloadErr{payload: `{"error":"db down"}`})

	if !b.EditorOpen() || b.Form.Title != "Write report" {
		t.Fatalf("expected editor open with values intact")
	}
	if b.Submitting() {
		t.Fatalf("expected submit guard released")
	}
	if b.Notice().Text != "" {
		t.Fatalf("expected no notification on failure, got %q", b.Notice().Text)
	}
	e := hook.LastEntry()
	if e == nil || e.Level != log.ErrorLevel {
		t.Fatalf("expected an error log entry, got %+v", e)
	}
	if e.Data["op"] != "create task" || e.Data["payload"] != `{"error":"db down"}` {
		t.Fatalf("unexpected log fields: %v", e.Data)
	}
}

func TestEdit_PrepopulatesAndUpdates(t *testing.T) {
	b, _ := loadedBoard(t)
	start := time.Date(2024, 3, 1, 8, 30, 0, 0, time.Local)
	end := start.Add(48 * time.Hour)
	b.Loaded([]model.Task{{ID: "7", Title: "Plan", Detail: "d", Due: &model.DateRange{Start: start, End: end}}})

	if !b.OpenEdit("7") {
		t.Fatalf("expected edit to open")
	}
	if b.Form.Mode != ModeEdit || b.Form.Start != "2024-03-01 08:30:00" || b.Form.End != "2024-03-03 08:30:00" {
		t.Fatalf("unexpected prepopulated form: %+v", b.Form)
	}
	b.Form.Set(FieldTitle, "Plan v2")
	sub, ok := b.SubmitEditor()
	if !ok || sub.ID != "7" || sub.Mode != ModeEdit {
		t.Fatalf("unexpected submission %+v ok=%v", sub, ok)
	}

	// Server replied without a record: the sent fields are applied locally.
	if eff := b.UpdateSucceeded(sub, model.Task{}); eff != EffectRefetchLater {
		t.Fatalf("expected delayed refetch, got %v", eff)
	}
	got, _ := b.List.Find("7")
	if got.Title != "Plan v2" {
		t.Fatalf("expected local merge, got %+v", got)
	}
	if b.Notice().Text != MsgUpdated || b.EditorOpen() {
		t.Fatalf("expected closed editor with %q, got %q", MsgUpdated, b.Notice().Text)
	}
}

func TestEdit_UnknownTaskDoesNotOpen(t *testing.T) {
	b, _ := loadedBoard(t, "A")
	if b.OpenEdit("nope") || b.EditorOpen() {
		t.Fatalf("expected edit of unknown task to be refused")
	}
}

func TestLateResponseDoesNotCloseNewerEditor(t *testing.T) {
	b, _ := loadedBoard(t, "A")
	b.OpenCreate()
	fillValid(b)
	sub, _ := b.SubmitEditor()

	b.CloseEditor()
	b.OpenEdit("A")

	b.CreateSucceeded(sub, model.Task{ID: "B", Title: "Write report"})
	if !b.EditorOpen() || b.Form.Mode != ModeEdit || b.Form.TargetID != "A" {
		t.Fatalf("expected the newer edit session to survive, got open=%v form=%+v", b.EditorOpen(), b.Form)
	}
}

func TestStatus_NotifiesByDirection(t *testing.T) {
	b, _ := loadedBoard(t, "A")

	req, ok := b.ToggleStatus("A")
	if !ok || req.Status != model.StatusComplete || req.Previous != model.StatusIncomplete {
		t.Fatalf("unexpected request %+v", req)
	}
	if a, _ := b.List.Find("A"); !a.Status.Complete() {
		t.Fatalf("expected switch flipped immediately")
	}
	if eff := b.StatusSucceeded(req); eff != EffectNone {
		t.Fatalf("expected no refetch after status change, got %v", eff)
	}
	if b.Notice().Text != MsgComplete {
		t.Fatalf("expected %q, got %q", MsgComplete, b.Notice().Text)
	}

	req, _ = b.ToggleStatus("A")
	b.StatusSucceeded(req)
	if b.Notice().Text != MsgUncomplete {
		t.Fatalf("expected %q, got %q", MsgUncomplete, b.Notice().Text)
	}
}

func TestStatus_SuccessClosesOpenModals(t *testing.T) {
	b, _ := loadedBoard(t, "A", "B")
	b.AskDelete("B")
	req, _ := b.ToggleStatus("A")
	b.StatusSucceeded(req)
	if b.ConfirmOpen() || b.EditorOpen() {
		t.Fatalf("expected modals closed after status change")
	}
}

func TestStatus_FailureRollsBack(t *testing.T) {
	b, hook := loadedBoard(t, "A")
	req, _ := b.ToggleStatus("A")
	b.StatusFailed(req, errors.New("connection refused"))

	if a, _ := b.List.Find("A"); a.Status.Complete() {
		t.Fatalf("expected switch restored")
	}
	if b.Notice().Text != "" {
		t.Fatalf("expected no notification")
	}
	if e := hook.LastEntry(); e == nil || e.Data["task_id"] != "A" {
		t.Fatalf("expected failure logged with task id, got %+v", e)
	}
}

func TestDelete_ConfirmFlow(t *testing.T) {
	b, _ := loadedBoard(t, "A", "B")

	if !b.AskDelete("B") || !b.ConfirmOpen() {
		t.Fatalf("expected confirm dialog")
	}
	b.CancelDelete()
	if b.ConfirmOpen() {
		t.Fatalf("expected cancel to close the dialog")
	}
	if got := idsOf(b.List.Tasks()); got != "A,B" {
		t.Fatalf("expected nothing removed on cancel, got %s", got)
	}

	b.AskDelete("B")
	id, ok := b.ConfirmDelete()
	if !ok || id != "B" {
		t.Fatalf("expected B, got %q ok=%v", id, ok)
	}
	if !b.ConfirmOpen() {
		t.Fatalf("expected dialog open while the call runs")
	}
	if eff := b.DeleteSucceeded(id); eff != EffectRefetchNow {
		t.Fatalf("expected immediate refetch, got %v", eff)
	}
	if b.ConfirmOpen() || b.Notice().Text != MsgDeleted {
		t.Fatalf("expected dialog closed with %q", MsgDeleted)
	}
	if got := idsOf(b.List.Tasks()); got != "A" {
		t.Fatalf("expected B removed, got %s", got)
	}
}

func TestDelete_FailureKeepsDialog(t *testing.T) {
	b, hook := loadedBoard(t, "A")
	b.AskDelete("A")
	id, _ := b.ConfirmDelete()
	b.DeleteFailed(id, errors.New("boom"))

	if !b.ConfirmOpen() {
		t.Fatalf("expected dialog to stay open")
	}
	if e := hook.LastEntry(); e == nil || e.Data["op"] != "delete task" {
		t.Fatalf("expected logged failure, got %+v", e)
	}
}

func TestDrag_GestureAndCancel(t *testing.T) {
	b, _ := loadedBoard(t, "A", "B", "C")

	if !b.BeginDrag("C") || b.DraggingID() != "C" {
		t.Fatalf("expected C grabbed")
	}
	b.DragOver("A")
	if b.DropTargetID() != "A" {
		t.Fatalf("expected A as target, got %q", b.DropTargetID())
	}
	if !b.DropDrag() {
		t.Fatalf("expected reorder")
	}
	if got := idsOf(b.List.Tasks()); got != "C,A,B" {
		t.Fatalf("expected C,A,B, got %s", got)
	}
	if b.DraggingID() != "" || b.DropTargetID() != "" {
		t.Fatalf("expected gesture finished")
	}

	b.BeginDrag("A")
	b.DragOver("B")
	b.CancelDrag()
	if b.DropDrag() {
		t.Fatalf("expected no move after cancel")
	}
	if got := idsOf(b.List.Tasks()); got != "C,A,B" {
		t.Fatalf("expected order unchanged, got %s", got)
	}
}

func TestDrag_HiddenRowCannotBeGrabbed(t *testing.T) {
	b, _ := loadedBoard(t)
	b.Loaded([]model.Task{{ID: "1", Title: "alpha"}, {ID: "2", Title: "beta"}})
	b.List.SetQuery("alp")
	if b.BeginDrag("2") {
		t.Fatalf("expected filtered-out row to be refused")
	}
}

func TestDrag_RefetchDroppingActiveCancels(t *testing.T) {
	b, _ := loadedBoard(t, "A", "B")
	b.BeginDrag("B")
	b.Loaded(tasks("A"))
	if b.DraggingID() != "" {
		t.Fatalf("expected drag cancelled when its task disappears")
	}
}

func TestNudge(t *testing.T) {
	b, _ := loadedBoard(t, "A", "B", "C")
	if b.Nudge("A", -1) {
		t.Fatalf("expected no move past the top")
	}
	if !b.Nudge("A", 1) {
		t.Fatalf("expected move down")
	}
	if got := idsOf(b.List.Tasks()); got != "B,A,C" {
		t.Fatalf("expected B,A,C, got %s", got)
	}
	if !b.Nudge("C", -1) {
		t.Fatalf("expected move up")
	}
	if got := idsOf(b.List.Tasks()); got != "B,C,A" {
		t.Fatalf("expected B,C,A, got %s", got)
	}
}

func TestClearNotice_IgnoresStaleTimer(t *testing.T) {
	b, _ := loadedBoard(t, "A")
	req, _ := b.ToggleStatus("A")
	b.StatusSucceeded(req)
	first := b.Notice().Seq

	req, _ = b.ToggleStatus("A")
	b.StatusSucceeded(req)
	b.ClearNotice(first)
	if b.Notice().Text != MsgUncomplete {
		t.Fatalf("expected newer notice kept, got %q", b.Notice().Text)
	}
	b.ClearNotice(b.Notice().Seq)
	if b.Notice().Text != "" {
		t.Fatalf("expected notice cleared")
	}
}

func TestForm_SubmitDateErrors(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		want       string
	}{
		{"missing", "", "", "Date is required"},
		{"half", "2024-01-01", "", "Date is required"},
		{"bad start", "tomorrow", "2024-01-01", "Invalid start: want YYYY-MM-DD HH:mm:ss"},
		{"bad end", "2024-01-01", "soon", "Invalid end: want YYYY-MM-DD HH:mm:ss"},
		{"reversed", "2024-02-01", "2024-01-01", "Start must not be after end"},
	}
	for _, tc := range cases {
		var f Form
		f.LoadCreate()
		f.Set(FieldTitle, "t")
		f.Set(FieldStart, tc.start)
		f.Set(FieldEnd, tc.end)
		_, err := f.Submit()
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if got := f.Error(model.FieldDueDate); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

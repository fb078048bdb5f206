package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"taskdesk/internal/model"
)

type recorded struct {
	method string
	path   string
	body   string
	reqID  string
}

type fakeBackend struct {
	mu    sync.Mutex
	calls []recorded
	reply func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recorded{method: r.Method, path: r.URL.EscapedPath(), body: string(b), reqID: r.Header.Get("X-Request-Id")})
	f.mu.Unlock()
	f.reply(w, r)
}

func (f *fakeBackend) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatalf("expected a request")
	}
	return f.calls[len(f.calls)-1]
}

func newTestClient(t *testing.T, reply func(w http.ResponseWriter, r *http.Request)) (*Client, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{reply: reply}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, fb
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNew_NormalizesBaseURL(t *testing.T) {
	c, err := New(Options{BaseURL: "http://localhost:8080/prefix"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.BaseURL() != "http://localhost:8080/prefix/" {
		t.Fatalf("expected trailing slash, got %q", c.BaseURL())
	}
	if c.Timeout() != DefaultTimeout {
		t.Fatalf("expected default timeout, got %s", c.Timeout())
	}
	if _, err := New(Options{BaseURL: "localhost"}); err == nil {
		t.Fatalf("expected error for relative base URL")
	}
}

func TestListTasks_DecodesRowIDShape(t *testing.T) {
	c, fb := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":[
			{"row_id":1,"title":"A","detail":"<p>x</p>","startdate":"2024-05-01T09:00:00.000Z","enddate":"2024-05-02T09:00:00.000Z","status":0},
			{"row_id":"b-2","title":"B","detail":null,"startdate":null,"enddate":null,"status":1}
		]}`)
	})

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := fb.last(t); got.method != http.MethodGet || got.path != "/api/tasks" || got.reqID == "" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	a, b := tasks[0], tasks[1]
	if a.ID != "1" || a.Title != "A" || a.Detail != "<p>x</p>" || a.Status != model.StatusIncomplete {
		t.Fatalf("unexpected first task: %+v", a)
	}
	if a.Due == nil || !a.Due.Start.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected range: %+v", a.Due)
	}
	if b.ID != "b-2" || b.Due != nil || !b.Status.Complete() {
		t.Fatalf("unexpected second task: %+v", b)
	}
}

func TestCreateTask_SendsFieldsAndReturnsRecord(t *testing.T) {
	c, fb := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 201, `{"data":{"row_id":42,"title":"Write","detail":"d","startdate":"2024-05-01T09:00:00Z","enddate":"2024-05-01T10:00:00Z","status":0}}`)
	})

	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	got, err := c.CreateTask(context.Background(), model.Fields{
		Title:  "  Write ",
		Detail: "d",
		Due:    &model.DateRange{Start: start, End: start.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID != "42" {
		t.Fatalf("expected server id, got %q", got.ID)
	}

	req := fb.last(t)
	if req.method != http.MethodPost || req.path != "/api/task" {
		t.Fatalf("unexpected request: %+v", req)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(req.body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["title"] != "Write" || body["detail"] != "d" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["startDate"] != "2024-05-01T09:00:00Z" || body["endDate"] != "2024-05-01T10:00:00Z" {
		t.Fatalf("unexpected dates: %v", body)
	}
}

func TestUpdateAndStatusAndDelete_Paths(t *testing.T) {
	c, fb := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":null}`)
	})
	ctx := context.Background()

	if _, err := c.UpdateTask(ctx, "7", model.Fields{Title: "x"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := fb.last(t); got.method != http.MethodPut || got.path != "/api/tasks/detail/7" {
		t.Fatalf("unexpected update request: %+v", got)
	}

	task, err := c.UpdateTaskStatus(ctx, "7", model.StatusComplete)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if task.ID != "" {
		t.Fatalf("expected zero task for null data, got %+v", task)
	}
	if got := fb.last(t); got.path != "/api/tasks/status/7" || strings.TrimSpace(got.body) != `{"status":1}` {
		t.Fatalf("unexpected status request: %+v", got)
	}

	if err := c.DeleteTask(ctx, "a/b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := fb.last(t); got.method != http.MethodDelete || got.path != "/api/tasks/a%2Fb" {
		t.Fatalf("unexpected delete request: %+v", got)
	}
}

func TestServerError_CarriesPayload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 404, `{"error":"task not found"}`)
	})

	err := c.DeleteTask(context.Background(), "9")
	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if ae.StatusCode != 404 || ae.Op != "delete task" || ae.RequestID == "" {
		t.Fatalf("unexpected error: %+v", ae)
	}
	if ae.ServerMessage() != "task not found" || Payload(err) != `{"error":"task not found"}` {
		t.Fatalf("unexpected payload: %q / %q", ae.ServerMessage(), Payload(err))
	}
	if !IsNotFound(err) {
		t.Fatalf("expected IsNotFound")
	}
	if !strings.Contains(err.Error(), "delete task: status 404: task not found") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestTimeout_IsEnforced(t *testing.T) {
	release := make(chan struct{})
	fb := &fakeBackend{reply: func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}}
	srv := httptest.NewServer(fb)
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	c, err := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	start := time.Now()
	_, err = c.ListTasks(context.Background())
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout took too long: %s", time.Since(start))
	}
}

func TestWireStatus_AcceptsBoolAndNumbers(t *testing.T) {
	for in, want := range map[string]model.Status{"0": 0, "1": 1, "true": 1, "false": 0, "null": 0} {
		var s WireStatus
		if err := s.UnmarshalJSON([]byte(in)); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if model.Status(s) != want {
			t.Fatalf("%s: expected %v, got %v", in, want, s)
		}
	}
	var s WireStatus
	if err := s.UnmarshalJSON([]byte("2")); err == nil {
		t.Fatalf("expected error for out-of-range status")
	}
}

func TestWireTime_Layouts(t *testing.T) {
	prev := time.Local
	time.Local = time.FixedZone("ICT", 7*3600)
	t.Cleanup(func() { time.Local = prev })

	cases := []struct {
		in   string
		want time.Time
	}{
		{`"2024-05-01T09:00:00.000Z"`, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
		{`"2024-05-01T09:00:00+02:00"`, time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)},
		{`"2024-05-01 09:00:00+02:00"`, time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)},
		{`"2024-05-01 10:00:00"`, time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)},
		{`"2024-05-01T10:00:00"`, time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)},
		{`"2024-05-01T10:00"`, time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)},
		{`"2024-05-01"`, time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)},
	}
	for _, tc := range cases {
		var w WireTime
		if err := w.UnmarshalJSON([]byte(tc.in)); err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if got := time.Time(w); !got.Equal(tc.want) {
			t.Fatalf("%s: expected %s, got %s", tc.in, tc.want, got)
		}
	}

	// Zone-less values keep their wall clock when shown locally.
	var w WireTime
	if err := w.UnmarshalJSON([]byte(`"2024-05-01 10:00:00"`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := model.FormatTimestamp(time.Time(w)); got != "2024-05-01 10:00:00" {
		t.Fatalf("expected local wall clock, got %q", got)
	}

	if err := w.UnmarshalJSON([]byte(`"next tuesday"`)); err == nil {
		t.Fatalf("expected error for unparseable timestamp")
	}
}

func TestListTasks_AcceptsDateOnlyRecords(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":[
			{"row_id":1,"title":"A","detail":"","startdate":"2024-05-01","enddate":"2024-05-02","status":0},
			{"row_id":2,"title":"B","detail":"","startdate":"2024-05-01T09:00:00Z","enddate":"2024-05-01T10:00:00Z","status":1}
		]}`)
	})

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	due := tasks[0].Due
	if due == nil || !due.Start.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)) || !due.End.Equal(time.Date(2024, 5, 2, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("unexpected range: %+v", due)
	}
}

func TestWrites_UnreadableSuccessBodyIsNotAFailure(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"unsupported timestamp", 201, `{"data":{"row_id":7,"title":"A","startdate":"someday","enddate":null,"status":0}}`},
		{"not json", 200, `<html>ok</html>`},
		{"bad status flag", 200, `{"data":{"row_id":7,"title":"A","status":"yes"}}`},
	}
	for _, tc := range cases {
		c, fb := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.status, tc.body)
		})
		ctx := context.Background()

		got, err := c.CreateTask(ctx, model.Fields{Title: "A"})
		if err != nil {
			t.Fatalf("%s: create: %v", tc.name, err)
		}
		if got.ID != "" {
			t.Fatalf("%s: expected empty record, got %+v", tc.name, got)
		}
		if _, err := c.UpdateTask(ctx, "7", model.Fields{Title: "A"}); err != nil {
			t.Fatalf("%s: update: %v", tc.name, err)
		}
		if _, err := c.UpdateTaskStatus(ctx, "7", model.StatusComplete); err != nil {
			t.Fatalf("%s: status: %v", tc.name, err)
		}
		fb.mu.Lock()
		n := len(fb.calls)
		fb.mu.Unlock()
		if n != 3 {
			t.Fatalf("%s: expected 3 requests, got %d", tc.name, n)
		}
	}

	// Reads stay strict: a list that cannot be decoded is an error.
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `<html>ok</html>`)
	})
	if _, err := c.ListTasks(context.Background()); err == nil {
		t.Fatalf("expected decode error on list")
	}
}

func TestWireID_MarshalsCanonicalNumbersOnly(t *testing.T) {
	for in, want := range map[WireID]string{"12": `12`, "001": `"001"`, "+1": `"+1"`, "b-2": `"b-2"`, "": `null`} {
		b, err := in.MarshalJSON()
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if string(b) != want {
			t.Fatalf("%q: expected %s, got %s", in, want, b)
		}
	}
}

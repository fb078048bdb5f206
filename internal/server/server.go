// Package server is the reference task backend: the REST contract the client speaks,
// served by echo on top of the sqlite store.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskdesk/internal/api"
	"taskdesk/internal/model"
	"taskdesk/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// TaskStore is the storage the handlers need. *store.Store implements it.
type TaskStore interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, f model.Fields) (model.Task, error)
	Update(ctx context.Context, id string, f model.Fields) (model.Task, error)
	SetStatus(ctx context.Context, id string, status model.Status) (model.Task, error)
	Delete(ctx context.Context, id string) (string, error)
}

type Server struct {
	e     *echo.Echo
	store TaskStore
	log   *log.Logger
}

func New(st TaskStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	s := &Server{e: e, store: st, log: logger}
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))
	e.Use(requestLogger(logger))
	s.register()
	return s
}

func (s *Server) register() {
	s.e.GET("/api/tasks", s.listTasks)
	s.e.POST("/api/task", s.createTask)
	s.e.PUT("/api/tasks/detail/:id", s.updateTask)
	s.e.PUT("/api/tasks/status/:id", s.updateStatus)
	s.e.DELETE("/api/tasks/:id", s.deleteTask)
}

func (s *Server) Handler() http.Handler { return s.e }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("task backend listening")
	err := s.e.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

type envelope struct {
	Data any `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
}

type taskRequest struct {
	Title     string       `json:"title"`
	Detail    string       `json:"detail"`
	StartDate api.WireTime `json:"startDate"`
	EndDate   api.WireTime `json:"endDate"`
}

func (r taskRequest) fields() model.Fields {
	f := model.Fields{Title: r.Title, Detail: r.Detail}
	start, end := time.Time(r.StartDate), time.Time(r.EndDate)
	if !start.IsZero() && !end.IsZero() {
		f.Due = &model.DateRange{Start: start, End: end}
	}
	return f
}

type statusRequest struct {
	Status *api.WireStatus `json:"status"`
}

func (s *Server) listTasks(c echo.Context) error {
	tasks, err := s.store.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]api.WireTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, api.FromTask(t))
	}
	return c.JSON(http.StatusOK, envelope{Data: out})
}

func (s *Server) createTask(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	t, err := s.store.Create(c.Request().Context(), req.fields())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Data: api.FromTask(t)})
}

func (s *Server) updateTask(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	t, err := s.store.Update(c.Request().Context(), c.Param("id"), req.fields())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Data: api.FromTask(t)})
}

func (s *Server) updateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Status == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}
	t, err := s.store.SetStatus(c.Request().Context(), c.Param("id"), model.Status(*req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Data: api.FromTask(t)})
}

func (s *Server) deleteTask(c echo.Context) error {
	id, err := s.store.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Data: map[string]api.WireID{"row_id": api.WireID(id)}})
}

// handleError renders every failure as {"error": "..."}: validation 400, unknown id 404,
// anything unexpected 500.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "internal server error"

	var (
		verr *model.ValidationError
		herr *echo.HTTPError
	)
	switch {
	case errors.As(err, &verr):
		code, msg = http.StatusBadRequest, verr.Error()
	case errors.Is(err, store.ErrNotFound):
		code, msg = http.StatusNotFound, store.ErrNotFound.Error()
	case errors.As(err, &herr):
		code, msg = herr.Code, fmt.Sprint(herr.Message)
	}
	if code >= http.StatusInternalServerError {
		s.log.WithFields(log.Fields{
			"method": c.Request().Method,
			"uri":    c.Request().RequestURI,
		}).WithError(err).Error("request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorBody{Error: msg})
	}
	if err != nil {
		s.log.WithError(err).Warn("write error response")
	}
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.RequestID != "" {
				entry = entry.WithField("request_id", v.RequestID)
			}
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("request")
			return nil
		},
	})
}

package cli

import (
	"context"
	"errors"
	"strings"

	"taskdesk/internal/api"
	"taskdesk/internal/board"
	"taskdesk/internal/model"
	"taskdesk/internal/richtext"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "List and change tasks on the backend",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksStatusCmd(app, "done", model.StatusComplete))
	cmd.AddCommand(newTasksStatusCmd(app, "undone", model.StatusIncomplete))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in backend order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFor(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callContext(cmd, app)
			defer cancel()
			tasks, err := c.ListTasks(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}

			// Same matching as the board's search box.
			var l board.List
			l.Replace(tasks)
			l.SetQuery(search)
			return writeOut(cmd, app, taskTable(l.Filtered()))
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Only tasks whose title contains this text (case-insensitive)")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "show <task-id>",
		Short:   "Show a task",
		Aliases: []string{"get"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFor(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callContext(cmd, app)
			defer cancel()
			t, err := findTask(ctx, c, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, taskDetail(t))
		},
	}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var title, detail, start, end string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f board.Form
			f.LoadCreate()
			f.Set(board.FieldTitle, title)
			f.Set(board.FieldDetail, detail)
			f.Set(board.FieldStart, start)
			f.Set(board.FieldEnd, end)
			fields, err := f.Submit()
			if err != nil {
				return writeErr(cmd, err)
			}

			c, err := clientFor(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callContext(cmd, app)
			defer cancel()
			t, err := c.CreateTask(ctx, fields)
			if err != nil {
				return writeErr(cmd, err)
			}
			if t.ID == "" {
				// Backends may answer with an empty body; report what was sent.
				t = model.Task{Title: fields.Title, Detail: fields.Detail, Due: fields.Due}
			}
			return writeOut(cmd, app, taskDetail(t))
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&detail, "detail", "", "Task detail (HTML)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD HH:mm:ss, required)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD HH:mm:ss, required)")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title, detail, start, end string
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Edit a task; omitted fields keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFor(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callContext(cmd, app)
			defer cancel()
			cur, err := findTask(ctx, c, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			var f board.Form
			f.LoadEdit(cur)
			flags := cmd.Flags()
			if flags.Changed("title") {
				f.Set(board.FieldTitle, title)
			}
			if flags.Changed("detail") {
				f.Set(board.FieldDetail, detail)
			}
			if flags.Changed("start") {
				f.Set(board.FieldStart, start)
			}
			if flags.Changed("end") {
				f.Set(board.FieldEnd, end)
			}
			fields, err := f.Submit()
			if err != nil {
				return writeErr(cmd, err)
			}

			t, err := c.UpdateTask(ctx, cur.ID, fields)
			if err != nil {
				return writeErr(cmd, notFoundFromAPI(err, cur.ID))
			}
			if t.ID == "" {
				t = cur
				t.Title, t.Detail, t.Due = fields.Title, fields.Detail, fields.Due
			}
			return writeOut(cmd, app, taskDetail(t))
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&detail, "detail", "", "New detail (HTML)")
	cmd.Flags().StringVar(&start, "start", "", "New start date (YYYY-MM-DD HH:mm:ss)")
	cmd.Flags().StringVar(&end, "end", "", "New end date (YYYY-MM-DD HH:mm:ss)")
	return cmd
}

func newTasksStatusCmd(app *App, use string, status model.Status) *cobra.Command {
	short := "Mark a task complete"
	if !status.Complete() {
		short = "Mark a task not complete"
	}
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFor(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callContext(cmd, app)
			defer cancel()
			cur, err := findTask(ctx, c, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := c.UpdateTaskStatus(ctx, cur.ID, status)
			if err != nil {
				return writeErr(cmd, notFoundFromAPI(err, cur.ID))
			}
			if t.ID == "" {
				t = cur
				t.Status = status
			}
			return writeOut(cmd, app, taskDetail(t))
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task-id>",
		Short:   "Delete a task",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFor(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := callContext(cmd, app)
			defer cancel()
			cur, err := findTask(ctx, c, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := c.DeleteTask(ctx, cur.ID); err != nil {
				return writeErr(cmd, notFoundFromAPI(err, cur.ID))
			}
			return writeOut(cmd, app, map[string]any{"id": cur.ID, "deleted": true})
		},
	}
}

func clientFor(cmd *cobra.Command, app *App) (*api.Client, error) {
	if _, err := cliLogger(cmd, app); err != nil {
		return nil, err
	}
	return newClient(app)
}

// callContext bounds a whole subcommand (lookup plus change) by twice the request timeout.
func callContext(cmd *cobra.Command, app *App) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, 2*app.cfg.Timeout)
}

// findTask looks id up in the full list; the contract has no single-task read.
func findTask(ctx context.Context, c *api.Client, id string) (model.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Task{}, errors.New("missing task id")
	}
	tasks, err := c.ListTasks(ctx)
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, errNotFound("task", id)
}

func notFoundFromAPI(err error, id string) error {
	if api.IsNotFound(err) {
		return errNotFound("task", id)
	}
	return err
}

var taskHeader = []string{"ID", "Title", "Detail", "Start Date", "End Date", "Complete"}

func taskRow(t model.Task) []string {
	start, end := "", ""
	if t.Due != nil {
		start, end = model.FormatTimestamp(t.Due.Start), model.FormatTimestamp(t.Due.End)
	}
	done := "no"
	if t.Status.Complete() {
		done = "yes"
	}
	return []string{t.ID, t.Title, richtext.PlainText(t.Detail), start, end, done}
}

// taskTable is a task list with a table rendering.
type taskTable []model.Task

func (tt taskTable) Header() []string { return taskHeader }

func (tt taskTable) Rows() [][]string {
	rows := make([][]string, 0, len(tt))
	for _, t := range tt {
		rows = append(rows, taskRow(t))
	}
	return rows
}

// taskDetail is a single task; it marshals exactly like model.Task.
type taskDetail model.Task

func (t taskDetail) Header() []string { return taskHeader }

func (t taskDetail) Rows() [][]string { return [][]string{taskRow(model.Task(t))} }

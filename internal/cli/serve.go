package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"taskdesk/internal/logging"
	"taskdesk/internal/server"
	"taskdesk/internal/store"

	"github.com/spf13/cobra"
)

const shutdownGrace = 5 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference task backend (SQLite)",
		Long: strings.TrimSpace(`
Run a local backend that speaks the same REST contract the board uses:

  GET    /api/tasks
  POST   /api/task
  PUT    /api/tasks/detail/{id}
  PUT    /api/tasks/status/{id}
  DELETE /api/tasks/{id}

Tasks are stored in a SQLite file.
`),
		Example: strings.TrimSpace(`
# Serve on the default address
taskdesk serve

# Serve a throwaway database on another port
taskdesk serve --addr 127.0.0.1:9090 --db /tmp/tasks.sqlite
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = app.cfg.Serve.Addr
			}
			if listenAddr == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}
			path := strings.TrimSpace(dbPath)
			if path == "" {
				path = app.cfg.Serve.DB
			}

			lg, err := logging.New(logging.Options{
				Path:     strings.TrimSpace(app.LogFile),
				Fallback: cmd.ErrOrStderr(),
				Debug:    app.cfg.Debug,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			app.logger = lg

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := store.Open(ctx, path)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			srv := server.New(st, lg.Logger)
			errc := make(chan error, 1)
			go func() { errc <- srv.Start(listenAddr) }()
			lg.WithField("addr", listenAddr).WithField("db", st.Path()).Info("serving tasks")

			select {
			case err := <-errc:
				if err != nil {
					return writeErr(cmd, err)
				}
				return nil
			case <-ctx.Done():
			}

			lg.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return writeErr(cmd, err)
			}
			return <-errc
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port; default :8080)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: $XDG_STATE_HOME/taskdesk/tasks.sqlite)")
	return cmd
}

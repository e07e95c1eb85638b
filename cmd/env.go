package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/auth"
	"github.com/abhisek/studyhall/internal/config"
	"github.com/abhisek/studyhall/internal/logging"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/session"
	"github.com/abhisek/studyhall/internal/store"
)

// env is everything a command needs, built from the resolved config.
type env struct {
	cfg    *config.Config
	log    *logging.Logger
	auth   *auth.Manager
	client *api.Client
	store  *store.Store
}

// newEnv loads config and builds the logger, credential manager and API
// client. withStore also opens the local history database.
func newEnv(cmd *cobra.Command, withStore bool) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	log = log.With(zap.String("command", cmd.CommandPath()))

	manager := auth.NewManager(cfg.Auth.CredentialsFile)
	if err := manager.Init(); err != nil {
		log.Warn(cmd.Context(), "ignoring unreadable credential", zap.Error(err))
	}

	client, err := api.New(api.Options{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		Credentials: manager,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: log, auth: manager, client: client}
	if withStore {
		st, err := store.OpenPath(cfg.Store.DB)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		e.store = st
	}
	return e, nil
}

func (e *env) close() {
	if e.store != nil {
		e.store.Close()
	}
	_ = e.log.Sync()
}

// deps assembles the screen and session dependencies.
func (e *env) deps() screen.Deps {
	d := screen.Deps{Client: e.client, Auth: e.auth, Logger: e.log}
	if e.store != nil {
		d.Events = e.store.EventRepo()
		d.Journal = session.NewStoreJournal(d.Events)
	}
	return d
}

// callCtx returns a context for a single request-response command.
func (e *env) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.API.Timeout > 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, requestTimeout)
}

// requireLogin fails early with a helpful message when no usable
// credential is stored.
func (e *env) requireLogin() error {
	if _, err := e.auth.Token(); err != nil {
		return fmt.Errorf("%w; run `studyhall login` first", err)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/auth"
	"github.com/joestump/joe-bookmarks/internal/build"
	"github.com/joestump/joe-bookmarks/internal/handler"
	"github.com/joestump/joe-bookmarks/internal/service"
	"github.com/joestump/joe-bookmarks/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, database, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			defer func() { _ = log.Sync() }()

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, cfg.InsecureCookies)
			tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)

			userStore := store.NewUserStore(database)
			relation := store.NewRelationshipStore(database, log, store.TxConfig{
				Timeout:    cfg.Tx.Timeout,
				MaxRetries: cfg.Tx.MaxRetries,
			})

			router := handler.NewRouter(handler.Deps{
				SessionManager: sessionManager,
				AuthMiddleware: auth.NewMiddleware(sessionManager, tokens, userStore, log),
				Links:          service.NewLinkService(relation, log),
				Accounts:       service.NewAccounts(userStore, tokens, service.DefaultPasswordCost, log),
				UserStore:      userStore,
				Relation:       relation,
				DB:             database,
				BaseURL:        cfg.BaseURL,
				Log:            log,
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening",
					zap.String("addr", cfg.HTTP.Addr),
					zap.String("driver", cfg.DB.Driver),
					zap.String("version", build.Version))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/medassist-labs/medchat/internal/config"
	"github.com/medassist-labs/medchat/internal/identity"
	"github.com/medassist-labs/medchat/internal/logger"
	"github.com/medassist-labs/medchat/internal/prompt"
	"github.com/medassist-labs/medchat/internal/server"
	"github.com/medassist-labs/medchat/internal/session"
	"github.com/medassist-labs/medchat/internal/store"
	"github.com/medassist-labs/medchat/internal/upstream"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sessions := session.NewStore(cfg.Sessions.Dir, cfg.Sessions.BackupDir)

			builder, err := prompt.NewBuilder(prompt.Options{
				TemplatePath:      cfg.Chat.TemplatePath,
				GreetingPhrases:   cfg.Chat.GreetingPhrases,
				GreetingWordLimit: cfg.Chat.GreetingWordLimit,
				FollowupWordLimit: cfg.Chat.FollowupWordLimit,
				FollowupCues:      cfg.Chat.FollowupCues,
			})
			if err != nil {
				return fmt.Errorf("prompt builder: %w", err)
			}
			if err := builder.Watch(ctx); err != nil {
				logger.Warn("template watch unavailable", "error", err)
			}

			timeout := time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second
			rotator, err := upstream.NewRotator(cfg.Upstream.APIKeys, func(key string) upstream.Client {
				return upstream.NewGeminiClient(key, cfg.Upstream.Model, cfg.Upstream.BaseURL, timeout)
			})
			if err != nil {
				return err
			}

			opts := server.Options{
				Sessions:  sessions,
				Prompts:   builder,
				Upstream:  rotator,
				Retry:     upstream.NewRetryer(cfg.Retry.MaxAttempts, time.Duration(cfg.Retry.InitialDelaySeconds)*time.Second),
				Welcome:   cfg.Chat.Welcome,
				Greeting:  cfg.Chat.GreetingReply,
				RateRPS:   cfg.Server.RateRPS,
				RateBurst: cfg.Server.RateBurst,
			}

			if cfg.Identity.DBPath != "" {
				db, err := store.Open(cfg.Identity.DBPath)
				if err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				defer db.Close()
				if cfg.Identity.Audit {
					opts.Audit = db
				}
				if cfg.Identity.JWTSecret != "" {
					opts.Verifier = identity.NewVerifier(cfg.Identity.JWTSecret, db)
				}
			}

			httpSrv := &http.Server{
				Addr:    cfg.Server.Addr,
				Handler: server.New(opts),
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("medchat listening",
					"addr", cfg.Server.Addr,
					"model", cfg.Upstream.Model,
					"keys", len(cfg.Upstream.APIKeys))
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
				shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shutCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides config)")
	return cmd
}

// Command inkwell serves the blog: accounts and sessions, posts, comments,
// profiles, cover uploads and live change notifications.
//
// @title Inkwell API
// @version 1.0
// @description Blog backend with cookie sessions.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/background"
	"github.com/user/inkwell-go/comments"
	"github.com/user/inkwell-go/config"
	"github.com/user/inkwell-go/db"
	_ "github.com/user/inkwell-go/docs"
	"github.com/user/inkwell-go/gateway"
	"github.com/user/inkwell-go/logging"
	"github.com/user/inkwell-go/notify"
	"github.com/user/inkwell-go/posts"
	"github.com/user/inkwell-go/uploads"
	"github.com/user/inkwell-go/users"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found or unreadable, using process environment", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sl := slog.New(logging.NewHandler(os.Stdout, cfg.Log.Level, cfg.Log.Format))
	slog.SetDefault(sl)
	logger := logging.NewSlogLogger(sl)
	ctx := context.Background()

	if cfg.DB.RunMigrations {
		if err := db.RunMigrations(cfg.DB, cfg.DB.MigrationsPath); err != nil {
			return err
		}
		logger.Info(ctx, "migrations applied", "path", cfg.DB.MigrationsPath)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	tokens, err := auth.NewTokenCodec(cfg.Auth.JWTSecret)
	if err != nil {
		return err
	}
	cookies := auth.NewCookieManager(cfg.Auth)

	var protector gateway.Protector = gateway.AllowAll
	if cfg.Gateway.URL != "" {
		protector = gateway.NewHTTPClient(cfg.Gateway.URL, cfg.Gateway.Key, cfg.Gateway.Timeout)
	} else {
		logger.Warn(ctx, "GATEWAY_URL not set, abuse protection disabled")
	}

	hub := notify.NewHub()
	dispatcher := background.NewDispatcher(hub, logger)
	dispatcher.Start()

	userStore := auth.NewPostgresUserStore(pool)
	authService := auth.NewAuthService(userStore, auth.NewBcryptHasher(auth.DefaultBcryptCost), tokens, cfg.Auth, protector, logger)

	postStore := posts.NewPostgresStore(pool)
	commentService := comments.NewCommentService(comments.NewPostgresStore(pool), postStore, dispatcher, logger)
	postService := posts.NewService(postStore, postStore, commentService, dispatcher, logger)
	userService := users.NewUserService(userStore, postService)

	routes := []routeRegistrar{
		auth.NewHandlers(authService, cookies),
		posts.NewHandler(postService),
		comments.NewCommentHandler(commentService),
		users.NewUserHandlers(userService),
	}
	if cfg.Upload.Enabled() {
		presigner, err := uploads.NewS3Presigner(ctx, cfg.Upload)
		if err != nil {
			return err
		}
		routes = append(routes, uploads.NewHandler(uploads.NewService(presigner, cfg.Upload, logger)))
	} else {
		logger.Warn(ctx, "S3_BUCKET not set, cover uploads disabled")
	}

	handler := newRouter(routerDeps{
		cfg:    cfg,
		log:    logger,
		gate:   auth.NewGate(cfg.Auth, tokens, cookies, protector, logger),
		ping:   func(ctx context.Context) error { return db.Ping(ctx, pool) },
		events: notify.NewStreamHandler(hub, logger, notify.TopicBlogs, notify.TopicComments),
		routes: routes,
	})

	srv := newServer(":"+cfg.Server.Port, handler)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info(ctx, "shutting down", "signal", sig.String())
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	return shutdown(srv, dispatcher, logger)
}

// newServer builds the HTTP server. Request contexts derive from a root
// context that is cancelled when Shutdown starts, which ends open event
// streams so that Shutdown does not wait for them.
func newServer(addr string, handler http.Handler) *http.Server {
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}

func shutdown(srv *http.Server, dispatcher *background.Dispatcher, logger logging.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownErr := srv.Shutdown(ctx)

	// The dispatcher gets its own budget so a slow server shutdown cannot skip the drain.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer drainCancel()
	if err := dispatcher.Stop(drainCtx); err != nil {
		logger.Warn(drainCtx, "dispatcher did not drain before timeout", "error", err)
	}

	if shutdownErr != nil {
		return fmt.Errorf("server shutdown: %w", shutdownErr)
	}
	logger.Info(ctx, "server stopped gracefully")
	return nil
}

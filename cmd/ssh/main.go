package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"stock-pulse/internal/analysis"
	"stock-pulse/internal/cache"
	"stock-pulse/internal/config"
	"stock-pulse/internal/db"
	"stock-pulse/internal/repository"
	"stock-pulse/internal/service"
	"stock-pulse/internal/tui"
	"stock-pulse/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
)

const userContextKey = "stock-pulse-ssh-user"

// sshUserDirectory is the slice of the SSH user repository the server needs.
type sshUserDirectory interface {
	FindByFingerprint(ctx context.Context, fingerprint string) (*repository.SSHUser, error)
	RecordLogin(ctx context.Context, userID int64) error
}

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	initPostgresFunc  = db.InitPostgres
	initRedisFunc     = cache.InitRedis
	initTracerFunc    = tracing.InitTracer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
	startSSHServerFn  = func(srv *ssh.Server) error { return srv.ListenAndServe() }
	shutdownSSHServer = func(srv *ssh.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	priceRepo := repository.NewPriceRepository(db.Pool, tracer)
	analysisRepo := repository.NewAnalysisRepository(db.Pool, tracer)
	userRepo := repository.NewSSHUserRepository(db.Pool, tracer)
	if db.Pool != nil {
		if err := userRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run ssh user migrations: %v", err)
		}
	}

	analysisService := service.NewAnalysisService(
		tracer,
		priceRepo,
		analysisRepo,
		analysis.NewCalculator(),
		analysis.NewGenerator(),
		analysis.NewRiskEngine(),
	)
	if cache.Client != nil {
		analysisService.WithCache(cache.NewAnalysisCache(cache.Client, time.Duration(cfg.CacheTTLSecs)*time.Second))
	}

	addr := net.JoinHostPort(cfg.SSHBind, fmt.Sprintf("%d", cfg.SSHPort))
	srv, err := wish.NewServer(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(sctx ssh.Context, key ssh.PublicKey) bool {
			user := authorize(sctx, userRepo, gossh.FingerprintSHA256(key))
			if user == nil {
				return false
			}
			sctx.SetValue(userContextKey, user)
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(teaHandler(analysisService)),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create ssh server: %v", err)
	}

	go func() {
		log.Printf("SSH server listening on %s", addr)
		if err := startSSHServerFn(srv); err != nil && err != ssh.ErrServerClosed {
			log.Fatalf("ssh listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownSSHServer(srv, shutdownCtx); err != nil {
		log.Printf("ssh server forced to shutdown: %v", err)
	}

	log.Println("SSH server exiting")
}

// authorize resolves a key fingerprint to an active user and records the
// login. Unknown keys and inactive users are rejected.
func authorize(ctx context.Context, users sshUserDirectory, fingerprint string) *repository.SSHUser {
	if users == nil {
		return nil
	}
	user, err := users.FindByFingerprint(ctx, fingerprint)
	if err != nil {
		log.Printf("ssh auth lookup failed: %v", err)
		return nil
	}
	if user == nil || !user.IsActive {
		return nil
	}
	if err := users.RecordLogin(ctx, user.ID); err != nil {
		log.Printf("failed to record login for %s: %v", user.Username, err)
	}
	return user
}

// teaHandler builds the per-session TUI with the authenticated user's
// stored risk tolerance.
func teaHandler(analysisService *service.AnalysisService) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		user, _ := s.Context().Value(userContextKey).(*repository.SSHUser)
		svc := tui.Services{
			Market:   analysisService,
			Analyses: analysisService,
		}
		if user != nil {
			svc.UserID = user.ID
			svc.Username = user.Username
			svc.Tolerance = user.Tolerance
		}

		m := tui.NewAppModel(svc)
		if pty, _, ok := s.Pty(); ok {
			m.SetSize(pty.Window.Width, pty.Window.Height)
		}
		return m, []tea.ProgramOption{tea.WithAltScreen()}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meetinghours/attendance-backend/internal/compliance"
	"github.com/meetinghours/attendance-backend/internal/config"
	appHTTP "github.com/meetinghours/attendance-backend/internal/handler/http"
	"github.com/meetinghours/attendance-backend/internal/pkg/cron"
	"github.com/meetinghours/attendance-backend/internal/pkg/jwt"
	"github.com/meetinghours/attendance-backend/internal/pkg/oauth"
	"github.com/meetinghours/attendance-backend/internal/pkg/sse"
	"github.com/meetinghours/attendance-backend/internal/repository"
	attendanceService "github.com/meetinghours/attendance-backend/internal/service/attendance"
	serviceAuth "github.com/meetinghours/attendance-backend/internal/service/auth"
	excuseService "github.com/meetinghours/attendance-backend/internal/service/excuse"
	metricsService "github.com/meetinghours/attendance-backend/internal/service/metrics"
	notificationService "github.com/meetinghours/attendance-backend/internal/service/notification"
	periodService "github.com/meetinghours/attendance-backend/internal/service/period"
	reportService "github.com/meetinghours/attendance-backend/internal/service/report"
	userService "github.com/meetinghours/attendance-backend/internal/service/user"
	windowService "github.com/meetinghours/attendance-backend/internal/service/window"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.App.LogLevel)})))

	if err := run(cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.App.Location

	repos, err := repository.Open(ctx, cfg.Database, cfg.DatabaseURL(), true)
	if err != nil {
		return err
	}
	defer repos.Close()
	slog.Info("Store ready", "driver", cfg.Database.Driver, "timezone", loc.String())

	policy, err := compliance.LoadPolicy(cfg.Compliance.PolicyFile)
	if err != nil {
		return err
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	GoogleService := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)

	hub := sse.NewHub()
	notifSvc := notificationService.NewNotificationService(repos.Users, hub, notificationService.Config{
		WorkerCount: cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
	})
	defer notifSvc.Stop()

	authService := serviceAuth.NewAuthService(repos.Tx, repos.Users, JWTService, cfg.OAuth2Google.AllowedDomain, cfg.OAuth2Google.AdminEmails)
	usersService := userService.NewUserService(repos.Users)
	windowsService := windowService.NewWindowService(repos.Windows, loc)
	periodsService := periodService.NewPeriodService(repos.Periods, loc)
	attendanceSvc := attendanceService.NewAttendanceService(repos.Tx, repos.Records, repos.Windows, repos.Periods, loc)
	metricsSvc := metricsService.NewMetricsService(repos.Records, repos.Windows, repos.Periods, repos.Excuses, loc)
	excuseSvc := excuseService.NewExcuseService(repos.Tx, repos.Excuses, repos.Requests, repos.Windows, repos.Periods, notifSvc, loc)
	reportSvc := reportService.NewReportService(repos.Users, repos.Periods, repos.Windows, repos.Records, repos.Excuses, policy, loc)

	scheduler := cron.NewScheduler(loc)
	complianceJobs := cron.NewComplianceJobs(repos.Periods, reportSvc, loc)
	if err := complianceJobs.RegisterJobs(scheduler, cfg.Compliance.DigestCron); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AppName:        cfg.App.Name,
			Version:        cfg.App.Version,
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		JWTService,
		appHTTP.Handlers{
			Auth:       appHTTP.NewAuthHandler(JWTService, authService, GoogleService, cfg.App.FrontendURL),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Metrics:    appHTTP.NewMetricsHandler(metricsSvc),
			Window:     appHTTP.NewWindowHandler(windowsService),
			Period:     appHTTP.NewPeriodHandler(periodsService),
			Excuse:     appHTTP.NewExcuseHandler(excuseSvc),
			Report:     appHTTP.NewReportHandler(reportSvc),
			User:       appHTTP.NewUserHandler(usersService),
			Events:     appHTTP.NewEventsHandler(notifSvc, JWTService),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Open event streams would otherwise hold Shutdown until its deadline
	server.RegisterOnShutdown(hub.Close)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func logLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

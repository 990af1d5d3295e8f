package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/flashcards/internal/cli"
	"github.com/mrlokans/flashcards/internal/config"
	http_controllers "github.com/mrlokans/flashcards/internal/http"
	"github.com/mrlokans/flashcards/internal/scheduler"
	"github.com/mrlokans/flashcards/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then calls onShutdown
// before shutting the server down.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// scheduler and task queue stop before the server
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Flashcards v%s", version)

	services, err := cli.NewServices(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer services.Close()
	log.Printf("Database initialized at: %s", cfg.Database.Path)
	log.Printf("Collection: %s", services.Collection.Path())

	taskCfg := tasks.Config{
		Workers:           cfg.Tasks.Workers,
		MaxRetries:        cfg.Tasks.MaxRetries,
		RetryDelay:        cfg.Tasks.RetryDelay,
		TaskTimeout:       cfg.Tasks.TaskTimeout,
		ReleaseAfter:      cfg.Tasks.ReleaseAfter,
		CleanupInterval:   cfg.Tasks.CleanupInterval,
		RetentionDuration: cfg.Tasks.RetentionDuration,
	}
	taskClient, err := tasks.NewClient(cfg.Database.Path, taskCfg)
	if err != nil {
		log.Fatalf("Failed to initialize task queue: %v", err)
	}
	defer taskClient.Close()

	taskClient.Register(
		tasks.NewJobQueue(services.Runner, taskCfg),
		tasks.NewPruneRunsQueue(services.DB),
	)

	taskCtx, taskCtxCancel := context.WithCancel(context.Background())
	go taskClient.Start(taskCtx)

	sched := scheduler.New(taskClient, cfg.JobSchedules(), cfg.RunRetentionDays, services.Location)
	schedCtx, schedCtxCancel := context.WithCancel(context.Background())
	if err := sched.Start(schedCtx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database: services.DB,
		Runs:     services.DB,
		Tasks:    taskClient,
		Jobs:     services.Runner.Registry(),
		Schedule: sched,
		Version:  version,
	})

	onShutdown := func(ctx context.Context) {
		sched.Stop()
		schedCtxCancel()
		taskClient.Stop(ctx)
		taskCtxCancel()
	}

	Serve(router, cfg, onShutdown)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xiaotaozi1127/story-teller-backend/api"
	"github.com/xiaotaozi1127/story-teller-backend/api/types"
	"github.com/xiaotaozi1127/story-teller-backend/internal/database"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/audio"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/cleanup"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/events"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/jobs"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/stories"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/synthesis"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/tts"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/voices"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/workers"
	"github.com/xiaotaozi1127/story-teller-backend/internal/telemetry"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/ffmpeg"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Story Teller API server with the configured settings.

The server accepts stories and voice samples over HTTP and synthesizes
story chunks in the background with the configured TTS backend.

Example:
  story-teller serve
  story-teller serve --port 9090
  story-teller serve --host 0.0.0.0 --port 8000`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		config.Set("server.host", host)
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		config.Set("server.port", port)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}

	if err := app.start(ctx); err != nil {
		shutdownApp(app, cfg)
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := app.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	logger.Infof(ctx, "Story Teller API listening on %s", app.server.Addr())

	select {
	case <-ctx.Done():
		logger.Infof(context.Background(), "Shutting down server...")
	case err = <-serverErr:
		logger.Errorf(context.Background(), "%v", err)
	}

	if shutdownErr := shutdownApp(app, cfg); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	if err == nil {
		logger.Infof(context.Background(), "Server gracefully stopped")
	}
	return err
}

func shutdownApp(app *application, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return app.shutdown(ctx)
}

// application owns every long lived component of the server
type application struct {
	cfg       *config.Config
	db        *database.DB
	server    *api.Server
	stories   *stories.Service
	pool      *workers.WorkerPool
	cleanup   *cleanup.Service
	events    events.Publisher
	telemetry *telemetry.Telemetry
}

// newApplication wires storage, synthesis, background workers and the HTTP
// server from cfg
func newApplication(cfg *config.Config) (*application, error) {
	app := &application{cfg: cfg}

	var (
		storyRepo stories.Repository
		voiceRepo voices.Repository
	)
	switch cfg.Storage.Backend {
	case "sqlite":
		db, err := database.Initialize(database.Options{
			Path:              cfg.Database.Path,
			LogQueries:        cfg.Database.LogQueries,
			EnableWAL:         cfg.Database.EnableWAL,
			EnableForeignKeys: cfg.Database.EnableForeignKeys,
		})
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
		app.db = db
		storyRepo = stories.NewGormRepository(db.DB)
		voiceRepo = voices.NewGormRepository(db.DB)
	default:
		storyRepo = stories.NewMemoryRepository()
		voiceRepo = voices.NewMemoryRepository()
	}

	var prober voices.Prober
	if cfg.FFmpeg.Enabled {
		ff := ffmpeg.New(cfg.FFmpeg.FFmpegPath, cfg.FFmpeg.FFprobePath, cfg.FFmpeg.Timeout)
		if err := ff.ValidateBinaries(); err != nil {
			app.closeDB()
			return nil, err
		}
		prober = ff
	}

	voiceService, err := voices.NewService(voiceRepo, prober, cfg.Storage.TempDir, cfg.Storage.VoiceDir, cfg.Voices)
	if err != nil {
		app.closeDB()
		return nil, err
	}

	store, err := audio.NewFilesystemStore(cfg.Storage.AudioDir)
	if err != nil {
		app.closeDB()
		return nil, err
	}

	provider, err := tts.ProviderFromConfig(cfg.TTS)
	if err != nil {
		app.closeDB()
		return nil, err
	}

	publisher, err := events.FromConfig(cfg.Events)
	if err != nil {
		app.closeDB()
		return nil, err
	}
	app.events = publisher

	tel, err := telemetry.Setup(cfg.Monitoring, Version)
	if err != nil {
		publisher.Close()
		app.closeDB()
		return nil, err
	}
	app.telemetry = tel

	queue := jobs.NewQueue(cfg.Processing.MaxQueueSize)
	app.stories = stories.NewService(storyRepo, voiceService, queue, store, cfg.Stories)

	coordinator := synthesis.NewCoordinator(storyRepo, provider, store,
		synthesis.WithPublisher(publisher),
		synthesis.WithMetrics(tel.Metrics),
		synthesis.WithChunkTimeout(cfg.Processing.ChunkTimeout),
	)

	app.pool = workers.NewWorkerPool(queue, cfg.Processing.Workers, cfg.Processing.PollInterval)
	app.pool.RegisterProcessor(workers.NewStoryProcessor(coordinator))

	app.cleanup = cleanup.NewService(cfg.Storage.MaxTempAge, cfg.Storage.CleanupInterval,
		cleanup.Target{Dir: cfg.Storage.TempDir, Prefix: "voice_"},
		cleanup.Target{Dir: cfg.Storage.TempDir, Prefix: "preview_"},
		cleanup.Target{Dir: cfg.Storage.AudioDir, Prefix: ".tmp_"},
	)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	app.server = api.NewServer(cfg)
	app.server.SetDependencies(&types.Dependencies{
		DB:             app.db,
		Config:         cfg,
		Version:        Version,
		StoryService:   app.stories,
		VoiceService:   voiceService,
		Backend:        provider,
		JobService:     queue,
		WorkerPool:     app.pool,
		MetricsHandler: tel.Handler,
	})
	if err := app.server.Initialize(); err != nil {
		app.shutdown(context.Background())
		return nil, err
	}

	logger.Infof(context.Background(), "Using %s storage and %s TTS backend", storageName(cfg), provider.Name())
	return app, nil
}

// start launches the background workers and reschedules stories left
// unfinished by a previous run
func (a *application) start(ctx context.Context) error {
	if err := a.pool.Start(context.Background()); err != nil {
		return fmt.Errorf("start worker pool: %w", err)
	}
	a.cleanup.Start(context.Background())

	if _, err := a.stories.ResumeUnfinished(ctx); err != nil {
		logger.Warnf(ctx, "Resuming unfinished stories stopped early: %v", err)
	}
	return nil
}

// shutdown stops intake first, then the workers, then the sinks they write to
func (a *application) shutdown(ctx context.Context) error {
	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}
	if a.pool != nil {
		a.pool.Stop()
	}
	if a.cleanup != nil {
		a.cleanup.Stop()
	}
	if a.events != nil {
		a.events.Close()
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	if err := a.closeDB(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *application) closeDB() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func storageName(cfg *config.Config) string {
	if cfg.Storage.Backend == "sqlite" {
		return "sqlite"
	}
	return "in-memory"
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-arcade/reviewhub/internal/engine/config"
	"github.com/go-arcade/reviewhub/internal/engine/router"
	"github.com/go-arcade/reviewhub/internal/engine/service"
	"github.com/go-arcade/reviewhub/internal/pkg/queue"
	"github.com/go-arcade/reviewhub/pkg/cache"
	"github.com/go-arcade/reviewhub/pkg/cron"
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/go-arcade/reviewhub/pkg/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	dailyReportJob     = "daily_report"
	dailyReportTimeout = 10 * time.Minute
)

type App struct {
	HttpApp    *fiber.App
	Dispatcher queue.Dispatcher
	Services   *service.Services
	Metrics    *metrics.Server
	Scheduler  *cron.Scheduler
	AppConf    *config.AppConfig
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string, rdb redis.UniversalClient) (*App, func(), error)

func NewApp(
	rt *router.Router,
	dispatcher queue.Dispatcher,
	services *service.Services,
	metricsServer *metrics.Server,
	reportConf config.ReportConfig,
	appConf *config.AppConfig,
) (*App, func(), error) {
	httpApp := rt.Router()

	// asynq 模式下暴露队列积压指标
	if d, ok := dispatcher.(*queue.AsynqDispatcher); ok {
		if err := metricsServer.RegisterCollector(metrics.NewQueueCollector(d.Inspector(), d.QueueName())); err != nil {
			log.Warnw("register queue collector failed", "error", err)
		}
	}

	scheduler := cron.New()
	if reportConf.Enabled {
		if err := scheduler.AddFunc(dailyReportJob, reportConf.Crontab, func() {
			ctx, cancel := context.WithTimeout(context.Background(), dailyReportTimeout)
			defer cancel()
			result, err := services.Report.DailyReport(ctx)
			if err != nil {
				log.Errorw("scheduled daily report failed", "error", err)
				return
			}
			log.Infow("scheduled daily report finished",
				"total_records", result.TotalRecords,
				"teams", len(result.TeamReports),
				"unassigned", result.UnassignedCount,
				"fallback_sent", result.FallbackSent,
			)
		}); err != nil {
			return nil, nil, fmt.Errorf("register daily report job: %w", err)
		}
	}

	cleanup := func() {
		log.Info("Shutting down dispatcher...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := dispatcher.Close(ctx); err != nil {
			log.Errorw("dispatcher close failed", "error", err)
		}
	}

	app := &App{
		HttpApp:    httpApp,
		Dispatcher: dispatcher,
		Services:   services,
		Metrics:    metricsServer,
		Scheduler:  scheduler,
		AppConf:    appConf,
	}
	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	// load config
	appConf := config.NewConf(configFile)

	// init logger
	if _, err := log.NewLog(&appConf.Log); err != nil {
		return nil, nil, err
	}

	// redis 仅在配置了地址时连接，本地分发模式不需要
	var rdb redis.UniversalClient
	if appConf.Redis.Enabled() {
		client, err := cache.NewRedis(appConf.Redis)
		if err != nil {
			return nil, nil, err
		}
		rdb = client
	}

	// Wire build App
	app, cleanup, err := initApp(configFile, rdb)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, nil, err
	}

	return app, func() {
		cleanup()
		if rdb != nil {
			// asynq 客户端关闭时会一并关闭共享连接
			if err := rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
				log.Errorw("redis close failed", "error", err)
			}
		}
		_ = log.Sync()
	}, nil
}

// Run start app and wait for exit signal, then gracefully shutdown
func Run(app *App, cleanup func()) {
	appConf := app.AppConf

	if err := app.Dispatcher.Start(); err != nil {
		log.Errorw("dispatcher start failed", "mode", app.Dispatcher.Mode(), "error", err)
		cleanup()
		return
	}
	log.Infow("dispatcher started", "mode", app.Dispatcher.Mode())

	if err := app.Metrics.Start(); err != nil {
		log.Errorw("metrics server start failed", "error", err)
	}
	app.Scheduler.Start()

	// set signal listener (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// start HTTP server (async)
	go func() {
		addr := fmt.Sprintf("%s:%d", appConf.Http.Host, appConf.Http.Port)
		log.Infow("HTTP listener started",
			"address", addr,
		)
		if err := app.HttpApp.Listen(addr); err != nil {
			log.Errorw("HTTP listener failed",
				"address", addr,
				"error", err,
			)
		}
	}()

	// wait for exit signal
	sig := <-quit
	log.Infof("Received signal: %v, shutting down gracefully...", sig)

	// close HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(appConf.Http.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	} else {
		log.Info("HTTP server shut down gracefully")
	}

	app.Scheduler.Stop()
	if err := app.Metrics.Stop(shutdownCtx); err != nil {
		log.Errorf("metrics server shutdown error: %v", err)
	}

	// close dispatcher and other resources
	cleanup()

	log.Info("Server shutdown complete")
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shopee_ops_v1_202610/internal/controller"
	"shopee_ops_v1_202610/internal/middleware"
	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/internal/notify"
	"shopee_ops_v1_202610/internal/repository"
	"shopee_ops_v1_202610/internal/router"
	"shopee_ops_v1_202610/internal/service"
	"shopee_ops_v1_202610/internal/task"
	"shopee_ops_v1_202610/internal/webhook"
	"shopee_ops_v1_202610/pkg/cache"
	"shopee_ops_v1_202610/pkg/config"
	"shopee_ops_v1_202610/pkg/database"
	"shopee_ops_v1_202610/pkg/logger"
	"shopee_ops_v1_202610/pkg/shopee"
)

func main() {
	app := &cli.App{
		Name:  "shopee-ops",
		Usage: "Shopee 推送处理与订单同步服务",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径，留空时读取 ./config.yaml 与环境变量",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "启动 HTTP 服务与后台任务",
				Action: runServe,
			},
			{
				Name:  "sync",
				Usage: "同步单个店铺的订单与预约单，进度逐行输出",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "shop", Usage: "店铺 ID", Required: true},
					&cli.StringSliceFlag{Name: "order", Usage: "指定订单号，可重复"},
					&cli.StringSliceFlag{Name: "booking", Usage: "指定预约单号，可重复"},
					&cli.BoolFlag{Name: "include-bookings", Usage: "同时同步预约单"},
				},
				Action: runSync,
			},
			{
				Name:   "migrate",
				Usage:  "自动建表后退出",
				Action: runMigrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Cache  cache.Store
	Shopee *shopee.Client

	Hub   *notify.Hub
	Kafka *notify.KafkaPublisher

	Repos    *Repositories
	Services *Services

	Limiter     *middleware.SyncRateLimiter
	Webhook     *webhook.Router
	Dispatcher  *webhook.Dispatcher
	Controllers router.Controllers
	Tasks       *task.TaskManager

	// 后台自动化的生命周期
	bgCancel context.CancelFunc
}

// Repositories 仓库集合
type Repositories struct {
	Order        repository.OrderRepository
	Booking      repository.BookingRepository
	Shop         repository.ShopRepository
	Settings     repository.SettingsRepository
	Notification repository.NotificationRepository
}

// Services 服务集合
type Services struct {
	Token       *service.TokenService
	Order       *service.OrderService
	OrderSync   *service.OrderSyncService
	BookingSync *service.BookingSyncService
	Sync        *service.SyncService
	Settings    *service.SettingsService
	Premium     *service.PremiumService
	ShopEvent   *service.ShopEventService
}

// ==================== 命令 ====================

// runServe 启动服务
func runServe(c *cli.Context) error {
	cfg, log, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// 1. 初始化数据库
	db, err := database.InitDB(cfg.DB, log, model.AllModels()...)
	if err != nil {
		return err
	}

	// 2. 初始化依赖
	deps, err := initDependencies(c.Context, cfg, log, db)
	if err != nil {
		_ = database.Close(db)
		return err
	}
	defer deps.Close()

	// 3. 启动推送分发与定时任务
	deps.Dispatcher.Start(context.Background())
	if err := deps.Tasks.Start(); err != nil {
		return fmt.Errorf("定时任务启动失败: %w", err)
	}

	// 4. 初始化路由
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log))
	router.InitRoutes(r, deps.Controllers, router.Options{
		JWTSecret:     cfg.Auth.JWTSecret,
		SSEConnLimit:  10,
		SSEConnWindow: time.Minute,
		HealthCheck: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	})

	// 5. 启动服务
	return startServer(r, deps)
}

// runSync 命令行手动同步
func runSync(c *cli.Context) error {
	cfg, log, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.InitDB(cfg.DB, log)
	if err != nil {
		return err
	}
	deps, err := initDependencies(c.Context, cfg, log, db)
	if err != nil {
		_ = database.Close(db)
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	report, err := deps.Services.Sync.Run(ctx, service.SyncRequest{
		ShopID:          c.Int64("shop"),
		OrderSns:        c.StringSlice("order"),
		BookingSns:      c.StringSlice("booking"),
		IncludeBookings: c.Bool("include-bookings"),
	}, func(p service.StreamProgress) {
		_ = enc.Encode(p)
	})
	if err != nil {
		return err
	}
	return enc.Encode(report)
}

// runMigrate 只建表
func runMigrate(c *cli.Context) error {
	cfg, log, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg.DB.AutoMigrate = true
	db, err := database.InitDB(cfg.DB, log, model.AllModels()...)
	if err != nil {
		return err
	}
	return database.Close(db)
}

// ==================== 初始化函数 ====================

// bootstrap 加载配置并初始化日志
func bootstrap(c *cli.Context) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	log := logger.Init(cfg.Log.Level, cfg.Log.Format)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return cfg, log, nil
}

// initDependencies 初始化所有依赖
func initDependencies(ctx context.Context, cfg *config.Config, log *zap.Logger, db *gorm.DB) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Limiter: middleware.NewSyncRateLimiter(),
	}

	// -------- 基础设施 --------
	store, err := initCache(ctx, cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	deps.Cache = store

	deps.Shopee = shopee.NewClient(shopee.Config{
		PartnerID:  cfg.Shopee.PartnerID,
		PartnerKey: cfg.Shopee.PartnerKey,
		BaseURL:    cfg.Shopee.BaseURL,
		Timeout:    cfg.Shopee.Timeout,
		RateLimit:  cfg.Shopee.RateLimit,
	}, log)

	deps.Hub = notify.NewHub(0, log)
	notifiers := notify.Multi{deps.Hub}
	if len(cfg.Kafka.Brokers) > 0 {
		deps.Kafka = notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		notifiers = append(notifiers, deps.Kafka)
		log.Info("通知外发已开启", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// -------- Repo 层 --------
	repos := initRepositories(db)
	deps.Repos = repos

	// -------- 业务服务 --------
	syncCfg := service.SyncConfig{
		DefaultDays: cfg.Sync.DefaultDays,
		PageSize:    cfg.Sync.PageSize,
		BatchSize:   cfg.Sync.BatchSize,
		Parallelism: cfg.Sync.Parallelism,
	}

	svc := &Services{}
	svc.Token = service.NewTokenService(repos.Shop, deps.Shopee, log)
	svc.Order = service.NewOrderService(repos.Order, deps.Shopee, svc.Token, log)
	svc.OrderSync = service.NewOrderSyncService(deps.Shopee, svc.Token, svc.Order, syncCfg, log)
	svc.BookingSync = service.NewBookingSyncService(deps.Shopee, svc.Token, repos.Booking, syncCfg, log)
	svc.Sync = service.NewSyncService(svc.OrderSync, svc.BookingSync)
	svc.Settings = service.NewSettingsService(repos.Settings, repos.Shop, store, cfg.Redis.TTL, log)
	svc.Premium = service.NewPremiumService(svc.Settings, deps.Shopee, svc.Token, log)
	svc.ShopEvent = service.NewShopEventService(repos.Notification, svc.Settings, notifiers, log)
	deps.Services = svc

	// -------- 推送处理 --------
	bgCtx, bgCancel := context.WithCancel(context.Background())
	deps.bgCancel = bgCancel
	deps.Webhook = webhook.NewRouter(bgCtx, webhook.Deps{
		Orders:     svc.Order,
		Automation: svc.Premium,
		Shops:      svc.Settings,
		ShopEvents: svc.ShopEvent,
		Notifier:   notifiers,
	}, log)
	deps.Dispatcher = webhook.NewDispatcher(deps.Webhook, cfg.Webhook.Workers, cfg.Webhook.QueueSize, log)

	// -------- Controller 层 --------
	deps.Controllers = router.Controllers{
		Webhook:      controller.NewWebhookController(deps.Dispatcher, log),
		Sync:         controller.NewSyncController(svc.Sync, svc.Settings, deps.Limiter, cfg.Sync.Cooldown, log),
		Notification: controller.NewNotificationController(deps.Hub, repos.Shop, repos.Notification, log),
	}

	// -------- 定时任务 --------
	deps.Tasks = task.NewTaskManager(&task.TaskManagerDeps{
		ShopRepo:    repos.Shop,
		OrderSync:   svc.OrderSync,
		BookingSync: svc.BookingSync,
		Tokens:      svc.Token,
		Limiter:     deps.Limiter,
		Logger:      log,
	}, &task.TaskManagerConfig{
		SyncEnabled:      cfg.Task.SyncEnabled,
		SyncSpec:         cfg.Task.SyncSpec,
		SyncConcurrency:  cfg.Task.SyncConcurrency,
		TokenEnabled:     cfg.Task.TokenEnabled,
		TokenSpec:        cfg.Task.TokenSpec,
		TokenConcurrency: 10,
	})

	return deps, nil
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:        repository.NewOrderRepository(db),
		Booking:      repository.NewBookingRepository(db),
		Shop:         repository.NewShopRepository(db),
		Settings:     repository.NewSettingsRepository(db),
		Notification: repository.NewNotificationRepository(db),
	}
}

// initCache 配置了 Redis 地址时使用 Redis，否则退回进程内缓存
func initCache(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (cache.Store, error) {
	if cfg.Addr == "" {
		log.Warn("未配置 Redis，使用进程内缓存")
		return cache.NewMemory(), nil
	}
	store, err := cache.NewRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Redis 连接成功", zap.String("addr", cfg.Addr))
	return store, nil
}

// Close 按依赖逆序释放资源
func (d *Dependencies) Close() {
	if d.Tasks != nil {
		d.Tasks.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.Config.Server.ShutdownTimeout)
	defer cancel()
	if d.Dispatcher != nil {
		if err := d.Dispatcher.Stop(ctx); err != nil {
			d.Log.Warn("推送队列未能排空", zap.Error(err))
		}
	}
	if d.Webhook != nil {
		waitOrCancel(ctx, d.Webhook.Wait, d.bgCancel)
	}

	if d.Kafka != nil {
		if err := d.Kafka.Close(); err != nil {
			d.Log.Warn("关闭 Kafka 失败", zap.Error(err))
		}
	}
	if d.Hub != nil {
		d.Hub.Close()
	}
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Log.Warn("关闭缓存失败", zap.Error(err))
		}
	}
	if d.Shopee != nil {
		d.Shopee.Close()
	}
	if err := database.Close(d.DB); err != nil {
		d.Log.Warn("关闭数据库失败", zap.Error(err))
	}
}

// waitOrCancel 等待后台自动化结束，超时后取消并再等一次
func waitOrCancel(ctx context.Context, wait func(), cancel context.CancelFunc) {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		cancel()
		<-done
	}
	cancel()
}

// ==================== 服务启动 ====================

// startServer 启动服务并阻塞到退出信号
func startServer(r *gin.Engine, deps *Dependencies) error {
	cfg := deps.Config
	log := deps.Log

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("正在关闭服务", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("服务启动失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("服务强制关闭", zap.Error(err))
	}

	log.Info("服务已退出")
	return nil
}

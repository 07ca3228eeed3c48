package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"shortly-platform/internal/chat"
	"shortly-platform/internal/config"
	"shortly-platform/internal/geo"
	"shortly-platform/internal/handler"
	"shortly-platform/internal/middleware"
	"shortly-platform/internal/service"
	"shortly-platform/internal/shortcode"
	"shortly-platform/internal/store"
	"shortly-platform/pkg/database"
	auth "shortly-platform/pkg/jwt"
	"shortly-platform/pkg/logger"
	"shortly-platform/pkg/redis"

	_ "shortly-platform/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Shortly API
// @version         1.0
// @description     短链接服务：创建短链接、跳转并记录点击、按用户统计访问地区。
// @BasePath        /
// @securityDefinitions.apikey CookieAuth
// @in              cookie
// @name            token
func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("配置加载失败: %v", err))
	}

	logger.InitLogger(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	defer func() {
		if err := logger.Logger.Sync(); err != nil {
			fmt.Println("日志同步失败:", err)
		}
	}()
	sugaredLogger := zap.S()

	db, err := database.Open(cfg.DatabaseOptions())
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	sugaredLogger.Infow("✅ 数据库连接成功", "driver", cfg.Database.Driver)

	if err := database.Migrate(db); err != nil {
		sugaredLogger.Fatalf("数据库迁移失败: %v", err)
	}
	sugaredLogger.Info("✅ 数据库迁移成功")

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redis.NewRedisClient(&redis.Options{
			Host: cfg.Cache.Host, Port: cfg.Cache.Port, Password: cfg.Cache.Password, DB: cfg.Cache.DB,
		})
		if err != nil {
			// 缓存不可用时降级运行
			sugaredLogger.Warnf("缓存连接失败: %v", err)
			rdb = nil
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
				}
			}()
			sugaredLogger.Info("✅ 缓存连接成功")
		}
	}

	// 初始化并启动短码生成器
	shortcodeGenerator, err := shortcode.NewGenerator(shortcode.Options{
		Strategy: cfg.ShortCode.Strategy,
		Length:   cfg.ShortCode.Length,
		PoolSize: cfg.ShortCode.PoolSize,
	}, sugaredLogger)
	if err != nil {
		sugaredLogger.Fatalf("短码生成器初始化失败: %v", err)
	}
	shortcodeGenerator.Start()
	defer shortcodeGenerator.Stop()
	sugaredLogger.Infow("✅ 短码生成器已启动", "strategy", cfg.ShortCode.Strategy)

	var locator service.Locator = geo.Disabled{}
	if cfg.Geo.Enabled {
		locator = geo.NewResolver(geo.Options{
			Endpoint:        cfg.Geo.Endpoint,
			Timeout:         cfg.GeoTimeout(),
			CacheTTL:        time.Duration(cfg.Geo.CacheTTL) * time.Second,
			BreakerFailures: cfg.Geo.BreakerFailures,
			BreakerCooldown: time.Duration(cfg.Geo.BreakerCooldown) * time.Second,
		}, rdb, sugaredLogger)
	}

	tokenManager := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)
	sugaredLogger.Info("✅ 认证管理器初始化成功")

	linkService := service.NewLinkService(store.NewLinkStore(db), shortcodeGenerator, locator, rdb, service.Options{
		MaxRetries: cfg.ShortCode.MaxRetries,
		CacheTTL:   time.Duration(cfg.Cache.LinkTTL) * time.Second,
	}, sugaredLogger)
	authService := service.NewAuthService(store.NewUserStore(db), tokenManager, rdb, cfg.Auth.MinPassword, sugaredLogger)
	chatClient := chat.NewClient(cfg.Chat.Endpoint, cfg.ChatTimeout(), sugaredLogger)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.RegisterValidators(); err != nil {
		sugaredLogger.Fatalf("注册校验器失败: %v", err)
	}

	router := gin.New()
	router.Use(middleware.GinZapRecovery(logger.Logger, true))
	router.Use(middleware.RequestID())
	router.Use(middleware.GinZapLogger(logger.Logger))
	router.Use(middleware.Metrics())
	router.Use(cors.New(corsConfig(cfg.CORS, cfg.App.IsProduction(), sugaredLogger)))
	router.Use(middleware.RateLimit(rdb, &cfg.RateLimit))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handler.RegisterRoutes(router, handler.Handlers{
		Links: handler.NewShortLinkHandler(linkService, cfg.App.BaseURL),
		Auth: handler.NewAuthHandler(authService, handler.CookieOptions{
			Name:   cfg.Auth.CookieName,
			MaxAge: int(tokenManager.TTL().Seconds()),
			Secure: cfg.App.IsProduction(),
		}),
		Users: handler.NewUserHandler(authService),
		Chat:  handler.NewChatHandler(chatClient),
	}, middleware.AuthMiddleware(authService, cfg.Auth.CookieName))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
		sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugaredLogger.Fatalf("服务启动失败: %v", err)
		}
	}()

	<-ctx.Done()
	sugaredLogger.Info("收到退出信号，正在关闭服务...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		sugaredLogger.Errorf("服务关闭失败: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	sugaredLogger.Info("服务已退出")
}

// corsConfig 前端通过 Cookie 认证，需要允许携带凭据。
// 未配置 allow_origins 时，生产模式拒绝所有跨域请求，其他模式放行任意来源。
func corsConfig(c config.CORS, production bool, log *zap.SugaredLogger) cors.Config {
	conf := cors.DefaultConfig()
	conf.AllowCredentials = true
	conf.AllowHeaders = append(conf.AllowHeaders, "X-Request-ID")
	conf.ExposeHeaders = []string{"X-Request-ID"}
	switch {
	case len(c.AllowOrigins) > 0:
		conf.AllowOrigins = c.AllowOrigins
	case production:
		log.Warn("未配置 cors.allow_origins，生产模式下拒绝所有跨域请求")
		conf.AllowOriginFunc = func(string) bool { return false }
	default:
		log.Warn("未配置 cors.allow_origins，允许任意来源携带凭据访问，仅用于开发")
		conf.AllowOriginFunc = func(string) bool { return true }
	}
	return conf
}

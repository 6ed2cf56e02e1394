package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/guessthegame/guess-the-game-backend/api"
	"github.com/guessthegame/guess-the-game-backend/internal/moderation"
	"github.com/guessthegame/guess-the-game-backend/internal/platform/captcha"
	"github.com/guessthegame/guess-the-game-backend/internal/platform/config"
	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/guessthegame/guess-the-game-backend/internal/platform/health"
	"github.com/guessthegame/guess-the-game-backend/internal/platform/mailer"
	"github.com/guessthegame/guess-the-game-backend/internal/platform/shutdown"
	"github.com/guessthegame/guess-the-game-backend/internal/platform/startup"
	"github.com/guessthegame/guess-the-game-backend/pkg/lifecycle"
	"github.com/guessthegame/guess-the-game-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env用于本地开发时覆盖配置，文件缺失不是错误
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}

	token.InitializeSecretKey(cfg.Token.Secret)
	captcha.Initialize(cfg.Captcha)
	mailer.Initialize(cfg.Mailer)

	database.InitDB(cfg.Database)
	database.InitRedis(cfg.Database.Redis)

	// 执行应用首次启动初始化流程（迁移 + 缓存预热）
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 准备生命周期管理器和后台服务
	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()

	healthHandle, err := gracefulMgr.NewServiceHandle("redis-health-check")
	if err != nil {
		panic(err)
	}
	go health.StartRedisHealthCheck(healthHandle, startup.RebuildCache)

	notifierHandle, err := gracefulMgr.NewServiceHandle("moderation-notifier")
	if err != nil {
		panic(err)
	}
	go moderation.StartNotifier(notifierHandle)

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 阻塞等待停机信号，并编排两阶段优雅停机
	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr)
	coordinator.ListenForSignalsAndShutdown(server)
}

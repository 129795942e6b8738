package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"rps_web/internal/api"
	"rps_web/internal/game"
	"rps_web/internal/models"
	"rps_web/internal/repository"
	"rps_web/internal/service"
	"rps_web/internal/storage"
	"rps_web/pkg/config"
)

func main() {
	// 載入應用程式配置
	// 從配置文件中讀取設置，如數據庫連接信息和服務器地址等
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化資料庫連接
	// 使用配置中的信息建立到 PostgreSQL 數據庫的連接
	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	// 確保在程序結束時關閉數據庫連接
	defer db.Close()

	// 自動遷移資料庫結構
	// 玩家帳號與對戰歷史是僅有的兩張持久化表，房間狀態只存在記憶體
	if err := db.AutoMigrate(&models.User{}, &models.Match{}); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	// 初始化 repositories
	repos := repository.NewRepositories(db)

	// 初始化 services 與遊戲引擎
	services := service.NewServices(repos, game.Config{
		OnlineTTL: cfg.Game.OnlineTTLDuration(),
		InviteTTL: cfg.Game.InviteTTLDuration(),
		RoomTTL:   cfg.Game.RoomTTLDuration(),
	})

	// 啟動定期清理，移除過期的上線紀錄、邀請與房間
	sweeper, err := service.StartSweeper(services.Engine, cfg.Game.SweepIntervalDuration())
	if err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}
	defer func() {
		if err := sweeper.Shutdown(); err != nil {
			log.Printf("Failed to shut down sweeper: %v", err)
		}
	}()

	// 設置 Gin 路由
	r := gin.Default()
	api.SetupRoutes(r, services)

	// 啟動伺服器
	// 使用配置中指定的地址啟動 HTTP 服務器
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rps_web/internal/api/handlers"
	"rps_web/internal/middleware"
	"rps_web/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User)
	lobbyHandler := handlers.NewLobbyHandler(services.Engine, services.User)
	roomHandler := handlers.NewRoomHandler(services.Engine, services.User, services.WebSocketManager)
	statsHandler := handlers.NewStatsHandler(services.Stats)
	wsHandler := handlers.NewWebSocketHandler(services.Engine, services.User, services.WebSocketManager)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 玩家認證相關
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/game")
	authorized.Use(middleware.AuthMiddleware())
	{
		// 大廳：心跳、上線名單與邀請
		lobby := authorized.Group("/lobby")
		{
			lobby.POST("/heartbeat", lobbyHandler.Heartbeat)
			lobby.GET("/online", lobbyHandler.Online)
			lobby.POST("/leave", lobbyHandler.Leave)

			lobby.POST("/invite", lobbyHandler.SendInvite)
			lobby.POST("/invite/:id/accept", lobbyHandler.AcceptInvite)
			lobby.POST("/invite/:id/decline", lobbyHandler.DeclineInvite)
		}

		// 對戰房間
		rooms := authorized.Group("/rooms")
		{
			rooms.POST("", roomHandler.CreateRoom)                // 創建房間
			rooms.GET("/:code", roomHandler.GetRoomState)         // 取得房間快照
			rooms.POST("/:code/join", roomHandler.JoinRoom)       // 加入房間
			rooms.POST("/:code/choice", roomHandler.SubmitChoice) // 出拳
			rooms.POST("/:code/leave", roomHandler.LeaveRoom)     // 離開房間
			rooms.POST("/:code/rematch", roomHandler.Rematch)     // 再戰

			// WebSocket 連接點（推送式傳輸）
			rooms.GET("/:code/ws", wsHandler.HandleWebSocket)
		}

		// 戰績
		stats := authorized.Group("/stats")
		{
			stats.GET("/me", statsHandler.MyStats)
			stats.GET("/leaderboard", statsHandler.Leaderboard)
			stats.GET("/history", statsHandler.History)
		}
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rps_web/internal/game"
	"rps_web/internal/service"
)

// RoomHandler 處理對戰房間相關的請求。
// 引擎的狀態變更先提交，之後才透過 WebSocket 管理器廣播給房間內的客戶端
type RoomHandler struct {
	engine      *game.Engine
	userService *service.UserService
	wsManager   *service.WebSocketManager
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(engine *game.Engine, userService *service.UserService, wsManager *service.WebSocketManager) *RoomHandler {
	return &RoomHandler{
		engine:      engine,
		userService: userService,
		wsManager:   wsManager,
	}
}

// CreateRoomInput 定義創建房間的請求結構
type CreateRoomInput struct {
	BestOf int `json:"best_of"`
}

// CreateRoom 創建一個等待對手的空房間
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.BestOf == 0 {
		input.BestOf = 3
	}

	userID := c.GetUint("userID")
	profile, err := h.userService.Profile(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "使用者不存在"})
		return
	}

	state, err := h.engine.CreateRoom(userID, profile, input.BestOf)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":        true,
		"room_code": state.RoomCode,
		"redirect":  "/game/room/" + state.RoomCode,
	})
}

// JoinRoom 加入等待中的房間
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID := c.GetUint("userID")

	profile, err := h.userService.Profile(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "使用者不存在"})
		return
	}

	state, err := h.engine.JoinRoom(c.Param("code"), userID, profile)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	h.wsManager.Broadcast(state.RoomCode, &service.Message{
		Type:     "player_joined",
		RoomCode: state.RoomCode,
		UserID:   userID,
		Payload:  state,
	})

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"room_code": state.RoomCode,
		"redirect":  "/game/room/" + state.RoomCode,
	})
}

// GetRoomState 取得房間快照，對戰中前端每 1-2 秒輪詢一次
func (h *RoomHandler) GetRoomState(c *gin.Context) {
	state, err := h.engine.State(c.Param("code"), c.GetUint("userID"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

// ChoiceInput 定義出拳的請求結構
type ChoiceInput struct {
	Choice string `json:"choice" binding:"required"`
}

// SubmitChoice 玩家為當前回合出拳
func (h *RoomHandler) SubmitChoice(c *gin.Context) {
	var input ChoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("userID")
	result, err := h.engine.SubmitChoice(c.Param("code"), userID, game.Choice(input.Choice))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	broadcastChoiceResult(h.wsManager, userID, result)
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
}

// LeaveRoom 離開房間，對戰進行中視為棄權
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	userID := c.GetUint("userID")
	result, err := h.engine.LeaveRoom(c.Param("code"), userID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	broadcastLeaveResult(h.wsManager, c.Param("code"), userID, result)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Rematch 在結束的房間發起再戰
func (h *RoomHandler) Rematch(c *gin.Context) {
	userID := c.GetUint("userID")

	profile, err := h.userService.Profile(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "使用者不存在"})
		return
	}

	oldCode := c.Param("code")
	state, err := h.engine.Rematch(oldCode, userID, profile)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	// 把新房號告訴還留在舊房間的另一方
	h.wsManager.Broadcast(oldCode, &service.Message{
		Type:     "rematch_requested",
		RoomCode: oldCode,
		UserID:   userID,
		Payload: gin.H{
			"new_room_code": state.RoomCode,
			"requested_by":  userID,
		},
	})

	c.JSON(http.StatusCreated, gin.H{
		"ok":        true,
		"room_code": state.RoomCode,
		"redirect":  "/game/room/" + state.RoomCode,
	})
}

// broadcastChoiceResult 在出拳提交成功後通知房間內的客戶端。
// 回合結算前只廣播「已出拳」，不洩漏出了什麼
func broadcastChoiceResult(ws *service.WebSocketManager, userID uint, result *game.ChoiceResult) {
	code := result.State.RoomCode

	ws.Broadcast(code, &service.Message{
		Type:     "choice_made",
		RoomCode: code,
		UserID:   userID,
		Payload:  gin.H{"ready": true},
	})

	if result.RoundComplete {
		ws.Broadcast(code, &service.Message{
			Type:     "round_result",
			RoomCode: code,
			Payload:  gin.H{"round": result.Round, "state": result.State},
		})
	}
	if result.MatchComplete {
		ws.Broadcast(code, &service.Message{
			Type:     "match_result",
			RoomCode: code,
			Payload:  gin.H{"winner_id": result.State.WinnerID, "state": result.State},
		})
	}
}

// broadcastLeaveResult 在玩家離開房間後通知剩下的客戶端
func broadcastLeaveResult(ws *service.WebSocketManager, roomCode string, userID uint, result *game.LeaveResult) {
	if result.Forfeited {
		ws.Broadcast(roomCode, &service.Message{
			Type:     "match_result",
			RoomCode: roomCode,
			Payload:  gin.H{"winner_id": result.WinnerID, "forfeit": true, "state": result.State},
		})
	}
	ws.Broadcast(roomCode, &service.Message{
		Type:     "player_left",
		RoomCode: roomCode,
		UserID:   userID,
	})
}

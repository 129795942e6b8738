package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"rps_web/internal/game"
	"rps_web/internal/service"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 注意：在生產環境中，應該檢查 origin
	},
}

// WebSocketHandler 是推送式的傳輸層：
// 每條連接綁定一個房間，事件進來後呼叫引擎，再把結果廣播給房間群組。
// 與輪詢 API 驅動同一個引擎，遊戲邏輯不重複
type WebSocketHandler struct {
	engine      *game.Engine
	userService *service.UserService
	wsManager   *service.WebSocketManager
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例
func NewWebSocketHandler(engine *game.Engine, userService *service.UserService, wsManager *service.WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{
		engine:      engine,
		userService: userService,
		wsManager:   wsManager,
	}
}

// HandleWebSocket 處理 WebSocket 連接請求
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	roomCode := strings.ToUpper(c.Param("code"))

	// 從上下文中獲取用戶 ID
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	userIDUint := userID.(uint)

	// 只有房間的兩方能連上房間頻道
	if _, err := h.engine.State(roomCode, userIDUint); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	// 升級 HTTP 連接為 WebSocket 連接
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "升級WebSocket失敗"})
		return
	}

	// 通知房間有玩家連上線
	h.wsManager.Broadcast(roomCode, &service.Message{
		Type:     "player_joined",
		RoomCode: roomCode,
		UserID:   userIDUint,
	})

	// 處理客戶端事件直到連接關閉
	h.wsManager.HandleConnection(conn, userIDUint, roomCode, h.dispatch)

	// 連接斷開等同離開房間：對戰進行中由留下的一方獲勝
	result, err := h.engine.LeaveRoom(roomCode, userIDUint)
	if err == nil {
		broadcastLeaveResult(h.wsManager, roomCode, userIDUint, result)
	}
	h.wsManager.Broadcast(roomCode, &service.Message{
		Type:     "player_disconnected",
		RoomCode: roomCode,
		UserID:   userIDUint,
	})
}

// dispatch 把客戶端事件轉成引擎操作，結果在變更提交後廣播
func (h *WebSocketHandler) dispatch(client *service.Client, msg *service.Message) {
	switch msg.Type {
	case "make_choice":
		result, err := h.engine.SubmitChoice(client.Group, client.UserID, game.Choice(msg.Choice))
		if err != nil {
			h.wsManager.Send(client, &service.Message{Type: "error", Error: err.Error()})
			return
		}
		broadcastChoiceResult(h.wsManager, client.UserID, result)

	case "get_room_state":
		state, err := h.engine.State(client.Group, client.UserID)
		if err != nil {
			h.wsManager.Send(client, &service.Message{Type: "error", Error: err.Error()})
			return
		}
		h.wsManager.Send(client, &service.Message{Type: "room_state", RoomCode: client.Group, Payload: state})

	case "leave_room":
		result, err := h.engine.LeaveRoom(client.Group, client.UserID)
		if err != nil {
			h.wsManager.Send(client, &service.Message{Type: "error", Error: err.Error()})
			return
		}
		broadcastLeaveResult(h.wsManager, client.Group, client.UserID, result)

	case "request_rematch":
		profile, err := h.userService.Profile(client.UserID)
		if err != nil {
			h.wsManager.Send(client, &service.Message{Type: "error", Error: "使用者不存在"})
			return
		}
		state, err := h.engine.Rematch(client.Group, client.UserID, profile)
		if err != nil {
			h.wsManager.Send(client, &service.Message{Type: "error", Error: err.Error()})
			return
		}
		h.wsManager.Broadcast(client.Group, &service.Message{
			Type:     "rematch_requested",
			RoomCode: client.Group,
			UserID:   client.UserID,
			Payload: map[string]interface{}{
				"new_room_code": state.RoomCode,
				"requested_by":  client.UserID,
			},
		})

	default:
		h.wsManager.Send(client, &service.Message{Type: "error", Error: "未知的事件類型"})
	}
}

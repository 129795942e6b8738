package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rps_web/internal/game"
	"rps_web/internal/service"
)

// LobbyHandler 處理大廳相關的請求：心跳、上線名單與邀請。
// 這是輪詢式的傳輸層，前端每 10-15 秒送一次心跳
type LobbyHandler struct {
	engine      *game.Engine
	userService *service.UserService
}

// NewLobbyHandler 創建一個新的 LobbyHandler 實例
func NewLobbyHandler(engine *game.Engine, userService *service.UserService) *LobbyHandler {
	return &LobbyHandler{
		engine:      engine,
		userService: userService,
	}
}

// Heartbeat 更新上線狀態，回應裡帶著待處理的邀請與一次性轉址
func (h *LobbyHandler) Heartbeat(c *gin.Context) {
	userID := c.GetUint("userID")

	profile, err := h.userService.Profile(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "使用者不存在"})
		return
	}

	result := h.engine.Heartbeat(userID, profile)
	c.JSON(http.StatusOK, gin.H{
		"ok":              true,
		"redirect":        result.Redirect,
		"pending_invites": result.PendingInvites,
	})
}

// Online 取得大廳的上線名單，不包含請求者本人
func (h *LobbyHandler) Online(c *gin.Context) {
	users := h.engine.Online(c.GetUint("userID"))

	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		list = append(list, gin.H{
			"id":         u.UserID,
			"username":   u.Username,
			"avatar_url": u.AvatarURL,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": list, "count": len(list)})
}

// Leave 玩家離開大廳
func (h *LobbyHandler) Leave(c *gin.Context) {
	h.engine.LeaveLobby(c.GetUint("userID"))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SendInviteInput 定義送出邀請的請求結構
type SendInviteInput struct {
	ToUserID uint `json:"to_user_id" binding:"required"`
	BestOf   int  `json:"best_of"`
}

// SendInvite 向另一名在線玩家送出挑戰邀請
func (h *LobbyHandler) SendInvite(c *gin.Context) {
	var input SendInviteInput
	if err := c.ShouldBindJSON(&input); err != nil {
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

	inviteID, err := h.engine.SendInvite(userID, profile, input.ToUserID, input.BestOf)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "invite_id": inviteID})
}

// AcceptInvite 接受邀請並直接進入對戰房間
func (h *LobbyHandler) AcceptInvite(c *gin.Context) {
	userID := c.GetUint("userID")

	profile, err := h.userService.Profile(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "使用者不存在"})
		return
	}

	state, err := h.engine.AcceptInvite(c.Param("id"), userID, profile)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"room_code": state.RoomCode,
		"redirect":  "/game/room/" + state.RoomCode,
	})
}

// DeclineInvite 拒絕邀請，不管邀請是否存在都回應成功
func (h *LobbyHandler) DeclineInvite(c *gin.Context) {
	h.engine.DeclineInvite(c.Param("id"), c.GetUint("userID"))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rps_web/internal/game"
	"rps_web/internal/models"
	"rps_web/internal/service"
)

// StatsHandler 處理戰績查詢：個人統計、排行榜與對戰歷史
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler 創建一個新的 StatsHandler 實例
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// MyStats 取得自己的累計戰績
func (h *StatsHandler) MyStats(c *gin.Context) {
	user, err := h.statsService.GetUserStats(c.GetUint("userID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "使用者不存在"})
		return
	}

	c.JSON(http.StatusOK, statsPayload(user))
}

// Leaderboard 取得勝場排行榜
func (h *StatsHandler) Leaderboard(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	users, err := h.statsService.Leaderboard(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法查詢排行榜"})
		return
	}

	list := make([]gin.H, 0, len(users))
	for i := range users {
		list = append(list, statsPayload(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"players": list})
}

// History 取得自己最近的對戰紀錄
func (h *StatsHandler) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	matches, err := h.statsService.MatchHistory(c.GetUint("userID"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法查詢對戰紀錄"})
		return
	}

	list := make([]gin.H, 0, len(matches))
	for _, m := range matches {
		var rounds []game.RoundResult
		if m.RoundsData != "" {
			// 壞掉的快照不該讓整個查詢失敗，當作沒有回合資料
			_ = json.Unmarshal([]byte(m.RoundsData), &rounds)
		}
		list = append(list, gin.H{
			"id":            m.ID,
			"player1_id":    m.Player1ID,
			"player2_id":    m.Player2ID,
			"winner_id":     m.WinnerID,
			"player1_score": m.Player1Score,
			"player2_score": m.Player2Score,
			"rounds":        rounds,
			"started_at":    m.StartedAt,
			"ended_at":      m.EndedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"matches": list})
}

// statsPayload 把玩家模型整理成戰績回應
func statsPayload(user *models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"avatar_url":    user.AvatarURL,
		"total_wins":    user.TotalWins,
		"total_losses":  user.TotalLosses,
		"total_draws":   user.TotalDraws,
		"total_matches": user.TotalMatches(),
		"win_rate":      user.WinRate(),
	}
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// User 表示一個遊戲玩家帳號
type User struct {
	gorm.Model           // 內嵌 gorm.Model，提供 ID、CreatedAt、UpdatedAt 和 DeletedAt 字段
	Username   string    `gorm:"uniqueIndex;not null" json:"username"` // 用戶名，必須唯一
	Password   string    `gorm:"not null" json:"-"`                    // 密碼，json 序列化時會被忽略
	AvatarURL  string    `gorm:"size:500" json:"avatar_url"`           // 頭像網址，可為空
	LastActive time.Time `json:"last_active"`                          // 最後活躍時間

	// 累計戰績
	TotalWins   int `gorm:"default:0" json:"total_wins"`
	TotalLosses int `gorm:"default:0" json:"total_losses"`
	TotalDraws  int `gorm:"default:0" json:"total_draws"`
}

// MatchResult 定義單場對戰對玩家的結果
type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLoss MatchResult = "loss"
	ResultDraw MatchResult = "draw" // best-of 賽制下不會發生，保留欄位完整性
)

// TotalMatches 回傳玩家的總場次
func (u *User) TotalMatches() int {
	return u.TotalWins + u.TotalLosses + u.TotalDraws
}

// WinRate 回傳勝率（百分比）
func (u *User) WinRate() float64 {
	total := u.TotalMatches()
	if total == 0 {
		return 0.0
	}
	return float64(u.TotalWins) / float64(total) * 100
}

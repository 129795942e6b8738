package models

import (
	"time"

	"gorm.io/gorm"
)

// Match 表示一場已結束對戰的歷史紀錄，寫入後不再修改
type Match struct {
	gorm.Model
	Player1ID    uint      `gorm:"not null;index" json:"player1_id"`
	Player2ID    uint      `gorm:"not null;index" json:"player2_id"`
	WinnerID     uint      `json:"winner_id"`
	Player1Score int       `gorm:"not null" json:"player1_score"`
	Player2Score int       `gorm:"not null" json:"player2_score"`
	RoundsData   string    `gorm:"type:text" json:"-"` // 各回合結果的 JSON 快照
	StartedAt    time.Time `gorm:"not null" json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
}

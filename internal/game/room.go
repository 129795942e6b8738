package game

import (
	"sync"
	"time"
)

// RoomStatus 定義房間狀態的類型
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusPlaying  RoomStatus = "playing"
	RoomStatusFinished RoomStatus = "finished"
)

// RoundResult 表示一個已完成回合的紀錄，只增不改
type RoundResult struct {
	RoundNumber int     `json:"round_number"`
	HostChoice  Choice  `json:"host_choice"`
	GuestChoice Choice  `json:"guest_choice"`
	Outcome     Outcome `json:"outcome"`
}

// Room 是單一對戰房間的權威狀態。
// 除 Code 與 CreatedAt 外的欄位都由 mu 保護，
// 跨欄位的讀改寫（出拳、結算、離開）必須在持鎖期間完成。
type Room struct {
	mu sync.Mutex

	Code      string
	CreatedAt time.Time

	HostID    uint
	HostName  string
	GuestID   uint // 0 表示來賓席空著
	GuestName string

	BestOf       int
	HostScore    int
	GuestScore   int
	CurrentRound int // 等待中為 0，開局後從 1 起算

	// 當前回合雙方的出拳，"" 表示尚未出拳；結算後清空
	hostChoice  Choice
	guestChoice Choice

	Status     RoomStatus
	Rounds     []RoundResult
	WinnerID   uint
	LastUpdate time.Time

	// 每場對戰只允許落地保存一次
	finalized bool

	// 房間被銷毀後設為 true，讓還握有指標的操作拿到「房間不存在」
	removed bool
}

// SeatState 是單一座位在狀態回應中的呈現
type SeatState struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Ready    bool   `json:"ready"`
}

// RoomState 是回給玩家的房間快照。
// 回合結算前只揭露雙方是否已出拳，不揭露出了什麼。
type RoomState struct {
	RoomCode     string        `json:"room_code"`
	Status       RoomStatus    `json:"status"`
	BestOf       int           `json:"best_of"`
	CurrentRound int           `json:"current_round"`
	Host         SeatState     `json:"host"`
	Guest        *SeatState    `json:"guest,omitempty"`
	Rounds       []RoundResult `json:"rounds"`
	WinnerID     uint          `json:"winner_id,omitempty"`
	LastUpdate   int64         `json:"last_update"`
}

// stateLocked 在持鎖狀態下產生房間快照
func (r *Room) stateLocked() *RoomState {
	rounds := make([]RoundResult, len(r.Rounds))
	copy(rounds, r.Rounds)

	state := &RoomState{
		RoomCode:     r.Code,
		Status:       r.Status,
		BestOf:       r.BestOf,
		CurrentRound: r.CurrentRound,
		Host: SeatState{
			ID:       r.HostID,
			Username: r.HostName,
			Score:    r.HostScore,
			Ready:    r.hostChoice != "",
		},
		Rounds:     rounds,
		WinnerID:   r.WinnerID,
		LastUpdate: r.LastUpdate.Unix(),
	}
	if r.GuestID != 0 {
		state.Guest = &SeatState{
			ID:       r.GuestID,
			Username: r.GuestName,
			Score:    r.GuestScore,
			Ready:    r.guestChoice != "",
		}
	}
	return state
}

// isParticipantLocked 檢查用戶是否為房間的其中一方
func (r *Room) isParticipantLocked(userID uint) bool {
	return userID == r.HostID || (r.GuestID != 0 && userID == r.GuestID)
}

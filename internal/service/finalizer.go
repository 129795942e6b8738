package service

import (
	"encoding/json"
	"log"

	"rps_web/internal/game"
	"rps_web/internal/models"
)

// MatchStore 是落地保存對戰紀錄所需的最小介面
type MatchStore interface {
	Create(match *models.Match) error
}

// StatsStore 是更新玩家戰績所需的最小介面
type StatsStore interface {
	UpdateStats(userID uint, result models.MatchResult) error
}

// MatchFinalizer 是記憶體狀態跨入持久化儲存的唯一通道：
// 每場結束的對戰寫入一筆 Match，並為雙方各記一次勝負。
// 任何保存失敗只記 log 不重試，房間內的對戰結果不因此回滾，
// 玩家已經看到的結果維持有效。
type MatchFinalizer struct {
	matches MatchStore
	stats   StatsStore
}

func NewMatchFinalizer(matches MatchStore, stats StatsStore) *MatchFinalizer {
	return &MatchFinalizer{
		matches: matches,
		stats:   stats,
	}
}

// MatchFinished 實作 game.Finalizer
func (f *MatchFinalizer) MatchFinished(record game.MatchRecord) {
	roundsData, err := json.Marshal(record.Rounds)
	if err != nil {
		log.Printf("marshal rounds for match %d vs %d: %v",
			record.Player1ID, record.Player2ID, err)
		roundsData = []byte("[]")
	}

	match := &models.Match{
		Player1ID:    record.Player1ID,
		Player2ID:    record.Player2ID,
		WinnerID:     record.WinnerID,
		Player1Score: record.Player1Score,
		Player2Score: record.Player2Score,
		RoundsData:   string(roundsData),
		StartedAt:    record.StartedAt,
		EndedAt:      record.EndedAt,
	}
	if err := f.matches.Create(match); err != nil {
		log.Printf("persist match %d vs %d: %v", record.Player1ID, record.Player2ID, err)
	}

	loserID := record.Player1ID
	if record.WinnerID == record.Player1ID {
		loserID = record.Player2ID
	}
	if err := f.stats.UpdateStats(record.WinnerID, models.ResultWin); err != nil {
		log.Printf("update stats for winner %d: %v", record.WinnerID, err)
	}
	if err := f.stats.UpdateStats(loserID, models.ResultLoss); err != nil {
		log.Printf("update stats for loser %d: %v", loserID, err)
	}
}

package repository

import (
	"rps_web/internal/models"
	"rps_web/internal/storage"
)

type MatchRepository interface {
	Create(match *models.Match) error
	FindByPlayer(userID uint, limit int) ([]models.Match, error)
}

type matchRepository struct {
	db *storage.PostgresDB
}

func NewMatchRepository(db *storage.PostgresDB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(match *models.Match) error {
	return r.db.Create(match).Error
}

// FindByPlayer 查詢玩家最近的對戰紀錄
func (r *matchRepository) FindByPlayer(userID uint, limit int) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.Where("player1_id = ? OR player2_id = ?", userID, userID).
		Order("ended_at DESC").Limit(limit).Find(&matches).Error
	return matches, err
}

package service

import (
	"rps_web/internal/models"
	"rps_web/internal/repository"
)

// StatsService 提供戰績查詢：個人統計、排行榜與對戰歷史
type StatsService struct {
	userRepo  repository.UserRepository
	matchRepo repository.MatchRepository
}

func NewStatsService(userRepo repository.UserRepository, matchRepo repository.MatchRepository) *StatsService {
	return &StatsService{
		userRepo:  userRepo,
		matchRepo: matchRepo,
	}
}

func (s *StatsService) GetUserStats(userID uint) (*models.User, error) {
	return s.userRepo.FindByID(userID)
}

func (s *StatsService) Leaderboard(limit int) ([]models.User, error) {
	return s.userRepo.Leaderboard(limit)
}

func (s *StatsService) MatchHistory(userID uint, limit int) ([]models.Match, error) {
	return s.matchRepo.FindByPlayer(userID, limit)
}

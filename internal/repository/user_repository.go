package repository

import (
	"time"

	"rps_web/internal/models"
	"rps_web/internal/storage"
)

type UserRepository interface {
	Create(user *models.User) error
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	UpdateStats(userID uint, result models.MatchResult) error
	Leaderboard(limit int) ([]models.User, error)
}

type userRepository struct {
	db *storage.PostgresDB
}

func NewUserRepository(db *storage.PostgresDB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateStats 在對戰結束後累加玩家戰績
func (r *userRepository) UpdateStats(userID uint, result models.MatchResult) error {
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return err
	}

	switch result {
	case models.ResultWin:
		user.TotalWins++
	case models.ResultLoss:
		user.TotalLosses++
	case models.ResultDraw:
		user.TotalDraws++
	}
	user.LastActive = time.Now()

	return r.db.Save(&user).Error
}

// Leaderboard 依勝場數查詢排行榜
func (r *userRepository) Leaderboard(limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("total_wins DESC, total_losses ASC").Limit(limit).Find(&users).Error
	return users, err
}

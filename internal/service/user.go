package service

import (
	"rps_web/internal/game"
	"rps_web/internal/models"
	"rps_web/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) CreateUser(user *models.User) error {
	return s.userRepo.Create(user)
}

func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	return s.userRepo.FindByUsername(username)
}

func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	return s.userRepo.FindByID(id)
}

// Profile 取出引擎需要的公開資料
func (s *UserService) Profile(id uint) (game.Profile, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return game.Profile{}, err
	}
	return game.Profile{
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
	}, nil
}

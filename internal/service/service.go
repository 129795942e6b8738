package service

import (
	"rps_web/internal/game"
	"rps_web/internal/repository"
)

type Services struct {
	User             *UserService
	Stats            *StatsService
	Engine           *game.Engine
	WebSocketManager *WebSocketManager
}

func NewServices(repos *repository.Repositories, gameCfg game.Config) *Services {
	finalizer := NewMatchFinalizer(repos.Match, repos.User)
	engine := game.NewEngine(gameCfg, finalizer)

	return &Services{
		User:             NewUserService(repos.User),
		Stats:            NewStatsService(repos.User, repos.Match),
		Engine:           engine,
		WebSocketManager: NewWebSocketManager(),
	}
}

package handlers

import (
	"errors"
	"net/http"

	"rps_web/internal/game"
)

// statusForError 把引擎的錯誤對應到 HTTP 狀態碼。
// 引擎錯誤都是可回復的，原樣轉述給呼叫者
func statusForError(err error) int {
	switch {
	case errors.Is(err, game.ErrRoomNotFound),
		errors.Is(err, game.ErrInviteNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotParticipant),
		errors.Is(err, game.ErrInviteForbidden):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

package game

import "errors"

// 引擎對外回報的錯誤，handler 層用 errors.Is 對應到 HTTP 狀態碼
var (
	ErrRoomNotFound    = errors.New("房間不存在")
	ErrRoomNotWaiting  = errors.New("房間不開放加入")
	ErrRoomFull        = errors.New("房間已滿")
	ErrSelfJoin        = errors.New("不能加入自己的房間")
	ErrNotPlaying      = errors.New("遊戲尚未開始")
	ErrNotFinished     = errors.New("對戰尚未結束")
	ErrNotParticipant  = errors.New("用戶不在此房間")
	ErrAlreadyChosen   = errors.New("本回合已經出過拳")
	ErrInvalidChoice   = errors.New("無效的出拳")
	ErrInvalidBestOf   = errors.New("無效的賽制設定")
	ErrInviteNotFound  = errors.New("邀請不存在或已過期")
	ErrInviteForbidden = errors.New("這不是給你的邀請")
	ErrSelfInvite      = errors.New("不能邀請自己")
	ErrTargetOffline   = errors.New("對方不在線上")
)

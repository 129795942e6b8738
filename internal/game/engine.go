package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MatchRecord 是一場已結束對戰的不可變快照，交給 Finalizer 落地保存
type MatchRecord struct {
	Player1ID    uint
	Player2ID    uint
	WinnerID     uint
	Player1Score int
	Player2Score int
	Rounds       []RoundResult
	StartedAt    time.Time
	EndedAt      time.Time
}

// Finalizer 在對戰結束時負責把結果寫入持久化儲存。
// 每個房間的每場對戰恰好被呼叫一次；保存失敗由實作自行記錄，
// 不會回滾記憶體中的對戰結果。
type Finalizer interface {
	MatchFinished(record MatchRecord)
}

// Config 是引擎的逾時設定
type Config struct {
	OnlineTTL time.Duration
	InviteTTL time.Duration
	RoomTTL   time.Duration
}

// redirect 記錄邀請被接受後，要通知發起人前往的房間
type redirect struct {
	roomCode  string
	createdAt time.Time
}

// Engine 持有大廳的三個記憶體狀態存放區（上線名單、邀請、房間），
// 在程序啟動時建立一次，由各個 handler 共用。
// 房間索引只由 mu 保護查找與增刪；單一房間的複合操作由該房間自己的鎖保護，
// 不同房間之間互不阻塞。
type Engine struct {
	presence *presenceRegistry
	invites  *inviteBroker

	mu    sync.RWMutex
	rooms map[string]*Room

	redirectMu sync.Mutex
	redirects  map[uint]redirect

	roomTTL   time.Duration
	inviteTTL time.Duration
	finalizer Finalizer
	now       func() time.Time
}

func NewEngine(cfg Config, finalizer Finalizer) *Engine {
	return &Engine{
		presence:  newPresenceRegistry(cfg.OnlineTTL),
		invites:   newInviteBroker(cfg.InviteTTL),
		rooms:     make(map[string]*Room),
		redirects: make(map[uint]redirect),
		roomTTL:   cfg.RoomTTL,
		inviteTTL: cfg.InviteTTL,
		finalizer: finalizer,
		now:       time.Now,
	}
}

// ---------- 大廳：心跳與上線名單 ----------

// HeartbeatResult 是心跳的回應：給發起人的一次性轉址，以及收到的邀請
type HeartbeatResult struct {
	Redirect       string       `json:"redirect,omitempty"`
	PendingInvites []InviteView `json:"pending_invites"`
}

// Heartbeat 更新玩家上線狀態，並回報待處理的邀請或轉址
func (e *Engine) Heartbeat(userID uint, profile Profile) *HeartbeatResult {
	now := e.now()
	e.presence.heartbeat(userID, profile, now)

	// 有邀請被接受時，發起人下一次心跳會拿到一次性的轉址
	e.redirectMu.Lock()
	if rd, ok := e.redirects[userID]; ok {
		delete(e.redirects, userID)
		e.redirectMu.Unlock()
		return &HeartbeatResult{
			Redirect:       "/game/room/" + rd.roomCode,
			PendingInvites: []InviteView{},
		}
	}
	e.redirectMu.Unlock()

	return &HeartbeatResult{
		PendingInvites: e.invites.listFor(userID, now),
	}
}

// Online 回傳大廳的上線名單，排除請求者本人
func (e *Engine) Online(excludeUserID uint) []PresenceEntry {
	return e.presence.online(e.now(), excludeUserID)
}

// LeaveLobby 玩家主動離開大廳
func (e *Engine) LeaveLobby(userID uint) {
	e.presence.leave(userID)
}

// ---------- 邀請 ----------

// SendInvite 對另一名在線玩家送出挑戰，回傳邀請 ID
func (e *Engine) SendInvite(fromUserID uint, fromProfile Profile, toUserID uint, bestOf int) (string, error) {
	if !ValidBestOf(bestOf) {
		return "", ErrInvalidBestOf
	}
	if toUserID == fromUserID {
		return "", ErrSelfInvite
	}

	now := e.now()
	if !e.presence.isOnline(toUserID, now) {
		return "", ErrTargetOffline
	}

	inv := &Invite{
		ID:           uuid.NewString(),
		FromUserID:   fromUserID,
		FromUsername: fromProfile.Username,
		FromAvatar:   fromProfile.AvatarURL,
		ToUserID:     toUserID,
		BestOf:       bestOf,
		CreatedAt:    now,
	}
	e.invites.add(inv)
	return inv.ID, nil
}

// AcceptInvite 接受邀請並直接開局。
// 消耗邀請與建立房間被視為同一個動作：邀請被原子性取走後才建房，
// 同一張邀請的第二個接受者一定拿到 ErrInviteNotFound。
func (e *Engine) AcceptInvite(inviteID string, userID uint, guestProfile Profile) (*RoomState, error) {
	now := e.now()
	inv, err := e.invites.consumeFor(inviteID, userID, now)
	if err != nil {
		return nil, err
	}

	room := &Room{
		CreatedAt:    now,
		HostID:       inv.FromUserID,
		HostName:     inv.FromUsername,
		GuestID:      userID,
		GuestName:    guestProfile.Username,
		BestOf:       inv.BestOf,
		CurrentRound: 1,
		Status:       RoomStatusPlaying,
		LastUpdate:   now,
	}
	e.insertRoom(room)

	// 讓發起人下一次心跳知道該去哪個房間
	e.redirectMu.Lock()
	e.redirects[inv.FromUserID] = redirect{roomCode: room.Code, createdAt: now}
	e.redirectMu.Unlock()

	room.mu.Lock()
	defer room.mu.Unlock()
	return room.stateLocked(), nil
}

// DeclineInvite 拒絕邀請，屬於射後不理的操作，不會回報錯誤
func (e *Engine) DeclineInvite(inviteID string, userID uint) {
	e.invites.decline(inviteID, userID)
}

// ---------- 房間 ----------

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

func generateCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// insertRoom 配發一個與現存房間不重複的房號並登記房間
func (e *Engine) insertRoom(room *Room) {
	e.mu.Lock()
	defer e.mu.Unlock()

	code := generateCode()
	for _, exists := e.rooms[code]; exists; _, exists = e.rooms[code] {
		code = generateCode()
	}
	room.Code = code
	e.rooms[code] = room
}

func (e *Engine) findRoom(roomCode string) (*Room, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	room, ok := e.rooms[strings.ToUpper(roomCode)]
	return room, ok
}

func (e *Engine) removeRoom(roomCode string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.rooms, roomCode)
}

// CreateRoom 建立一個等待對手加入的空房間
func (e *Engine) CreateRoom(hostID uint, hostProfile Profile, bestOf int) (*RoomState, error) {
	if !ValidBestOf(bestOf) {
		return nil, ErrInvalidBestOf
	}

	now := e.now()
	room := &Room{
		CreatedAt:  now,
		HostID:     hostID,
		HostName:   hostProfile.Username,
		BestOf:     bestOf,
		Status:     RoomStatusWaiting,
		LastUpdate: now,
	}
	e.insertRoom(room)

	room.mu.Lock()
	defer room.mu.Unlock()
	return room.stateLocked(), nil
}

// JoinRoom 加入等待中的房間，成功即開局
func (e *Engine) JoinRoom(roomCode string, userID uint, profile Profile) (*RoomState, error) {
	room, ok := e.findRoom(roomCode)
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.removed {
		return nil, ErrRoomNotFound
	}
	if room.Status != RoomStatusWaiting {
		return nil, ErrRoomNotWaiting
	}
	if room.HostID == userID {
		return nil, ErrSelfJoin
	}
	if room.GuestID != 0 {
		return nil, ErrRoomFull
	}

	room.GuestID = userID
	room.GuestName = profile.Username
	room.Status = RoomStatusPlaying
	room.CurrentRound = 1
	room.hostChoice = ""
	room.guestChoice = ""
	room.LastUpdate = e.now()

	return room.stateLocked(), nil
}

// State 回傳房間快照，只有房間的兩方能查詢
func (e *Engine) State(roomCode string, userID uint) (*RoomState, error) {
	room, ok := e.findRoom(roomCode)
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.removed {
		return nil, ErrRoomNotFound
	}
	if !room.isParticipantLocked(userID) {
		return nil, ErrNotParticipant
	}

	return room.stateLocked(), nil
}

// ChoiceResult 是出拳後的結果。
// 若這一拳補齊了本回合，RoundComplete 為 true 並附上回合結果；
// 若同時分出勝負，MatchComplete 也為 true。
type ChoiceResult struct {
	RoundComplete bool         `json:"round_complete"`
	MatchComplete bool         `json:"match_complete"`
	Round         *RoundResult `json:"round,omitempty"`
	State         *RoomState   `json:"state"`
}

// SubmitChoice 玩家為當前回合出拳。
// 操作不等待對手：若對手尚未出拳就直接返回，
// 若雙方都已出拳則在同一次呼叫內同步結算。
func (e *Engine) SubmitChoice(roomCode string, userID uint, choice Choice) (*ChoiceResult, error) {
	if !choice.Valid() {
		return nil, ErrInvalidChoice
	}

	room, ok := e.findRoom(roomCode)
	if !ok {
		return nil, ErrRoomNotFound
	}

	var record *MatchRecord
	result := &ChoiceResult{}

	room.mu.Lock()
	if room.removed {
		room.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if room.Status != RoomStatusPlaying {
		room.mu.Unlock()
		return nil, ErrNotPlaying
	}
	if !room.isParticipantLocked(userID) {
		room.mu.Unlock()
		return nil, ErrNotParticipant
	}

	switch userID {
	case room.HostID:
		if room.hostChoice != "" {
			room.mu.Unlock()
			return nil, ErrAlreadyChosen
		}
		room.hostChoice = choice
	default:
		if room.guestChoice != "" {
			room.mu.Unlock()
			return nil, ErrAlreadyChosen
		}
		room.guestChoice = choice
	}
	room.LastUpdate = e.now()

	// 雙方都出拳後立即結算，下一回合的出拳一定觀察得到結算結果
	if room.hostChoice != "" && room.guestChoice != "" {
		round, rec := e.resolveLocked(room)
		result.RoundComplete = true
		result.Round = &round
		result.MatchComplete = rec != nil
		record = rec
	}

	result.State = room.stateLocked()
	room.mu.Unlock()

	if record != nil {
		e.finalizer.MatchFinished(*record)
	}
	return result, nil
}

// resolveLocked 結算當前回合，必要時終結整場對戰。
// 呼叫者必須持有房間鎖。回傳的 MatchRecord 非 nil 時，
// 呼叫者要在釋放鎖之後交給 Finalizer。
func (e *Engine) resolveLocked(room *Room) (RoundResult, *MatchRecord) {
	outcome := Judge(room.hostChoice, room.guestChoice)
	switch outcome {
	case OutcomeHost:
		room.HostScore++
	case OutcomeGuest:
		room.GuestScore++
	}

	round := RoundResult{
		RoundNumber: room.CurrentRound,
		HostChoice:  room.hostChoice,
		GuestChoice: room.guestChoice,
		Outcome:     outcome,
	}
	room.Rounds = append(room.Rounds, round)

	needed := WinsNeeded(room.BestOf)
	switch {
	case room.HostScore >= needed:
		return round, e.finishLocked(room, room.HostID)
	case room.GuestScore >= needed:
		return round, e.finishLocked(room, room.GuestID)
	}

	// 勝負未分，進入下一回合
	room.CurrentRound++
	room.hostChoice = ""
	room.guestChoice = ""
	return round, nil
}

// finishLocked 把房間標記為結束並產生落地保存用的快照。
// finalized 旗標保證同一場對戰只會產生一次快照。
func (e *Engine) finishLocked(room *Room, winnerID uint) *MatchRecord {
	room.Status = RoomStatusFinished
	room.WinnerID = winnerID
	room.LastUpdate = e.now()

	if room.finalized {
		return nil
	}
	room.finalized = true

	return &MatchRecord{
		Player1ID:    room.HostID,
		Player2ID:    room.GuestID,
		WinnerID:     winnerID,
		Player1Score: room.HostScore,
		Player2Score: room.GuestScore,
		Rounds:       append([]RoundResult(nil), room.Rounds...),
		StartedAt:    room.CreatedAt,
		EndedAt:      room.LastUpdate,
	}
}

// LeaveResult 描述離開房間造成的狀態變化，交給傳輸層廣播
type LeaveResult struct {
	Forfeited bool       `json:"forfeited"`
	WinnerID  uint       `json:"winner_id,omitempty"`
	Destroyed bool       `json:"destroyed"`
	State     *RoomState `json:"state,omitempty"`
}

// LeaveRoom 離開房間。
// 對戰進行中離開視為棄權，留下的一方獲勝並立即落地保存；
// 房主離開等待中的房間則直接銷毀房間；
// 來賓離開（棄權結算後）清空來賓席，房間回到等待狀態供下一位挑戰者加入。
func (e *Engine) LeaveRoom(roomCode string, userID uint) (*LeaveResult, error) {
	room, ok := e.findRoom(roomCode)
	if !ok {
		// 與離開大廳一樣屬於射後不理，房間不存在就當作已離開
		return &LeaveResult{Destroyed: true}, nil
	}

	var record *MatchRecord
	result := &LeaveResult{}

	room.mu.Lock()
	if room.removed {
		room.mu.Unlock()
		return &LeaveResult{Destroyed: true}, nil
	}

	if room.Status == RoomStatusPlaying && room.isParticipantLocked(userID) {
		var winnerID uint
		if userID == room.HostID {
			winnerID = room.GuestID
		} else {
			winnerID = room.HostID
		}
		if winnerID != 0 {
			record = e.finishLocked(room, winnerID)
			result.Forfeited = true
			result.WinnerID = winnerID
		}
	}

	switch {
	case room.Status == RoomStatusWaiting && userID == room.HostID:
		// 房主放棄等待，房間直接消失
		room.removed = true
		result.Destroyed = true
	case userID == room.GuestID && room.GuestID != 0:
		// 來賓離開後房間重置為等待狀態，前一場的結果已在快照裡
		room.GuestID = 0
		room.GuestName = ""
		room.Status = RoomStatusWaiting
		room.CurrentRound = 0
		room.HostScore = 0
		room.GuestScore = 0
		room.hostChoice = ""
		room.guestChoice = ""
		room.Rounds = nil
		room.WinnerID = 0
		room.finalized = false
		room.LastUpdate = e.now()
	}

	if !result.Destroyed {
		result.State = room.stateLocked()
	}
	code := room.Code
	room.mu.Unlock()

	if result.Destroyed {
		e.removeRoom(code)
	}
	if record != nil {
		e.finalizer.MatchFinished(*record)
	}
	return result, nil
}

// Rematch 在結束的房間裡發起再戰：以相同賽制開一個新的等待房間，
// 舊房間保持不動，由傳輸層把新房號廣播給原本的兩方
func (e *Engine) Rematch(roomCode string, userID uint, profile Profile) (*RoomState, error) {
	room, ok := e.findRoom(roomCode)
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.mu.Lock()
	if room.removed {
		room.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if !room.isParticipantLocked(userID) {
		room.mu.Unlock()
		return nil, ErrNotParticipant
	}
	if room.Status != RoomStatusFinished {
		room.mu.Unlock()
		return nil, ErrNotFinished
	}
	bestOf := room.BestOf
	room.mu.Unlock()

	return e.CreateRoom(userID, profile, bestOf)
}

// ---------- 清理 ----------

// Sweep 清掉過期的上線紀錄、邀請與房間。
// 超過存活時間的房間不論是否打到一半都直接丟棄，不寫任何對戰紀錄。
// 清理永遠不會失敗出場：最壞情況是過期項目多留一輪。
func (e *Engine) Sweep() {
	now := e.now()

	e.presence.sweep(now)
	e.invites.sweep(now)

	e.mu.Lock()
	for code, room := range e.rooms {
		if now.Sub(room.CreatedAt) > e.roomTTL {
			delete(e.rooms, code)
		}
	}
	e.mu.Unlock()

	e.redirectMu.Lock()
	for userID, rd := range e.redirects {
		if now.Sub(rd.createdAt) > e.inviteTTL {
			delete(e.redirects, userID)
		}
	}
	e.redirectMu.Unlock()
}

// RoomCount 回傳目前存活的房間數
func (e *Engine) RoomCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.rooms)
}

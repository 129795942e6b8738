package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFinalizer 收集引擎交付的對戰快照
type fakeFinalizer struct {
	mu      sync.Mutex
	records []MatchRecord
}

func (f *fakeFinalizer) MatchFinished(record MatchRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
}

func (f *fakeFinalizer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// fakeClock 讓測試自由推進時間
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestEngine() (*Engine, *fakeFinalizer, *fakeClock) {
	finalizer := &fakeFinalizer{}
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(Config{
		OnlineTTL: 30 * time.Second,
		InviteTTL: 60 * time.Second,
		RoomTTL:   time.Hour,
	}, finalizer)
	engine.now = clock.Now
	return engine, finalizer, clock
}

var (
	hostProfile  = Profile{Username: "host"}
	guestProfile = Profile{Username: "guest"}
)

// startMatch 建房並讓 guest 加入，回傳房號
func startMatch(t *testing.T, engine *Engine, bestOf int) string {
	t.Helper()
	state, err := engine.CreateRoom(1, hostProfile, bestOf)
	require.NoError(t, err)
	_, err = engine.JoinRoom(state.RoomCode, 2, guestProfile)
	require.NoError(t, err)
	return state.RoomCode
}

func TestCreateRoomGeneratesUniqueCodes(t *testing.T) {
	engine, _, _ := newTestEngine()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		state, err := engine.CreateRoom(uint(i+1), hostProfile, 3)
		require.NoError(t, err)
		assert.Len(t, state.RoomCode, 6)
		assert.False(t, seen[state.RoomCode], "房號 %s 重複", state.RoomCode)
		seen[state.RoomCode] = true
	}
	assert.Equal(t, 100, engine.RoomCount())
}

func TestCreateRoomRejectsBadBestOf(t *testing.T) {
	engine, _, _ := newTestEngine()

	for _, bestOf := range []int{0, 2, 4, 7, -1} {
		_, err := engine.CreateRoom(1, hostProfile, bestOf)
		assert.ErrorIs(t, err, ErrInvalidBestOf)
	}
}

func TestJoinRoomLifecycle(t *testing.T) {
	engine, _, _ := newTestEngine()

	state, err := engine.CreateRoom(1, hostProfile, 3)
	require.NoError(t, err)
	assert.Equal(t, RoomStatusWaiting, state.Status)
	assert.Equal(t, 0, state.CurrentRound)
	assert.Nil(t, state.Guest)

	// 房主不能加入自己的房間
	_, err = engine.JoinRoom(state.RoomCode, 1, hostProfile)
	assert.ErrorIs(t, err, ErrSelfJoin)

	// 房號大小寫不敏感
	joined, err := engine.JoinRoom(lower(state.RoomCode), 2, guestProfile)
	require.NoError(t, err)
	assert.Equal(t, RoomStatusPlaying, joined.Status)
	assert.Equal(t, 1, joined.CurrentRound)
	require.NotNil(t, joined.Guest)
	assert.Equal(t, uint(2), joined.Guest.ID)

	// 開局後房間不再開放加入
	_, err = engine.JoinRoom(state.RoomCode, 3, Profile{Username: "third"})
	assert.ErrorIs(t, err, ErrRoomNotWaiting)

	_, err = engine.JoinRoom("NOSUCH", 2, guestProfile)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

func TestSubmitChoiceValidation(t *testing.T) {
	engine, finalizer, _ := newTestEngine()
	code := startMatch(t, engine, 3)

	_, err := engine.SubmitChoice(code, 1, Choice("lizard"))
	assert.ErrorIs(t, err, ErrInvalidChoice)

	_, err = engine.SubmitChoice(code, 99, ChoiceRock)
	assert.ErrorIs(t, err, ErrNotParticipant)

	// 同一回合第二次出拳被拒絕，不覆蓋也不觸發結算
	_, err = engine.SubmitChoice(code, 1, ChoiceRock)
	require.NoError(t, err)
	_, err = engine.SubmitChoice(code, 1, ChoicePaper)
	assert.ErrorIs(t, err, ErrAlreadyChosen)

	state, err := engine.State(code, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentRound)
	assert.Empty(t, state.Rounds)
	assert.Equal(t, 0, finalizer.count())
}

func TestChoiceHiddenUntilResolved(t *testing.T) {
	engine, _, _ := newTestEngine()
	code := startMatch(t, engine, 3)

	_, err := engine.SubmitChoice(code, 1, ChoiceRock)
	require.NoError(t, err)

	// 對手只看得到「已出拳」，看不到出了什麼
	state, err := engine.State(code, 2)
	require.NoError(t, err)
	assert.True(t, state.Host.Ready)
	assert.False(t, state.Guest.Ready)
	assert.Empty(t, state.Rounds)
}

func TestBestOfThreeMatch(t *testing.T) {
	engine, finalizer, _ := newTestEngine()
	code := startMatch(t, engine, 3)

	// 第一回合：host 石頭勝 guest 剪刀
	_, err := engine.SubmitChoice(code, 1, ChoiceRock)
	require.NoError(t, err)
	result, err := engine.SubmitChoice(code, 2, ChoiceScissors)
	require.NoError(t, err)
	assert.True(t, result.RoundComplete)
	assert.False(t, result.MatchComplete)
	assert.Equal(t, OutcomeHost, result.Round.Outcome)
	assert.Equal(t, 1, result.State.Host.Score)
	assert.Equal(t, 2, result.State.CurrentRound)

	// 第二回合同樣結果，host 拿下第二勝，比賽結束
	_, err = engine.SubmitChoice(code, 1, ChoiceRock)
	require.NoError(t, err)
	result, err = engine.SubmitChoice(code, 2, ChoiceScissors)
	require.NoError(t, err)
	assert.True(t, result.MatchComplete)
	assert.Equal(t, RoomStatusFinished, result.State.Status)
	assert.Equal(t, uint(1), result.State.WinnerID)
	assert.Equal(t, 2, result.State.Host.Score)
	// 比賽結束後回合數不再推進
	assert.Equal(t, 2, result.State.CurrentRound)

	require.Equal(t, 1, finalizer.count())
	record := finalizer.records[0]
	assert.Equal(t, uint(1), record.WinnerID)
	assert.Equal(t, 2, record.Player1Score)
	assert.Equal(t, 0, record.Player2Score)
	assert.Len(t, record.Rounds, 2)

	// 結束的房間不接受新的出拳
	_, err = engine.SubmitChoice(code, 1, ChoiceRock)
	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestBestOfOneImmediateFinish(t *testing.T) {
	engine, finalizer, _ := newTestEngine()
	code := startMatch(t, engine, 1)

	_, err := engine.SubmitChoice(code, 1, ChoicePaper)
	require.NoError(t, err)
	result, err := engine.SubmitChoice(code, 2, ChoiceRock)
	require.NoError(t, err)

	assert.True(t, result.MatchComplete)
	assert.Equal(t, uint(1), result.State.WinnerID, "布勝石頭")
	assert.Equal(t, 1, finalizer.count())
}

func TestDrawAdvancesRoundWithoutScore(t *testing.T) {
	engine, finalizer, _ := newTestEngine()
	code := startMatch(t, engine, 1)

	_, err := engine.SubmitChoice(code, 1, ChoiceRock)
	require.NoError(t, err)
	result, err := engine.SubmitChoice(code, 2, ChoiceRock)
	require.NoError(t, err)

	assert.True(t, result.RoundComplete)
	assert.False(t, result.MatchComplete)
	assert.Equal(t, OutcomeDraw, result.Round.Outcome)
	assert.Equal(t, 0, result.State.Host.Score)
	assert.Equal(t, 0, result.State.Guest.Score)
	assert.Equal(t, 2, result.State.CurrentRound)
	assert.Equal(t, 0, finalizer.count())
}

func TestInviteValidation(t *testing.T) {
	engine, _, _ := newTestEngine()
	engine.Heartbeat(1, hostProfile)

	_, err := engine.SendInvite(1, hostProfile, 1, 3)
	assert.ErrorIs(t, err, ErrSelfInvite)

	// 對方沒有心跳就是離線，不會留下任何邀請
	_, err = engine.SendInvite(1, hostProfile, 2, 3)
	assert.ErrorIs(t, err, ErrTargetOffline)
	assert.Empty(t, engine.Heartbeat(2, guestProfile).PendingInvites)

	_, err = engine.SendInvite(1, hostProfile, 2, 4)
	assert.ErrorIs(t, err, ErrInvalidBestOf)
}

func TestAcceptInviteCreatesPlayingRoom(t *testing.T) {
	engine, _, _ := newTestEngine()
	engine.Heartbeat(1, hostProfile)
	engine.Heartbeat(2, guestProfile)

	inviteID, err := engine.SendInvite(1, hostProfile, 2, 5)
	require.NoError(t, err)

	// 受邀者心跳會看到這張邀請
	pending := engine.Heartbeat(2, guestProfile).PendingInvites
	require.Len(t, pending, 1)
	assert.Equal(t, inviteID, pending[0].InviteID)
	assert.Equal(t, uint(1), pending[0].FromUser.ID)

	// 只有受邀者本人能接受
	_, err = engine.AcceptInvite(inviteID, 3, Profile{Username: "third"})
	assert.ErrorIs(t, err, ErrInviteForbidden)

	state, err := engine.AcceptInvite(inviteID, 2, guestProfile)
	require.NoError(t, err)
	assert.Equal(t, RoomStatusPlaying, state.Status)
	assert.Equal(t, 1, state.CurrentRound)
	assert.Equal(t, 5, state.BestOf)
	assert.Equal(t, uint(1), state.Host.ID)
	assert.Equal(t, uint(2), state.Guest.ID)

	// 邀請發起人下一次心跳拿到一次性轉址
	hb := engine.Heartbeat(1, hostProfile)
	assert.Equal(t, "/game/room/"+state.RoomCode, hb.Redirect)
	assert.Empty(t, engine.Heartbeat(1, hostProfile).Redirect)
}

func TestConcurrentAcceptCreatesOneRoom(t *testing.T) {
	engine, _, _ := newTestEngine()
	engine.Heartbeat(1, hostProfile)
	engine.Heartbeat(2, guestProfile)

	inviteID, err := engine.SendInvite(1, hostProfile, 2, 3)
	require.NoError(t, err)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.AcceptInvite(inviteID, 2, guestProfile)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, notFound int
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInviteNotFound)
			notFound++
		}
	}
	assert.Equal(t, 1, succeeded, "同一張邀請只能被接受一次")
	assert.Equal(t, attempts-1, notFound)
	assert.Equal(t, 1, engine.RoomCount())
}

func TestInviteExpiry(t *testing.T) {
	engine, _, clock := newTestEngine()
	engine.Heartbeat(1, hostProfile)
	engine.Heartbeat(2, guestProfile)

	inviteID, err := engine.SendInvite(1, hostProfile, 2, 3)
	require.NoError(t, err)

	clock.Advance(61 * time.Second)

	// 過期邀請即使還沒被清理也視同不存在
	_, err = engine.AcceptInvite(inviteID, 2, guestProfile)
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestDeclineInvite(t *testing.T) {
	engine, _, _ := newTestEngine()
	engine.Heartbeat(1, hostProfile)
	engine.Heartbeat(2, guestProfile)

	inviteID, err := engine.SendInvite(1, hostProfile, 2, 3)
	require.NoError(t, err)

	// 非受邀者拒絕是無聲的 no-op
	engine.DeclineInvite(inviteID, 3)
	require.Len(t, engine.Heartbeat(2, guestProfile).PendingInvites, 1)

	engine.DeclineInvite(inviteID, 2)
	assert.Empty(t, engine.Heartbeat(2, guestProfile).PendingInvites)
}

func TestPresenceExpiry(t *testing.T) {
	engine, _, clock := newTestEngine()
	engine.Heartbeat(1, hostProfile)
	engine.Heartbeat(2, guestProfile)

	assert.Len(t, engine.Online(0), 2)
	assert.Len(t, engine.Online(1), 1, "排除請求者本人")

	clock.Advance(31 * time.Second)
	engine.Heartbeat(2, guestProfile)

	online := engine.Online(0)
	require.Len(t, online, 1)
	assert.Equal(t, uint(2), online[0].UserID)

	engine.LeaveLobby(2)
	assert.Empty(t, engine.Online(0))
}

func TestGuestLeavePlayingForfeitsAndReverts(t *testing.T) {
	engine, finalizer, _ := newTestEngine()
	code := startMatch(t, engine, 3)

	result, err := engine.LeaveRoom(code, 2)
	require.NoError(t, err)
	assert.True(t, result.Forfeited)
	assert.Equal(t, uint(1), result.WinnerID)
	assert.False(t, result.Destroyed)

	// 棄權的結果已落地，房間重置回等待狀態
	require.Equal(t, 1, finalizer.count())
	assert.Equal(t, uint(1), finalizer.records[0].WinnerID)

	state, err := engine.State(code, 1)
	require.NoError(t, err)
	assert.Equal(t, RoomStatusWaiting, state.Status)
	assert.Nil(t, state.Guest)
	assert.Equal(t, 0, state.Host.Score)
	assert.Empty(t, state.Rounds)

	// 下一位挑戰者加入後是全新的一局
	joined, err := engine.JoinRoom(code, 3, Profile{Username: "third"})
	require.NoError(t, err)
	assert.Equal(t, RoomStatusPlaying, joined.Status)
	assert.Equal(t, 1, joined.CurrentRound)
}

func TestHostLeavePlayingForfeits(t *testing.T) {
	engine, finalizer, _ := newTestEngine()
	code := startMatch(t, engine, 3)

	result, err := engine.LeaveRoom(code, 1)
	require.NoError(t, err)
	assert.True(t, result.Forfeited)
	assert.Equal(t, uint(2), result.WinnerID)
	require.Equal(t, 1, finalizer.count())

	// 房主離開後房間保持結束狀態
	state, err := engine.State(code, 2)
	require.NoError(t, err)
	assert.Equal(t, RoomStatusFinished, state.Status)
	assert.Equal(t, uint(2), state.WinnerID)
}

func TestHostLeaveWaitingDestroysRoom(t *testing.T) {
	engine, finalizer, _ := newTestEngine()

	state, err := engine.CreateRoom(1, hostProfile, 3)
	require.NoError(t, err)

	result, err := engine.LeaveRoom(state.RoomCode, 1)
	require.NoError(t, err)
	assert.True(t, result.Destroyed)
	assert.False(t, result.Forfeited)
	assert.Equal(t, 0, finalizer.count())

	_, err = engine.State(state.RoomCode, 1)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Equal(t, 0, engine.RoomCount())
}

func TestLeaveUnknownRoomIsNoop(t *testing.T) {
	engine, _, _ := newTestEngine()

	result, err := engine.LeaveRoom("NOSUCH", 1)
	require.NoError(t, err)
	assert.True(t, result.Destroyed)
}

func TestRematchCreatesFreshRoom(t *testing.T) {
	engine, _, _ := newTestEngine()
	code := startMatch(t, engine, 1)

	// 還沒打完不能再戰
	_, err := engine.Rematch(code, 1, hostProfile)
	assert.ErrorIs(t, err, ErrNotFinished)

	_, err = engine.SubmitChoice(code, 1, ChoicePaper)
	require.NoError(t, err)
	_, err = engine.SubmitChoice(code, 2, ChoiceRock)
	require.NoError(t, err)

	_, err = engine.Rematch(code, 99, Profile{Username: "other"})
	assert.ErrorIs(t, err, ErrNotParticipant)

	state, err := engine.Rematch(code, 2, guestProfile)
	require.NoError(t, err)
	assert.NotEqual(t, code, state.RoomCode)
	assert.Equal(t, RoomStatusWaiting, state.Status)
	assert.Equal(t, 1, state.BestOf)
	assert.Equal(t, uint(2), state.Host.ID)

	// 舊房間保持不動
	old, err := engine.State(code, 1)
	require.NoError(t, err)
	assert.Equal(t, RoomStatusFinished, old.Status)
}

func TestSweepExpiresEverything(t *testing.T) {
	engine, finalizer, clock := newTestEngine()
	engine.Heartbeat(1, hostProfile)
	engine.Heartbeat(2, guestProfile)

	inviteID, err := engine.SendInvite(1, hostProfile, 2, 3)
	require.NoError(t, err)

	// 打到一半的房間
	code := startMatch(t, engine, 3)
	_, err = engine.SubmitChoice(code, 1, ChoiceRock)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	engine.Sweep()

	assert.Empty(t, engine.Online(0))
	_, err = engine.AcceptInvite(inviteID, 2, guestProfile)
	assert.ErrorIs(t, err, ErrInviteNotFound)
	assert.Equal(t, 0, engine.RoomCount())

	// 被清掉的對戰不寫任何紀錄，也不更新戰績
	assert.Equal(t, 0, finalizer.count())
}

func TestSweepKeepsLiveState(t *testing.T) {
	engine, _, clock := newTestEngine()
	engine.Heartbeat(1, hostProfile)
	code := startMatch(t, engine, 3)

	clock.Advance(10 * time.Second)
	engine.Sweep()

	assert.Len(t, engine.Online(0), 1)
	assert.Equal(t, 1, engine.RoomCount())

	_, err := engine.State(code, 1)
	assert.NoError(t, err)
}

func TestConcurrentChoicesResolveOnce(t *testing.T) {
	engine, finalizer, _ := newTestEngine()
	code := startMatch(t, engine, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := engine.SubmitChoice(code, 1, ChoicePaper)
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := engine.SubmitChoice(code, 2, ChoiceRock)
		assert.NoError(t, err)
	}()
	wg.Wait()

	// 兩邊同時出拳也只結算一次
	state, err := engine.State(code, 1)
	require.NoError(t, err)
	assert.Equal(t, RoomStatusFinished, state.Status)
	assert.Equal(t, uint(1), state.WinnerID)
	assert.Equal(t, 1, finalizer.count())
}

package game

import (
	"sync"
	"time"
)

// Profile 是帳號系統提供的公開資料，引擎只拿來豐富回應內容
type Profile struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// PresenceEntry 表示一個在大廳上線的玩家
type PresenceEntry struct {
	UserID    uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	LastSeen  time.Time
}

// presenceRegistry 追蹤大廳的上線名單，超過 TTL 未送心跳即視為離線
type presenceRegistry struct {
	mu      sync.RWMutex
	entries map[uint]*PresenceEntry
	ttl     time.Duration
}

func newPresenceRegistry(ttl time.Duration) *presenceRegistry {
	return &presenceRegistry{
		entries: make(map[uint]*PresenceEntry),
		ttl:     ttl,
	}
}

// heartbeat 更新玩家的上線狀態，不存在則新增
func (p *presenceRegistry) heartbeat(userID uint, profile Profile, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries[userID] = &PresenceEntry{
		UserID:    userID,
		Username:  profile.Username,
		AvatarURL: profile.AvatarURL,
		LastSeen:  now,
	}
}

// online 回傳所有未過期的上線玩家，順手淘汰過期項目
func (p *presenceRegistry) online(now time.Time, exclude uint) []PresenceEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	users := make([]PresenceEntry, 0, len(p.entries))
	for id, entry := range p.entries {
		if now.Sub(entry.LastSeen) > p.ttl {
			delete(p.entries, id)
			continue
		}
		if id == exclude {
			continue
		}
		users = append(users, *entry)
	}
	return users
}

// isOnline 檢查指定玩家是否在線（未過期）
func (p *presenceRegistry) isOnline(userID uint, now time.Time) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.entries[userID]
	return ok && now.Sub(entry.LastSeen) <= p.ttl
}

// leave 玩家主動離開大廳，不等 TTL 直接移除
func (p *presenceRegistry) leave(userID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.entries, userID)
}

// sweep 移除所有過期的上線紀錄
func (p *presenceRegistry) sweep(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, entry := range p.entries {
		if now.Sub(entry.LastSeen) > p.ttl {
			delete(p.entries, id)
		}
	}
}

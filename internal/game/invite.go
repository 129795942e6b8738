package game

import (
	"sync"
	"time"
)

// Invite 是兩名在線玩家之間的短期挑戰，接受、拒絕或逾時即消失。
// 同一對玩家允許同時存在多張邀請，不做去重。
type Invite struct {
	ID           string
	FromUserID   uint
	FromUsername string
	FromAvatar   string
	ToUserID     uint
	BestOf       int
	CreatedAt    time.Time
}

// InviteView 是心跳回應裡呈現給受邀者的邀請摘要
type InviteView struct {
	InviteID string    `json:"invite_id"`
	FromUser PlayerRef `json:"from_user"`
	BestOf   int       `json:"best_of"`
}

// PlayerRef 是 payload 中指向玩家的最小欄位組
type PlayerRef struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// inviteBroker 管理所有待處理的邀請
type inviteBroker struct {
	mu      sync.Mutex
	invites map[string]*Invite
	ttl     time.Duration
}

func newInviteBroker(ttl time.Duration) *inviteBroker {
	return &inviteBroker{
		invites: make(map[string]*Invite),
		ttl:     ttl,
	}
}

// add 登記一張新邀請
func (b *inviteBroker) add(inv *Invite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.invites[inv.ID] = inv
}

// consumeFor 原子性地取出並移除一張邀請。
// 邀請必須存在、未過期且 userID 是受邀者本人才會被消耗；
// 兩個併發的 accept 只有一個能拿到邀請，輸家看到 ErrInviteNotFound。
func (b *inviteBroker) consumeFor(inviteID string, userID uint, now time.Time) (*Invite, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	inv, ok := b.invites[inviteID]
	if !ok {
		return nil, ErrInviteNotFound
	}
	if now.Sub(inv.CreatedAt) > b.ttl {
		delete(b.invites, inviteID)
		return nil, ErrInviteNotFound
	}
	if inv.ToUserID != userID {
		return nil, ErrInviteForbidden
	}

	delete(b.invites, inviteID)
	return inv, nil
}

// decline 拒絕邀請。只有受邀者本人能拒絕，其餘情況靜默忽略
func (b *inviteBroker) decline(inviteID string, userID uint) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if inv, ok := b.invites[inviteID]; ok && inv.ToUserID == userID {
		delete(b.invites, inviteID)
	}
}

// listFor 列出指定玩家收到且未過期的邀請
func (b *inviteBroker) listFor(userID uint, now time.Time) []InviteView {
	b.mu.Lock()
	defer b.mu.Unlock()

	views := make([]InviteView, 0)
	for id, inv := range b.invites {
		if now.Sub(inv.CreatedAt) > b.ttl {
			delete(b.invites, id)
			continue
		}
		if inv.ToUserID != userID {
			continue
		}
		views = append(views, InviteView{
			InviteID: id,
			FromUser: PlayerRef{
				ID:        inv.FromUserID,
				Username:  inv.FromUsername,
				AvatarURL: inv.FromAvatar,
			},
			BestOf: inv.BestOf,
		})
	}
	return views
}

// sweep 移除所有過期的邀請
func (b *inviteBroker) sweep(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, inv := range b.invites {
		if now.Sub(inv.CreatedAt) > b.ttl {
			delete(b.invites, id)
		}
	}
}

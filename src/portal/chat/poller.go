// Package chat runs the polling loop behind the portal's two-party chat.
// One Poller serves the whole chat screen: it tracks which conversation is
// open, refreshes it on a fixed cadence, and degrades to a manual-retry
// state when the backend becomes unreachable.
package chat

import (
	"Backend-NetZero/src/models"
	"Backend-NetZero/src/portal/gateway"
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// DefaultInterval is the refresh cadence while a conversation is open.
// Fixed: no adaptive backoff, a failure either keeps the cadence (business
// rejection) or stops it entirely (network loss, until manual retry).
const DefaultInterval = 10 * time.Second

type State int

const (
	StateIdle     State = iota // no conversation selected
	StateActive                // polling the selected conversation
	StateDegraded              // backend unreachable, polling suspended
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDegraded:
		return "degraded"
	}
	return "idle"
}

var (
	ErrNoConversation = errors.New("no conversation selected")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrDegraded       = errors.New("connection lost, retry first")
)

// Poller owns the selected conversation and its refresh loop.
type Poller struct {
	gw       gateway.MessagingGateway
	session  gateway.Session
	interval time.Duration

	mu       sync.Mutex
	state    State
	selected string
	conv     *models.Conversation
	lastErr  error
	cancel   context.CancelFunc
	gen      int // selection generation, guards stale responses
}

func New(gw gateway.MessagingGateway, session gateway.Session) *Poller {
	return NewWithInterval(gw, session, DefaultInterval)
}

// NewWithInterval exists so tests can tighten the cadence.
func NewWithInterval(gw gateway.MessagingGateway, session gateway.Session, interval time.Duration) *Poller {
	return &Poller{gw: gw, session: session, interval: interval}
}

// Select opens a conversation: it stops the previous loop (at most one
// cadence runs at any time), fetches once immediately, then polls.
func (p *Poller) Select(conversationID string) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.selected = conversationID
	p.state = StateActive
	p.conv = nil
	p.lastErr = nil
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	go p.loop(ctx, conversationID, gen)
}

func (p *Poller) loop(ctx context.Context, conversationID string, gen int) {
	if !p.fetch(ctx, conversationID, gen) {
		return
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.fetch(ctx, conversationID, gen) {
				return
			}
		}
	}
}

// fetch refreshes the conversation once. The backend marks the caller's
// unread messages read as part of the same call. The return value says
// whether the loop should keep ticking.
func (p *Poller) fetch(ctx context.Context, conversationID string, gen int) bool {
	conv, err := p.gw.GetConversation(ctx, p.session, conversationID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || p.selected != conversationID {
		// คำตอบของ selection เก่า ทิ้งไปเลย
		return false
	}
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.lastErr = err
		if gateway.IsNetwork(err) {
			p.state = StateDegraded
			if p.cancel != nil {
				p.cancel()
			}
			return false
		}
		// business rejection: โชว์ error แต่ poll ต่อ
		return true
	}
	p.conv = conv
	p.lastErr = nil
	p.state = StateActive
	return true
}

// SendMessage posts to the selected conversation, then refreshes immediately
// so the sender sees their message without waiting for the next tick.
// Empty input, no selection and degraded state are rejected locally before
// any network traffic.
func (p *Poller) SendMessage(ctx context.Context, content string) error {
	p.mu.Lock()
	if strings.TrimSpace(content) == "" {
		p.mu.Unlock()
		return ErrEmptyMessage
	}
	if p.selected == "" {
		p.mu.Unlock()
		return ErrNoConversation
	}
	if p.state == StateDegraded {
		p.mu.Unlock()
		return ErrDegraded
	}
	conversationID := p.selected
	gen := p.gen
	p.mu.Unlock()

	if err := p.gw.SendMessage(ctx, p.session, conversationID, content); err != nil {
		if gateway.IsNetwork(err) {
			p.mu.Lock()
			if gen == p.gen {
				p.state = StateDegraded
				p.lastErr = err
				if p.cancel != nil {
					p.cancel()
				}
			}
			p.mu.Unlock()
		}
		return err
	}

	p.fetch(ctx, conversationID, gen)
	return nil
}

// StartConversation opens the thread with the given counterpart, reusing an
// existing conversation when one exists and creating it otherwise, then
// selects it.
func (p *Poller) StartConversation(ctx context.Context, counterpartID string) (string, error) {
	convs, err := p.gw.ListConversations(ctx, p.session)
	if err != nil {
		return "", err
	}
	for i := range convs {
		if convs[i].CounterpartID(p.session.Role).Hex() == counterpartID {
			id := convs[i].ID.Hex()
			p.Select(id)
			return id, nil
		}
	}

	conv, err := p.gw.CreateConversation(ctx, p.session, counterpartID)
	if err != nil {
		return "", err
	}
	id := conv.ID.Hex()
	p.Select(id)
	return id, nil
}

// Retry is the manual reconnect from the degraded state: it restarts the
// loop for the current conversation. The first fetch decides whether the
// poller comes back to active or degrades again.
func (p *Poller) Retry() error {
	p.mu.Lock()
	selected := p.selected
	p.mu.Unlock()
	if selected == "" {
		return ErrNoConversation
	}
	p.Select(selected)
	return nil
}

// Close stops polling and clears the selection.
func (p *Poller) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.selected = ""
	p.conv = nil
	p.lastErr = nil
	p.state = StateIdle
	p.gen++
}

// State returns the current poller state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Selected returns the id of the open conversation, empty when idle.
func (p *Poller) Selected() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// Conversation returns the last fetched snapshot of the open conversation.
func (p *Poller) Conversation() *models.Conversation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conv
}

// Messages returns a copy of the open conversation's messages.
func (p *Poller) Messages() []models.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conv == nil {
		return nil
	}
	out := make([]models.Message, len(p.conv.Messages))
	copy(out, p.conv.Messages)
	return out
}

// LastErr returns the most recent fetch or send failure, nil when healthy.
func (p *Poller) LastErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

package relay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/alibukhari13/slack-attendance/platform"
	"github.com/alibukhari13/slack-attendance/telemetry"
)

var ErrNoActiveConversation = errors.New("no active conversation")

// pendingEdit is a locally-applied mutation not yet confirmed by a sync
// pass: either replacement text or a delete tombstone, keyed by ts.
type pendingEdit struct {
	text      string
	tombstone bool
}

// provisional is a locally-synthesized send awaiting its authoritative
// counterpart from the remote.
type provisional struct {
	msg     platform.Message
	created time.Time
}

// UpdateFunc receives push events when a sync pass commits fresh state.
type UpdateFunc func(kind string, payload interface{})

// SessionConfig carries the identity being impersonated and the sync
// cadence. Zero durations fall back to the defaults.
type SessionConfig struct {
	SelfID          string
	SelfName        string
	MessageInterval time.Duration
	ListInterval    time.Duration
	PageSize        int
	MaxPages        int
	OnUpdate        UpdateFunc
}

// Session owns the displayed state for one operator: the active
// conversation, its message view, pending local mutations and the two sync
// timers. The remote platform stays the sole source of truth; everything
// here is a transient view over it.
type Session struct {
	client platform.Client
	cfg    SessionConfig

	mu              sync.Mutex
	gen             int // bumped on every focus change; stale commits check it
	conversation    string
	counterpart     string
	counterpartName string
	messages        []platform.Message
	pendingEdits    map[string]pendingEdit
	provisionals    []provisional
	overview        Overview
	cancel          context.CancelFunc
}

func NewSession(client platform.Client, cfg SessionConfig) *Session {
	if cfg.MessageInterval <= 0 {
		cfg.MessageInterval = 3 * time.Second
	}
	if cfg.ListInterval <= 0 {
		cfg.ListInterval = 20 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	return &Session{
		client:       client,
		cfg:          cfg,
		pendingEdits: make(map[string]pendingEdit),
	}
}

// Open focuses the session on a conversation: it tears down any previous
// focus, loads the full history once, then starts the message and list sync
// loops. The counterpart arguments label direct chats for rendering.
func (s *Session) Open(conversationID, counterpartID, counterpartName string) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.conversation = conversationID
	s.counterpart = counterpartID
	s.counterpartName = counterpartName
	s.messages = nil
	s.pendingEdits = make(map[string]pendingEdit)
	s.provisionals = nil
	s.mu.Unlock()

	msgs := fetchHistory(ctx, s.client, conversationID, s.cfg.PageSize, s.cfg.MaxPages)
	s.commitMessages(gen, conversationID, msgs)

	go s.messageLoop(ctx, gen, conversationID)
	go s.listLoop(ctx, gen)
}

// Close drops the focus and stops both loops. Any fetch still in flight
// commits against a stale generation and is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.conversation = ""
	s.counterpart = ""
	s.counterpartName = ""
	s.messages = nil
	s.pendingEdits = make(map[string]pendingEdit)
	s.provisionals = nil
}

func (s *Session) messageLoop(ctx context.Context, gen int, conversationID string) {
	ticker := time.NewTicker(s.cfg.MessageInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			telemetry.SyncTicks.WithLabelValues("messages").Inc()
			msgs := fetchHistory(ctx, s.client, conversationID, s.cfg.PageSize, s.cfg.MaxPages)
			if !s.commitMessages(gen, conversationID, msgs) {
				return
			}
		}
	}
}

func (s *Session) listLoop(ctx context.Context, gen int) {
	ticker := time.NewTicker(s.cfg.ListInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			telemetry.SyncTicks.WithLabelValues("chats").Inc()
			ov := ListConversations(ctx, s.client)
			if !s.commitOverview(gen, ov) {
				return
			}
		}
	}
}

// commitMessages installs a fetched message set, unless the focus moved on
// while the fetch was in flight. It also retires pending mutations the
// remote now agrees with and provisional sends the remote has confirmed.
func (s *Session) commitMessages(gen int, conversationID string, msgs []platform.Message) bool {
	s.mu.Lock()
	if s.gen != gen || s.conversation != conversationID {
		s.mu.Unlock()
		telemetry.StaleSyncDrops.Inc()
		return false
	}
	s.messages = msgs

	byTs := make(map[string]platform.Message, len(msgs))
	for _, m := range msgs {
		byTs[m.Ts] = m
	}
	for ts, pe := range s.pendingEdits {
		remote, present := byTs[ts]
		if pe.tombstone {
			if !present {
				delete(s.pendingEdits, ts)
			}
			continue
		}
		if present && remote.Text == pe.text {
			delete(s.pendingEdits, ts)
		}
	}
	kept := s.provisionals[:0]
	for _, p := range s.provisionals {
		if _, ok := byTs[p.msg.Ts]; ok {
			continue
		}
		if matchesAuthoritative(byTs, p) {
			continue
		}
		kept = append(kept, p)
	}
	s.provisionals = kept
	s.mu.Unlock()

	s.publish("messages")
	return true
}

func (s *Session) commitOverview(gen int, ov Overview) bool {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		telemetry.StaleSyncDrops.Inc()
		return false
	}
	s.overview = ov
	s.mu.Unlock()

	s.publish("chats")
	return true
}

// matchesAuthoritative reports whether a fetched message is the remote's
// version of a provisional send: same author, same text, ts within a minute.
func matchesAuthoritative(byTs map[string]platform.Message, p provisional) bool {
	for _, m := range byTs {
		if m.User != p.msg.User || m.Text != p.msg.Text {
			continue
		}
		d := p.created.Sub(tsTime(m.Ts))
		if d < 0 {
			d = -d
		}
		if d <= time.Minute {
			return true
		}
	}
	return false
}

// Send appends a provisional message under a client-generated ts and posts
// in the background. The next sync pass swaps the provisional for the
// authoritative entry once the remote reports it.
func (s *Session) Send(text string) (string, error) {
	s.mu.Lock()
	if s.conversation == "" {
		s.mu.Unlock()
		return "", ErrNoActiveConversation
	}
	gen := s.gen
	conv := s.conversation
	now := time.Now()
	msg := platform.Message{
		Ts:   provisionalTs(now),
		User: s.cfg.SelfID,
		Text: text,
	}
	s.provisionals = append(s.provisionals, provisional{msg: msg, created: now})
	s.mu.Unlock()

	s.publish("messages")

	go func() {
		ts, err := s.client.Post(context.Background(), conv, text)
		if err != nil {
			log.Printf("relay: post to %s failed: %v", conv, err)
			return
		}
		s.mu.Lock()
		if s.gen == gen {
			for i := range s.provisionals {
				if s.provisionals[i].msg.Ts == msg.Ts {
					s.provisionals[i].msg.Ts = ts
					break
				}
			}
		}
		s.mu.Unlock()
	}()
	return msg.Ts, nil
}

// Edit rewrites the displayed text for ts immediately and records a
// PendingLocalEdit; the remote update runs in the background with no retry
// and no rollback.
func (s *Session) Edit(ts, newText string) error {
	s.mu.Lock()
	if s.conversation == "" {
		s.mu.Unlock()
		return ErrNoActiveConversation
	}
	gen := s.gen
	conv := s.conversation
	s.pendingEdits[ts] = pendingEdit{text: newText}
	s.mu.Unlock()

	s.publish("messages")

	go func() {
		if err := s.client.Update(context.Background(), conv, ts, newText); err != nil {
			log.Printf("relay: edit %s in %s failed: %v", ts, conv, err)
		}
		s.mu.Lock()
		if s.gen == gen {
			if pe, ok := s.pendingEdits[ts]; ok && !pe.tombstone && pe.text == newText {
				delete(s.pendingEdits, ts)
			}
		}
		s.mu.Unlock()
	}()
	return nil
}

// Delete removes ts from the displayed set immediately and issues exactly
// one remote delete. If the remote call fails the next full refetch restores
// the truth; there is no rollback path.
func (s *Session) Delete(ts string) error {
	s.mu.Lock()
	if s.conversation == "" {
		s.mu.Unlock()
		return ErrNoActiveConversation
	}
	gen := s.gen
	conv := s.conversation
	s.pendingEdits[ts] = pendingEdit{tombstone: true}
	s.mu.Unlock()

	s.publish("messages")

	go func() {
		if err := s.client.Delete(context.Background(), conv, ts); err != nil {
			log.Printf("relay: delete %s in %s failed: %v", ts, conv, err)
			s.mu.Lock()
			if s.gen == gen {
				if pe, ok := s.pendingEdits[ts]; ok && pe.tombstone {
					delete(s.pendingEdits, ts)
				}
			}
			s.mu.Unlock()
		}
	}()
	return nil
}

// RefreshOverview runs one aggregator sweep on demand (list_chats outside an
// open conversation uses this; the list loop keeps it warm afterwards).
func (s *Session) RefreshOverview(ctx context.Context) Overview {
	ov := ListConversations(ctx, s.client)
	s.mu.Lock()
	s.overview = ov
	s.mu.Unlock()
	return ov
}

// RenderedMessage is one display row of the active conversation.
type RenderedMessage struct {
	Ts      string   `json:"ts"`
	User    string   `json:"user"`
	Name    string   `json:"name"`
	Text    string   `json:"text"`
	Edited  bool     `json:"edited"`
	Pending bool     `json:"pending,omitempty"`
	Files   []string `json:"files,omitempty"`
}

// View is the operator-facing snapshot of the session's focus.
type View struct {
	Conversation string            `json:"conversation"`
	Messages     []RenderedMessage `json:"messages"`
}

// Snapshot merges the last successful fetch with not-yet-confirmed local
// intent: pending edits override fetched text, tombstones hide rows,
// provisional sends are appended in ts order. Rendering happens here, at
// display time only.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolve := Resolver(s.overview.Directory, s.counterpart, s.counterpartName, s.cfg.SelfID, s.cfg.SelfName)
	view := View{Conversation: s.conversation}

	merged := make([]platform.Message, 0, len(s.messages)+len(s.provisionals))
	for _, m := range s.messages {
		pe, ok := s.pendingEdits[m.Ts]
		if ok && pe.tombstone {
			continue
		}
		if ok {
			m.Text = pe.text
			m.Edited = true
		}
		merged = append(merged, m)
	}
	for _, p := range s.provisionals {
		merged = append(merged, p.msg)
	}
	merged = chronological(merged)

	for _, m := range merged {
		name := resolve(m.User)
		if name == "" {
			name = m.User
		}
		_, pending := s.pendingEdits[m.Ts]
		view.Messages = append(view.Messages, RenderedMessage{
			Ts:      m.Ts,
			User:    m.User,
			Name:    name,
			Text:    Render(m.Text, resolve),
			Edited:  m.Edited,
			Pending: pending || s.isProvisional(m.Ts),
			Files:   m.Files,
		})
	}
	return view
}

// Chats returns the last committed overview.
func (s *Session) Chats() Overview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overview
}

func (s *Session) isProvisional(ts string) bool {
	for _, p := range s.provisionals {
		if p.msg.Ts == ts {
			return true
		}
	}
	return false
}

func (s *Session) publish(kind string) {
	if s.cfg.OnUpdate == nil {
		return
	}
	switch kind {
	case "messages":
		s.cfg.OnUpdate(kind, s.Snapshot())
	case "chats":
		s.cfg.OnUpdate(kind, s.Chats())
	}
}

// provisionalTs formats a client-generated timestamp in the platform's
// decimal form so provisional entries sort alongside authoritative ones.
func provisionalTs(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}

// tsTime parses the integer second part of a platform ts.
func tsTime(ts string) time.Time {
	var sec int64
	for i := 0; i < len(ts) && ts[i] != '.'; i++ {
		if ts[i] < '0' || ts[i] > '9' {
			return time.Time{}
		}
		sec = sec*10 + int64(ts[i]-'0')
	}
	return time.Unix(sec, 0)
}

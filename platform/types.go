package platform

import "context"

// Conversation is one direct or group thread as the remote platform reports
// it. Counterpart is the other party's user id and is set for direct chats
// only.
type Conversation struct {
	ID          string `json:"id"`
	IsGroup     bool   `json:"is_group"`
	Counterpart string `json:"counterpart,omitempty"`
	UnreadCount int    `json:"unread_count"`
}

// Member is one workspace account from the directory listing.
type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	Avatar   string `json:"avatar"`
	Deleted  bool   `json:"-"`
	IsBot    bool   `json:"-"`
}

// Message is one remote message. Ts is the platform-assigned timestamp
// string; it is both the identity and the sort key of the message.
type Message struct {
	Ts     string   `json:"ts"`
	User   string   `json:"user"`
	Text   string   `json:"text"`
	Edited bool     `json:"edited"`
	Files  []string `json:"files,omitempty"`
}

// HistoryPage is one page of a conversation's history, newest first, plus
// the cursor for the next (older) page.
type HistoryPage struct {
	Messages   []Message
	HasMore    bool
	NextCursor string
}

// Client is the remote messaging platform seen as a fallible black box.
// Every method either returns a payload or an error; callers never interpret
// platform error semantics beyond success/failure.
type Client interface {
	ListConversations(ctx context.Context) ([]Conversation, error)
	ListMembers(ctx context.Context) ([]Member, error)
	History(ctx context.Context, conversationID, cursor string, limit int) (*HistoryPage, error)
	Post(ctx context.Context, conversationID, text string) (ts string, err error)
	Update(ctx context.Context, conversationID, ts, text string) error
	Delete(ctx context.Context, conversationID, ts string) error
}

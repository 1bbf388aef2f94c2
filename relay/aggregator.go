package relay

import (
	"context"
	"log"
	"sync"

	"github.com/alibukhari13/slack-attendance/platform"
)

// GroupChatName labels group conversations; the conversations API does not
// cheaply expose member names for them.
const GroupChatName = "Group Chat"

// Chat is a conversation decorated with display data for the operator UI.
type Chat struct {
	ID          string `json:"id"`
	IsGroup     bool   `json:"is_group"`
	Counterpart string `json:"counterpart,omitempty"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar,omitempty"`
	UnreadCount int    `json:"unread_count"`
}

// Overview is the joined result of the conversation list and the directory.
type Overview struct {
	Chats     []Chat    `json:"chats"`
	Directory Directory `json:"directory"`
}

// ListConversations issues the conversation-list and directory calls
// concurrently and joins them. Either sub-call failing degrades that piece to
// empty; the call as a whole never fails. Remote ordering is preserved.
func ListConversations(ctx context.Context, client platform.Client) Overview {
	var (
		wg    sync.WaitGroup
		convs []platform.Conversation
		dir   Directory
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cs, err := client.ListConversations(ctx)
		if err != nil {
			log.Printf("aggregator: conversation list failed: %v", err)
			return
		}
		convs = cs
	}()
	go func() {
		defer wg.Done()
		dir = ResolveDirectory(ctx, client)
	}()
	wg.Wait()

	if dir == nil {
		dir = Directory{}
	}
	chats := make([]Chat, 0, len(convs))
	for _, c := range convs {
		chat := Chat{
			ID:          c.ID,
			IsGroup:     c.IsGroup,
			Counterpart: c.Counterpart,
			UnreadCount: c.UnreadCount,
		}
		if c.IsGroup {
			chat.Name = GroupChatName
		} else if entry, ok := dir[c.Counterpart]; ok {
			chat.Name = entry.Name
			chat.Avatar = entry.Avatar
		} else {
			chat.Name = "ID: " + c.Counterpart
		}
		chats = append(chats, chat)
	}
	return Overview{Chats: chats, Directory: dir}
}

package relay

import (
	"context"
	"log"

	"github.com/alibukhari13/slack-attendance/platform"
)

// DirectoryEntry labels a workspace user for display.
type DirectoryEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Directory maps user id to display data for one identity's workspace.
type Directory map[string]DirectoryEntry

// ResolveDirectory fetches the workspace member list and keys it by user id,
// skipping deactivated accounts and bots. On remote failure it returns an
// empty directory: conversation listing must keep working without names, and
// consumers fall back to the raw id.
func ResolveDirectory(ctx context.Context, client platform.Client) Directory {
	members, err := client.ListMembers(ctx)
	if err != nil {
		log.Printf("directory: member list failed: %v", err)
		return Directory{}
	}
	dir := make(Directory, len(members))
	for _, m := range members {
		if m.Deleted || m.IsBot {
			continue
		}
		name := m.Name
		if name == "" {
			name = m.RealName
		}
		dir[m.ID] = DirectoryEntry{ID: m.ID, Name: name, Avatar: m.Avatar}
	}
	return dir
}

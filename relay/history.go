package relay

import (
	"context"
	"log"
	"sort"

	"github.com/alibukhari13/slack-attendance/platform"
)

// DefaultPageSize and DefaultMaxPages bound a full-history load: at most
// DefaultMaxPages requests per conversation regardless of what the remote
// reports, trading completeness for latency.
const (
	DefaultPageSize = 100
	DefaultMaxPages = 3
)

// FetchFullHistory pulls the history of one conversation by following the
// remote cursor, newest-first page by page, and returns it oldest-first with
// ts-unique entries. It stops on the first of: no further pages, the page
// cap, or a failed page request. A mid-loop failure returns what has been
// gathered so far rather than an error.
func FetchFullHistory(ctx context.Context, client platform.Client, conversationID string) []platform.Message {
	return fetchHistory(ctx, client, conversationID, DefaultPageSize, DefaultMaxPages)
}

func fetchHistory(ctx context.Context, client platform.Client, conversationID string, pageSize, maxPages int) []platform.Message {
	var all []platform.Message
	cursor := ""
	for page := 0; page < maxPages; page++ {
		resp, err := client.History(ctx, conversationID, cursor, pageSize)
		if err != nil {
			log.Printf("history: page %d failed for %s: %v", page+1, conversationID, err)
			break
		}
		all = append(all, resp.Messages...)
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return chronological(all)
}

// chronological sorts messages ascending by ts and drops ts duplicates,
// keeping the first occurrence (the newest page wins, matching the fetch
// order).
func chronological(msgs []platform.Message) []platform.Message {
	seen := make(map[string]bool, len(msgs))
	out := make([]platform.Message, 0, len(msgs))
	for _, m := range msgs {
		if seen[m.Ts] {
			continue
		}
		seen[m.Ts] = true
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return tsLess(out[i].Ts, out[j].Ts) })
	return out
}

// tsLess orders slack timestamp strings ("1690000000.000100") numerically.
// The integer part is compared by length first so string comparison is safe
// across second boundaries of different widths.
func tsLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

package relay

import (
	"regexp"
	"strings"
)

// emojiTable maps Slack emoji codes to glyphs, applied in order with plain
// substring replacement. Entries are curated so no code is a substring of an
// earlier entry's output.
var emojiTable = []struct {
	code  string
	glyph string
}{
	{":smile:", "😄"},
	{":smiley:", "😃"},
	{":grin:", "😁"},
	{":joy:", "😂"},
	{":wink:", "😉"},
	{":thumbsup:", "👍"},
	{":+1:", "👍"},
	{":thumbsdown:", "👎"},
	{":-1:", "👎"},
	{":heart:", "❤️"},
	{":fire:", "🔥"},
	{":tada:", "🎉"},
	{":clap:", "👏"},
	{":pray:", "🙏"},
	{":eyes:", "👀"},
	{":cry:", "😢"},
	{":sob:", "😭"},
	{":sweat_smile:", "😅"},
	{":thinking_face:", "🤔"},
	{":ok_hand:", "👌"},
	{":wave:", "👋"},
	{":rocket:", "🚀"},
	{":white_check_mark:", "✅"},
	{":x:", "❌"},
	{":warning:", "⚠️"},
	{":100:", "💯"},
}

var mentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)>`)

// NameResolver turns a user id into a display name, or "" when unknown.
type NameResolver func(id string) string

// Render expands emoji codes and <@ID> mention tokens for display. It never
// mutates stored text and is deterministic for a given directory state.
func Render(text string, resolve NameResolver) string {
	for _, e := range emojiTable {
		text = strings.ReplaceAll(text, e.code, e.glyph)
	}
	return mentionPattern.ReplaceAllStringFunc(text, func(tok string) string {
		id := mentionPattern.FindStringSubmatch(tok)[1]
		if name := resolve(id); name != "" {
			return "@" + name
		}
		return "@" + id
	})
}

// Resolver builds the standard mention resolution chain: the directory
// first, then the active conversation's counterpart, then the impersonated
// identity itself. An id none of them know renders as the raw id.
func Resolver(dir Directory, counterpartID, counterpartName, selfID, selfName string) NameResolver {
	return func(id string) string {
		if entry, ok := dir[id]; ok && entry.Name != "" {
			return entry.Name
		}
		if id == counterpartID && counterpartName != "" {
			return counterpartName
		}
		if id == selfID && selfName != "" {
			return selfName
		}
		return ""
	}
}

package relay

import "testing"

func TestRenderEmoji(t *testing.T) {
	resolve := Resolver(Directory{}, "", "", "", "")
	got := Render("ship it :rocket: :+1:", resolve)
	want := "ship it 🚀 👍"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderMentionPriority(t *testing.T) {
	dir := Directory{"U1": {ID: "U1", Name: "amira"}}
	resolve := Resolver(dir, "U2", "bilal", "U3", "me")

	cases := []struct{ in, want string }{
		{"hi <@U1>", "hi @amira"},     // directory wins
		{"hi <@U2>", "hi @bilal"},     // counterpart next
		{"hi <@U3>", "hi @me"},        // the impersonated identity itself
		{"hi <@U404>", "hi @U404"},    // literal raw-id fallback
		{"<@U1> and <@U404>", "@amira and @U404"},
	}
	for _, c := range cases {
		if got := Render(c.in, resolve); got != c.want {
			t.Fatalf("Render(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRenderDirectoryOverridesCounterpart(t *testing.T) {
	dir := Directory{"U2": {ID: "U2", Name: "directory-name"}}
	resolve := Resolver(dir, "U2", "conversation-name", "", "")
	if got := Render("<@U2>", resolve); got != "@directory-name" {
		t.Fatalf("expected directory to take priority, got %q", got)
	}
}

func TestRenderNeverMutatesInput(t *testing.T) {
	resolve := Resolver(Directory{}, "", "", "", "")
	in := ":fire: <@U9>"
	first := Render(in, resolve)
	second := Render(in, resolve)
	if first != second {
		t.Fatalf("render not deterministic: %q vs %q", first, second)
	}
	if in != ":fire: <@U9>" {
		t.Fatalf("input mutated: %q", in)
	}
}

package platform

import (
	"context"

	"github.com/slack-go/slack"
	"golang.org/x/time/rate"

	"github.com/alibukhari13/slack-attendance/telemetry"
)

// slackbuiltin is the workspace-wide bot account present in every directory
// listing; it is never a real counterpart.
const slackbuiltin = "USLACKBOT"

// SlackClient implements Client over the Slack Web API with a shared rate
// limiter sized for Slack's Tier-3 method budget.
type SlackClient struct {
	api     *slack.Client
	limiter *rate.Limiter
}

func NewSlack(token string) *SlackClient {
	return &SlackClient{
		api:     slack.New(token),
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
}

func (s *SlackClient) wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

func (s *SlackClient) ListConversations(ctx context.Context) ([]Conversation, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	channels, _, err := s.api.GetConversationsForUserContext(ctx, &slack.GetConversationsForUserParameters{
		Types: []string{"im", "mpim"},
		Limit: 200,
	})
	telemetry.RemoteCalls.WithLabelValues("conversations.list", telemetry.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	out := make([]Conversation, 0, len(channels))
	for _, ch := range channels {
		out = append(out, Conversation{
			ID:          ch.ID,
			IsGroup:     ch.IsMpIM,
			Counterpart: ch.User,
			UnreadCount: ch.UnreadCount,
		})
	}
	return out, nil
}

func (s *SlackClient) ListMembers(ctx context.Context) ([]Member, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	users, err := s.api.GetUsersContext(ctx)
	telemetry.RemoteCalls.WithLabelValues("users.list", telemetry.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	out := make([]Member, 0, len(users))
	for _, u := range users {
		name := u.Profile.DisplayName
		if name == "" {
			name = u.Name
		}
		out = append(out, Member{
			ID:       u.ID,
			Name:     name,
			RealName: u.RealName,
			Avatar:   u.Profile.Image48,
			Deleted:  u.Deleted,
			IsBot:    u.IsBot || u.ID == slackbuiltin,
		})
	}
	return out, nil
}

func (s *SlackClient) History(ctx context.Context, conversationID, cursor string, limit int) (*HistoryPage, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: conversationID,
		Cursor:    cursor,
		Limit:     limit,
	})
	telemetry.RemoteCalls.WithLabelValues("conversations.history", telemetry.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	page := &HistoryPage{
		HasMore:    resp.HasMore,
		NextCursor: resp.ResponseMetaData.NextCursor,
		Messages:   make([]Message, 0, len(resp.Messages)),
	}
	for _, m := range resp.Messages {
		var files []string
		for _, f := range m.Files {
			files = append(files, f.Name)
		}
		page.Messages = append(page.Messages, Message{
			Ts:     m.Timestamp,
			User:   m.User,
			Text:   m.Text,
			Edited: m.Edited != nil,
			Files:  files,
		})
	}
	return page, nil
}

func (s *SlackClient) Post(ctx context.Context, conversationID, text string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	_, ts, err := s.api.PostMessageContext(ctx, conversationID,
		slack.MsgOptionText(text, false), slack.MsgOptionAsUser(true))
	telemetry.RemoteCalls.WithLabelValues("chat.postMessage", telemetry.Outcome(err)).Inc()
	return ts, err
}

func (s *SlackClient) Update(ctx context.Context, conversationID, ts, text string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	_, _, _, err := s.api.UpdateMessageContext(ctx, conversationID, ts,
		slack.MsgOptionText(text, false), slack.MsgOptionAsUser(true))
	telemetry.RemoteCalls.WithLabelValues("chat.update", telemetry.Outcome(err)).Inc()
	return err
}

func (s *SlackClient) Delete(ctx context.Context, conversationID, ts string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	_, _, err := s.api.DeleteMessageContext(ctx, conversationID, ts)
	telemetry.RemoteCalls.WithLabelValues("chat.delete", telemetry.Outcome(err)).Inc()
	return err
}

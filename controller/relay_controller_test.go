package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alibukhari13/slack-attendance/config"
	"github.com/alibukhari13/slack-attendance/entity"
	"github.com/alibukhari13/slack-attendance/platform"
	"github.com/alibukhari13/slack-attendance/service"
)

type fakeIdentities struct {
	idents map[string]entity.Identity
}

func (f *fakeIdentities) Enroll(req entity.EnrollIdentityRequest) (*entity.Identity, error) {
	return nil, nil
}

func (f *fakeIdentities) List() ([]entity.Identity, error) { return nil, nil }

func (f *fakeIdentities) Get(id string) (*entity.Identity, error) {
	ident, ok := f.idents[id]
	if !ok {
		return nil, service.ErrIdentityNotFound
	}
	return &ident, nil
}

func (f *fakeIdentities) Remove(id string) error { return nil }

func (f *fakeIdentities) GetCredential(id string) (string, error) {
	ident, err := f.Get(id)
	if err != nil {
		return "", err
	}
	return ident.AccessToken, nil
}

type fakePlatform struct{}

func (fakePlatform) ListConversations(ctx context.Context) ([]platform.Conversation, error) {
	return []platform.Conversation{{ID: "D1", Counterpart: "U2", UnreadCount: 1}}, nil
}

func (fakePlatform) ListMembers(ctx context.Context) ([]platform.Member, error) {
	return []platform.Member{{ID: "U2", Name: "bilal"}}, nil
}

func (fakePlatform) History(ctx context.Context, conversationID, cursor string, limit int) (*platform.HistoryPage, error) {
	return &platform.HistoryPage{Messages: []platform.Message{
		{Ts: "1690000000.000100", User: "U2", Text: "hi <@U1>"},
	}}, nil
}

func (fakePlatform) Post(ctx context.Context, conversationID, text string) (string, error) {
	return "1690000001.000100", nil
}

func (fakePlatform) Update(ctx context.Context, conversationID, ts, text string) error { return nil }

func (fakePlatform) Delete(ctx context.Context, conversationID, ts string) error { return nil }

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	idents := &fakeIdentities{idents: map[string]entity.Identity{
		"ID1": {ID: "ID1", SlackUserID: "U1", DisplayName: "amira", AccessToken: "xoxp-test"},
	}}
	cfg := config.Config{
		MessageInterval: time.Hour,
		ListInterval:    time.Hour,
		HistoryPageSize: 100,
		HistoryMaxPages: 3,
	}
	ctrl := NewRelayController(idents, nil, cfg, func(string) platform.Client { return fakePlatform{} })

	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) { c.Set("user_id", "op-1") })
	api.POST("/relay/chats", ctrl.ListChats)
	api.POST("/relay/open", ctrl.OpenChat)
	api.GET("/relay/messages", ctrl.GetMessages)
	api.POST("/relay/send", ctrl.Send)
	api.POST("/relay/delete", ctrl.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListChatsJoinsDirectory(t *testing.T) {
	r := testRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/relay/chats", `{"identity":"ID1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Chats []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"chats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Chats) != 1 || resp.Chats[0].Name != "bilal" {
		t.Fatalf("unexpected chats: %+v", resp.Chats)
	}
}

func TestUnknownIdentityRejectedBeforeRemoteCalls(t *testing.T) {
	r := testRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/relay/chats", `{"identity":"nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "identity not authorized") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestOpenChatRendersMentions(t *testing.T) {
	r := testRouter(t)
	if w := doJSON(t, r, http.MethodPost, "/api/relay/chats", `{"identity":"ID1"}`); w.Code != http.StatusOK {
		t.Fatalf("chats: %d", w.Code)
	}
	w := doJSON(t, r, http.MethodPost, "/api/relay/open", `{"identity":"ID1","conversation":"D1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var view struct {
		Conversation string `json:"conversation"`
		Messages     []struct {
			Text string `json:"text"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Conversation != "D1" || len(view.Messages) != 1 {
		t.Fatalf("unexpected view: %+v", view)
	}
	// U1 is the impersonated identity; the mention resolves to its name
	if view.Messages[0].Text != "hi @amira" {
		t.Fatalf("mention not rendered: %q", view.Messages[0].Text)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	r := testRouter(t)
	doJSON(t, r, http.MethodPost, "/api/relay/open", `{"identity":"ID1","conversation":"D1"}`)
	w := doJSON(t, r, http.MethodPost, "/api/relay/delete",
		`{"identity":"ID1","conversation":"D1","ts":"1690000000.000100"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected unconfirmed delete rejected, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/api/relay/delete",
		`{"identity":"ID1","conversation":"D1","ts":"1690000000.000100","confirm":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("confirmed delete failed: %d: %s", w.Code, w.Body.String())
	}
}

func TestSendWithoutOpenChat(t *testing.T) {
	r := testRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/relay/send", `{"identity":"ID1","conversation":"D1","text":"hi"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 before open_chat, got %d: %s", w.Code, w.Body.String())
	}
}

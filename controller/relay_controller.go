package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/alibukhari13/slack-attendance/config"
	"github.com/alibukhari13/slack-attendance/platform"
	"github.com/alibukhari13/slack-attendance/relay"
	"github.com/alibukhari13/slack-attendance/service"
	"github.com/alibukhari13/slack-attendance/ws"
)

// ClientFactory builds a platform client for a resolved credential. Tests
// substitute fakes here.
type ClientFactory func(token string) platform.Client

// RelayController exposes the conversation relay to operators. It owns one
// relay.Session per operator; there are no process-wide singletons, so
// arbitrarily many operator sessions run in parallel without coordination.
type RelayController struct {
	idents    service.IdentityService
	hub       *ws.Hub
	cfg       config.Config
	newClient ClientFactory

	mu       sync.Mutex
	sessions map[string]*boundSession // operator id -> session
}

type boundSession struct {
	identityID string
	session    *relay.Session
}

func NewRelayController(idents service.IdentityService, hub *ws.Hub, cfg config.Config, newClient ClientFactory) *RelayController {
	if newClient == nil {
		newClient = func(token string) platform.Client { return platform.NewSlack(token) }
	}
	return &RelayController{
		idents:    idents,
		hub:       hub,
		cfg:       cfg,
		newClient: newClient,
		sessions:  make(map[string]*boundSession),
	}
}

type identityRequest struct {
	Identity string `json:"identity" binding:"required"`
}

type openChatRequest struct {
	Identity     string `json:"identity" binding:"required"`
	Conversation string `json:"conversation" binding:"required"`
}

type sendRequest struct {
	Identity     string `json:"identity" binding:"required"`
	Conversation string `json:"conversation" binding:"required"`
	Text         string `json:"text" binding:"required"`
}

type editRequest struct {
	Identity     string `json:"identity" binding:"required"`
	Conversation string `json:"conversation" binding:"required"`
	Ts           string `json:"ts" binding:"required"`
	Text         string `json:"text" binding:"required"`
}

type deleteRequest struct {
	Identity     string `json:"identity" binding:"required"`
	Conversation string `json:"conversation" binding:"required"`
	Ts           string `json:"ts" binding:"required"`
	// destructive action: the UI must have asked the operator first
	Confirm bool `json:"confirm" binding:"required"`
}

// sessionFor returns the operator's session bound to the identity, building
// it if needed. No remote call happens before the credential resolves.
func (r *RelayController) sessionFor(operatorID, identityID string) (*relay.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.sessions[operatorID]; ok && b.identityID == identityID {
		return b.session, nil
	}
	token, err := r.idents.GetCredential(identityID)
	if err != nil {
		return nil, err
	}
	ident, err := r.idents.Get(identityID)
	if err != nil {
		return nil, err
	}
	if b, ok := r.sessions[operatorID]; ok {
		// identity switched: the old session's loops must not outlive it
		b.session.Close()
	}
	s := relay.NewSession(r.newClient(token), relay.SessionConfig{
		SelfID:          ident.SlackUserID,
		SelfName:        ident.DisplayName,
		MessageInterval: r.cfg.MessageInterval,
		ListInterval:    r.cfg.ListInterval,
		PageSize:        r.cfg.HistoryPageSize,
		MaxPages:        r.cfg.HistoryMaxPages,
		OnUpdate:        r.pusher(operatorID),
	})
	r.sessions[operatorID] = &boundSession{identityID: identityID, session: s}
	return s, nil
}

// pusher forwards sync commits to the operator's sockets via the hub.
func (r *RelayController) pusher(operatorID string) relay.UpdateFunc {
	return func(kind string, payload interface{}) {
		if r.hub == nil {
			return
		}
		b, err := json.Marshal(gin.H{"type": kind, "data": payload})
		if err != nil {
			return
		}
		if err := r.hub.Publish(context.Background(), operatorID, b); err != nil {
			log.Printf("relay: push to %s failed: %v", operatorID, err)
		}
	}
}

func (r *RelayController) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrIdentityNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity not authorized"})
		return
	}
	if errors.Is(err, relay.ErrNoActiveConversation) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func operatorID(c *gin.Context) string {
	v, _ := c.Get("user_id")
	id, _ := v.(string)
	return id
}

// ListChats runs one aggregator sweep for the identity and returns the
// joined conversation list + directory.
func (r *RelayController) ListChats(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := r.sessionFor(operatorID(c), req.Identity)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.RefreshOverview(c.Request.Context()))
}

// OpenChat focuses the session on a conversation: full history load once,
// then the live sync loops take over.
func (r *RelayController) OpenChat(c *gin.Context) {
	var req openChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := r.sessionFor(operatorID(c), req.Identity)
	if err != nil {
		r.fail(c, err)
		return
	}
	counterpartID, counterpartName := "", ""
	for _, chat := range s.Chats().Chats {
		if chat.ID == req.Conversation && !chat.IsGroup {
			counterpartID, counterpartName = chat.Counterpart, chat.Name
			break
		}
	}
	s.Open(req.Conversation, counterpartID, counterpartName)
	c.JSON(http.StatusOK, s.Snapshot())
}

// GetMessages returns the rendered snapshot of the active conversation.
func (r *RelayController) GetMessages(c *gin.Context) {
	r.mu.Lock()
	b, ok := r.sessions[operatorID(c)]
	r.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no open chat"})
		return
	}
	c.JSON(http.StatusOK, b.session.Snapshot())
}

func (r *RelayController) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := r.sessionFor(operatorID(c), req.Identity)
	if err != nil {
		r.fail(c, err)
		return
	}
	ts, err := s.Send(req.Text)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ts": ts, "pending": true})
}

func (r *RelayController) Edit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := r.sessionFor(operatorID(c), req.Identity)
	if err != nil {
		r.fail(c, err)
		return
	}
	if err := s.Edit(req.Ts, req.Text); err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"edited": true})
}

func (r *RelayController) Delete(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := r.sessionFor(operatorID(c), req.Identity)
	if err != nil {
		r.fail(c, err)
		return
	}
	if err := s.Delete(req.Ts); err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Close tears the operator's session down, stopping both sync loops.
func (r *RelayController) Close(c *gin.Context) {
	r.mu.Lock()
	b, ok := r.sessions[operatorID(c)]
	if ok {
		delete(r.sessions, operatorID(c))
	}
	r.mu.Unlock()
	if ok {
		b.session.Close()
	}
	c.JSON(http.StatusOK, gin.H{"closed": ok})
}

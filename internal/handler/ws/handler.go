package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
	chatService "github.com/zhouzirui/startup-mentor/backend/internal/service/chat"
	"github.com/zhouzirui/startup-mentor/backend/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 25 * time.Second

	sessionDiscardedReason = "session discarded"
)

// Handler 会话的WebSocket通道：入站 submit/draft，出站控制器事件
type Handler struct {
	chatSvc  *chatService.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatSvc: chatSvc,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	controller, err := h.chatSvc.Controller(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := h.logger.With(zap.String("session", sessionID))
	logger.Info("websocket connected")

	// snapshot 必须先于任何事件入队
	outbox := utils.NewQueue[outgoingMessage]()
	unsubscribe := controller.SubscribeWithSnapshot(
		func(snap chat.Transcript) {
			outbox.Push(newOutgoing(sessionID, "snapshot", snap))
			if controller.Closed() {
				outbox.Push(newOutgoing(sessionID, string(chatService.EventDiscarded), map[string]any{"isStreaming": false}))
			}
		},
		func(ev chatService.Event) {
			outbox.Push(newOutgoing(sessionID, string(ev.Kind), map[string]any{
				"message":     ev.Message,
				"fragment":    ev.Fragment,
				"isStreaming": ev.Streaming,
			}))
		},
	)
	defer unsubscribe()

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		return h.readLoop(conn, controller, sessionID, outbox)
	})
	g.Go(func() error {
		return h.writeLoop(ctx, conn, outbox)
	})

	err = g.Wait()
	switch {
	case controller.Closed():
		logger.Info("websocket closed, session discarded")
	case err != nil && !isNormalClose(err):
		logger.Warn("websocket closed", zap.Error(err))
	default:
		logger.Info("websocket disconnected")
	}
}

func (h *Handler) readLoop(conn *websocket.Conn, controller *chatService.Controller, sessionID string, outbox *utils.Queue[outgoingMessage]) error {
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		var text TextMessage
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &text); err != nil {
				outbox.Push(newOutgoing(sessionID, "error", map[string]string{"error": "invalid payload"}))
				continue
			}
		}

		switch msg.Type {
		case "submit":
			accepted := controller.Submit(text.Text)
			outbox.Push(newOutgoing(sessionID, "ack", map[string]bool{"accepted": accepted}))
		case "draft":
			controller.SetDraft(text.Text)
		default:
			outbox.Push(newOutgoing(sessionID, "error", map[string]string{"error": "unsupported message type: " + msg.Type}))
		}
	}
}

// writeLoop is the only goroutine that writes to conn. It closes the
// connection after relaying a discarded event.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, outbox *utils.Queue[outgoingMessage]) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			closeConn(conn, websocket.CloseNormalClosure, "")
			return nil
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return err
			}
		case <-outbox.Ready():
			for _, msg := range outbox.Drain() {
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(msg); err != nil {
					return err
				}
				if msg.Type == string(chatService.EventDiscarded) {
					closeConn(conn, websocket.CloseGoingAway, sessionDiscardedReason)
					return nil
				}
			}
		}
	}
}

// closeConn sends a close frame and closes conn, which also unblocks the reader.
func closeConn(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(writeTimeout)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}

func newOutgoing(sessionID, kind string, data interface{}) outgoingMessage {
	return outgoingMessage{
		Type:      kind,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

func isNormalClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return true
	}
	return errors.Is(err, context.Canceled)
}

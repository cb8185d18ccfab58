package stream

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
	chatService "github.com/zhouzirui/startup-mentor/backend/internal/service/chat"
	"github.com/zhouzirui/startup-mentor/backend/pkg/utils"
)

const defaultHeartbeat = 8 * time.Second

// Handler manages streaming mentor replies via Server-Sent Events
type Handler struct {
	chatSvc   *chatService.Service
	logger    *zap.Logger
	heartbeat time.Duration
}

// New creates a new stream handler
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatSvc:   chatSvc,
		logger:    logger,
		heartbeat: defaultHeartbeat,
	}
}

// RegisterRoutes 注册流式路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	SessionID string        `json:"sessionId,omitempty"`
	Mentor    string        `json:"mentor,omitempty"`
	Content   string        `json:"content,omitempty"`
	Message   *chat.Message `json:"message,omitempty"`
	Accepted  *bool         `json:"accepted,omitempty"`
	Finished  bool          `json:"finished,omitempty"`
	Discarded bool          `json:"discarded,omitempty"`
	Error     string        `json:"error,omitempty"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := r.URL.Query().Get("message")

	controller, err := h.chatSvc.Controller(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	if userMessage == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	if err := h.HandleStreamRequest(r.Context(), w, controller, userMessage); err != nil {
		h.logger.Warn("stream closed early", zap.String("session", sessionID), zap.Error(err))
	}
}

// HandleStreamRequest submits userMessage and relays the turn as SSE events:
// start, delta per fragment, then message and end, or error and end. A session
// discarded mid-turn ends with a discarded end event.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, controller *chatService.Controller, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return errors.New("streaming unsupported")
	}

	queue := utils.NewQueue[chatService.Event]()
	unsubscribe := controller.Subscribe(queue.Push)
	defer unsubscribe()

	sessionID := controller.Snapshot().SessionID
	utils.SetupSSEHeaders(w)

	if !controller.Submit(userMessage) {
		accepted := false
		return utils.SendSSEEvent(w, flusher, "end", StreamResponse{
			SessionID: sessionID,
			Accepted:  &accepted,
			Finished:  true,
		})
	}

	accepted := true
	if err := utils.SendSSEEvent(w, flusher, "start", StreamResponse{
		SessionID: sessionID,
		Mentor:    controller.Mentor().Name,
		Accepted:  &accepted,
	}); err != nil {
		return err
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// 客户端断开，本轮仍由控制器完成
			return ctx.Err()
		case t := <-ticker.C:
			if err := utils.SendSSEEvent(w, flusher, "heartbeat", map[string]string{
				"time": t.UTC().Format(time.RFC3339),
			}); err != nil {
				return err
			}
		case <-queue.Ready():
			for _, ev := range queue.Drain() {
				done, err := h.relay(w, flusher, sessionID, ev)
				if err != nil || done {
					return err
				}
			}
		}
	}
}

func (h *Handler) relay(w http.ResponseWriter, flusher http.Flusher, sessionID string, ev chatService.Event) (bool, error) {
	switch ev.Kind {
	case chatService.EventFragment:
		return false, utils.SendSSEEvent(w, flusher, "delta", StreamResponse{
			SessionID: sessionID,
			Content:   ev.Fragment,
		})
	case chatService.EventSettled:
		msg := ev.Message
		if err := utils.SendSSEEvent(w, flusher, "message", StreamResponse{SessionID: sessionID, Message: &msg}); err != nil {
			return true, err
		}
	case chatService.EventFailed:
		msg := ev.Message
		if err := utils.SendSSEEvent(w, flusher, "error", StreamResponse{
			SessionID: sessionID,
			Message:   &msg,
			Error:     msg.Content,
		}); err != nil {
			return true, err
		}
	case chatService.EventDiscarded:
		// 会话被丢弃，本轮不会再有结果
		return true, utils.SendSSEEvent(w, flusher, "end", StreamResponse{
			SessionID: sessionID,
			Finished:  true,
			Discarded: true,
		})
	default:
		return false, nil
	}

	return true, utils.SendSSEEvent(w, flusher, "end", StreamResponse{SessionID: sessionID, Finished: true})
}

package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chatService "github.com/zhouzirui/startup-mentor/backend/internal/service/chat"
	"github.com/zhouzirui/startup-mentor/backend/pkg/utils"
)

// Handler 聊天会话的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	logger  *zap.Logger
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatSvc: chatSvc,
		logger:  logger,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetTranscript)
		r.Delete("/", h.handleDiscardSession)
		r.Put("/draft", h.handleSetDraft)
		r.Post("/messages", h.handleSubmit)
		r.Post("/dossier", h.handleDossier)
	})
}

// handleCreateSession 创建会话，旧会话随之丢弃
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		MentorID string `json:"mentorId"`
	}

	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.MentorID)
	switch {
	case errors.Is(err, chatService.ErrMentorRequired):
		utils.RespondError(w, http.StatusBadRequest, "mentorId is required")
		return
	case errors.Is(err, chatService.ErrMentorNotFound):
		utils.RespondError(w, http.StatusBadRequest, "mentor not found")
		return
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, transcript)
}

func (h *Handler) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.DiscardSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetDraft(w http.ResponseWriter, r *http.Request) {
	controller, err := h.chatSvc.Controller(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	controller.SetDraft(payload.Text)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"draftInput": controller.Draft()})
}

// handleSubmit 提交一轮对话。被拒绝的输入不是错误，返回 accepted=false。
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	controller, err := h.chatSvc.Controller(sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accepted := controller.Submit(payload.Text)
	h.logger.Debug("submit", zap.String("session", sessionID), zap.Bool("accepted", accepted))
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"accepted": accepted})
}

// handleDossier 生成一次性结构化导师报告
func (h *Handler) handleDossier(w http.ResponseWriter, r *http.Request) {
	controller, err := h.chatSvc.Controller(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var payload struct {
		Idea string `json:"idea"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dossier, err := controller.RequestDossier(r.Context(), payload.Idea)
	if err != nil {
		var genErr *chatService.GenerationError
		if errors.As(err, &genErr) {
			utils.RespondError(w, http.StatusBadGateway, genErr.Notice)
			return
		}
		utils.RespondError(w, http.StatusBadGateway, chatService.GenerationFallbackNotice)
		return
	}
	utils.RespondJSON(w, http.StatusOK, dossier)
}

func respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}

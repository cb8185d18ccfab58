package mentor

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
	"github.com/zhouzirui/startup-mentor/backend/pkg/utils"
)

// Handler 导师目录的HTTP处理器
type Handler struct {
	mentors mentor.Store
}

// New 创建导师处理器
func New(mentors mentor.Store) *Handler {
	return &Handler{mentors: mentors}
}

// RegisterRoutes 注册导师相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/mentors", h.handleListMentors)
	r.Get("/mentors/{mentorID}", h.handleGetMentor)
}

// handleListMentors 列出或搜索导师，q 为空时返回全部
func (h *Handler) handleListMentors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	utils.RespondJSON(w, http.StatusOK, h.mentors.Search(query))
}

func (h *Handler) handleGetMentor(w http.ResponseWriter, r *http.Request) {
	m, ok := h.mentors.FindByID(chi.URLParam(r, "mentorID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "mentor not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, m)
}

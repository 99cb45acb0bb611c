package handler

import (
	"net/http"

	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.coordinator.GetSettings()
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取系统设置成功", settings)
}

func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		LogWebhookURL    string `json:"logWebhookUrl" validate:"omitempty,url"`
		NotifyWebhookURL string `json:"notifyWebhookUrl" validate:"omitempty,url"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	settings, err := h.coordinator.SaveSettings(req.LogWebhookURL, req.NotifyWebhookURL, myInfo)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "Webhook 设置已保存", settings)
}

package handler

import (
	"net/http"

	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户列表成功", users)
}

// ResetUserPIN 管理员为某个用户重设 PIN
func (h *Handler) ResetUserPIN(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	target := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		PIN string `json:"pin" validate:"required,len=4,numeric"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.coordinator.ResetUserPIN(target.ID, req.PIN, myInfo); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "PIN 已重设", nil)
}

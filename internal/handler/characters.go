package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取个人信息成功", myInfo)
}

func (h *Handler) AddCharacter(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Name  string `json:"name" validate:"required"`
		Class string `json:"class" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	class := domain.ClassID(req.Class)
	if !class.IsValid() {
		h.errorResponse(w, r, "未知的职业")
		return
	}

	user, err := h.coordinator.AddCharacter(myInfo.ID, req.Name, class, myInfo)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "角色已新增", user)
}

func (h *Handler) RenameCharacter(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.errorResponse(w, r, "无效的角色序号")
		return
	}

	var req struct {
		Name string `json:"name" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.coordinator.RenameCharacter(myInfo.ID, index, req.Name, myInfo)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "角色名称已更新", user)
}

func (h *Handler) RemoveCharacter(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	// 角色名称可能包含非 ASCII 字符
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		h.errorResponse(w, r, "无效的角色名称")
		return
	}

	user, err := h.coordinator.RemoveCharacter(myInfo.ID, name, myInfo)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "角色已删除", user)
}

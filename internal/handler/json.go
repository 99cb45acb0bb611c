package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "服务器内部错误",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

// domainError 把业务错误翻译为用户可读的消息，
// 至少要让用户能区分「没有权限」「已被占用」和「不存在」
func (h *Handler) domainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		h.errorResponse(w, r, "输入无效")
	case errors.Is(err, domain.ErrNotFound):
		h.errorResponse(w, r, "目标不存在")
	case errors.Is(err, domain.ErrForbidden):
		h.errorResponse(w, r, "没有权限执行此操作")
	case errors.Is(err, domain.ErrAlreadyMember):
		h.errorResponse(w, r, "您已经在这个组队中了 (一人一角)")
	case errors.Is(err, domain.ErrSlotTaken):
		h.errorResponse(w, r, "该位置已被占用")
	case errors.Is(err, domain.ErrSlotEmpty):
		h.errorResponse(w, r, "该位置是空的")
	case errors.Is(err, domain.ErrPartyClosed):
		h.errorResponse(w, r, "该组队已封存，无法再修改")
	case errors.Is(err, domain.ErrConflict):
		h.errorResponse(w, r, "操作冲突，请重试")
	default:
		h.internalServerError(w, r, err)
	}
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

func (h *Handler) partyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "组队ID无效")
		return 0, false
	}
	return id, true
}

// slotPosition 从 URL 中解析小队和位置序号
func (h *Handler) slotPosition(w http.ResponseWriter, r *http.Request) (domain.TeamKey, int, bool) {
	teamKey := domain.TeamKey(chi.URLParam(r, "team"))
	if teamKey != domain.TeamKey1 && teamKey != domain.TeamKey2 {
		h.errorResponse(w, r, "无效的小队")
		return "", 0, false
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.errorResponse(w, r, "无效的位置序号")
		return "", 0, false
	}

	return teamKey, index, true
}

func (h *Handler) CreateParty(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		ScheduledTime string `json:"scheduledTime" validate:"required"`
		EstimatedRuns string `json:"estimatedRuns" validate:"required,numeric"`
		IsTwoTeams    bool   `json:"isTwoTeams"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	party, err := h.coordinator.CreateParty(myInfo, req.ScheduledTime, req.EstimatedRuns, req.IsTwoTeams)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "组队创建成功", party)
}

func (h *Handler) ListOpenParties(w http.ResponseWriter, r *http.Request) {
	parties, err := h.coordinator.ListOpenParties()
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取组队列表成功", parties)
}

func (h *Handler) DeleteParty(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	id, ok := h.partyID(w, r)
	if !ok {
		return
	}

	if err := h.coordinator.DeleteParty(id, myInfo); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "组队已删除", nil)
}

func (h *Handler) CompleteParty(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	id, ok := h.partyID(w, r)
	if !ok {
		return
	}

	party, record, err := h.coordinator.CompleteParty(id, myInfo)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "组队已完成并封存", map[string]any{
		"party":  party,
		"record": record,
	})
}

func (h *Handler) ClaimSlot(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	id, ok := h.partyID(w, r)
	if !ok {
		return
	}

	teamKey, index, ok := h.slotPosition(w, r)
	if !ok {
		return
	}

	var req struct {
		CharacterIndex *int `json:"characterIndex" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 出战角色必须是自己角色库中的一个
	if *req.CharacterIndex < 0 || *req.CharacterIndex >= len(myInfo.Characters) {
		h.errorResponse(w, r, "请先选择一个有效的角色")
		return
	}
	char := myInfo.Characters[*req.CharacterIndex]

	party, err := h.coordinator.ClaimSlot(id, teamKey, index, myInfo, char)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "加入成功", party)
}

func (h *Handler) ReleaseSlot(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	id, ok := h.partyID(w, r)
	if !ok {
		return
	}

	teamKey, index, ok := h.slotPosition(w, r)
	if !ok {
		return
	}

	party, err := h.coordinator.ReleaseSlot(id, teamKey, index, myInfo)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "已离开位置", party)
}

func (h *Handler) ListCompletionRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.coordinator.ListCompletionRecords()
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取通关记录成功", records)
}

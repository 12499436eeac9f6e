package handler

import (
	"net/http"

	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/service"
)

// ChecklistHandler はプロジェクト内チェックリストの HTTP ハンドラ
type ChecklistHandler struct {
	svc service.ChecklistService
}

// NewChecklistHandler は ChecklistHandler を生成する
func NewChecklistHandler(svc service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{svc: svc}
}

// Update は PATCH /api/projects/{id}/checklist/{itemId} を処理する
func (h *ChecklistHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	version, ok := expectedVersion(w, r)
	if !ok {
		return
	}
	var patch model.ChecklistPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	p, err := h.svc.UpdateItem(r.Context(), actor, r.PathValue("id"), r.PathValue("itemId"), patch, version)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeProject(w, http.StatusOK, p)
}

// Add は POST /api/pm/projects/{id}/checklist を処理する
func (h *ChecklistHandler) Add(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	version, ok := expectedVersion(w, r)
	if !ok {
		return
	}
	var item model.ChecklistItem
	if !decodeJSON(w, r, &item) {
		return
	}
	p, err := h.svc.AddItem(r.Context(), actor, r.PathValue("id"), item, version)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeProject(w, http.StatusCreated, p)
}

// Delete は DELETE /api/pm/projects/{id}/checklist/{itemId} を処理する
func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	version, ok := expectedVersion(w, r)
	if !ok {
		return
	}
	p, err := h.svc.DeleteItem(r.Context(), actor, r.PathValue("id"), r.PathValue("itemId"), version)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeProject(w, http.StatusOK, p)
}

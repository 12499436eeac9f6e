package handler

import (
	"net/http"
	"strconv"

	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/service"
)

// ProjectHandler はプロジェクトとステージ遷移の HTTP ハンドラ
type ProjectHandler struct {
	projectService service.ProjectService
}

// NewProjectHandler は ProjectHandler を生成する
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Create は POST /api/projects を処理する（ステージ6→7）
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var answers model.OnboardingAnswers
	if !decodeJSON(w, r, &answers) {
		return
	}
	p, err := h.projectService.Create(r.Context(), actor, answers)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeProject(w, http.StatusCreated, p)
}

// Get は GET /api/projects/{id} を処理する
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	p, err := h.projectService.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeProject(w, http.StatusOK, p)
}

// MyProjects は GET /api/me/projects を処理する。PM には担当案件を返す
func (h *ProjectHandler) MyProjects(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	projects, err := h.projectService.ListMine(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// AdminList は GET /api/admin/projects?status=&pm_id=&limit=&offset= を処理する
func (h *ProjectHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := model.ProjectFilter{
		Status: model.ProjectStatus(q.Get("status")),
		PMID:   q.Get("pm_id"),
		Limit:  50,
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n <= 200 {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n >= 0 {
		filter.Offset = n
	}
	projects, err := h.projectService.ListAll(r.Context(), actor, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

type transitionRequest struct {
	Stage    int  `json:"stage"`
	Announce bool `json:"announce"`
}

// Advance は POST /api/pm/projects/{id}/advance を処理する
func (h *ProjectHandler) Advance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	version, ok := expectedVersion(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.projectService.Advance(r.Context(), actor, r.PathValue("id"), service.TransitionOptions{
		Announce:        req.Announce,
		ExpectedVersion: version,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeProject(w, http.StatusOK, p)
}

// SetStage は PUT /api/pm/projects/{id}/stage を処理する
func (h *ProjectHandler) SetStage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	version, ok := expectedVersion(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Stage == 0 {
		writeError(w, http.StatusBadRequest, "stage_required", false)
		return
	}
	p, err := h.projectService.SetStage(r.Context(), actor, r.PathValue("id"), req.Stage, service.TransitionOptions{
		Announce:        req.Announce,
		ExpectedVersion: version,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeProject(w, http.StatusOK, p)
}

// Cancel は POST /api/projects/{id}/cancel を処理する
func (h *ProjectHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	version, ok := expectedVersion(w, r)
	if !ok {
		return
	}
	p, err := h.projectService.Cancel(r.Context(), actor, r.PathValue("id"), service.TransitionOptions{ExpectedVersion: version})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeProject(w, http.StatusOK, p)
}

// Events は GET /api/projects/{id}/events を処理する
func (h *ProjectHandler) Events(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	events, err := h.projectService.Events(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []*model.StageEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

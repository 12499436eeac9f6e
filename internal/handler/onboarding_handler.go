package handler

import (
	"net/http"

	"github.com/storefront/backend/internal/estimate"
	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/service"
	"github.com/storefront/backend/internal/stage"
)

// OnboardingHandler serves the stateless customer stages 1 to 6 and the
// stage catalog.
type OnboardingHandler struct {
	estimates service.EstimateService
}

// NewOnboardingHandler は OnboardingHandler を生成する
func NewOnboardingHandler(estimates service.EstimateService) *OnboardingHandler {
	return &OnboardingHandler{estimates: estimates}
}

type onboardingAdvanceRequest struct {
	Step    int                     `json:"step"`
	Answers model.OnboardingAnswers `json:"answers"`
}

// Advance は POST /api/onboarding/advance を処理する。
// 次のステップを返す。6 からの遷移はプロジェクト作成 (POST /api/projects) で行う
func (h *OnboardingHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req onboardingAdvanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Step == stage.LastOnboarding {
		if err := stage.ValidateComplete(req.Answers); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"step": stage.LastOnboarding, "ready": true})
		return
	}
	next, err := stage.NextOnboardingStep(req.Step, req.Answers)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"step": next, "ready": false})
}

// Estimate は POST /api/onboarding/estimate を処理する（ステージ6のプレビュー）
func (h *OnboardingHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req estimate.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	est, err := h.estimates.Estimate(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

type stageResponse struct {
	Step        int    `json:"step"`
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Delivery    bool   `json:"delivery"`
}

// Stages は GET /api/stages を処理する
func (h *OnboardingHandler) Stages(w http.ResponseWriter, r *http.Request) {
	all := stage.All()
	out := make([]stageResponse, 0, len(all))
	for _, s := range all {
		out = append(out, stageResponse{
			Step:        s.Step,
			Key:         s.Key,
			Label:       s.Label,
			Description: s.Description,
			Delivery:    stage.IsDelivery(s.Step),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ChecklistTemplate は GET /api/checklist-template を処理する（ステージ5の自己診断用）
func (h *OnboardingHandler) ChecklistTemplate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stage.ChecklistTemplate())
}

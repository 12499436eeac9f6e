package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/service"
	"github.com/storefront/backend/internal/stage"
)

func TestProjectHandler_Create(t *testing.T) {
	var got model.OnboardingAnswers
	mock := &mockProjectService{
		createFunc: func(_ context.Context, actor model.Actor, answers model.OnboardingAnswers) (*model.Project, error) {
			got = answers
			return &model.Project{ID: "proj-1", CustomerID: actor.UserID, CurrentStep: 7, Version: 1}, nil
		},
	}
	h := NewProjectHandler(mock)

	body := `{"business_category":"카페","location_district":"강남구","store_size":33,"store_floor":"ground"}`
	req := asActor(jsonRequest(http.MethodPost, "/api/projects", body), testCustomer)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `"1"`, rec.Header().Get("ETag"))
	assert.Equal(t, "카페", got.BusinessCategory)
	assert.Equal(t, model.FloorGround, got.StoreFloor)

	var p model.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 7, p.CurrentStep)
	assert.Equal(t, "cust-1", p.CustomerID)
}

func TestProjectHandler_Create_NoPMIsRetryable(t *testing.T) {
	mock := &mockProjectService{
		createFunc: func(context.Context, model.Actor, model.OnboardingAnswers) (*model.Project, error) {
			return nil, service.ErrNoPMAvailable
		},
	}
	h := NewProjectHandler(mock)

	rec := httptest.NewRecorder()
	h.Create(rec, asActor(jsonRequest(http.MethodPost, "/api/projects", `{}`), testCustomer))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no_pm_available", resp.Error)
	assert.True(t, resp.Retryable)
}

func TestProjectHandler_Create_Unauthenticated(t *testing.T) {
	called := false
	mock := &mockProjectService{
		createFunc: func(context.Context, model.Actor, model.OnboardingAnswers) (*model.Project, error) {
			called = true
			return nil, nil
		},
	}
	h := NewProjectHandler(mock)

	rec := httptest.NewRecorder()
	h.Create(rec, jsonRequest(http.MethodPost, "/api/projects", `{}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestProjectHandler_Get(t *testing.T) {
	mock := &mockProjectService{
		getFunc: func(_ context.Context, _ model.Actor, id string) (*model.Project, error) {
			if id != "proj-1" {
				return nil, service.ErrNotFound
			}
			return &model.Project{ID: id, Version: 4}, nil
		},
	}
	h := NewProjectHandler(mock)

	req := asActor(httptest.NewRequest(http.MethodGet, "/api/projects/proj-1", nil), testCustomer)
	req.SetPathValue("id", "proj-1")
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"4"`, rec.Header().Get("ETag"))

	req = asActor(httptest.NewRequest(http.MethodGet, "/api/projects/nope", nil), testCustomer)
	req.SetPathValue("id", "nope")
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectHandler_MyProjects_EmptyIsArray(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{})

	rec := httptest.NewRecorder()
	h.MyProjects(rec, asActor(httptest.NewRequest(http.MethodGet, "/api/me/projects", nil), testPM))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestProjectHandler_AdminList_Filter(t *testing.T) {
	var got model.ProjectFilter
	mock := &mockProjectService{
		listAllFunc: func(_ context.Context, _ model.Actor, filter model.ProjectFilter) ([]*model.Project, error) {
			got = filter
			return []*model.Project{{ID: "p1"}}, nil
		},
	}
	h := NewProjectHandler(mock)

	req := asActor(httptest.NewRequest(http.MethodGet, "/api/admin/projects?status=IN_PROGRESS&pm_id=pm-1&limit=500&offset=20", nil), testAdmin)
	rec := httptest.NewRecorder()
	h.AdminList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ProjectStatus("IN_PROGRESS"), got.Status)
	assert.Equal(t, "pm-1", got.PMID)
	assert.Equal(t, 50, got.Limit, "out-of-range limit falls back to the default")
	assert.Equal(t, 20, got.Offset)
}

func TestProjectHandler_Advance_PassesIfMatch(t *testing.T) {
	var gotOpts service.TransitionOptions
	mock := &mockProjectService{
		advanceFunc: func(_ context.Context, _ model.Actor, id string, opts service.TransitionOptions) (*model.Project, error) {
			gotOpts = opts
			return &model.Project{ID: id, CurrentStep: 9, Version: 6}, nil
		},
	}
	h := NewProjectHandler(mock)

	req := asActor(jsonRequest(http.MethodPost, "/api/pm/projects/proj-1/advance", `{"announce":true}`), testPM)
	req.SetPathValue("id", "proj-1")
	req.Header.Set("If-Match", `"5"`)
	rec := httptest.NewRecorder()
	h.Advance(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), gotOpts.ExpectedVersion)
	assert.True(t, gotOpts.Announce)
	assert.Equal(t, `"6"`, rec.Header().Get("ETag"))
}

func TestProjectHandler_Advance_EmptyBodyAllowed(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{})

	req := asActor(httptest.NewRequest(http.MethodPost, "/api/pm/projects/proj-1/advance", nil), testPM)
	req.SetPathValue("id", "proj-1")
	rec := httptest.NewRecorder()
	h.Advance(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProjectHandler_Advance_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"stale version", service.ErrConflict, http.StatusConflict, "version_conflict"},
		{"cancelled", stage.ErrProjectCancelled, http.StatusConflict, "project_cancelled"},
		{"not the assigned PM", service.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"store down", &service.RetryableError{Op: "update project", Err: errors.New("boom")}, http.StatusServiceUnavailable, "store_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockProjectService{
				advanceFunc: func(context.Context, model.Actor, string, service.TransitionOptions) (*model.Project, error) {
					return nil, tt.err
				},
			}
			h := NewProjectHandler(mock)

			req := asActor(jsonRequest(http.MethodPost, "/api/pm/projects/proj-1/advance", `{}`), testPM)
			req.SetPathValue("id", "proj-1")
			rec := httptest.NewRecorder()
			h.Advance(rec, req)

			require.Equal(t, tt.status, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
		})
	}
}

func TestProjectHandler_Advance_BadIfMatch(t *testing.T) {
	called := false
	mock := &mockProjectService{
		advanceFunc: func(context.Context, model.Actor, string, service.TransitionOptions) (*model.Project, error) {
			called = true
			return nil, nil
		},
	}
	h := NewProjectHandler(mock)

	req := asActor(jsonRequest(http.MethodPost, "/api/pm/projects/proj-1/advance", `{}`), testPM)
	req.Header.Set("If-Match", "abc")
	rec := httptest.NewRecorder()
	h.Advance(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}

func TestProjectHandler_SetStage(t *testing.T) {
	var gotTarget int
	mock := &mockProjectService{
		setStageFunc: func(_ context.Context, _ model.Actor, id string, target int, _ service.TransitionOptions) (*model.Project, error) {
			gotTarget = target
			return &model.Project{ID: id, CurrentStep: target, Version: 2}, nil
		},
	}
	h := NewProjectHandler(mock)

	req := asActor(jsonRequest(http.MethodPut, "/api/pm/projects/proj-1/stage", `{"stage":10}`), testPM)
	req.SetPathValue("id", "proj-1")
	rec := httptest.NewRecorder()
	h.SetStage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, gotTarget)
}

func TestProjectHandler_SetStage_StageRequired(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{})

	req := asActor(jsonRequest(http.MethodPut, "/api/pm/projects/proj-1/stage", `{"announce":true}`), testPM)
	req.SetPathValue("id", "proj-1")
	rec := httptest.NewRecorder()
	h.SetStage(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "stage_required")
}

func TestProjectHandler_SetStage_InvalidTarget(t *testing.T) {
	mock := &mockProjectService{
		setStageFunc: func(context.Context, model.Actor, string, int, service.TransitionOptions) (*model.Project, error) {
			return nil, stage.ErrInvalidStage
		},
	}
	h := NewProjectHandler(mock)

	req := asActor(jsonRequest(http.MethodPut, "/api/pm/projects/proj-1/stage", `{"stage":3}`), testPM)
	req.SetPathValue("id", "proj-1")
	rec := httptest.NewRecorder()
	h.SetStage(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_stage")
}

func TestProjectHandler_Cancel(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{})

	req := asActor(httptest.NewRequest(http.MethodPost, "/api/projects/proj-1/cancel", nil), testCustomer)
	req.SetPathValue("id", "proj-1")
	rec := httptest.NewRecorder()
	h.Cancel(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var p model.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, model.StatusCancelled, p.Status)
}

func TestProjectHandler_Events(t *testing.T) {
	mock := &mockProjectService{
		eventsFunc: func(_ context.Context, _ model.Actor, id string) ([]*model.StageEvent, error) {
			return []*model.StageEvent{{ProjectID: id, FromStep: 7, ToStep: 8}}, nil
		},
	}
	h := NewProjectHandler(mock)

	req := asActor(httptest.NewRequest(http.MethodGet, "/api/projects/proj-1/events", nil), testPM)
	req.SetPathValue("id", "proj-1")
	rec := httptest.NewRecorder()
	h.Events(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var events []model.StageEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, 8, events[0].ToStep)
}

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/repository"
	"github.com/storefront/backend/internal/service"
)

// UserFinder loads the current user.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// MeHandler は現在のユーザー情報を返すハンドラ
type MeHandler struct {
	users UserFinder
}

// NewMeHandler は MeHandler を生成する
func NewMeHandler(users UserFinder) *MeHandler {
	return &MeHandler{users: users}
}

// Me は GET /api/me を処理する
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	user, err := h.users.FindByID(r.Context(), actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = service.ErrNotFound
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

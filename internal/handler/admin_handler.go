package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/service"
)

const maxImportSize = 5 << 20 // 5 MB

// AdminHandler は管理者向け（PM・提携業者・基準単価・ユーザー）の HTTP ハンドラ
type AdminHandler struct {
	pms       service.PMService
	vendors   service.VendorService
	standards service.CostStandardService
	users     service.AdminUserService
}

// NewAdminHandler は AdminHandler を生成する
func NewAdminHandler(pms service.PMService, vendors service.VendorService, standards service.CostStandardService, users service.AdminUserService) *AdminHandler {
	return &AdminHandler{pms: pms, vendors: vendors, standards: standards, users: users}
}

// ---------------------------------------------------------------------------
// PMs
// ---------------------------------------------------------------------------

// ListPMs は GET /api/admin/pms を処理する
func (h *AdminHandler) ListPMs(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	pms, err := h.pms.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if pms == nil {
		pms = []*model.ProjectManager{}
	}
	writeJSON(w, http.StatusOK, pms)
}

// CreatePM は POST /api/admin/pms を処理する
func (h *AdminHandler) CreatePM(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var pm model.ProjectManager
	if !decodeJSON(w, r, &pm) {
		return
	}
	created, err := h.pms.Create(r.Context(), actor, &pm)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdatePM は PATCH /api/admin/pms/{id} を処理する
func (h *AdminHandler) UpdatePM(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var patch model.ProjectManagerPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	pm, err := h.pms.Update(r.Context(), actor, r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pm)
}

// ---------------------------------------------------------------------------
// Vendors
// ---------------------------------------------------------------------------

// ListVendors は GET /api/vendors?category= を処理する（PM・管理者）
func (h *AdminHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	vendors, err := h.vendors.List(r.Context(), actor, r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if vendors == nil {
		vendors = []*model.Vendor{}
	}
	writeJSON(w, http.StatusOK, vendors)
}

// CreateVendor は POST /api/admin/vendors を処理する
func (h *AdminHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var v model.Vendor
	if !decodeJSON(w, r, &v) {
		return
	}
	created, err := h.vendors.Create(r.Context(), actor, &v)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateVendor は PUT /api/admin/vendors/{id} を処理する
func (h *AdminHandler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var v model.Vendor
	if !decodeJSON(w, r, &v) {
		return
	}
	updated, err := h.vendors.Update(r.Context(), actor, r.PathValue("id"), &v)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ---------------------------------------------------------------------------
// Cost standards
// ---------------------------------------------------------------------------

// ListCostStandards は GET /api/admin/cost-standards?category=&district= を処理する
func (h *AdminHandler) ListCostStandards(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	rows, err := h.standards.List(r.Context(), actor, model.CostStandardFilter{
		BusinessCategory: q.Get("category"),
		LocationDistrict: q.Get("district"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if rows == nil {
		rows = []*model.CostStandard{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// CreateCostStandard は POST /api/admin/cost-standards を処理する
func (h *AdminHandler) CreateCostStandard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var cs model.CostStandard
	if !decodeJSON(w, r, &cs) {
		return
	}
	created, err := h.standards.Create(r.Context(), actor, &cs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateCostStandard は PUT /api/admin/cost-standards/{id} を処理する
func (h *AdminHandler) UpdateCostStandard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var cs model.CostStandard
	if !decodeJSON(w, r, &cs) {
		return
	}
	updated, err := h.standards.Update(r.Context(), actor, r.PathValue("id"), &cs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteCostStandard は DELETE /api/admin/cost-standards/{id} を処理する
func (h *AdminHandler) DeleteCostStandard(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if err := h.standards.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportCostStandards は POST /api/admin/cost-standards/import を処理する。
// multipart の file フィールドに .xlsx を受け取り、全件を置き換える
func (h *AdminHandler) ImportCostStandards(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize+maxJSONBody)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "file_too_large", false)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file_required", false)
		return
	}
	defer file.Close()

	n, err := h.standards.Import(r.Context(), actor, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

// ExportCostStandards は GET /api/admin/cost-standards/export を処理する
func (h *AdminHandler) ExportCostStandards(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.standards.Export(r.Context(), actor, &buf); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="cost_standards.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// ListUsers は GET /api/admin/users?role=&limit=&offset= を処理する
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	users, err := h.users.ListUsers(r.Context(), actor, model.Role(q.Get("role")), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// SuspendUser は PATCH /api/admin/users/{id}/suspend を処理する
func (h *AdminHandler) SuspendUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req struct {
		Suspend *bool `json:"suspend"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Suspend == nil {
		writeError(w, http.StatusBadRequest, "suspend_required", false)
		return
	}
	if err := h.users.SuspendUser(r.Context(), actor, r.PathValue("id"), *req.Suspend); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"suspended": *req.Suspend})
}

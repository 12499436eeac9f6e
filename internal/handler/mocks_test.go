package handler

import (
	"context"
	"io"

	"github.com/storefront/backend/internal/estimate"
	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/service"
)

// ---------------------------------------------------------------------------
// Mock ProjectService
// ---------------------------------------------------------------------------

type mockProjectService struct {
	createFunc   func(ctx context.Context, actor model.Actor, answers model.OnboardingAnswers) (*model.Project, error)
	getFunc      func(ctx context.Context, actor model.Actor, id string) (*model.Project, error)
	listMineFunc func(ctx context.Context, actor model.Actor) ([]*model.Project, error)
	listAllFunc  func(ctx context.Context, actor model.Actor, filter model.ProjectFilter) ([]*model.Project, error)
	advanceFunc  func(ctx context.Context, actor model.Actor, id string, opts service.TransitionOptions) (*model.Project, error)
	setStageFunc func(ctx context.Context, actor model.Actor, id string, target int, opts service.TransitionOptions) (*model.Project, error)
	cancelFunc   func(ctx context.Context, actor model.Actor, id string, opts service.TransitionOptions) (*model.Project, error)
	eventsFunc   func(ctx context.Context, actor model.Actor, id string) ([]*model.StageEvent, error)
}

func (m *mockProjectService) Create(ctx context.Context, actor model.Actor, answers model.OnboardingAnswers) (*model.Project, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, actor, answers)
	}
	return &model.Project{ID: "proj-1", Version: 1}, nil
}
func (m *mockProjectService) Get(ctx context.Context, actor model.Actor, id string) (*model.Project, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, actor, id)
	}
	return nil, service.ErrNotFound
}
func (m *mockProjectService) ListMine(ctx context.Context, actor model.Actor) ([]*model.Project, error) {
	if m.listMineFunc != nil {
		return m.listMineFunc(ctx, actor)
	}
	return nil, nil
}
func (m *mockProjectService) ListAll(ctx context.Context, actor model.Actor, filter model.ProjectFilter) ([]*model.Project, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx, actor, filter)
	}
	return nil, nil
}
func (m *mockProjectService) Advance(ctx context.Context, actor model.Actor, id string, opts service.TransitionOptions) (*model.Project, error) {
	if m.advanceFunc != nil {
		return m.advanceFunc(ctx, actor, id, opts)
	}
	return &model.Project{ID: id}, nil
}
func (m *mockProjectService) SetStage(ctx context.Context, actor model.Actor, id string, target int, opts service.TransitionOptions) (*model.Project, error) {
	if m.setStageFunc != nil {
		return m.setStageFunc(ctx, actor, id, target, opts)
	}
	return &model.Project{ID: id, CurrentStep: target}, nil
}
func (m *mockProjectService) Cancel(ctx context.Context, actor model.Actor, id string, opts service.TransitionOptions) (*model.Project, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, actor, id, opts)
	}
	return &model.Project{ID: id, Status: model.StatusCancelled}, nil
}
func (m *mockProjectService) Events(ctx context.Context, actor model.Actor, id string) ([]*model.StageEvent, error) {
	if m.eventsFunc != nil {
		return m.eventsFunc(ctx, actor, id)
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Mock ChecklistService
// ---------------------------------------------------------------------------

type mockChecklistService struct {
	updateFunc func(ctx context.Context, actor model.Actor, projectID, itemID string, patch model.ChecklistPatch, version int64) (*model.Project, error)
	addFunc    func(ctx context.Context, actor model.Actor, projectID string, item model.ChecklistItem, version int64) (*model.Project, error)
	deleteFunc func(ctx context.Context, actor model.Actor, projectID, itemID string, version int64) (*model.Project, error)
}

func (m *mockChecklistService) UpdateItem(ctx context.Context, actor model.Actor, projectID, itemID string, patch model.ChecklistPatch, version int64) (*model.Project, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, actor, projectID, itemID, patch, version)
	}
	return &model.Project{ID: projectID}, nil
}
func (m *mockChecklistService) AddItem(ctx context.Context, actor model.Actor, projectID string, item model.ChecklistItem, version int64) (*model.Project, error) {
	if m.addFunc != nil {
		return m.addFunc(ctx, actor, projectID, item, version)
	}
	return &model.Project{ID: projectID}, nil
}
func (m *mockChecklistService) DeleteItem(ctx context.Context, actor model.Actor, projectID, itemID string, version int64) (*model.Project, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, actor, projectID, itemID, version)
	}
	return &model.Project{ID: projectID}, nil
}

// ---------------------------------------------------------------------------
// Mock MessageService
// ---------------------------------------------------------------------------

type mockMessageService struct {
	sendFunc   func(ctx context.Context, actor model.Actor, projectID string, in service.SendInput) (*model.Message, error)
	listFunc   func(ctx context.Context, actor model.Actor, projectID string) ([]*model.Message, error)
	streamFunc func(ctx context.Context, actor model.Actor, projectID string) (*service.MessageStream, error)
}

func (m *mockMessageService) Post(context.Context, *model.Message) error { return nil }
func (m *mockMessageService) Send(ctx context.Context, actor model.Actor, projectID string, in service.SendInput) (*model.Message, error) {
	if m.sendFunc != nil {
		return m.sendFunc(ctx, actor, projectID, in)
	}
	return &model.Message{ID: "m1", ProjectID: projectID, Body: in.Body}, nil
}
func (m *mockMessageService) List(ctx context.Context, actor model.Actor, projectID string) ([]*model.Message, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, actor, projectID)
	}
	return nil, nil
}
func (m *mockMessageService) Stream(ctx context.Context, actor model.Actor, projectID string) (*service.MessageStream, error) {
	if m.streamFunc != nil {
		return m.streamFunc(ctx, actor, projectID)
	}
	return nil, service.ErrForbidden
}

// fakeSubscription is a realtime.Subscription fed by the test.
type fakeSubscription struct {
	ch chan *model.Message
}

func (f *fakeSubscription) Messages() <-chan *model.Message { return f.ch }
func (f *fakeSubscription) Close() error                    { return nil }

// ---------------------------------------------------------------------------
// Mock EstimateService
// ---------------------------------------------------------------------------

type mockEstimateService struct {
	estimateFunc func(ctx context.Context, req estimate.Request) (*model.CostEstimate, error)
}

func (m *mockEstimateService) Estimate(ctx context.Context, req estimate.Request) (*model.CostEstimate, error) {
	if m.estimateFunc != nil {
		return m.estimateFunc(ctx, req)
	}
	return &model.CostEstimate{}, nil
}

// ---------------------------------------------------------------------------
// Mock admin services
// ---------------------------------------------------------------------------

type mockPMService struct {
	listFunc   func(ctx context.Context, actor model.Actor) ([]*model.ProjectManager, error)
	createFunc func(ctx context.Context, actor model.Actor, pm *model.ProjectManager) (*model.ProjectManager, error)
	updateFunc func(ctx context.Context, actor model.Actor, id string, patch model.ProjectManagerPatch) (*model.ProjectManager, error)
}

func (m *mockPMService) List(ctx context.Context, actor model.Actor) ([]*model.ProjectManager, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, actor)
	}
	return nil, nil
}
func (m *mockPMService) Create(ctx context.Context, actor model.Actor, pm *model.ProjectManager) (*model.ProjectManager, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, actor, pm)
	}
	return pm, nil
}
func (m *mockPMService) Update(ctx context.Context, actor model.Actor, id string, patch model.ProjectManagerPatch) (*model.ProjectManager, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, actor, id, patch)
	}
	return &model.ProjectManager{ID: id}, nil
}

type mockVendorService struct {
	listFunc func(ctx context.Context, actor model.Actor, category string) ([]*model.Vendor, error)
}

func (m *mockVendorService) List(ctx context.Context, actor model.Actor, category string) ([]*model.Vendor, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, actor, category)
	}
	return nil, nil
}
func (m *mockVendorService) Create(_ context.Context, _ model.Actor, v *model.Vendor) (*model.Vendor, error) {
	return v, nil
}
func (m *mockVendorService) Update(_ context.Context, _ model.Actor, id string, v *model.Vendor) (*model.Vendor, error) {
	v.ID = id
	return v, nil
}

type mockCostStandardService struct {
	importFunc func(ctx context.Context, actor model.Actor, r io.Reader) (int, error)
	exportFunc func(ctx context.Context, actor model.Actor, w io.Writer) error
	deleteFunc func(ctx context.Context, actor model.Actor, id string) error
}

func (m *mockCostStandardService) List(context.Context, model.Actor, model.CostStandardFilter) ([]*model.CostStandard, error) {
	return nil, nil
}
func (m *mockCostStandardService) Create(_ context.Context, _ model.Actor, cs *model.CostStandard) (*model.CostStandard, error) {
	return cs, nil
}
func (m *mockCostStandardService) Update(_ context.Context, _ model.Actor, id string, cs *model.CostStandard) (*model.CostStandard, error) {
	cs.ID = id
	return cs, nil
}
func (m *mockCostStandardService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, actor, id)
	}
	return nil
}
func (m *mockCostStandardService) Import(ctx context.Context, actor model.Actor, r io.Reader) (int, error) {
	if m.importFunc != nil {
		return m.importFunc(ctx, actor, r)
	}
	return 0, nil
}
func (m *mockCostStandardService) Export(ctx context.Context, actor model.Actor, w io.Writer) error {
	if m.exportFunc != nil {
		return m.exportFunc(ctx, actor, w)
	}
	return nil
}

type mockAdminUserService struct {
	listUsersFunc func(ctx context.Context, actor model.Actor, role model.Role, limit, offset int) ([]*model.User, error)
	suspendFunc   func(ctx context.Context, actor model.Actor, id string, suspend bool) error
}

func (m *mockAdminUserService) ListUsers(ctx context.Context, actor model.Actor, role model.Role, limit, offset int) ([]*model.User, error) {
	if m.listUsersFunc != nil {
		return m.listUsersFunc(ctx, actor, role, limit, offset)
	}
	return nil, nil
}
func (m *mockAdminUserService) SuspendUser(ctx context.Context, actor model.Actor, id string, suspend bool) error {
	if m.suspendFunc != nil {
		return m.suspendFunc(ctx, actor, id, suspend)
	}
	return nil
}

var (
	testCustomer = model.Actor{UserID: "cust-1", Role: model.RoleCustomer}
	testPM       = model.Actor{UserID: "pm-1", Role: model.RolePM}
	testAdmin    = model.Actor{UserID: "admin-1", Role: model.RoleAdmin}
)

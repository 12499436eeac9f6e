package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/storefront/backend/internal/estimate"
	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/notify"
	"github.com/storefront/backend/internal/realtime"
	"github.com/storefront/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

type mockProjectRepository struct {
	createFunc         func(ctx context.Context, p *model.Project) error
	getByIDFunc        func(ctx context.Context, id string) (*model.Project, error)
	listByCustomerFunc func(ctx context.Context, customerID string) ([]*model.Project, error)
	listFunc           func(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error)
	updateFunc         func(ctx context.Context, p *model.Project, expectedVersion int64) error
}

func (m *mockProjectRepository) Create(ctx context.Context, p *model.Project) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	p.ID = "proj-1"
	p.Version = 1
	return nil
}
func (m *mockProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockProjectRepository) ListByCustomer(ctx context.Context, customerID string) ([]*model.Project, error) {
	if m.listByCustomerFunc != nil {
		return m.listByCustomerFunc(ctx, customerID)
	}
	return nil, nil
}
func (m *mockProjectRepository) List(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}

// Update defaults to a compare-and-set that bumps the version.
func (m *mockProjectRepository) Update(ctx context.Context, p *model.Project, expectedVersion int64) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, p, expectedVersion)
	}
	p.Version = expectedVersion + 1
	return nil
}

type mockPMRepository struct {
	listFunc          func(ctx context.Context) ([]*model.ProjectManager, error)
	listAvailableFunc func(ctx context.Context) ([]model.ProjectManager, error)
	getByIDFunc       func(ctx context.Context, id string) (*model.ProjectManager, error)
	createFunc        func(ctx context.Context, pm *model.ProjectManager) error
	updateFunc        func(ctx context.Context, pm *model.ProjectManager) error
}

func (m *mockPMRepository) List(ctx context.Context) ([]*model.ProjectManager, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}
func (m *mockPMRepository) ListAvailable(ctx context.Context) ([]model.ProjectManager, error) {
	if m.listAvailableFunc != nil {
		return m.listAvailableFunc(ctx)
	}
	return nil, nil
}
func (m *mockPMRepository) GetByID(ctx context.Context, id string) (*model.ProjectManager, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockPMRepository) Create(ctx context.Context, pm *model.ProjectManager) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, pm)
	}
	return nil
}
func (m *mockPMRepository) Update(ctx context.Context, pm *model.ProjectManager) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, pm)
	}
	return nil
}

type mockUserRepository struct {
	findByIDFunc    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFunc func(ctx context.Context, email string) (*model.User, error)
	createFunc      func(ctx context.Context, u *model.User) error
	listByRoleFunc  func(ctx context.Context, role model.Role, limit, offset int) ([]*model.User, error)
	suspendFunc     func(ctx context.Context, id string, suspend bool) error
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, repository.ErrNotFound
}
func (m *mockUserRepository) Create(ctx context.Context, u *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, u)
	}
	return nil
}
func (m *mockUserRepository) ListByRole(ctx context.Context, role model.Role, limit, offset int) ([]*model.User, error) {
	if m.listByRoleFunc != nil {
		return m.listByRoleFunc(ctx, role, limit, offset)
	}
	return nil, nil
}
func (m *mockUserRepository) Suspend(ctx context.Context, id string, suspend bool) error {
	if m.suspendFunc != nil {
		return m.suspendFunc(ctx, id, suspend)
	}
	return nil
}

type mockStageEventRepository struct {
	mu        sync.Mutex
	inserted  []*model.StageEvent
	insertErr error
	listFunc  func(ctx context.Context, projectID string) ([]*model.StageEvent, error)
}

func (m *mockStageEventRepository) Insert(_ context.Context, e *model.StageEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, e)
	return m.insertErr
}
func (m *mockStageEventRepository) ListByProject(ctx context.Context, projectID string) ([]*model.StageEvent, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, projectID)
	}
	return nil, nil
}

type mockVendorRepository struct {
	listFunc    func(ctx context.Context, category string) ([]*model.Vendor, error)
	getByIDFunc func(ctx context.Context, id string) (*model.Vendor, error)
	createFunc  func(ctx context.Context, v *model.Vendor) error
	updateFunc  func(ctx context.Context, v *model.Vendor) error
}

func (m *mockVendorRepository) List(ctx context.Context, category string) ([]*model.Vendor, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, category)
	}
	return nil, nil
}
func (m *mockVendorRepository) GetByID(ctx context.Context, id string) (*model.Vendor, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockVendorRepository) Create(ctx context.Context, v *model.Vendor) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, v)
	}
	return nil
}
func (m *mockVendorRepository) Update(ctx context.Context, v *model.Vendor) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, v)
	}
	return nil
}

type mockMessageRepository struct {
	createFunc        func(ctx context.Context, m *model.Message) error
	listByProjectFunc func(ctx context.Context, projectID string, limit int) ([]*model.Message, error)
}

func (m *mockMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, msg)
	}
	return nil
}
func (m *mockMessageRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]*model.Message, error) {
	if m.listByProjectFunc != nil {
		return m.listByProjectFunc(ctx, projectID, limit)
	}
	return nil, nil
}

type mockCostStandardRepository struct {
	listFunc       func(ctx context.Context, filter model.CostStandardFilter) ([]*model.CostStandard, error)
	createFunc     func(ctx context.Context, s *model.CostStandard) error
	updateFunc     func(ctx context.Context, s *model.CostStandard) error
	deleteFunc     func(ctx context.Context, id string) error
	replaceAllFunc func(ctx context.Context, standards []model.CostStandard) error
}

func (m *mockCostStandardRepository) List(ctx context.Context, filter model.CostStandardFilter) ([]*model.CostStandard, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}
func (m *mockCostStandardRepository) ListForEstimate(context.Context, string, string) ([]model.CostStandard, error) {
	return nil, nil
}
func (m *mockCostStandardRepository) GetByID(context.Context, string) (*model.CostStandard, error) {
	return nil, repository.ErrNotFound
}
func (m *mockCostStandardRepository) Create(ctx context.Context, s *model.CostStandard) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, s)
	}
	return nil
}
func (m *mockCostStandardRepository) Update(ctx context.Context, s *model.CostStandard) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, s)
	}
	return nil
}
func (m *mockCostStandardRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}
func (m *mockCostStandardRepository) ReplaceAll(ctx context.Context, standards []model.CostStandard) error {
	if m.replaceAllFunc != nil {
		return m.replaceAllFunc(ctx, standards)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Collaborators
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

type mockPoster struct {
	mu     sync.Mutex
	posted []*model.Message
	err    error
}

func (m *mockPoster) Post(_ context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, msg)
	return m.err
}

type mockNotifier struct {
	sent []notify.Notification
	err  error
}

func (m *mockNotifier) Notify(_ context.Context, n notify.Notification) error {
	m.sent = append(m.sent, n)
	return m.err
}

type mockInvalidator struct {
	calls int
	err   error
}

func (m *mockInvalidator) Invalidate(context.Context) error {
	m.calls++
	return m.err
}

type mockBroker struct {
	mu           sync.Mutex
	published    []*model.Message
	publishErr   error
	subscribeErr error
	sub          *mockSubscription
}

func (m *mockBroker) Publish(_ context.Context, _ string, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, msg)
	return m.publishErr
}

func (m *mockBroker) Subscribe(context.Context, string) (realtime.Subscription, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}
	return m.sub, nil
}

type mockSubscription struct {
	ch     chan *model.Message
	once   sync.Once
	closed bool
}

func newMockSubscription() *mockSubscription {
	return &mockSubscription{ch: make(chan *model.Message, 8)}
}

func (m *mockSubscription) Messages() <-chan *model.Message { return m.ch }
func (m *mockSubscription) Close() error {
	m.once.Do(func() {
		m.closed = true
		close(m.ch)
	})
	return nil
}

type mockStorage struct {
	saveFunc func(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
}

func (m *mockStorage) Save(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, key, data, contentType)
	}
	return "/uploads/" + key, nil
}
func (m *mockStorage) Delete(context.Context, string) error { return nil }

// fixedPolicy always picks the PM with the given id.
type fixedPolicy string

func (f fixedPolicy) Pick(pool []model.ProjectManager) (model.ProjectManager, error) {
	for _, pm := range pool {
		if pm.ID == string(f) {
			return pm, nil
		}
	}
	return model.ProjectManager{}, errors.New("fixed pm not in pool")
}

var (
	customer = model.Actor{UserID: "cust-1", Role: model.RoleCustomer}
	pmActor  = model.Actor{UserID: "pm-1", Role: model.RolePM}
	otherPM  = model.Actor{UserID: "pm-2", Role: model.RolePM}
	admin    = model.Actor{UserID: "admin-1", Role: model.RoleAdmin}
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string  { return &v }

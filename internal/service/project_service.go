package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/storefront/backend/internal/assign"
	"github.com/storefront/backend/internal/estimate"
	"github.com/storefront/backend/internal/metrics"
	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/notify"
	"github.com/storefront/backend/internal/repository"
	"github.com/storefront/backend/internal/stage"
)

// ProjectService owns project creation and the delivery stage machine.
type ProjectService interface {
	Create(ctx context.Context, actor model.Actor, answers model.OnboardingAnswers) (*model.Project, error)
	Get(ctx context.Context, actor model.Actor, id string) (*model.Project, error)
	ListMine(ctx context.Context, actor model.Actor) ([]*model.Project, error)
	ListAll(ctx context.Context, actor model.Actor, filter model.ProjectFilter) ([]*model.Project, error)
	Advance(ctx context.Context, actor model.Actor, id string, opts TransitionOptions) (*model.Project, error)
	SetStage(ctx context.Context, actor model.Actor, id string, target int, opts TransitionOptions) (*model.Project, error)
	Cancel(ctx context.Context, actor model.Actor, id string, opts TransitionOptions) (*model.Project, error)
	Events(ctx context.Context, actor model.Actor, id string) ([]*model.StageEvent, error)
}

// TransitionOptions tune a stage change.
type TransitionOptions struct {
	// Announce posts the new stage's description to the project chat.
	Announce bool
	// ExpectedVersion, when non-zero, must equal the stored version.
	ExpectedVersion int64
}

// MessagePoster stores and fans out a chat message.
type MessagePoster interface {
	Post(ctx context.Context, m *model.Message) error
}

// UserLookup resolves notification recipients.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// PMDirectory lists assignable PMs.
type PMDirectory interface {
	ListAvailable(ctx context.Context) ([]model.ProjectManager, error)
	GetByID(ctx context.Context, id string) (*model.ProjectManager, error)
}

// ProjectDeps are the collaborators of ProjectServiceImpl.
type ProjectDeps struct {
	Projects  repository.ProjectRepository
	PMs       PMDirectory
	Users     UserLookup
	Events    repository.StageEventRepository
	Estimates EstimateService
	Policy    assign.Policy
	Messages  MessagePoster
	Notifier  notify.Notifier
	Now       func() time.Time
}

// ProjectServiceImpl は ProjectService の実装
type ProjectServiceImpl struct {
	ProjectDeps
}

// NewProjectService は ProjectServiceImpl を生成する
func NewProjectService(deps ProjectDeps) ProjectService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.LogNotifier{}
	}
	return &ProjectServiceImpl{ProjectDeps: deps}
}

// Create runs the stage 6 to 7 transition: validate answers, freeze the
// estimate, assign a PM and persist the project. Nothing is written when any
// of those steps fails; follow-ups after the insert are best effort.
func (s *ProjectServiceImpl) Create(ctx context.Context, actor model.Actor, answers model.OnboardingAnswers) (*model.Project, error) {
	if err := requireRole(actor, model.RoleCustomer); err != nil {
		return nil, err
	}
	if err := stage.ValidateComplete(answers); err != nil {
		return nil, invalid(err)
	}

	est, err := s.Estimates.Estimate(ctx, estimate.Request{
		BusinessCategory: answers.BusinessCategory,
		LocationDistrict: answers.LocationDistrict,
		StoreSize:        answers.StoreSize,
		StoreFloor:       answers.StoreFloor,
	})
	if err != nil {
		return nil, err
	}

	pool, err := s.PMs.ListAvailable(ctx)
	if err != nil {
		return nil, retryable("list available pms", err)
	}
	if len(pool) == 0 {
		metrics.PMAssignmentFailures.Inc()
		return nil, ErrNoPMAvailable
	}
	pm, err := s.Policy.Pick(pool)
	if errors.Is(err, assign.ErrEmptyPool) {
		metrics.PMAssignmentFailures.Inc()
		return nil, ErrNoPMAvailable
	}
	if err != nil {
		return nil, err
	}

	p := &model.Project{
		CustomerID:       actor.UserID,
		PMID:             pm.ID,
		BusinessCategory: answers.BusinessCategory,
		LocationDistrict: answers.LocationDistrict,
		LocationDong:     answers.LocationDong,
		StoreSize:        answers.StoreSize,
		StoreFloor:       answers.StoreFloor,
		EstimatedCosts:   est.Groups,
		EstimatedTotal:   est.Total.Avg,
		CurrentStep:      stage.FirstDelivery,
		PMApprovedStep:   stage.LastOnboarding,
		Status:           stage.StatusFor(stage.FirstDelivery),
		Checklist:        stage.SeedChecklist(answers.Checklist),
	}
	if err := s.Projects.Create(ctx, p); err != nil {
		return nil, storeErr("create project", err)
	}
	metrics.ProjectsCreated.Inc()
	slog.Info("project created", "project_id", p.ID, "pm_id", pm.ID, "estimated_total", p.EstimatedTotal)

	s.recordEvent(ctx, p.ID, stage.LastOnboarding, stage.FirstDelivery, stage.KindCreate, actor.UserID)
	s.post(ctx, &model.Message{
		ProjectID:  p.ID,
		SenderID:   pm.ID,
		SenderRole: model.SenderPM,
		Body:       fmt.Sprintf("안녕하세요, 담당 PM %s입니다. %s", pm.Name, stage.Description(stage.FirstDelivery)),
	})
	s.notifyCustomer(ctx, p, func(to notify.Recipient) notify.Notification {
		return notify.ProjectCreated(to, pm.Name)
	})
	return p, nil
}

// Get returns a project the actor participates in.
func (s *ProjectServiceImpl) Get(ctx context.Context, actor model.Actor, id string) (*model.Project, error) {
	p, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get project", err)
	}
	if !p.IsParticipant(actor) {
		return nil, ErrForbidden
	}
	return p, nil
}

// ListMine returns the customer's own projects or the PM's assigned ones.
func (s *ProjectServiceImpl) ListMine(ctx context.Context, actor model.Actor) ([]*model.Project, error) {
	var (
		projects []*model.Project
		err      error
	)
	switch actor.Role {
	case model.RoleCustomer:
		projects, err = s.Projects.ListByCustomer(ctx, actor.UserID)
	case model.RolePM:
		projects, err = s.Projects.List(ctx, model.ProjectFilter{PMID: actor.UserID, Limit: 200})
	case model.RoleAdmin:
		projects, err = s.Projects.List(ctx, model.ProjectFilter{Limit: 200})
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, storeErr("list projects", err)
	}
	return projects, nil
}

// ListAll is the admin oversight listing.
func (s *ProjectServiceImpl) ListAll(ctx context.Context, actor model.Actor, filter model.ProjectFilter) ([]*model.Project, error) {
	if err := requireRole(actor, model.RoleAdmin); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalidf("unknown status %q", filter.Status)
	}
	projects, err := s.Projects.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list projects", err)
	}
	return projects, nil
}

// Advance moves the project one delivery stage forward; a no-op at stage 12.
func (s *ProjectServiceImpl) Advance(ctx context.Context, actor model.Actor, id string, opts TransitionOptions) (*model.Project, error) {
	return s.transition(ctx, actor, id, stage.Advance(), opts)
}

// SetStage jumps to any delivery stage, backwards included.
func (s *ProjectServiceImpl) SetStage(ctx context.Context, actor model.Actor, id string, target int, opts TransitionOptions) (*model.Project, error) {
	return s.transition(ctx, actor, id, stage.JumpTo(target), opts)
}

// Cancel marks the project CANCELLED. The customer, the assigned PM or an
// admin may cancel.
func (s *ProjectServiceImpl) Cancel(ctx context.Context, actor model.Actor, id string, opts TransitionOptions) (*model.Project, error) {
	return s.transition(ctx, actor, id, stage.Cancel(), opts)
}

// Events returns the stage audit trail.
func (s *ProjectServiceImpl) Events(ctx context.Context, actor model.Actor, id string) ([]*model.StageEvent, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	events, err := s.ProjectDeps.Events.ListByProject(ctx, id)
	if err != nil {
		return nil, storeErr("list stage events", err)
	}
	return events, nil
}

func (s *ProjectServiceImpl) transition(ctx context.Context, actor model.Actor, id string, t stage.Transition, opts TransitionOptions) (*model.Project, error) {
	p, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get project", err)
	}
	if !s.mayTransition(actor, p, t) {
		return nil, ErrForbidden
	}
	if opts.ExpectedVersion != 0 && opts.ExpectedVersion != p.Version {
		metrics.VersionConflicts.WithLabelValues(string(t.Kind)).Inc()
		return nil, ErrConflict
	}

	res, err := stage.Apply(p, t)
	if err != nil {
		return nil, err
	}
	if !res.Changed {
		return p, nil
	}

	expected := p.Version
	res.ApplyTo(p, s.Now())
	if err := s.Projects.Update(ctx, p, expected); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			metrics.VersionConflicts.WithLabelValues(string(t.Kind)).Inc()
		}
		return nil, storeErr("update project stage", err)
	}
	metrics.StageTransitions.WithLabelValues(string(t.Kind), strconv.Itoa(res.To)).Inc()
	slog.Info("project stage changed",
		"project_id", p.ID, "kind", t.Kind, "from", res.From, "to", res.To, "status", p.Status, "actor_id", actor.UserID)

	s.recordEvent(ctx, p.ID, res.From, res.To, t.Kind, actor.UserID)
	if t.Kind == stage.KindCancel {
		s.notifyCustomer(ctx, p, notify.Cancelled)
		return p, nil
	}
	if opts.Announce {
		s.post(ctx, &model.Message{
			ProjectID:  p.ID,
			SenderRole: model.SenderSystem,
			Body:       fmt.Sprintf("[%d단계 · %s] %s", res.To, stage.Label(res.To), stage.Description(res.To)),
		})
	}
	s.notifyCustomer(ctx, p, func(to notify.Recipient) notify.Notification {
		return notify.StageChanged(to, res.To, stage.Label(res.To), stage.Description(res.To))
	})
	return p, nil
}

func (s *ProjectServiceImpl) mayTransition(actor model.Actor, p *model.Project, t stage.Transition) bool {
	if p.IsManagedBy(actor) {
		return true
	}
	return t.Kind == stage.KindCancel && actor.Role == model.RoleCustomer && actor.UserID == p.CustomerID
}

func (s *ProjectServiceImpl) recordEvent(ctx context.Context, projectID string, from, to int, kind stage.Kind, actorID string) {
	if s.ProjectDeps.Events == nil {
		return
	}
	err := s.ProjectDeps.Events.Insert(ctx, &model.StageEvent{
		ProjectID: projectID,
		FromStep:  from,
		ToStep:    to,
		Kind:      string(kind),
		ActorID:   actorID,
	})
	if err != nil {
		metrics.SideEffectFailures.WithLabelValues("stage_event").Inc()
		slog.Warn("stage: event log failed", "project_id", projectID, "error", err)
	}
}

func (s *ProjectServiceImpl) post(ctx context.Context, m *model.Message) {
	if s.Messages == nil {
		return
	}
	if err := s.Messages.Post(ctx, m); err != nil {
		metrics.SideEffectFailures.WithLabelValues("announce").Inc()
		slog.Warn("stage: announce failed", "project_id", m.ProjectID, "error", err)
	}
}

func (s *ProjectServiceImpl) notifyCustomer(ctx context.Context, p *model.Project, render func(notify.Recipient) notify.Notification) {
	if s.Users == nil {
		return
	}
	u, err := s.Users.FindByID(ctx, p.CustomerID)
	if err != nil {
		metrics.SideEffectFailures.WithLabelValues("notify").Inc()
		slog.Warn("notify: customer lookup failed", "project_id", p.ID, "error", err)
		return
	}
	n := render(notify.Recipient{Name: u.Name, Email: u.Email, Phone: u.Phone})
	if err := s.Notifier.Notify(ctx, n); err != nil {
		metrics.SideEffectFailures.WithLabelValues("notify").Inc()
		slog.Warn("notify: delivery failed", "project_id", p.ID, "error", err)
	}
}

package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/metrics"
	"github.com/storefront/backend/internal/model"
	"github.com/storefront/backend/internal/realtime"
	"github.com/storefront/backend/internal/repository"
	"github.com/storefront/backend/internal/storage"
)

// MaxMessageLength caps a chat body in characters.
const MaxMessageLength = 4000

// MessageService is the project chat.
type MessageService interface {
	// Post stores a message and publishes it; used for system messages.
	Post(ctx context.Context, m *model.Message) error
	Send(ctx context.Context, actor model.Actor, projectID string, in SendInput) (*model.Message, error)
	List(ctx context.Context, actor model.Actor, projectID string) ([]*model.Message, error)
	Stream(ctx context.Context, actor model.Actor, projectID string) (*MessageStream, error)
}

// SendInput is a chat message from a participant.
type SendInput struct {
	Body       string
	Attachment *Attachment
}

// Attachment is an uploaded file to store alongside a message.
type Attachment struct {
	ContentType string
	Data        io.Reader
}

// MessageStream is the backlog followed by live messages. Live messages
// already present in the backlog are dropped.
type MessageStream struct {
	Backlog []*model.Message
	live    chan *model.Message
	sub     realtime.Subscription
	once    sync.Once
}

// NewMessageStream relays sub, dropping messages already in backlog. sub
// must have been opened before backlog was read.
func NewMessageStream(ctx context.Context, backlog []*model.Message, sub realtime.Subscription) *MessageStream {
	seen := make(map[string]struct{}, len(backlog))
	for _, m := range backlog {
		seen[m.ID] = struct{}{}
	}
	st := &MessageStream{Backlog: backlog, live: make(chan *model.Message, 16), sub: sub}
	metrics.StreamsActive.Inc()

	go func() {
		defer close(st.live)
		for m := range sub.Messages() {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			select {
			case st.live <- m:
			case <-ctx.Done():
				return
			}
		}
	}()
	return st
}

// Live delivers messages published after the subscription was confirmed.
func (s *MessageStream) Live() <-chan *model.Message { return s.live }

// Close stops the stream.
func (s *MessageStream) Close() error {
	var err error
	s.once.Do(func() {
		err = s.sub.Close()
		metrics.StreamsActive.Dec()
	})
	return err
}

// MessageServiceImpl は MessageService の実装
type MessageServiceImpl struct {
	messages repository.MessageRepository
	projects repository.ProjectRepository
	broker   realtime.Broker
	storage  storage.Storage
	backlog  int
}

// NewMessageService は MessageServiceImpl を生成する
func NewMessageService(messages repository.MessageRepository, projects repository.ProjectRepository, broker realtime.Broker, store storage.Storage, backlog int) MessageService {
	if backlog <= 0 {
		backlog = 200
	}
	return &MessageServiceImpl{messages: messages, projects: projects, broker: broker, storage: store, backlog: backlog}
}

// Post persists m and then publishes it. A publish failure is logged: the
// row is already durable and clients catch up on reconnect.
func (s *MessageServiceImpl) Post(ctx context.Context, m *model.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return storeErr("create message", err)
	}
	metrics.MessagesSent.WithLabelValues(string(m.SenderRole)).Inc()
	if s.broker == nil {
		return nil
	}
	if err := s.broker.Publish(ctx, m.ProjectID, m); err != nil {
		metrics.SideEffectFailures.WithLabelValues("publish").Inc()
		slog.Warn("chat: publish failed", "project_id", m.ProjectID, "message_id", m.ID, "error", err)
	}
	return nil
}

// Send posts a participant's message, storing the attachment first.
func (s *MessageServiceImpl) Send(ctx context.Context, actor model.Actor, projectID string, in SendInput) (*model.Message, error) {
	if _, err := s.participant(ctx, actor, projectID); err != nil {
		return nil, err
	}
	body := strings.TrimSpace(in.Body)
	if body == "" && in.Attachment == nil {
		return nil, invalidf("message body or attachment is required")
	}
	if utf8.RuneCountInString(body) > MaxMessageLength {
		return nil, invalidf("message exceeds %d characters", MaxMessageLength)
	}

	m := &model.Message{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		SenderID:   actor.UserID,
		SenderRole: senderRole(actor.Role),
		Body:       body,
	}
	if in.Attachment != nil {
		url, err := s.saveAttachment(ctx, projectID, m.ID, in.Attachment)
		if err != nil {
			return nil, err
		}
		m.AttachmentURL = url
	}
	if err := s.Post(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// List returns the newest messages in ascending order.
func (s *MessageServiceImpl) List(ctx context.Context, actor model.Actor, projectID string) ([]*model.Message, error) {
	if _, err := s.participant(ctx, actor, projectID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByProject(ctx, projectID, s.backlog)
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	return msgs, nil
}

// Stream subscribes before reading the backlog so nothing published in
// between is lost; the overlap is removed by message id.
func (s *MessageServiceImpl) Stream(ctx context.Context, actor model.Actor, projectID string) (*MessageStream, error) {
	if _, err := s.participant(ctx, actor, projectID); err != nil {
		return nil, err
	}
	sub, err := s.broker.Subscribe(ctx, projectID)
	if err != nil {
		return nil, retryable("subscribe", err)
	}
	backlog, err := s.messages.ListByProject(ctx, projectID, s.backlog)
	if err != nil {
		_ = sub.Close()
		return nil, storeErr("list messages", err)
	}

	return NewMessageStream(ctx, backlog, sub), nil
}

func (s *MessageServiceImpl) participant(ctx context.Context, actor model.Actor, projectID string) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, storeErr("get project", err)
	}
	if !p.IsParticipant(actor) {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *MessageServiceImpl) saveAttachment(ctx context.Context, projectID, messageID string, a *Attachment) (string, error) {
	if s.storage == nil {
		return "", invalidf("attachments are not enabled")
	}
	ext, ok := storage.AllowedContentType(a.ContentType)
	if !ok {
		return "", invalidf("unsupported attachment type %q", a.ContentType)
	}
	url, err := s.storage.Save(ctx, "messages/"+projectID+"/"+messageID+ext, a.Data, a.ContentType)
	if err != nil {
		return "", retryable("save attachment", err)
	}
	return url, nil
}

func senderRole(r model.Role) model.SenderRole {
	switch r {
	case model.RoleCustomer:
		return model.SenderCustomer
	case model.RolePM:
		return model.SenderPM
	default:
		return model.SenderSystem
	}
}

package services

import (
	"context"
	"time"

	"github.com/codeready-toolchain/ragstore/pkg/database"
	"github.com/codeready-toolchain/ragstore/pkg/models"
	"github.com/codeready-toolchain/ragstore/pkg/partition"
	"github.com/codeready-toolchain/ragstore/pkg/retry"
	"github.com/codeready-toolchain/ragstore/pkg/store"
)

// SessionService manages chat session lifecycle and the embedded
// conversation history. History is append-only and windowed to the most
// recent MaxSessionMessages entries; retention of whole sessions is an
// external TTL policy.
type SessionService struct {
	container *database.Container
	retryOpts retry.Options
}

// NewSessionService creates a new SessionService.
func NewSessionService(client *database.Client) *SessionService {
	return &SessionService{
		container: client.Container(database.ContainerSessions),
		retryOpts: client.RetryOptions(),
	}
}

// Create persists a new, empty chat session.
func (s *SessionService) Create(ctx context.Context, req models.CreateSessionRequest) (*models.ChatSession, store.Metadata, error) {
	if err := requireIdentifier("tenantId", req.TenantID); err != nil {
		return nil, store.Metadata{}, err
	}
	if err := requireIdentifier("userId", req.UserID); err != nil {
		return nil, store.Metadata{}, err
	}
	if err := requireIdentifier("sessionId", req.SessionID); err != nil {
		return nil, store.Metadata{}, err
	}

	pk, err := partition.ForSession(req.TenantID, req.UserID, req.SessionID)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	now := time.Now().UTC()
	session := &models.ChatSession{
		Entity: models.Entity{
			ID:        req.SessionID,
			TenantID:  req.TenantID,
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: req.UserID,
			Version:   1,
		},
		UserID:    req.UserID,
		SessionID: req.SessionID,
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Messages:  []models.ChatMessage{},
	}

	item, err := marshalItem(session.ID, pk, now, session)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	created, md, err := execItem(ctx, s.retryOpts, func(ctx context.Context) (*store.Item, store.Metadata, error) {
		return s.container.Create(ctx, item)
	})
	if err != nil {
		return nil, md, translate(err)
	}

	session.ETag = created.ETag
	return session, md, nil
}

// Get point-reads a session; missing sessions are a successful nil result.
func (s *SessionService) Get(ctx context.Context, tenantID, userID, sessionID string) (*models.ChatSession, store.Metadata, error) {
	pk, err := partition.ForSession(tenantID, userID, sessionID)
	if err != nil {
		return nil, store.Metadata{}, err
	}

	item, md, err := execItem(ctx, s.retryOpts, func(ctx context.Context) (*store.Item, store.Metadata, error) {
		return s.container.Read(ctx, sessionID, pk)
	})
	if err != nil {
		if translate(err) == ErrNotFound {
			return nil, md, nil
		}
		return nil, md, translate(err)
	}

	var session models.ChatSession
	if err := unmarshalItem(item, &session); err != nil {
		return nil, md, err
	}
	session.ETag = item.ETag
	return &session, md, nil
}

// List returns a user's sessions ordered by creation time descending.
func (s *SessionService) List(ctx context.Context, tenantID, userID string, opts models.ListOptions) (*models.Page[models.ChatSession], store.Metadata, error) {
	if err := requireIdentifier("tenantId", tenantID); err != nil {
		return nil, store.Metadata{}, err
	}
	if err := requireIdentifier("userId", userID); err != nil {
		return nil, store.Metadata{}, err
	}

	page, md, err := execQuery(ctx, s.retryOpts, func(ctx context.Context) (*store.Page, store.Metadata, error) {
		return s.container.Query(ctx, store.Query{
			PartitionPrefix: "/" + tenantID + "/" + userID + "/",
			PageSize:        opts.PageSize,
			Token:           opts.ContinuationToken,
		})
	})
	if err != nil {
		return nil, md, translate(err)
	}

	result := &models.Page[models.ChatSession]{
		Items:             make([]models.ChatSession, 0, len(page.Items)),
		ContinuationToken: page.Token,
	}
	for i := range page.Items {
		var session models.ChatSession
		if err := unmarshalItem(&page.Items[i], &session); err != nil {
			return nil, md, err
		}
		session.ETag = page.Items[i].ETag
		result.Items = append(result.Items, session)
	}
	return result, md, nil
}

// AppendMessage appends one message to the session history under
// optimistic concurrency, truncating the window to the most recent
// MaxSessionMessages entries. The second of two racing appends fails with
// ErrConcurrentModification and must re-read and retry.
func (s *SessionService) AppendMessage(ctx context.Context, tenantID, userID, sessionID string, req models.AppendMessageRequest) (*models.ChatSession, store.Metadata, error) {
	if req.Role == "" {
		return nil, store.Metadata{}, NewValidationError("role", "required")
	}
	if req.Content == "" {
		return nil, store.Metadata{}, NewValidationError("content", "required")
	}

	session, md, err := s.Get(ctx, tenantID, userID, sessionID)
	if err != nil {
		return nil, md, err
	}
	if session == nil {
		return nil, md, ErrNotFound
	}

	now := time.Now().UTC()
	session.Messages = append(session.Messages, models.ChatMessage{
		Role:      req.Role,
		Content:   req.Content,
		CreatedAt: now,
		Citations: req.Citations,
	})
	if overflow := len(session.Messages) - models.MaxSessionMessages; overflow > 0 {
		session.Messages = session.Messages[overflow:]
	}
	session.MessageCount = len(session.Messages)
	session.LastMessageAt = &now
	session.UpdatedAt = now
	session.Version++

	pk, err := partition.ForSession(tenantID, userID, sessionID)
	if err != nil {
		return nil, md, err
	}
	item, err := marshalItem(session.ID, pk, session.CreatedAt, session)
	if err != nil {
		return nil, md, err
	}

	etag := session.ETag
	replaced, md, err := execItem(ctx, s.retryOpts, func(ctx context.Context) (*store.Item, store.Metadata, error) {
		return s.container.Replace(ctx, item, etag)
	})
	if err != nil {
		return nil, md, translate(err)
	}

	session.ETag = replaced.ETag
	return session, md, nil
}

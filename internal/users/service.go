// Package users manages profile documents: creation on first authentication,
// status, push token and profile picture updates. Only the owning user can
// mutate their document.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skydentango/ping-social-app/internal/apperr"
	"github.com/skydentango/ping-social-app/internal/models"
	"github.com/skydentango/ping-social-app/internal/store"
)

// PresetStatuses mirrors the quick-pick statuses offered by clients.
var PresetStatuses = []models.UserStatus{
	{Emoji: "🟢", Text: "Free"},
	{Emoji: "🟡", Text: "Maybe"},
	{Emoji: "🔴", Text: "Busy"},
}

type Service struct {
	store store.UserStore
	log   *zap.SugaredLogger
}

func NewService(st store.UserStore, log *zap.SugaredLogger) *Service {
	return &Service{store: st, log: log}
}

// Identity is what the identity provider asserts about the caller.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
}

// Ensure returns the user document for an authenticated identity, creating it
// with defaults on first sight.
func (s *Service) Ensure(ctx context.Context, ident Identity) (*models.User, error) {
	u, err := s.store.GetUser(ctx, ident.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, apperr.ErrUserNotFound) {
		return nil, err
	}

	displayName := ident.DisplayName
	if displayName == "" {
		if at := strings.IndexByte(ident.Email, '@'); at > 0 {
			displayName = ident.Email[:at]
		} else {
			displayName = "User"
		}
	}
	u = &models.User{
		ID:          ident.ID,
		Email:       ident.Email,
		DisplayName: displayName,
		Status:      models.DefaultStatus(time.Now().UTC()),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, apperr.WriteSync(err)
	}
	s.log.Infow("user created", "user_id", u.ID)
	return u, nil
}

// Get returns a user's profile.
func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

// UpdateStatus sets the caller's own status line.
func (s *Service) UpdateStatus(ctx context.Context, userID string, status models.UserStatus) (*models.User, error) {
	if status.Emoji == "" || strings.TrimSpace(status.Text) == "" {
		return nil, apperr.Validation("status needs an emoji and a text")
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	status.Text = strings.TrimSpace(status.Text)
	status.UpdatedAt = time.Now().UTC()
	u.Status = status
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, apperr.WriteSync(err)
	}
	return u, nil
}

// SetPushToken registers the caller's push delivery token.
func (s *Service) SetPushToken(ctx context.Context, userID, token string) error {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	u.PushToken = token
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return apperr.WriteSync(err)
	}
	return nil
}

// SetProfilePicture stores the durable URL of an already-uploaded picture.
// The upload itself happens against the external image store.
func (s *Service) SetProfilePicture(ctx context.Context, userID, url string) (*models.User, error) {
	if strings.TrimSpace(url) == "" {
		return nil, apperr.Validation("picture url cannot be empty")
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.ProfilePicture = url
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, apperr.WriteSync(err)
	}
	return u, nil
}

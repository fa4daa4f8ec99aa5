// Package groups maintains group entities and the membership rules the ping
// engine relies on. Membership is copied into a ping's recipient set at send
// time, so nothing here ever reaches back into already-sent pings.
package groups

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/skydentango/ping-social-app/internal/apperr"
	"github.com/skydentango/ping-social-app/internal/models"
	"github.com/skydentango/ping-social-app/internal/store"
)

type Service struct {
	store store.GroupStore
	log   *zap.SugaredLogger
}

func NewService(st store.GroupStore, log *zap.SugaredLogger) *Service {
	return &Service{store: st, log: log}
}

// Create makes a new group. The creator is always a member, whether or not
// they appear in initialFriends.
func (s *Service) Create(ctx context.Context, creatorID, name string, initialFriends []string) (*models.Group, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:      name,
		Members:   withCreator(creatorID, initialFriends),
		CreatedBy: creatorID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.log.Errorw("create group failed", "name", name, "error", err)
		return nil, apperr.WriteSync(err)
	}
	s.log.Infow("group created", "group_id", group.ID, "members", len(group.Members))
	return group, nil
}

// Update replaces the group's name and/or membership. Only the creator may
// update, and the creator is re-inserted into the membership even if the
// caller's new set omits them.
func (s *Service) Update(ctx context.Context, groupID, requesterID string, newName *string, newMembers *[]string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != requesterID {
		return nil, apperr.ErrNotGroupCreator
	}

	if newName != nil {
		name, err := validateName(*newName)
		if err != nil {
			return nil, err
		}
		group.Name = name
	}
	if newMembers != nil {
		group.Members = withCreator(group.CreatedBy, *newMembers)
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		s.log.Errorw("update group failed", "group_id", groupID, "error", err)
		return nil, apperr.WriteSync(err)
	}
	return group, nil
}

// Delete removes the group. Pings already sent to it keep their recipient
// snapshot and remain answerable.
func (s *Service) Delete(ctx context.Context, groupID, requesterID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != requesterID {
		return apperr.ErrNotGroupCreator
	}
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		s.log.Errorw("delete group failed", "group_id", groupID, "error", err)
		return apperr.WriteSync(err)
	}
	s.log.Infow("group deleted", "group_id", groupID)
	return nil
}

// Get returns a single group.
func (s *Service) Get(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// ListFor returns the groups the user belongs to.
func (s *Service) ListFor(ctx context.Context, userID string) ([]models.Group, error) {
	return s.store.ListGroupsFor(ctx, userID)
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.ErrEmptyGroupName
	}
	if len([]rune(name)) > models.MaxGroupNameLen {
		return "", apperr.ErrGroupNameTooLong
	}
	return name, nil
}

// withCreator returns the deduplicated membership with the creator first.
func withCreator(creatorID string, friends []string) []string {
	members := []string{creatorID}
	seen := map[string]struct{}{creatorID: {}}
	for _, f := range friends {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		members = append(members, f)
	}
	return members
}

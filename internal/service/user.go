package service

import (
	"context"
	"fmt"

	"github.com/akulov/points-api/internal/events"
	"github.com/akulov/points-api/internal/repo"
	"github.com/akulov/points-api/internal/transport"
	"github.com/akulov/points-api/pkg/logging"
)

type UserService struct {
	Repo   *repo.GormRepo
	Events *events.Producer
}

// ListByRole backs the self-scoped listing: the role predicate comes from the
// caller's verified claims, never from request input.
func (s *UserService) ListByRole(ctx context.Context, role string) ([]transport.UserView, error) {
	users, err := s.Repo.FindUsersByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("listing users by role: %w", err)
	}
	return transport.UserViewsFrom(users), nil
}

func (s *UserService) ListByRoleSorted(ctx context.Context, role, order string) ([]transport.UserView, error) {
	users, err := s.Repo.FindUsersByRoleSorted(ctx, role, order)
	if err != nil {
		return nil, fmt.Errorf("listing sorted users: %w", err)
	}
	return transport.UserViewsFrom(users), nil
}

func (s *UserService) ListAll(ctx context.Context) ([]transport.UserView, error) {
	users, err := s.Repo.FindAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return transport.UserViewsFrom(users), nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	l := logging.FromContext(ctx).With("svc", "user.delete", "user_id", id)

	affected, err := s.Repo.DeleteUser(ctx, id)
	if err != nil {
		l.Error("delete failed", "status", 500, "error", err)
		return fmt.Errorf("deleting user: %w", err)
	}
	if affected == 0 {
		l.Warn("delete rejected", "status", 404, "reason", "no such user")
		return ErrUserNotFound
	}

	s.publishUserEvent(ctx, id, "user_deleted", nil)
	l.Info("user deleted")
	return nil
}

func (s *UserService) UpdatePoints(ctx context.Context, id string, points int) error {
	l := logging.FromContext(ctx).With("svc", "user.points", "user_id", id)

	affected, err := s.Repo.UpdateUserPoints(ctx, id, points)
	if err != nil {
		l.Error("points update failed", "status", 500, "error", err)
		return fmt.Errorf("updating points: %w", err)
	}
	if affected == 0 {
		l.Warn("points update rejected", "status", 404, "reason", "no such user")
		return ErrUserNotFound
	}

	s.publishUserEvent(ctx, id, "points_updated", map[string]any{"points": points})
	l.Info("points updated", "points", points)
	return nil
}

func (s *UserService) publishUserEvent(ctx context.Context, id, typ string, extra map[string]any) {
	event := map[string]any{
		"type":    typ,
		"user_id": id,
	}
	for k, v := range extra {
		event[k] = v
	}
	if err := s.Events.PublishEvent(ctx, id, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}

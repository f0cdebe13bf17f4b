package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"writescape/internal/featureflags"
	"writescape/internal/middleware"
	"writescape/internal/models"
	"writescape/internal/notifications"
)

// publishUserEvent delivers ev to each recipient that has notifications
// enabled. With Redis the event fans out through pub/sub so every API
// instance sees it; without Redis only this process's sockets get it.
func (s *Server) publishUserEvent(ctx context.Context, ev notifications.Event, userIDs ...uint) {
	recipients := make([]uint, 0, len(userIDs))
	for _, id := range userIDs {
		if s.featureFlags.Enabled(featureflags.Notifications, id) {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}

	if s.redis != nil {
		if err := s.notifier.PublishEvent(ctx, ev, recipients...); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish event",
				slog.String("type", ev.Type),
				slog.String("error", err.Error()))
		}
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal event", slog.String("type", ev.Type), slog.String("error", err.Error()))
		return
	}
	for _, id := range recipients {
		if !s.hub.IsOnline(id) {
			continue
		}
		s.hub.Broadcast(id, string(data))
	}
}

func (s *Server) announceFollow(ctx context.Context, followerID uint, target *models.User) {
	follower, err := s.userService.GetByID(ctx, followerID)
	if err != nil {
		return
	}
	s.publishUserEvent(ctx, notifications.Event{
		Type:    notifications.EventFollow,
		Payload: models.FollowUser{Username: follower.Username, Avatar: follower.Avatar},
	}, target.ID)
}

func (s *Server) announcePost(ctx context.Context, authorID, postID uint) {
	followers, err := s.followService.FollowerIDs(ctx, authorID)
	if err != nil || len(followers) == 0 {
		return
	}
	author, err := s.userService.GetByID(ctx, authorID)
	if err != nil {
		return
	}
	s.publishUserEvent(ctx, notifications.Event{
		Type: notifications.EventPostCreated,
		Payload: map[string]any{
			"post_id": postID,
			"author":  models.FollowUser{Username: author.Username, Avatar: author.Avatar},
		},
	}, followers...)
}

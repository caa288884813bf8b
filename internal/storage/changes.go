package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ChangeChannel is the redis channel carrying one user's changes to one table.
func ChangeChannel(table, userID string) string {
	return fmt.Sprintf("%s:%s:%s", config.ChangeChannelPrefix, table, userID)
}

// NewChangeEnvelope encodes a row change. record is ignored for DELETE.
func NewChangeEnvelope(table string, changeType models.ChangeType, userID string, record any, id string) (models.ChangeEnvelope, error) {
	env := models.ChangeEnvelope{
		Table:           table,
		Type:            changeType,
		UserID:          userID,
		OldID:           id,
		CommitTimestamp: time.Now().UTC(),
	}
	if changeType == models.ChangeInsert {
		env.OldID = ""
	}
	if changeType != models.ChangeDelete && record != nil {
		raw, err := json.Marshal(record)
		if err != nil {
			return env, err
		}
		env.New = raw
	}
	return env, nil
}

// ErrNoChangeFeed is returned by the change feed methods of a service built without redis.
var ErrNoChangeFeed = errors.New("change feed not configured")

// PublishChange publishes an envelope on its user-scoped channel.
func (s *Service) PublishChange(ctx context.Context, env models.ChangeEnvelope) error {
	if s.Redis == nil {
		return ErrNoChangeFeed
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, ChangeChannel(env.Table, env.UserID), payload).Err()
}

// SubscribeGrievanceReports streams the user's grievance changes until ctx is cancelled.
func (s *Service) SubscribeGrievanceReports(ctx context.Context, userID string) (<-chan models.GrievanceChange, error) {
	if s.Redis == nil {
		return nil, ErrNoChangeFeed
	}
	return subscribe[models.GrievanceReport](ctx, s.Redis, ChangeChannel(models.GrievanceTable, userID))
}

// SubscribeSuspiciousReports streams the user's suspicious report changes until ctx is cancelled.
func (s *Service) SubscribeSuspiciousReports(ctx context.Context, userID string) (<-chan models.SuspiciousChange, error) {
	if s.Redis == nil {
		return nil, ErrNoChangeFeed
	}
	return subscribe[models.SuspiciousReport](ctx, s.Redis, ChangeChannel(models.SuspiciousTable, userID))
}

// subscribe waits for the subscription to be confirmed, then forwards decoded
// events. The returned channel is closed when ctx ends or redis drops the subscription.
func subscribe[T models.Record](ctx context.Context, rdb *redis.Client, channel string) (<-chan models.Change[T], error) {
	pubsub := rdb.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	out := make(chan models.Change[T], config.ChangeBufferSize)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				change, err := DecodeChange[T]([]byte(msg.Payload))
				if err != nil {
					log.Warn().Err(err).Str("channel", channel).Msg("dropping undecodable change event")
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// DecodeChange turns a wire envelope into a typed change.
func DecodeChange[T models.Record](payload []byte) (models.Change[T], error) {
	var env models.ChangeEnvelope
	var change models.Change[T]
	if err := json.Unmarshal(payload, &env); err != nil {
		return change, fmt.Errorf("decode envelope: %w", err)
	}

	change.Type = env.Type
	change.OldID = env.OldID
	switch env.Type {
	case models.ChangeInsert, models.ChangeUpdate:
		if len(env.New) == 0 {
			return change, fmt.Errorf("%s event without record", env.Type)
		}
		if err := json.Unmarshal(env.New, &change.New); err != nil {
			return change, fmt.Errorf("decode record: %w", err)
		}
	case models.ChangeDelete:
		if env.OldID == "" {
			return change, fmt.Errorf("DELETE event without old_id")
		}
	default:
		return change, fmt.Errorf("unknown change type %q", env.Type)
	}
	return change, nil
}

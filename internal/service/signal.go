package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/cocodedk/publix"
)

// ProgressChannel carries ingest progress events between the pipeline and
// realtime subscribers.
const ProgressChannel = "publix:ingest:progress"

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event publix.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, ProgressChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime forwards progress events to output until ctx is cancelled.
// Messages that fail to decode are logged and dropped, never fatal to the
// subscription.
func (s *SignalService) Realtime(ctx context.Context, output chan<- publix.Event) {

	pubsub := s.rdb.Subscribe(ctx, ProgressChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-ch:
			if !ok {
				return
			}

			var event publix.Event
			if err := json.Unmarshal([]byte(message.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "failed to decode progress event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}

			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

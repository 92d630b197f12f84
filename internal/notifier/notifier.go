// Package notifier fans booking events out to the message broker (consumed by
// the mail worker) and to connected websocket clients. It is strictly
// fire-and-forget: delivery failures are logged and swallowed, never surfaced
// to the booking operation that triggered them.
package notifier

import (
	"context"

	log "github.com/sirupsen/logrus"

	"rentalhousing/internal/events"
)

type Publisher interface {
	Publish(routingKey string, payload any) error
}

type FeedPusher interface {
	Push(userID int64, payload any) bool
}

type Service struct {
	pub  Publisher
	feed FeedPusher
}

func New(pub Publisher, feed FeedPusher) *Service {
	return &Service{pub: pub, feed: feed}
}

func (s *Service) BookingCreated(ctx context.Context, ev events.BookingEvent) error {
	s.dispatch(events.KeyBookingCreated, ev)
	return nil
}

func (s *Service) BookingStatusChanged(ctx context.Context, ev events.BookingEvent) error {
	s.dispatch(events.KeyBookingStatusChanged, ev)
	return nil
}

func (s *Service) dispatch(key string, ev events.BookingEvent) {
	if s.pub != nil {
		if err := s.pub.Publish(key, ev); err != nil {
			log.WithFields(log.Fields{
				"booking_id": ev.BookingID,
				"key":        key,
			}).WithError(err).Warn("booking event publish failed")
		}
	}

	if s.feed != nil {
		s.feed.Push(ev.LessorID, ev)
		if ev.RenterID != ev.LessorID {
			s.feed.Push(ev.RenterID, ev)
		}
	}
}

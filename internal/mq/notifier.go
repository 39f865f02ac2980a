package mq

import (
	"context"

	"shutdowns-bot/internal/models"
)

// ChangeNotifier implements jobs.EventPublisher by publishing to RabbitMQ.
type ChangeNotifier struct {
	pub *Publisher
}

// NewChangeNotifier creates a notifier that publishes schedule changes to RabbitMQ.
func NewChangeNotifier(pub *Publisher) *ChangeNotifier {
	return &ChangeNotifier{pub: pub}
}

// PublishScheduleChanged publishes a schedule change message to the exchange.
func (n *ChangeNotifier) PublishScheduleChanged(ctx context.Context, change models.ScheduleChange) error {
	return n.pub.Publish(ctx, RoutingScheduleChanged, NewScheduleChangedMsg(change))
}

// NewScheduleChangedMsg converts a detected change into its wire form.
func NewScheduleChangedMsg(change models.ScheduleChange) ScheduleChangedMsg {
	return ScheduleChangedMsg{
		ChangedGroups: change.ChangedGroups,
		ShapeChanged:  change.ShapeChanged,
		FetchedAt:     change.FetchedAt,
		Groups:        change.Table,
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"

	"shutdowns-bot/internal/logger"
	"shutdowns-bot/internal/mq"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print schedule.changed events published by a running server",
	RunE:  runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	if cfg.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer, err := mq.NewConsumer(ctx, cfg.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("rabbitmq consumer: %w", err)
	}
	defer consumer.Close()

	deliveries, err := consumer.Consume(mq.QueueScheduleChanged)
	if err != nil {
		return fmt.Errorf("consume %s: %w", mq.QueueScheduleChanged, err)
	}
	return listen(ctx, cmd, deliveries)
}

// listen prints every delivery until ctx is done or the channel closes.
func listen(ctx context.Context, cmd *cobra.Command, deliveries <-chan amqp.Delivery) error {
	log := logger.New("events")
	log.Infof("consuming from %s", mq.QueueScheduleChanged)
	for {
		select {
		case <-ctx.Done():
			log.Infof("stopped")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			msg, err := mq.DecodeScheduleChanged(d.Body)
			if err != nil {
				log.Errorf("%v", err)
				_ = d.Nack(false, false)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s groups=%v shape_changed=%t\n",
				msg.FetchedAt.Format("2006-01-02 15:04:05"), msg.ChangedGroups, msg.ShapeChanged)
			_ = d.Ack(false)
		}
	}
}

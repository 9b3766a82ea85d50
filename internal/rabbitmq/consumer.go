package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"
)

// Одновременно обрабатываемых сообщений на очередь.
const maxInFlight = 10

// ConsumerMessage подписывается на очередь и обрабатывает сообщения
// до отмены контекста. При ошибке обработчика сообщение возвращается
// в очередь повторной доставкой.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"

	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, maxInFlight)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(d.Body); err != nil {
						if nackErr := d.Nack(false, true); nackErr != nil {
							slog.Error("failed to nack message",
								slog.String("queue", queueName), slog.Any("error", nackErr))
						}
						return
					}
					if ackErr := d.Ack(false); ackErr != nil {
						slog.Error("failed to ack message",
							slog.String("queue", queueName), slog.Any("error", ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Package rabbitmq содержит вспомогательные функции для публикации и
// потребления сообщений RabbitMQ, используемых планировщиком и отправителем
// уведомлений.
package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Publisher публикует уведомления в exchange с фиксированным именем.
type Publisher struct {
	ch       *amqp.Channel
	exchange string
}

// NewPublisher создает Publisher поверх открытого канала.
func NewPublisher(ch *amqp.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// Publish сериализует сообщение в JSON и публикует его по routing key.
func (p *Publisher) Publish(routingKey string, message any) error {
	return PublishMessage(p.ch, p.exchange, routingKey, message)
}

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

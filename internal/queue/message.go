package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message wraps a ClickEvent with its RabbitMQ delivery information
type Message struct {
	Event       *ClickEvent
	DeliveryTag uint64
	Redelivered bool
	Channel     *amqp.Channel
}

// Ack acknowledges the message
func (m *Message) Ack() error {
	return m.Channel.Ack(m.DeliveryTag, false)
}

// Nack negatively acknowledges the message
func (m *Message) Nack(requeue bool) error {
	return m.Channel.Nack(m.DeliveryTag, false, requeue)
}

// GetEvent returns the click event carried by the message
func (m *Message) GetEvent() *ClickEvent {
	return m.Event
}

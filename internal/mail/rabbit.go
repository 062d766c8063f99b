package mail

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const EmailQueue = "notify.email"

func Dial(url string) (*amqp.Connection, error) {
	return amqp.Dial(url)
}

package tokennotification

import (
	"context"
	"herbarium/internal/core/domain/common"
	e "herbarium/internal/core/domain/errors"
	"herbarium/internal/core/domain/logging"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/services"
	sendtokennotification "herbarium/internal/core/services/send_token_notification"
	"herbarium/internal/rabbitmq"
	"herbarium/internal/rabbitmq/schema"

	"github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	log     logging.Logger
	channel *rabbitmq.Channel
	queue   string
	service services.Service[sendtokennotification.Input, sendtokennotification.Result]
}

func New(
	log logging.Logger,
	channel *rabbitmq.Channel,
	queue string,
	service services.Service[sendtokennotification.Input, sendtokennotification.Result],
) *Consumer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}

	return &Consumer{log: log, channel: channel, queue: queue, service: service}
}

func (c *Consumer) Consume() error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		c.log.Error(context.Background(), "Could not start consuming.", logging.Entry("err", err))
		return err
	}

	go func() {
		for delivery := range deliveries {
			c.handleDelivery(delivery)
		}
	}()
	return nil
}

// handleDelivery always acks: a message that cannot be decoded or delivered
// must not be redelivered forever.
func (c *Consumer) handleDelivery(delivery amqp091.Delivery) {
	notification := &schema.TokenNotification{}
	if err := notification.Unmarshal(delivery.Body); err != nil {
		c.log.Error(
			context.Background(),
			"Could not unmarshal token notification.",
			logging.Entry("err", err),
			logging.Entry("delivery", delivery),
		)
		c.Ack(delivery)
		return
	}

	c.log.Info(
		context.Background(),
		"Got token notification for delivery.",
		logging.Entry("email", notification.Email),
		logging.Entry("purpose", notification.Purpose),
	)
	_, err := c.service.Run(
		context.Background(),
		sendtokennotification.Input{
			Purpose: token.Purpose(notification.Purpose),
			Email:   common.Email(notification.Email),
			Token:   token.Value(notification.Token),
			BaseURL: notification.BaseURL,
		},
	)
	if err != nil {
		c.log.Error(
			context.Background(),
			"Could not deliver token notification, service returned an error.",
			logging.Entry("email", notification.Email),
			logging.Entry("purpose", notification.Purpose),
			logging.Entry("err", err),
		)
	}
	c.Ack(delivery)
}

func (c *Consumer) Ack(delivery amqp091.Delivery) {
	if err := delivery.Ack(true); err != nil {
		c.log.Error(context.Background(), "Could not ACK AMQP message.", logging.Entry("err", err))
	}
}

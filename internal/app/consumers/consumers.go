package consumers

import (
	"context"
	"herbarium/internal/app/deps"
	"herbarium/internal/app/services"
	dl "herbarium/internal/core/domain/logging"
	tokennotification "herbarium/internal/rabbitmq/consumers/token_notification"
)

func initTokenNotificationConsumer(deps *deps.Deps, services *services.Services) func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqTokenNotificationQueue
	tokenNotificationConsumer := tokennotification.New(
		deps.Logger,
		rabbitmqChannel,
		queue,
		services.SendTokenNotification,
	)
	if err = tokenNotificationConsumer.Consume(); err != nil {
		deps.Logger.Error(
			context.Background(),
			"Could not start RabbitMQ consuming.",
			dl.Entry("err", err),
			dl.Entry("queue", queue),
		)
		panic(err)
	}

	deps.Logger.Info(context.Background(), "Consumer has started.", dl.Entry("queue", queue))
	return func() { rabbitmqChannel.Close() }
}

func InitConsumers(deps *deps.Deps, services *services.Services) func() {
	shutdownTokenNotificationConsumer := initTokenNotificationConsumer(deps, services)

	return func() {
		shutdownTokenNotificationConsumer()
	}
}

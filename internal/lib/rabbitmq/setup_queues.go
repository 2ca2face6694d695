package rabbitmq

// QueueConfig связывает очередь с routing key exchange-а уведомлений.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые слушает отправитель уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.plan_expiring", RoutingKey: "plan_expiring"},
		{QueueName: "notification.deposit_confirmed", RoutingKey: "deposit_confirmed"},
	}
}

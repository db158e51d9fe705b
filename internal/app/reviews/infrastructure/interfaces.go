package infrastructure

import "context"

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// TransactionManager выполняет fn в рамках одной транзакции MongoDB.
// Записи в несколько коллекций (отзыв + заведение, отзыв + пользователь)
// либо фиксируются вместе, либо откатываются вместе
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

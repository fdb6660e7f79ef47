package kafka

import "time"

const (
	TopicSaleCompleted = "ledger.sale.completed"
	TopicSaleRetry     = "ledger.sale.retry"
	TopicNotifications = "ledger.notifications"
	TopicRetrySuffix   = ".retry"
	TopicDLQSuffix     = ".dlq"
	TopicSaleDLQ       = TopicSaleCompleted + TopicDLQSuffix

	PublishTimeout = 3 * time.Second

	RetryHeaderNextAt  = "x-next-at"
	RetryHeaderAttempt = "x-attempt"
	ErrorHeaderKey     = "x-error"
	ErrorCodeHeaderKey = "x-error-code"
)

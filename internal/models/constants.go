package models

const (
	// DefaultPageSize размер страницы списка столов по умолчанию
	DefaultPageSize = 30

	// MaxPageSize верхняя граница размера страницы
	MaxPageSize = 100

	// DefaultListBatchSize размер страницы при внутреннем обходе всего набора
	DefaultListBatchSize = 100

	// NotifyMaxRetries количество повторов доставки уведомления
	NotifyMaxRetries = 3

	// NotifyTimeoutSeconds таймаут одного запроса к почтовому API
	NotifyTimeoutSeconds = 10
)

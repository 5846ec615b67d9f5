package e

import (
	"errors"
	"fmt"
)

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Конфигурация окружения
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// Ошибки уровня операции (прерывают весь запуск)
	ErrConfigurationMissing = fmt.Errorf("no active provider configuration")
	ErrUnauthorized         = fmt.Errorf("caller lacks administrative capability")
	ErrUnauthenticated      = fmt.Errorf("invalid or expired credentials")

	// Ошибки поставщика
	ErrTransportFailure = fmt.Errorf("supplier transport failure")
	ErrParseFailure     = fmt.Errorf("supplier payload parse failure")
	ErrUnknownProvider  = fmt.Errorf("unknown provider")

	// Ошибки хранилищ
	ErrNotFound      = fmt.Errorf("not found")
	ErrAlreadyExists = fmt.Errorf("already exists")

	// Ошибки координации запусков
	ErrRunInProgress         = fmt.Errorf("another run is already in progress")
	ErrOrderAlreadyFulfilled = fmt.Errorf("order already forwarded to supplier")

	// 400 Bad Request
	ErrInvalidRequest   = fmt.Errorf("invalid request")
	ErrStatusBadRequest = fmt.Errorf("bad request")
	ErrUnknownAction    = fmt.Errorf("unknown action")

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// Invalid возвращает ошибку валидации запроса с пояснением.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// FatalError прерывает операцию целиком (нет конфигурации, нет прав, не удалось получить листинг).
type FatalError struct {
	Kind error
	Err  error
}

// Fatal помечает err как ошибку уровня операции вида kind.
func Fatal(kind, err error) *FatalError {
	return &FatalError{Kind: kind, Err: err}
}

func (f *FatalError) Error() string {
	if f.Err == nil || errors.Is(f.Err, f.Kind) {
		if f.Err != nil {
			return f.Err.Error()
		}
		return f.Kind.Error()
	}

	return fmt.Sprintf("%s: %s", f.Kind.Error(), f.Err.Error())
}

func (f *FatalError) Unwrap() []error {
	return []error{f.Kind, f.Err}
}

// ItemError — ошибка одного элемента пакетной операции. Не прерывает пакет,
// попадает в детали SyncLogEntry.
type ItemError struct {
	Key   string // внешний идентификатор товара
	Stage string // fetch, lookup, insert, mirror, stock, update
	Err   error
}

// Item создаёт ошибку элемента пакета.
func Item(key, stage string, err error) *ItemError {
	return &ItemError{Key: key, Stage: stage, Err: err}
}

func (i *ItemError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", i.Key, i.Stage, i.Err)
}

func (i *ItemError) Unwrap() error {
	return i.Err
}

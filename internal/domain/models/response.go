package models

// Result — единый конверт ответа {success, message?, data?}.
// При Success == false поле Data всегда пустое.
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    *T     `json:"data,omitempty"`

	// Err хранит исходную ошибку хранилища для логов, клиенту не отдаётся.
	Err error `json:"-"`
}

// Ok — успешный результат с данными.
func Ok[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Message: message, Data: &data}
}

// Done — успешный результат без данных.
func Done[T any](message string) Result[T] {
	return Result[T]{Success: true, Message: message}
}

// Fail — неуспешный результат с сообщением.
func Fail[T any](message string) Result[T] {
	return Result[T]{Success: false, Message: message}
}

// FailWith превращает ошибку хранилища в неуспешный результат.
func FailWith[T any](err error) Result[T] {
	return Result[T]{Success: false, Message: err.Error(), Err: err}
}

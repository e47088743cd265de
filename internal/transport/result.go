package transport

// Result represents either a successful value or an error.
type Result[T any] struct {
	value T
	err   error
}

// NewSuccess creates a successful Result containing the given value.
func NewSuccess[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// NewFailure creates a failed Result containing the given error.
func NewFailure[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// IsSuccess returns true if this Result contains a successful value.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// Value returns the successful value, or the zero value on failure.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the error, or nil if this is a successful Result.
func (r Result[T]) Err() error {
	return r.err
}

// Unpack returns the value and error together.
func (r Result[T]) Unpack() (T, error) {
	return r.value, r.err
}

package result

import "fmt"

// Status is the lifecycle position of a Result.
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result is the outcome of a remote operation: still loading, finished with
// data, or failed with a message. The zero value is Loading.
type Result[T any] struct {
	status  Status
	data    T
	message string
}

func Loading[T any]() Result[T] {
	return Result[T]{status: StatusLoading}
}

func Success[T any](data T) Result[T] {
	return Result[T]{status: StatusSuccess, data: data}
}

// Error returns a failed Result. An empty message becomes "Unknown error".
func Error[T any](message string) Result[T] {
	if message == "" {
		message = "Unknown error"
	}
	return Result[T]{status: StatusError, message: message}
}

// FromErr converts err into an Error result, or Success of the zero value when err is nil.
func FromErr[T any](err error) Result[T] {
	if err == nil {
		var zero T
		return Success(zero)
	}
	return Error[T](err.Error())
}

func (r Result[T]) Status() Status  { return r.status }
func (r Result[T]) IsLoading() bool { return r.status == StatusLoading }
func (r Result[T]) IsSuccess() bool { return r.status == StatusSuccess }
func (r Result[T]) IsError() bool   { return r.status == StatusError }

// Data returns the payload; it is the zero value unless the result is Success.
func (r Result[T]) Data() T { return r.data }

// Message returns the failure message; empty unless the result is Error.
func (r Result[T]) Message() string { return r.message }

func (r Result[T]) String() string {
	switch r.status {
	case StatusSuccess:
		return fmt.Sprintf("Success(%v)", r.data)
	case StatusError:
		return fmt.Sprintf("Error(%s)", r.message)
	}
	return "Loading"
}

package errors

import (
	"fmt"
	"strings"
)

// Error aggregates wrapped errors and loose context messages into a single
// error value, used on registration paths where several failures should be
// reported at once.
type Error struct {
	Errs []error
	Msgs []any
}

func New(errs ...any) error {
	err := &Error{}

	for _, msg := range errs {
		switch v := msg.(type) {
		case error:
			err.Errs = append(err.Errs, v)
		case string:
			err.Msgs = append(err.Msgs, v)
		}
	}

	return err
}

func (err *Error) Error() string {
	builder := &strings.Builder{}

	for _, err := range err.Errs {
		builder.WriteString(err.Error())
		builder.WriteString("\n")
	}

	for _, msg := range err.Msgs {
		builder.WriteString(fmt.Sprintf("%v\n", msg))
	}

	return builder.String()
}

// Unwrap exposes the wrapped errors so errors.Is and errors.As see through
// the aggregate.
func (err *Error) Unwrap() []error {
	return err.Errs
}

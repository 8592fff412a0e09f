package access

import (
	"errors"
	"fmt"

	"github.com/irsalhamdi/lms/database"
)

type outcome int

const (
	outcomeFound outcome = iota
	outcomeNotFound
	outcomeFailed
)

// lookup is the result of a collaborator call: found, not found, or failed
// with err. Failures are kept apart only so they can be logged; get treats
// them like absence.
type lookup[T any] struct {
	value   T
	outcome outcome
	err     error
}

func settle[T any](v T, err error) lookup[T] {
	switch {
	case err == nil:
		return lookup[T]{value: v, outcome: outcomeFound}
	case errors.Is(err, database.ErrDBNotFound):
		return lookup[T]{outcome: outcomeNotFound}
	default:
		return lookup[T]{outcome: outcomeFailed, err: err}
	}
}

func (l lookup[T]) get() (T, bool) {
	if l.outcome != outcomeFound {
		var zero T
		return zero, false
	}
	return l.value, true
}

func (l lookup[T]) failed() bool {
	return l.outcome == outcomeFailed
}

// attempt calls fn and settles its result. A panic in fn is reported as a
// failed lookup, since it may happen on a goroutine no middleware recovers.
func attempt[T any](fn func() (T, error)) (l lookup[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			l = lookup[T]{outcome: outcomeFailed, err: fmt.Errorf("lookup panicked: %v", rec)}
		}
	}()

	return settle[T](fn())
}

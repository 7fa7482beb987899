package stock

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLotNotFound is returned when a referenced lot does not exist.
	ErrLotNotFound = errors.New("lot not found")
	// ErrMovementNotFound is returned when a referenced movement does not exist.
	ErrMovementNotFound = errors.New("movement not found")
	// ErrInsufficientStock is returned when a discharge asks for more than
	// the available quantity. Automatic allocation fails whole: nothing is
	// persisted when the item's lots cannot cover the request.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrRefNoInUse is returned when a reference number has already been used.
	// The caller may retry with a corrected reference.
	ErrRefNoInUse = errors.New("reference number already in use")
	// ErrNotLastMovement is returned when reversal is asked for a movement
	// that is not the most recent ledger entry.
	ErrNotLastMovement = errors.New("movement is not the most recent")
	// ErrLotCodeExhausted is returned when lot code generation keeps
	// colliding with existing codes.
	ErrLotCodeExhausted = errors.New("could not generate a unique lot code")
)

// ValidationError carries every business-rule failure found for a movement,
// so the caller can report all problems together instead of one at a time.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// validationFailed wraps a list of messages into a ValidationError, or
// returns nil when the list is empty.
func validationFailed(messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	return &ValidationError{Messages: messages}
}

// lineError decorates a multi-line validation failure with the description of
// the item on the offending line.
func lineError(itemDescription string, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("item %q: %w", itemDescription, verr)
	}
	return err
}

package cdconfig

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNoFrames reports that the traversal stack was empty when a value
	// was requested. This is a bug in the decode driver, not bad input.
	ErrNoFrames = errors.New("no frames left")

	// ErrExpectSingleValue reports that a scalar was requested from a key
	// that does not carry exactly one value.
	ErrExpectSingleValue = errors.New("expected a single value")

	// ErrWrongKind reports a scalar of a different kind than requested.
	ErrWrongKind = errors.New("value kind mismatch")

	// ErrExpectKey reports an identifier request while not positioned on a
	// bound key.
	ErrExpectKey = errors.New("not positioned on a key")

	// ErrExpectStruct reports a sequence or struct request from a frame
	// that cannot serve it.
	ErrExpectStruct = errors.New("expected struct context")

	// ErrExpectChildren reports a struct request against a sequence
	// element that carries no child block.
	ErrExpectChildren = errors.New("expected a block with children")

	// ErrCharLength reports a Char decoded from a string that is not
	// exactly one character long.
	ErrCharLength = errors.New("expected a single character")

	// ErrNoValue reports a field that the document never presented. Only
	// returned by decoders configured with [Decoder.RequireValues].
	ErrNoValue = errors.New("no value")
)

// NotSupportedError reports a target type the config document model cannot
// represent, such as maps or channels.
type NotSupportedError struct {
	Type reflect.Type
}

func (n NotSupportedError) Error() string {
	return fmt.Sprintf("type %q is not supported", n.Type)
}

func wrongKindError(want ValueKind, got string) error {
	return fmt.Errorf("expected %s value, got %s: %w", want, got, ErrWrongKind)
}

package svgscale

import (
	"errors"
	"fmt"
)

// Sentinel parse errors. Callers match with errors.Is.
var (
	ErrMalformedNumber     = errors.New("malformed number")
	ErrUnknownUnit         = errors.New("unknown unit")
	ErrUnknownCommand      = errors.New("unknown path command")
	ErrMalformedOperand    = errors.New("malformed path operand")
	ErrUnknownFunction     = errors.New("unknown transform function")
	ErrArityMismatch       = errors.New("wrong number of transform arguments")
	ErrMalformedTransform  = errors.New("malformed transform list")
	ErrUnsupportedSelector = errors.New("unsupported selector")
	ErrNumericOverflow     = errors.New("numeric overflow")
)

// AttrError decorates a parse or scale error with the element and attribute
// it occurred on.
type AttrError struct {
	Tag  string
	ID   string
	Attr string
	Err  error
}

func (e *AttrError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("scale %s failed on <%s id=%q>: %v", e.Attr, e.Tag, e.ID, e.Err)
	}
	return fmt.Sprintf("scale %s failed on <%s>: %v", e.Attr, e.Tag, e.Err)
}

func (e *AttrError) Unwrap() error {
	return e.Err
}

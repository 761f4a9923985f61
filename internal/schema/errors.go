package schema

import (
	"errors"
	"fmt"
)

var (
	ErrSchemaLoad          = errors.New("schema load error")
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrUnhandledShape      = errors.New("unhandled schema shape")
)

// LoadError is returned when a schema file can't be read or isn't valid JSON.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf(`failed to load schema "%s": %s`, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == ErrSchemaLoad
}

// UnresolvedReferenceError is returned when a reference doesn't resolve
// anywhere in the store chain.
type UnresolvedReferenceError struct {
	Ref  string
	From Uri
}

func (e *UnresolvedReferenceError) Error() string {
	if len(e.From.Path) == 0 {
		return fmt.Sprintf(`unresolved reference "%s"`, e.Ref)
	}

	return fmt.Sprintf(`unresolved reference "%s" in "%s"`, e.Ref, e.From)
}

func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// UnhandledShapeError is returned for constructs the compiler refuses to
// guess a type for.
type UnhandledShapeError struct {
	Uri       Uri
	Construct string
}

func (e *UnhandledShapeError) Error() string {
	return fmt.Sprintf(`unhandled schema shape at "%s": %s`, e.Uri, e.Construct)
}

func (e *UnhandledShapeError) Is(target error) bool {
	return target == ErrUnhandledShape
}

func Unhandled(uri Uri, format string, args ...any) *UnhandledShapeError {
	return &UnhandledShapeError{
		Uri:       uri,
		Construct: fmt.Sprintf(format, args...),
	}
}

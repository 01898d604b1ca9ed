package deletion

import (
	"errors"
	"fmt"
)

// Kind classifies why a deletion was rejected
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindNotFound
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindCanceled:
		return "canceled"
	default:
		return "internal"
	}
}

// Sentinels for errors.Is against a returned *Error
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("collection not found")
	ErrInternal        = errors.New("internal error")
	ErrCanceled        = errors.New("request canceled")
)

func (k Kind) sentinel() error {
	switch k {
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindNotFound:
		return ErrNotFound
	case KindCanceled:
		return ErrCanceled
	default:
		return ErrInternal
	}
}

// Stage names one step of the cascade
type Stage string

const (
	StageAuthenticate Stage = "authenticate"
	StageLoadSchema   Stage = "load_schema"
	StageEnumerate    Stage = "enumerate_documents"
	StageExtract      Stage = "extract_media"
	StageAssets       Stage = "delete_assets"
	StageDocuments    Stage = "delete_documents"
	StageSchema       Stage = "delete_schema"
)

// Error is returned by Orchestrator.DeleteCollection for every rejected or
// failed deletion
type Error struct {
	Kind  Kind
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Kind.sentinel())
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind.sentinel(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

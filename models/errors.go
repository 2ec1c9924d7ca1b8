package models

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind int

const (
	KindDataIO Kind = iota + 1
	KindParse
	KindConfiguration
	KindNumerical
	KindUnsupported
)

// Sentinels for errors.Is checks against a Kind.
var (
	ErrDataIO        = errors.New("data io error")
	ErrParse         = errors.New("parse error")
	ErrConfiguration = errors.New("configuration error")
	ErrNumerical     = errors.New("numerical error")
	ErrUnsupported   = errors.New("unsupported combination")
)

func (k Kind) sentinel() error {
	switch k {
	case KindDataIO:
		return ErrDataIO
	case KindParse:
		return ErrParse
	case KindConfiguration:
		return ErrConfiguration
	case KindNumerical:
		return ErrNumerical
	case KindUnsupported:
		return ErrUnsupported
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error carries the kind of failure and the identity of the input that caused
// it (asset id, option name or file path).
type Error struct {
	Kind    Kind
	Subject string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Subject != "" {
		msg += ": " + e.Subject
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Errorf builds an *Error with a formatted cause.
func Errorf(kind Kind, subject, format string, args ...any) error {
	return &Error{Kind: kind, Subject: subject, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches kind and subject to err. An err that already carries a Kind
// keeps it and only gains the subject when it had none.
func Wrap(kind Kind, subject string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Subject == "" && subject != "" {
			return &Error{Kind: e.Kind, Subject: subject, Err: e.Err}
		}
		return err
	}
	return &Error{Kind: kind, Subject: subject, Err: err}
}

// KindOf reports the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

package identity

import (
	"errors"
	"fmt"
)

// Kind classifies a bridge failure by what the user can do about it.
type Kind int

const (
	// KindSetup: the deployment is misconfigured; an operator must fix it.
	KindSetup Kind = iota + 1
	// KindConnection: the provider could not be reached or rejected the
	// channel; retrying may help once the cause is fixed.
	KindConnection
	// KindLoginRequired: the user must sign in interactively.
	KindLoginRequired
)

func (k Kind) String() string {
	switch k {
	case KindSetup:
		return "setup"
	case KindConnection:
		return "connection"
	case KindLoginRequired:
		return "login_required"
	default:
		return "unknown"
	}
}

// Error is returned by every bridge operation.
//
// Remediation is a human readable hint shown on the setup screen. LoginURL
// is set for KindLoginRequired and points at the interactive login page.
type Error struct {
	Kind        Kind
	Message     string
	Remediation string
	LoginURL    string
	Err         error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("identity %s: %s", e.Kind, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind carried by err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

const remediationLIFF = "Check LINE_LIFF_ID: it must be the LIFF app id shown in the LINE Developers console " +
	"(format <channelId>-<suffix>) and belong to the channel that issues the access tokens."

func setupError(msg string) *Error {
	return &Error{Kind: KindSetup, Message: msg, Remediation: remediationLIFF}
}

func connectionError(msg, remediation string, err error) *Error {
	return &Error{Kind: KindConnection, Message: msg, Remediation: remediation, Err: err}
}

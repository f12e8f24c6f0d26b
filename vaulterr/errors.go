// Package vaulterr defines the closed error taxonomy surfaced to callers.
// Heterogeneous SDK failures are mapped onto these kinds once, at the
// boundary where the third-party call is made, never re-derived at call
// sites.
package vaulterr

import (
	"errors"
	"fmt"
)

// Kind error kind
type Kind int

const (
	KindUnknown Kind = iota
	KindWalletNotConnected
	KindUserRejected
	KindInsufficientFunds
	KindChainExecutionFailed
	KindReceiptTimeout
	KindInvalidAmount
	KindUnsupportedFormat
	KindUploadFailed
	KindContentUnavailable
	KindAllGatewaysFailed
	KindInvalidUnlockDate
	KindSenderNotRegistered
	KindRecipientNotRegistered
	KindUsernameTaken
	KindInvalidUsernameLength
	KindNotOpenable
	KindVaultNotFound
	KindEventNotFound
)

// String return the kind name
func (k Kind) String() string {
	switch k {
	case KindWalletNotConnected:
		return "WALLET_NOT_CONNECTED"
	case KindUserRejected:
		return "USER_REJECTED"
	case KindInsufficientFunds:
		return "INSUFFICIENT_FUNDS"
	case KindChainExecutionFailed:
		return "CHAIN_EXECUTION_FAILED"
	case KindReceiptTimeout:
		return "RECEIPT_TIMEOUT"
	case KindInvalidAmount:
		return "INVALID_AMOUNT"
	case KindUnsupportedFormat:
		return "UNSUPPORTED_FORMAT"
	case KindUploadFailed:
		return "UPLOAD_FAILED"
	case KindContentUnavailable:
		return "CONTENT_UNAVAILABLE"
	case KindAllGatewaysFailed:
		return "ALL_GATEWAYS_FAILED"
	case KindInvalidUnlockDate:
		return "INVALID_UNLOCK_DATE"
	case KindSenderNotRegistered:
		return "SENDER_NOT_REGISTERED"
	case KindRecipientNotRegistered:
		return "RECIPIENT_NOT_REGISTERED"
	case KindUsernameTaken:
		return "USERNAME_TAKEN"
	case KindInvalidUsernameLength:
		return "INVALID_USERNAME_LENGTH"
	case KindNotOpenable:
		return "NOT_OPENABLE"
	case KindVaultNotFound:
		return "VAULT_NOT_FOUND"
	case KindEventNotFound:
		return "EVENT_NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// Error a classified error with an optional wrapped cause
type Error struct {
	Kind     Kind
	Message  string
	Original error
}

func (e *Error) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Original)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Original
}

// New create a classified error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap create a classified error wrapping a cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Original: err}
}

// KindOf recover the kind from an error chain; KindUnknown when the
// chain carries no classified error.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return KindUnknown
}

// Is report whether the error chain carries the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

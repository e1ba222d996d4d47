package errors

import (
	"errors"
	"fmt"
)

// Kind 장바구니 도메인에서 발생하는 에러의 닫힌 분류
type Kind int

const (
	KindUnknown Kind = iota
	KindCartNotFound
	KindProductNotInCart
	KindInvalidQuantity
	KindInvalidInput
	KindDuplicateProduct
	KindPersistenceFailure
)

var kindNames = map[Kind]string{
	KindUnknown:            "Unknown",
	KindCartNotFound:       "CartNotFound",
	KindProductNotInCart:   "ProductNotInCart",
	KindInvalidQuantity:    "InvalidQuantity",
	KindInvalidInput:       "InvalidInput",
	KindDuplicateProduct:   "DuplicateProduct",
	KindPersistenceFailure: "PersistenceFailure",
}

var kindCodes = map[Kind]string{
	KindCartNotFound:       CartNotFound,
	KindProductNotInCart:   CartProductNotFound,
	KindInvalidQuantity:    ValidationInvalidQuantity,
	KindInvalidInput:       ValidationInvalidInput,
	KindDuplicateProduct:   CartDuplicateProduct,
	KindPersistenceFailure: InternalDatabaseError,
}

var kindMessages = map[Kind]string{
	KindCartNotFound:       "cart not found",
	KindProductNotInCart:   "product not found in cart",
	KindInvalidQuantity:    "quantity must be a positive integer",
	KindInvalidInput:       "invalid input",
	KindDuplicateProduct:   "product already in cart",
	KindPersistenceFailure: "cart storage failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Code 응답 본문에 실리는 에러 코드
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return InternalServerError
}

// Error carries a Kind plus a human readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrCartNotFound       = &Error{Kind: KindCartNotFound}
	ErrProductNotInCart   = &Error{Kind: KindProductNotInCart}
	ErrInvalidQuantity    = &Error{Kind: KindInvalidQuantity}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrDuplicateProduct   = &Error{Kind: KindDuplicateProduct}
	ErrPersistenceFailure = &Error{Kind: KindPersistenceFailure}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = kindMessages[e.Kind]
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// PublicMessage omits the wrapped cause so driver details never reach clients.
func (e *Error) PublicMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if msg, ok := kindMessages[e.Kind]; ok {
		return msg
	}
	return "internal server error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Is and As forward to the standard library for callers that import this
// package under the name errors.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// KindOf reports the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

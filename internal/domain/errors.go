package domain

import (
	"errors"
	"fmt"
)

// Kind - класс доменной ошибки. Нулевое значение означает, что ошибка не доменная.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error - ожидаемый результат бизнес-операции, отличный от успеха.
// Две ошибки с одинаковым Code считаются равными для errors.Is.
type Error struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrPublicationNotFound         = &Error{Kind: KindNotFound, Code: "publication_not_found", Message: "publication not found"}
	ErrCommentNotFound             = &Error{Kind: KindNotFound, Code: "comment_not_found", Message: "comment not found"}
	ErrReplyTargetNotInPublication = &Error{Kind: KindNotFound, Code: "reply_target_not_in_publication", Message: "reply comment not found in publication"}
	ErrImageAlreadyExists          = &Error{Kind: KindConflict, Code: "image_already_exists", Message: "publication already has an image"}

	// Используются только как цели для errors.Is, сообщение берется из ContentTooShort/ContentTooLong.
	ErrContentTooShort = &Error{Kind: KindValidation, Code: "content_too_short"}
	ErrContentTooLong  = &Error{Kind: KindValidation, Code: "content_too_long"}
)

func ContentTooShort(minLength int) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    ErrContentTooShort.Code,
		Message: fmt.Sprintf("content length is less than %d characters", minLength),
	}
}

func ContentTooLong(maxLength int) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    ErrContentTooLong.Code,
		Message: fmt.Sprintf("content length is greater than %d characters", maxLength),
	}
}

// NewValidationError заворачивает произвольное правило валидации в доменную ошибку.
func NewValidationError(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// KindOf возвращает класс доменной ошибки или 0 для инфраструктурных ошибок.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

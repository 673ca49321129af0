// Package content содержит правила проверки текста и извлечение хэштегов.
package content

import (
	"errors"
	"unicode/utf8"

	"github.com/gh-network/publications/internal/domain"
)

var ErrNegativeLength = errors.New("length limit must not be negative")

// Validator проверяет текст по бизнес-правилам.
// Ошибка всегда *domain.Error с Kind == domain.KindValidation.
type Validator interface {
	Validate(content string) error
}

// ValidatorFunc позволяет использовать обычную функцию как Validator.
type ValidatorFunc func(content string) error

func (f ValidatorFunc) Validate(content string) error {
	return f(content)
}

// MinLength отклоняет текст короче заданного числа символов.
type MinLength struct {
	min int
}

func NewMinLength(min int) (*MinLength, error) {
	if min < 0 {
		return nil, ErrNegativeLength
	}
	return &MinLength{min: min}, nil
}

func (v *MinLength) Validate(content string) error {
	if utf8.RuneCountInString(content) < v.min {
		return domain.ContentTooShort(v.min)
	}
	return nil
}

// MaxLength отклоняет текст длиннее заданного числа символов.
type MaxLength struct {
	max int
}

func NewMaxLength(max int) (*MaxLength, error) {
	if max < 0 {
		return nil, ErrNegativeLength
	}
	return &MaxLength{max: max}, nil
}

func (v *MaxLength) Validate(content string) error {
	if utf8.RuneCountInString(content) > v.max {
		return domain.ContentTooLong(v.max)
	}
	return nil
}

// Chain применяет правила по порядку и возвращает первую ошибку.
type Chain []Validator

func (c Chain) Validate(content string) error {
	for _, v := range c {
		if err := v.Validate(content); err != nil {
			return err
		}
	}
	return nil
}

// NewLengthValidator собирает стандартный набор правил: минимум и, если max > 0, максимум.
func NewLengthValidator(min, max int) (Validator, error) {
	minRule, err := NewMinLength(min)
	if err != nil {
		return nil, err
	}
	if max <= 0 {
		return minRule, nil
	}
	maxRule, err := NewMaxLength(max)
	if err != nil {
		return nil, err
	}
	return Chain{minRule, maxRule}, nil
}

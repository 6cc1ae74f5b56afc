package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDocumentNotFound возвращается хранилищем, если документа с таким ID нет.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentConflict возвращается хранилищем при вставке документа с уже занятым ID.
	ErrDocumentConflict = errors.New("document already exists")
	// ErrValidation - общий признак ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")
)

// Типы нарушений валидации.
const (
	ViolationMissing          = "missing"
	ViolationStringType       = "string_type"
	ViolationStringTooShort   = "string_too_short"
	ViolationStringTooLong    = "string_too_long"
	ViolationIntType          = "int_type"
	ViolationIntFromFloat     = "int_from_float"
	ViolationGreaterThanEqual = "greater_than_equal"
	ViolationLessThanEqual    = "less_than_equal"
	ViolationJSONInvalid      = "json_invalid"
	ViolationModelType        = "model_type"
)

// FieldViolation описывает одно нарушенное ограничение поля.
type FieldViolation struct {
	Field   string
	Type    string
	Message string
	Input   any
}

// ValidationError перечисляет все нарушения, найденные во входных данных.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Is позволяет проверять ошибку через errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError оборачивает отказ хранилища документов (недоступность, авторизация,
// неожиданный ответ). Не повторяется и поднимается до HTTP-слоя как 500.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNotFound проверяет, что хранилище сообщило об отсутствии документа.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}

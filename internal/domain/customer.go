package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// NameMinLength и NameMaxLength ограничивают длину имени и фамилии в символах.
	NameMinLength = 1
	NameMaxLength = 100
	// AgeMin и AgeMax задают допустимый диапазон возраста (включительно).
	AgeMin = 0
	AgeMax = 150
)

// Названия полей клиента во внешнем представлении.
const (
	FieldID        = "id"
	FieldFirstname = "firstname"
	FieldLastname  = "lastname"
	FieldAge       = "age"
)

// Customer - единственная сущность сервиса. ID неизменяем после создания
// и одновременно служит ключом партиции в хранилище документов.
type Customer struct {
	ID        string
	Firstname string
	Lastname  string
	Age       int
}

// CustomerCreate содержит провалидированные данные для создания клиента.
type CustomerCreate struct {
	Firstname string
	Lastname  string
	Age       int
}

// CustomerUpdate - разреженное обновление: nil означает "поле не передано".
type CustomerUpdate struct {
	Firstname *string
	Lastname  *string
	Age       *int
}

// IsEmpty сообщает, что обновление не содержит ни одного поля.
func (u CustomerUpdate) IsEmpty() bool {
	return u.Firstname == nil && u.Lastname == nil && u.Age == nil
}

// NewCustomer собирает полную запись клиента из данных создания и выданного ID.
func NewCustomer(id string, in CustomerCreate) Customer {
	return Customer{
		ID:        id,
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Age:       in.Age,
	}
}

// Merge накладывает явно переданные поля обновления на существующую запись.
// ID всегда берётся из existing.
func Merge(existing Customer, update CustomerUpdate) Customer {
	merged := existing
	if update.Firstname != nil {
		merged.Firstname = *update.Firstname
	}
	if update.Lastname != nil {
		merged.Lastname = *update.Lastname
	}
	if update.Age != nil {
		merged.Age = *update.Age
	}
	return merged
}

// ValidateForCreate проверяет сырой JSON-объект запроса на создание.
// Все три поля обязательны; явный null считается значением неверного типа.
// Возвращается *ValidationError со всеми нарушениями сразу.
func ValidateForCreate(input map[string]any) (CustomerCreate, error) {
	var (
		out        CustomerCreate
		violations []FieldViolation
	)

	for _, field := range []string{FieldFirstname, FieldLastname, FieldAge} {
		raw, ok := input[field]
		if !ok {
			violations = append(violations, FieldViolation{
				Field:   field,
				Type:    ViolationMissing,
				Message: "Field required",
				Input:   input,
			})
			continue
		}
		switch field {
		case FieldFirstname:
			out.Firstname, violations = checkName(field, raw, violations)
		case FieldLastname:
			out.Lastname, violations = checkName(field, raw, violations)
		case FieldAge:
			out.Age, violations = checkAge(raw, violations)
		}
	}

	if len(violations) > 0 {
		return CustomerCreate{}, &ValidationError{Violations: violations}
	}
	return out, nil
}

// ValidateForUpdate проверяет частичное обновление: отсутствующее поле (или явный null)
// пропускается, переданное поле должно удовлетворять тем же ограничениям, что и при создании.
func ValidateForUpdate(input map[string]any) (CustomerUpdate, error) {
	var (
		out        CustomerUpdate
		violations []FieldViolation
	)

	if raw, ok := input[FieldFirstname]; ok && raw != nil {
		var name string
		before := len(violations)
		name, violations = checkName(FieldFirstname, raw, violations)
		if len(violations) == before {
			out.Firstname = &name
		}
	}
	if raw, ok := input[FieldLastname]; ok && raw != nil {
		var name string
		before := len(violations)
		name, violations = checkName(FieldLastname, raw, violations)
		if len(violations) == before {
			out.Lastname = &name
		}
	}
	if raw, ok := input[FieldAge]; ok && raw != nil {
		var age int
		before := len(violations)
		age, violations = checkAge(raw, violations)
		if len(violations) == before {
			out.Age = &age
		}
	}

	if len(violations) > 0 {
		return CustomerUpdate{}, &ValidationError{Violations: violations}
	}
	return out, nil
}

func checkName(field string, raw any, violations []FieldViolation) (string, []FieldViolation) {
	value, ok := raw.(string)
	if !ok {
		return "", append(violations, FieldViolation{
			Field:   field,
			Type:    ViolationStringType,
			Message: "Input should be a valid string",
			Input:   raw,
		})
	}

	length := utf8.RuneCountInString(value)
	switch {
	case length < NameMinLength:
		violations = append(violations, FieldViolation{
			Field:   field,
			Type:    ViolationStringTooShort,
			Message: fmt.Sprintf("String should have at least %d character", NameMinLength),
			Input:   value,
		})
	case length > NameMaxLength:
		violations = append(violations, FieldViolation{
			Field:   field,
			Type:    ViolationStringTooLong,
			Message: fmt.Sprintf("String should have at most %d characters", NameMaxLength),
			Input:   value,
		})
	}
	return value, violations
}

func checkAge(raw any, violations []FieldViolation) (int, []FieldViolation) {
	value, ok := toFloat(raw)
	if !ok {
		return 0, append(violations, FieldViolation{
			Field:   FieldAge,
			Type:    ViolationIntType,
			Message: "Input should be a valid integer",
			Input:   raw,
		})
	}
	if value != math.Trunc(value) {
		return 0, append(violations, FieldViolation{
			Field:   FieldAge,
			Type:    ViolationIntFromFloat,
			Message: "Input should be a valid integer, got a number with a fractional part",
			Input:   raw,
		})
	}

	switch {
	case value < AgeMin:
		return 0, append(violations, FieldViolation{
			Field:   FieldAge,
			Type:    ViolationGreaterThanEqual,
			Message: fmt.Sprintf("Input should be greater than or equal to %d", AgeMin),
			Input:   raw,
		})
	case value > AgeMax:
		return 0, append(violations, FieldViolation{
			Field:   FieldAge,
			Type:    ViolationLessThanEqual,
			Message: fmt.Sprintf("Input should be less than or equal to %d", AgeMax),
			Input:   raw,
		})
	}
	return int(value), violations
}

// toFloat приводит возраст к числу в нестрогом режиме: числовые строки разбираются,
// bool даёт 0 или 1. Нечисловые строки и прочие типы не приводятся.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case json.Number:
		return parseNumber(string(v))
	case string:
		return parseNumber(strings.TrimSpace(v))
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := json.Number(s).Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

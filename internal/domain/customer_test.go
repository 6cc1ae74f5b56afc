package domain_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/customers/internal/domain"
)

// helper для валидного тела запроса на создание.
func validCreateInput() map[string]any {
	return map[string]any{
		"firstname": "John",
		"lastname":  "Doe",
		"age":       json.Number("30"),
	}
}

func violationTypes(t *testing.T, err error) map[string]string {
	t.Helper()

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *domain.ValidationError, got %T (%v)", err, err)
	}
	result := make(map[string]string, len(verr.Violations))
	for _, v := range verr.Violations {
		result[v.Field] = v.Type
	}
	return result
}

func TestValidateForCreate_Ok(t *testing.T) {
	in, err := domain.ValidateForCreate(validCreateInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Firstname != "John" || in.Lastname != "Doe" || in.Age != 30 {
		t.Fatalf("unexpected result: %+v", in)
	}
}

func TestValidateForCreate_Boundaries(t *testing.T) {
	cases := []struct {
		name string
		mut  func(m map[string]any)
	}{
		{name: "age zero", mut: func(m map[string]any) { m["age"] = json.Number("0") }},
		{name: "age max", mut: func(m map[string]any) { m["age"] = json.Number("150") }},
		{name: "age integral float", mut: func(m map[string]any) { m["age"] = json.Number("42.0") }},
		{name: "single char names", mut: func(m map[string]any) { m["firstname"] = "J"; m["lastname"] = "D" }},
		{name: "max length name", mut: func(m map[string]any) { m["firstname"] = strings.Repeat("a", 100) }},
		{name: "unicode counted by characters", mut: func(m map[string]any) { m["lastname"] = strings.Repeat("ж", 100) }},
		{name: "unknown keys ignored", mut: func(m map[string]any) { m["nickname"] = "jd" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mut(input)
			if _, err := domain.ValidateForCreate(input); err != nil {
				t.Fatalf("expected valid input, got %v", err)
			}
		})
	}
}

func TestValidateForCreate_Errors(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(m map[string]any)
		field string
		want  string
	}{
		{name: "empty firstname", mut: func(m map[string]any) { m["firstname"] = "" }, field: "firstname", want: domain.ViolationStringTooShort},
		{name: "empty lastname", mut: func(m map[string]any) { m["lastname"] = "" }, field: "lastname", want: domain.ViolationStringTooShort},
		{name: "long firstname", mut: func(m map[string]any) { m["firstname"] = strings.Repeat("a", 101) }, field: "firstname", want: domain.ViolationStringTooLong},
		{name: "negative age", mut: func(m map[string]any) { m["age"] = json.Number("-1") }, field: "age", want: domain.ViolationGreaterThanEqual},
		{name: "age above max", mut: func(m map[string]any) { m["age"] = json.Number("151") }, field: "age", want: domain.ViolationLessThanEqual},
		{name: "fractional age", mut: func(m map[string]any) { m["age"] = json.Number("30.5") }, field: "age", want: domain.ViolationIntFromFloat},
		{name: "non-numeric string age", mut: func(m map[string]any) { m["age"] = "thirty" }, field: "age", want: domain.ViolationIntType},
		{name: "empty string age", mut: func(m map[string]any) { m["age"] = "" }, field: "age", want: domain.ViolationIntType},
		{name: "fractional string age", mut: func(m map[string]any) { m["age"] = "30.5" }, field: "age", want: domain.ViolationIntFromFloat},
		{name: "nan string age", mut: func(m map[string]any) { m["age"] = "NaN" }, field: "age", want: domain.ViolationIntType},
		{name: "object age", mut: func(m map[string]any) { m["age"] = map[string]any{} }, field: "age", want: domain.ViolationIntType},
		{name: "numeric firstname", mut: func(m map[string]any) { m["firstname"] = json.Number("1") }, field: "firstname", want: domain.ViolationStringType},
		{name: "missing lastname", mut: func(m map[string]any) { delete(m, "lastname") }, field: "lastname", want: domain.ViolationMissing},
		{name: "null age", mut: func(m map[string]any) { m["age"] = nil }, field: "age", want: domain.ViolationIntType},
		{name: "null firstname", mut: func(m map[string]any) { m["firstname"] = nil }, field: "firstname", want: domain.ViolationStringType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mut(input)

			_, err := domain.ValidateForCreate(input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			types := violationTypes(t, err)
			if types[tc.field] != tc.want {
				t.Fatalf("expected %s violation on %s, got %v", tc.want, tc.field, types)
			}
		})
	}
}

func TestValidateForCreate_LaxAgeCoercion(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want int
	}{
		{name: "numeric string", raw: "30", want: 30},
		{name: "padded numeric string", raw: " 42 ", want: 42},
		{name: "integral float string", raw: "42.0", want: 42},
		{name: "true", raw: true, want: 1},
		{name: "false", raw: false, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			input["age"] = tc.raw

			in, err := domain.ValidateForCreate(input)
			if err != nil {
				t.Fatalf("expected valid input, got %v", err)
			}
			if in.Age != tc.want {
				t.Fatalf("expected age %d, got %d", tc.want, in.Age)
			}
		})
	}
}

func TestValidateForCreate_NullReportsValueNotBody(t *testing.T) {
	input := validCreateInput()
	input["firstname"] = nil

	_, err := domain.ValidateForCreate(input)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *domain.ValidationError, got %v", err)
	}
	if len(verr.Violations) != 1 {
		t.Fatalf("expected one violation, got %+v", verr.Violations)
	}
	if verr.Violations[0].Type != domain.ViolationStringType || verr.Violations[0].Input != nil {
		t.Fatalf("expected string_type with null input, got %+v", verr.Violations[0])
	}
}

func TestValidateForCreate_ListsEveryViolation(t *testing.T) {
	_, err := domain.ValidateForCreate(map[string]any{
		"firstname": "",
		"age":       json.Number("200"),
	})

	types := violationTypes(t, err)
	if len(types) != 3 {
		t.Fatalf("expected violations for all three fields, got %v", types)
	}
	if types["firstname"] != domain.ViolationStringTooShort {
		t.Fatalf("unexpected firstname violation: %s", types["firstname"])
	}
	if types["lastname"] != domain.ViolationMissing {
		t.Fatalf("unexpected lastname violation: %s", types["lastname"])
	}
	if types["age"] != domain.ViolationLessThanEqual {
		t.Fatalf("unexpected age violation: %s", types["age"])
	}

	var verr *domain.ValidationError
	_ = errors.As(err, &verr)
	if verr.Violations[0].Input != "" {
		t.Fatalf("expected offending value to be reported, got %#v", verr.Violations[0].Input)
	}
}

func TestValidateForUpdate_Sparse(t *testing.T) {
	update, err := domain.ValidateForUpdate(map[string]any{"age": json.Number("31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.Firstname != nil || update.Lastname != nil {
		t.Fatalf("expected absent names, got %+v", update)
	}
	if update.Age == nil || *update.Age != 31 {
		t.Fatalf("expected age 31, got %+v", update.Age)
	}
}

func TestValidateForUpdate_NullIsAbsent(t *testing.T) {
	update, err := domain.ValidateForUpdate(map[string]any{"firstname": nil, "lastname": "Roe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.Firstname != nil {
		t.Fatal("explicit null must not produce a value")
	}
	if update.Lastname == nil || *update.Lastname != "Roe" {
		t.Fatalf("unexpected lastname: %v", update.Lastname)
	}
}

func TestValidateForUpdate_Empty(t *testing.T) {
	update, err := domain.ValidateForUpdate(map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !update.IsEmpty() {
		t.Fatalf("expected empty update, got %+v", update)
	}
}

func TestValidateForUpdate_InvalidPresentField(t *testing.T) {
	_, err := domain.ValidateForUpdate(map[string]any{
		"lastname": "",
		"age":      json.Number("-5"),
	})

	types := violationTypes(t, err)
	if len(types) != 2 {
		t.Fatalf("expected 2 violations, got %v", types)
	}
	if types["lastname"] != domain.ViolationStringTooShort || types["age"] != domain.ViolationGreaterThanEqual {
		t.Fatalf("unexpected violations: %v", types)
	}
}

func TestMerge(t *testing.T) {
	existing := domain.Customer{ID: "c-1", Firstname: "John", Lastname: "Doe", Age: 30}

	age := 31
	merged := domain.Merge(existing, domain.CustomerUpdate{Age: &age})
	if merged != (domain.Customer{ID: "c-1", Firstname: "John", Lastname: "Doe", Age: 31}) {
		t.Fatalf("unexpected merge result: %+v", merged)
	}

	first, last := "Jane", "Roe"
	merged = domain.Merge(existing, domain.CustomerUpdate{Firstname: &first, Lastname: &last})
	if merged.ID != "c-1" || merged.Firstname != "Jane" || merged.Lastname != "Roe" || merged.Age != 30 {
		t.Fatalf("unexpected merge result: %+v", merged)
	}

	if got := domain.Merge(existing, domain.CustomerUpdate{}); got != existing {
		t.Fatalf("empty update must keep record intact, got %+v", got)
	}
}

func TestNewCustomer(t *testing.T) {
	c := domain.NewCustomer("id-1", domain.CustomerCreate{Firstname: "A", Lastname: "B", Age: 1})
	if c.ID != "id-1" || c.Firstname != "A" || c.Lastname != "B" || c.Age != 1 {
		t.Fatalf("unexpected customer: %+v", c)
	}
}

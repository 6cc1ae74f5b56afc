package rest

import (
	"encoding/json"
	"net/http"

	"github.com/vladislavdragonenkov/customers/internal/domain"
)

// customerResponse - JSON-представление клиента в ответах API.
type customerResponse struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Age       int    `json:"age"`
}

func toResponse(c domain.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		Firstname: c.Firstname,
		Lastname:  c.Lastname,
		Age:       c.Age,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type violationDetail struct {
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Type  string   `json:"type"`
	Input any      `json:"input"`
}

type validationResponse struct {
	Detail []violationDetail `json:"detail"`
}

func newValidationResponse(violations []domain.FieldViolation) validationResponse {
	details := make([]violationDetail, 0, len(violations))
	for _, v := range violations {
		loc := []string{"body"}
		if v.Field != "" {
			loc = append(loc, v.Field)
		}
		details = append(details, violationDetail{
			Loc:   loc,
			Msg:   v.Message,
			Type:  v.Type,
			Input: v.Input,
		})
	}
	return validationResponse{Detail: details}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

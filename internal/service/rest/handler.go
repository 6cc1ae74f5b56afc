package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customers/internal/domain"
)

const (
	// MaxBodyBytes ограничивает размер тела запроса.
	MaxBodyBytes = 1 << 20

	rootMessage = "Customer API is running"
)

// Handler обслуживает CRUD-эндпоинты клиентов поверх CustomerRepository.
type Handler struct {
	repo   domain.CustomerRepository
	logger *log.Entry
}

// NewHandler создаёт HTTP-обработчики клиентов.
func NewHandler(repo domain.CustomerRepository, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "rest")
	}
	return &Handler{repo: repo, logger: logger}
}

// Register регистрирует маршруты в chi.Router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.root)
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: rootMessage})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	customers, err := h.repo.List(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	body := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		body = append(body, toResponse(c))
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	customer, found, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if !found {
		notFound(w, id)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(customer))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeObject(w, r)
	if !ok {
		return
	}

	data, err := domain.ValidateForCreate(input)
	if err != nil {
		h.validationFailed(w, err)
		return
	}

	customer, err := h.repo.Create(r.Context(), data)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(customer))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	input, ok := h.decodeObject(w, r)
	if !ok {
		return
	}

	data, err := domain.ValidateForUpdate(input)
	if err != nil {
		h.validationFailed(w, err)
		return
	}

	customer, found, err := h.repo.Update(r.Context(), id, data)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if !found {
		notFound(w, id)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(customer))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	removed, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if !removed {
		notFound(w, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeObject читает тело как JSON-объект. Числа остаются json.Number,
// чтобы валидация различала 42 и 42.5. При ошибке ответ уже записан.
func (h *Handler) decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", MaxBodyBytes))
			return nil, false
		}
		writeDetail(w, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil || !atEOF(dec) {
		h.bodyRejected(w, domain.FieldViolation{
			Type:    domain.ViolationJSONInvalid,
			Message: "JSON decode error",
			Input:   string(raw),
		})
		return nil, false
	}

	object, ok := payload.(map[string]any)
	if !ok {
		h.bodyRejected(w, domain.FieldViolation{
			Type:    domain.ViolationModelType,
			Message: "Input should be a valid dictionary or object to extract fields from",
			Input:   payload,
		})
		return nil, false
	}
	return object, true
}

func atEOF(dec *json.Decoder) bool {
	var trailing any
	return errors.Is(dec.Decode(&trailing), io.EOF)
}

func (h *Handler) bodyRejected(w http.ResponseWriter, violation domain.FieldViolation) {
	writeJSON(w, http.StatusUnprocessableEntity, newValidationResponse([]domain.FieldViolation{violation}))
}

func (h *Handler) validationFailed(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, newValidationResponse(verr.Violations))
		return
	}
	writeDetail(w, http.StatusUnprocessableEntity, err.Error())
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	requestLogger(h.logger, r).WithError(err).Error("customer request failed")
	writeDetail(w, http.StatusInternalServerError, err.Error())
}

func notFound(w http.ResponseWriter, id string) {
	writeDetail(w, http.StatusNotFound, fmt.Sprintf("Customer %s not found", id))
}

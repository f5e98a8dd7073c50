package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"student-management/internal/httputil"
	"student-management/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/students", h.CreateStudent)
	router.Get("/students", h.GetAllStudents)
	router.Get("/students/department/{department}", h.GetStudentsByDepartment)
	router.Get("/students/email/{email}", h.GetStudentByEmail)
	router.Get("/students/{id}", h.GetStudent)
	router.Put("/students/{id}", h.UpdateStudent)
	router.Delete("/students/{id}", h.DeleteStudent)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeAndValidate(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "creating student", "email", input.Email)
	created, err := h.service.CreateStudent(r.Context(), &Student{
		Name:       input.Name,
		Email:      input.Email,
		Department: input.Department,
	})
	if err != nil {
		h.handleServiceError(w, r, err, "", input.Email)
		return
	}

	h.metrics.RecordStudentCreated(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetAllStudents(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "fetching all students")

	students, err := h.service.GetAllStudents(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "", "")
		return
	}

	h.metrics.RecordStudentsListViewed(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "fetching student by ID", "id", id)
	found, err := h.service.GetStudentByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err, notFoundByID(id), "")
		return
	}

	h.metrics.RecordStudentViewed(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, found)
}

func (h *Handler) GetStudentByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	h.logger.InfoContext(r.Context(), "fetching student by email")
	found, err := h.service.GetStudentByEmail(r.Context(), email)
	if err != nil {
		h.handleServiceError(w, r, err, fmt.Sprintf("Student not found with email: %s", email), "")
		return
	}

	h.metrics.RecordStudentViewed(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, found)
}

func (h *Handler) GetStudentsByDepartment(w http.ResponseWriter, r *http.Request) {
	department := chi.URLParam(r, "department")

	h.logger.InfoContext(r.Context(), "fetching students by department", "department", department)
	students, err := h.service.GetStudentsByDepartment(r.Context(), department)
	if err != nil {
		h.handleServiceError(w, r, err, "", "")
		return
	}

	h.metrics.RecordDepartmentFiltered(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeAndValidate(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "updating student", "id", id, "email", input.Email)
	updated, err := h.service.UpdateStudent(r.Context(), id, &Student{
		Name:       input.Name,
		Email:      input.Email,
		Department: input.Department,
	})
	if err != nil {
		h.handleServiceError(w, r, err, notFoundByID(id), input.Email)
		return
	}

	h.metrics.RecordStudentUpdated(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "deleting student", "id", id)
	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err, notFoundByID(id), "")
		return
	}

	h.metrics.RecordStudentDeleted(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, r, http.StatusBadRequest, "Invalid student ID")
		return 0, false
	}
	return id, true
}

// decodeAndValidate parses the request body, trims the text fields and runs
// field validation. All violations are collected into one response, not just
// the first.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request) (*Input, bool) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Department = strings.TrimSpace(input.Department)

	if err := h.validate.Struct(&input); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			httputil.RespondWithValidationError(w, r, fieldErrorMap(ve))
			return nil, false
		}
		httputil.RespondWithError(w, r, http.StatusBadRequest, "Invalid request")
		return nil, false
	}

	return &input, true
}

// handleServiceError is the single dispatch point from domain errors to HTTP
// status codes. notFoundMsg/email parameterize the user-facing messages; the
// fallbacks cover operations that cannot hit that error kind.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, email string) {
	if errors.Is(err, ErrStudentNotFound) {
		if notFoundMsg == "" {
			notFoundMsg = "Student not found"
		}
		h.logger.InfoContext(r.Context(), "student not found")
		httputil.RespondWithError(w, r, http.StatusNotFound, notFoundMsg)
		return
	}
	if errors.Is(err, ErrDuplicateEmail) {
		h.logger.InfoContext(r.Context(), "duplicate email", "email", email)
		httputil.RespondWithError(w, r, http.StatusConflict,
			fmt.Sprintf("Student with email '%s' already exists", email))
		return
	}
	h.logger.ErrorContext(r.Context(), "internal error", "error", err)
	httputil.RespondWithError(w, r, http.StatusInternalServerError, "Internal server error")
}

func notFoundByID(id int) string {
	return fmt.Sprintf("Student not found with id: %d", id)
}

// fieldErrorMap converts validator errors into the fieldErrors envelope
// section, keyed by the JSON field name.
func fieldErrorMap(ve validator.ValidationErrors) map[string]string {
	fieldErrors := make(map[string]string, len(ve))
	for _, fe := range ve {
		fieldErrors[strings.ToLower(fe.Field())] = fieldMessage(fe)
	}
	return fieldErrors
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Email should be valid"
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/ragchef/internal/ports/inbound"
	apperrors "github.com/alchemorsel/ragchef/pkg/errors"
)

const maxBodyBytes = 4 << 20

// APIHandlers handles REST API requests
type APIHandlers struct {
	assistant inbound.RecipeAssistant
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(assistant inbound.RecipeAssistant, logger *zap.Logger) *APIHandlers {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &APIHandlers{
		assistant: assistant,
		validate:  validate,
		logger:    logger.Named("api"),
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SearchRequest is the body of POST /recipes/search
type SearchRequest struct {
	Query       string   `json:"query,omitempty"`
	Ingredients []string `json:"ingredients" validate:"required,min=1,dive,required"`
	Conditions  string   `json:"conditions,omitempty" validate:"max=500"`
}

// GenerateRequest is the body of POST /recipes/generate
type GenerateRequest struct {
	Ingredients         []string `json:"ingredients" validate:"required,min=1,dive,required"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty" validate:"dive,required"`
	CookingTime         string   `json:"cooking_time,omitempty" validate:"max=100"`
	Difficulty          string   `json:"difficulty_level,omitempty" validate:"omitempty,oneof=easy medium hard"`
	Cuisine             string   `json:"cuisine_type,omitempty" validate:"max=100"`
	Servings            int      `json:"servings,omitempty" validate:"min=0,max=100"`
	FlavorProfile       string   `json:"flavor_profile,omitempty" validate:"max=100"`
}

// IngredientsRequest is the body of the ingredient validation and nutrition endpoints
type IngredientsRequest struct {
	Ingredients []string `json:"ingredients" validate:"required,min=1,dive,required"`
}

// DocumentsRequest is the body of POST /documents
type DocumentsRequest struct {
	Documents []recipe.Document `json:"documents" validate:"required,min=1"`
}

// ValidationResult is returned by POST /ingredients/validate
type ValidationResult struct {
	Valid    []string `json:"valid"`
	Rejected []string `json:"rejected"`
}

// SearchRecipes handles POST /api/v1/recipes/search
func (h *APIHandlers) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !h.decode(w, r, &req) {
		return
	}
	conditions := req.Conditions
	if conditions == "" {
		conditions = req.Query
	}

	result := h.assistant.Search(r.Context(), req.Ingredients, conditions)
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result, Message: resultMessage(result)})
}

// GenerateRecipe handles POST /api/v1/recipes/generate
func (h *APIHandlers) GenerateRecipe(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}

	result := h.assistant.ProcessQuery(r.Context(), recipe.Query{
		Ingredients:         req.Ingredients,
		DietaryRestrictions: req.DietaryRestrictions,
		CookingTime:         req.CookingTime,
		Difficulty:          recipe.Difficulty(req.Difficulty),
		Cuisine:             req.Cuisine,
		Servings:            req.Servings,
		FlavorProfile:       req.FlavorProfile,
	})
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result, Message: resultMessage(result)})
}

// ValidateIngredients handles POST /api/v1/ingredients/validate
func (h *APIHandlers) ValidateIngredients(w http.ResponseWriter, r *http.Request) {
	var req IngredientsRequest
	if !h.decode(w, r, &req) {
		return
	}

	valid, rejected := h.assistant.ValidateIngredients(r.Context(), req.Ingredients)
	if len(valid) == 0 {
		h.writeError(w, r, apperrors.NewNoValidIngredientsError(rejected))
		return
	}
	if rejected == nil {
		rejected = []string{}
	}
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ValidationResult{Valid: valid, Rejected: rejected},
		Message: fmt.Sprintf("%d of %d ingredients are food", len(valid), len(req.Ingredients)),
	})
}

// IngestDocuments handles POST /api/v1/documents
func (h *APIHandlers) IngestDocuments(w http.ResponseWriter, r *http.Request) {
	var req DocumentsRequest
	if !h.decode(w, r, &req) {
		return
	}

	report, err := h.assistant.Ingest(r.Context(), req.Documents)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: report, Message: "Documents ingested"})
}

// GetCollection handles GET /api/v1/collection
func (h *APIHandlers) GetCollection(w http.ResponseWriter, r *http.Request) {
	info, err := h.assistant.CollectionInfo(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: info})
}

// ResetCollection handles DELETE /api/v1/collection
func (h *APIHandlers) ResetCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.assistant.ResetCollection(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Collection reset"})
}

// ListHistory handles GET /api/v1/history?limit=
func (h *APIHandlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(w, r, apperrors.NewBadRequestError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := h.assistant.History(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: records})
}

// Nutrition handles POST /api/v1/nutrition
func (h *APIHandlers) Nutrition(w http.ResponseWriter, r *http.Request) {
	var req IngredientsRequest
	if !h.decode(w, r, &req) {
		return
	}

	facts, err := h.assistant.Nutrition(r.Context(), req.Ingredients)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: facts})
}

// decode reads and validates a JSON body, writing the error response itself
func (h *APIHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.writeError(w, r, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, r, validationError(err))
		return false
	}
	return true
}

func validationError(err error) *apperrors.AppError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperrors.NewValidationError(err.Error())
	}

	details := make([]apperrors.ValidationError, 0, len(ve))
	for _, e := range ve {
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}

		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, e.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, e.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", field, e.Param())
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		details = append(details, apperrors.ValidationError{
			Field:   field,
			Value:   e.Value(),
			Tag:     e.Tag(),
			Message: message,
		})
	}
	return apperrors.NewValidationErrors(details)
}

func resultMessage(result recipe.Result) string {
	switch result.Outcome {
	case recipe.OutcomeNoValidIngredients:
		return "No usable ingredients"
	case recipe.OutcomeFallback:
		return "Recipe generated with fallback method"
	case recipe.OutcomeError:
		return "Recipe generation failed"
	default:
		return "Recipe generated successfully"
	}
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.Wrap(err, "An unexpected error occurred")
	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("code", string(appErr.Code)),
			zap.Error(err))
	}
	middleware.WriteError(w, appErr, middleware.GetRequestID(r.Context()))
}

// writeJSON writes a JSON response
func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

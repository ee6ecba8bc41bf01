package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// Error codes returned in the error envelope.
const (
	codeValidation        = "VALIDATION_ERROR"
	codeInvalidQuantity   = "INVALID_QUANTITY"
	codeMissingPrice      = "MISSING_PRICE"
	codeInsufficientStock = "INSUFFICIENT_STOCK"
	codeNotFound          = "NOT_FOUND"
	codeDuplicate         = "DUPLICATE_IDENTIFIER"
	codeConcurrent        = "CONCURRENT_MODIFICATION"
	codeIDExhausted       = "ID_GENERATION_EXHAUSTED"
	codeInternal          = "INTERNAL_ERROR"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, e apiError) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": e})
}

// respondBindError reports a body or query that failed to decode or validate.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{Field: fe.Namespace(), Rule: fe.Tag()})
		}
		respondError(c, http.StatusBadRequest, apiError{Code: codeValidation, Message: "request validation failed", Details: fields})
		return
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		respondError(c, http.StatusBadRequest, apiError{Code: codeValidation, Message: "malformed JSON body"})
		return
	}

	respondError(c, http.StatusBadRequest, apiError{Code: codeValidation, Message: err.Error()})
}

// errorStatus maps a service error to its HTTP status and envelope.
func errorStatus(err error) (int, apiError) {
	var insufficient *models.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity, apiError{
			Code:    codeInsufficientStock,
			Message: insufficient.Error(),
			Details: gin.H{
				"available": insufficient.Available,
				"requested": insufficient.Requested,
			},
		}
	case errors.Is(err, models.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, apiError{Code: codeInsufficientStock, Message: err.Error()}
	case errors.Is(err, models.ErrInvalidQuantity):
		return http.StatusBadRequest, apiError{Code: codeInvalidQuantity, Message: err.Error()}
	case errors.Is(err, models.ErrMissingPrice):
		return http.StatusBadRequest, apiError{Code: codeMissingPrice, Message: err.Error()}
	case errors.Is(err, models.ErrInvalidDirection),
		errors.Is(err, models.ErrInvalidUnit),
		errors.Is(err, models.ErrInvalidBatch):
		return http.StatusBadRequest, apiError{Code: codeValidation, Message: err.Error()}
	case errors.Is(err, models.ErrRecordNotFound):
		return http.StatusNotFound, apiError{Code: codeNotFound, Message: err.Error()}
	case errors.Is(err, models.ErrDuplicateIdentifier):
		return http.StatusConflict, apiError{Code: codeDuplicate, Message: err.Error()}
	case errors.Is(err, models.ErrConcurrentModification):
		return http.StatusConflict, apiError{Code: codeConcurrent, Message: err.Error()}
	case errors.Is(err, models.ErrIDGenerationExhausted):
		return http.StatusInternalServerError, apiError{Code: codeIDExhausted, Message: err.Error()}
	default:
		return http.StatusInternalServerError, apiError{Code: codeInternal, Message: "internal server error"}
	}
}

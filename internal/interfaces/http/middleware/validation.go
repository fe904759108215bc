package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/multicommerce/backend/internal/interfaces/http/dto"
)

// SetupValidator configures the gin validator to report JSON field names
// instead of Go struct field names in validation errors.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// FormatValidationErrors converts validator errors into field-level details
func FormatValidationErrors(err error) []dto.ValidationDetail {
	var details []dto.ValidationDetail

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []dto.ValidationDetail{{Field: "request", Message: err.Error()}}
	}

	for _, fieldErr := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   fieldErr.Field(),
			Message: getValidationMessage(fieldErr),
		})
	}
	return details
}

// HandleValidationError writes a 400 response with field-level details
func HandleValidationError(c *gin.Context, err error) {
	requestID, _ := c.Get("request_id")
	requestIDStr, _ := requestID.(string)

	response := dto.NewValidationErrorResponse("Request validation failed", requestIDStr, FormatValidationErrors(err))
	c.JSON(http.StatusBadRequest, response)
}

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required"
	case "uuid":
		return "Must be a valid UUID"
	case "email":
		return "Must be a valid email address"
	case "min":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long", fieldErr.Param())
		}
		return fmt.Sprintf("Must be at least %s", fieldErr.Param())
	case "max":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long", fieldErr.Param())
		}
		return fmt.Sprintf("Must be at most %s", fieldErr.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fieldErr.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fieldErr.Param())
	default:
		return fmt.Sprintf("Failed validation: %s", fieldErr.Tag())
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/logger"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"
	"github.com/yatagaratsu666/Servidor-Inventario/pkg/apierror"
	"github.com/yatagaratsu666/Servidor-Inventario/pkg/response"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// decodeJSON reads a JSON body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return apierror.BadRequest("failed to read request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			return apierror.BadRequest(err.Error())
		}
		return apierror.BadRequest("invalid JSON")
	}
	return validateStruct(v)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]apierror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apierror.FieldError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
		})
	}
	return apierror.ValidationError("request validation failed", details...)
}

// writeError maps domain errors onto the API error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierror.Error
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, model.ErrPlayerNotFound):
		apiErr = apierror.PlayerNotFound(err.Error())
	case errors.Is(err, model.ErrItemNotFound):
		apiErr = apierror.ItemNotFound(err.Error())
	case errors.Is(err, model.ErrInvalidInput):
		apiErr = apierror.ValidationError(err.Error())
	case errors.Is(err, model.ErrPlayerExists), errors.Is(err, model.ErrDuplicateItem):
		apiErr = apierror.Conflict(err.Error())
	case errors.Is(err, model.ErrNoOpReward):
		apiErr = apierror.NoOpReward(err.Error())
	default:
		logger.FromContext(r.Context()).Error("Request failed", "path", r.URL.Path, "error", err)
		apiErr = apierror.InternalError("")
	}
	response.Error(w, apiErr)
}

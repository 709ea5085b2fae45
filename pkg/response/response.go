package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yatagaratsu666/Servidor-Inventario/pkg/apierror"
)

// Response is the success envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta carries pagination for list endpoints.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func write(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func encode(w http.ResponseWriter, status int, resp Response) {
	body, err := json.Marshal(resp)
	if err != nil {
		Error(w, apierror.InternalError("failed to encode response"))
		return
	}
	write(w, status, append(body, '\n'))
}

// JSON writes data in the success envelope.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	encode(w, statusCode, Response{Success: true, Data: data})
}

// JSONWithMeta writes a page of data with its pagination metadata.
func JSONWithMeta(w http.ResponseWriter, statusCode int, data interface{}, page, limit int, total int64) {
	encode(w, statusCode, Response{
		Success: true,
		Data:    data,
		Meta:    &Meta{Page: page, Limit: limit, Total: total},
	})
}

// Error writes err in the error envelope. Errors that are not *apierror.Error
// are reported as a generic 500.
func Error(w http.ResponseWriter, err error) {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierror.InternalError("an unexpected error occurred")
	}
	write(w, apiErr.StatusCode, apiErr.ToJSON())
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

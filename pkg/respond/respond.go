package respond

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, kind, detail string) {
	JSON(w, r, code, ErrorResponse{Error: kind, Detail: detail})
}

func FieldError(w http.ResponseWriter, r *http.Request, code int, kind, detail, field string) {
	JSON(w, r, code, ErrorResponse{Error: kind, Detail: detail, Field: field})
}

package utils

import (
	"encoding/json"
	"net/http"
)

// MessageResponse is the body shape used for informational and error replies.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// RespondMessage writes a {"message": ...} JSON body with the given status
// code. Used for errors and for endpoints that return no entity.
func RespondMessage(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, MessageResponse{Message: message})
}

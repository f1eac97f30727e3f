package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ecotrack/wastage-api/models"
	"github.com/ecotrack/wastage-api/store"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// captureSender records delivered reset tokens instead of sending mail.
type captureSender struct {
	emails []string
	tokens []string
}

func (c *captureSender) SendPasswordReset(toEmail, token string, _ time.Time) error {
	c.emails = append(c.emails, toEmail)
	c.tokens = append(c.tokens, token)
	return nil
}

// newTestRouter wires every handler against a fresh in-memory store, giving
// each test an isolated state.
func newTestRouter() (*mux.Router, *store.Memory, *captureSender) {
	st := store.NewMemory()
	sender := &captureSender{}

	r := mux.NewRouter()
	r.HandleFunc("/register", RegisterHandler(st)).Methods("POST")
	r.HandleFunc("/login", LoginHandler(st)).Methods("POST")
	r.HandleFunc("/forgot-password", ForgotPasswordHandler(st, sender)).Methods("POST")
	r.HandleFunc("/reset-password", ResetPasswordHandler(st)).Methods("POST")
	r.HandleFunc("/users/{id}", GetUserHandler(st)).Methods("GET")
	r.HandleFunc("/users/{id}", UpdateUserHandler(st)).Methods("PUT")
	r.HandleFunc("/wastes/user/{userId}", GetWastesByUserHandler(st)).Methods("GET")
	r.HandleFunc("/wastes", CreateWasteHandler(st)).Methods("POST")
	r.HandleFunc("/wastes/{id}", UpdateWasteHandler(st)).Methods("PUT")
	r.HandleFunc("/wastes/{id}", DeleteWasteHandler(st)).Methods("DELETE")
	r.HandleFunc("/logs/user/{userId}", GetLogsByUserHandler(st)).Methods("GET")

	return r, st, sender
}

func doRequest(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func registerUser(t *testing.T, r http.Handler, username, email, password string) int {
	t.Helper()

	rec := doRequest(t, r, http.MethodPost, "/register", models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return int(decodeBody(t, rec)["id"].(float64))
}

func createWaste(t *testing.T, r http.Handler, userID int) int {
	t.Helper()

	rec := doRequest(t, r, http.MethodPost, "/wastes", map[string]interface{}{
		"type":     "Paper",
		"quantity": 2,
		"unit":     "kg",
		"category": "Recyclable",
		"status":   "recycled",
		"location": "Office",
		"user_id":  userID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return int(decodeBody(t, rec)["id"].(float64))
}

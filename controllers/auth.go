package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/ecotrack/wastage-api/models"
	"github.com/ecotrack/wastage-api/store"
	"github.com/ecotrack/wastage-api/utils"
	"github.com/golang-jwt/jwt/v5"
)

// loginResponse is the user sans hash, plus a bearer token when JWT_SECRET
// is configured. Embedding keeps the user fields flat in the JSON body.
type loginResponse struct {
	models.User
	Token string `json:"token,omitempty"`
}

// RegisterHandler handles user registration.
func RegisterHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Username == "" || req.Email == "" || req.Password == "" {
			utils.RespondMessage(w, http.StatusBadRequest, "Username, email, and password are required")
			return
		}

		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			utils.RespondMessage(w, http.StatusInternalServerError, "An internal server error occurred during registration.")
			return
		}

		user := models.User{
			Username:      req.Username,
			Email:         req.Email,
			Password:      hash,
			MonthlyTarget: 0,
		}
		if err := s.CreateUser(&user); err != nil {
			if errors.Is(err, store.ErrDuplicateEmail) {
				utils.RespondMessage(w, http.StatusBadRequest, "Email already in use")
				return
			}
			log.Printf("Error creating user: %v", err)
			utils.RespondMessage(w, http.StatusInternalServerError, "An internal server error occurred during registration.")
			return
		}

		// Password hash is excluded by the json:"-" tag on the model.
		utils.RespondJSON(w, http.StatusCreated, user)
	}
}

// LoginHandler verifies credentials, appends a USER_LOGIN audit entry and
// returns the user without the hash. When JWT_SECRET is set the response also
// carries a signed bearer token for the optional auth middleware.
func LoginHandler(s store.Store) http.HandlerFunc {
	jwtSecret := os.Getenv("JWT_SECRET")

	return func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			utils.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := s.UserByEmail(creds.Email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondMessage(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			log.Printf("Error fetching user for login: %v", err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if !utils.CheckPassword(user.Password, creds.Password) {
			utils.RespondMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		entry := models.LogEntry{
			UserID:      user.ID,
			Action:      models.ActionUserLogin,
			Description: "User successfully logged in.",
		}
		if err := s.AppendLog(&entry); err != nil {
			log.Printf("Error appending login audit entry: %v", err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		resp := loginResponse{User: *user}
		if jwtSecret != "" {
			token, err := signToken(user.ID, jwtSecret)
			if err != nil {
				log.Printf("Error signing token: %v", err)
				utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error generating token")
				return
			}
			resp.Token = token
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}

func signToken(userID int, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Subject:   strconv.Itoa(userID),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

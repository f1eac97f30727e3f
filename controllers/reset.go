package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ecotrack/wastage-api/mailer"
	"github.com/ecotrack/wastage-api/models"
	"github.com/ecotrack/wastage-api/store"
	"github.com/ecotrack/wastage-api/utils"
)

const resetMessage = "If an account with that email exists, a password reset link has been sent."

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ForgotPasswordHandler issues a password reset token. The response is the
// same whether or not the email is registered, so callers cannot enumerate
// accounts.
func ForgotPasswordHandler(s store.Store, sender mailer.Sender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forgotPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := s.UserByEmail(req.Email)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				log.Printf("Error fetching user for password reset: %v", err)
			}
			utils.RespondMessage(w, http.StatusOK, resetMessage)
			return
		}

		token, err := generateResetToken()
		if err != nil {
			log.Printf("Error generating reset token: %v", err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		expiresAt := time.Now().Add(models.ResetTokenTTL)
		if err := s.SaveResetToken(models.ResetToken{Token: token, Email: user.Email, ExpiresAt: expiresAt}); err != nil {
			log.Printf("Error saving reset token: %v", err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if err := sender.SendPasswordReset(user.Email, token, expiresAt); err != nil {
			// Delivery problems must not reveal whether the account exists.
			log.Printf("Error delivering reset token for %s: %v", user.Email, err)
		}

		utils.RespondMessage(w, http.StatusOK, resetMessage)
	}
}

// ResetPasswordHandler redeems a reset token and sets the new password. The
// token is single-use; a second redemption fails.
func ResetPasswordHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Password == "" {
			utils.RespondMessage(w, http.StatusBadRequest, "Password is required")
			return
		}

		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if err := s.ResetPassword(req.Token, hash, time.Now()); err != nil {
			switch {
			case errors.Is(err, store.ErrInvalidToken):
				utils.RespondMessage(w, http.StatusBadRequest, "Token is invalid or has expired.")
			case errors.Is(err, store.ErrNotFound):
				utils.RespondMessage(w, http.StatusNotFound, "User not found.")
			default:
				log.Printf("Error resetting password: %v", err)
				utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		utils.RespondMessage(w, http.StatusOK, "Password has been reset successfully.")
	}
}

// generateResetToken returns 256 bits of crypto-random entropy as hex.
func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/ecotrack/wastage-api/models"
	"github.com/ecotrack/wastage-api/store"
	"github.com/ecotrack/wastage-api/utils"
	"github.com/gorilla/mux"
)

// GetUserHandler returns a user by id, without the password hash.
func GetUserHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			utils.RespondMessage(w, http.StatusNotFound, "User not found")
			return
		}

		user, err := s.UserByID(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondMessage(w, http.StatusNotFound, "User not found")
				return
			}
			log.Printf("Error fetching user %d: %v", id, err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		utils.RespondJSON(w, http.StatusOK, user)
	}
}

// UpdateUserHandler updates the two mutable profile fields. A field absent
// from the body is left unchanged; a field present with any value, null
// included, overwrites.
func UpdateUserHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			utils.RespondMessage(w, http.StatusNotFound, "User not found")
			return
		}

		var upd models.ProfileUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			utils.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := s.UpdateProfile(id, upd)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondMessage(w, http.StatusNotFound, "User not found")
				return
			}
			log.Printf("Error updating user %d: %v", id, err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		utils.RespondJSON(w, http.StatusOK, user)
	}
}

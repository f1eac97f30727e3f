package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ecotrack/wastage-api/models"
	"github.com/ecotrack/wastage-api/store"
	"github.com/ecotrack/wastage-api/utils"
	"github.com/gorilla/mux"
)

// GetWastesByUserHandler lists a user's waste records in insertion order.
// Optional page/limit query parameters window the result; without them the
// full list is returned.
func GetWastesByUserHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.Atoi(mux.Vars(r)["userId"])
		if err != nil {
			utils.RespondMessage(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		records, err := s.WastesByUser(userID)
		if err != nil {
			log.Printf("Error listing waste records for user %d: %v", userID, err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if page, limit, ok := utils.GetPaginationParams(r); ok {
			start, end := utils.PageWindow(len(records), page, limit)
			records = records[start:end]
		}
		utils.RespondJSON(w, http.StatusOK, records)
	}
}

// CreateWasteHandler creates a waste record. The id and creation time are
// assigned by the store; supplying them in the body has no effect.
func CreateWasteHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var record models.WasteRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			utils.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if msg := validateWaste(record); msg != "" {
			utils.RespondMessage(w, http.StatusBadRequest, msg)
			return
		}

		record.ID = 0
		record.CreatedAt = time.Time{}
		if err := s.CreateWaste(&record); err != nil {
			log.Printf("Error creating waste record: %v", err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		utils.RespondJSON(w, http.StatusCreated, record)
	}
}

func validateWaste(record models.WasteRecord) string {
	if record.Type == "" || record.Unit == "" || record.Category == "" || record.Location == "" {
		return "Type, unit, category, and location are required"
	}
	if record.UserID <= 0 {
		return "A valid user_id is required"
	}
	if record.Quantity < 0 {
		return "Quantity must be non-negative"
	}
	if !record.Status.Valid() {
		return "Status must be one of recycled, disposed, reused"
	}
	return ""
}

// UpdateWasteHandler merges a partial body over an existing record. Only
// type, quantity, unit, category, status, location and notes can change.
func UpdateWasteHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			utils.RespondMessage(w, http.StatusNotFound, "Waste record not found")
			return
		}

		var upd models.WasteUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			utils.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if upd.Status != nil && !upd.Status.Valid() {
			utils.RespondMessage(w, http.StatusBadRequest, "Status must be one of recycled, disposed, reused")
			return
		}
		if upd.Quantity != nil && *upd.Quantity < 0 {
			utils.RespondMessage(w, http.StatusBadRequest, "Quantity must be non-negative")
			return
		}

		record, err := s.UpdateWaste(id, upd)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondMessage(w, http.StatusNotFound, "Waste record not found")
				return
			}
			log.Printf("Error updating waste record %d: %v", id, err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		utils.RespondJSON(w, http.StatusOK, record)
	}
}

// DeleteWasteHandler removes a waste record.
func DeleteWasteHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			utils.RespondMessage(w, http.StatusNotFound, "Waste record not found")
			return
		}

		if err := s.DeleteWaste(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondMessage(w, http.StatusNotFound, "Waste record not found")
				return
			}
			log.Printf("Error deleting waste record %d: %v", id, err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

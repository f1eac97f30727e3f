package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/ecotrack/wastage-api/store"
	"github.com/ecotrack/wastage-api/utils"
	"github.com/gorilla/mux"
)

// GetLogsByUserHandler lists a user's audit entries, most recent first.
// Optional page/limit query parameters window the result.
func GetLogsByUserHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.Atoi(mux.Vars(r)["userId"])
		if err != nil {
			utils.RespondMessage(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		entries, err := s.LogsByUser(userID)
		if err != nil {
			log.Printf("Error listing log entries for user %d: %v", userID, err)
			utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if page, limit, ok := utils.GetPaginationParams(r); ok {
			start, end := utils.PageWindow(len(entries), page, limit)
			entries = entries[start:end]
		}
		utils.RespondJSON(w, http.StatusOK, entries)
	}
}

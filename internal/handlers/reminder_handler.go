package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/domain/interfaces"
	"reminder-engine/internal/engine"
)

// ReminderHandler exposes C3's reminder operations over HTTP.
type ReminderHandler struct {
	store    interfaces.Store
	reminders *engine.ReminderEngine
}

func NewReminderHandler(store interfaces.Store, reminders *engine.ReminderEngine) *ReminderHandler {
	return &ReminderHandler{store: store, reminders: reminders}
}

// List supports the listing/pagination supplement: ?active=true omits
// Answered reminders, ?after_id and ?limit page through the rest.
func (h *ReminderHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var status *entities.ReminderStatus

	afterID, _ := strconv.ParseUint(c.Query("after_id"), 10, 64)
	limit := 50
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 200 {
		limit = l
	}

	reminders, err := h.store.Reminders().ListByUser(c.Request.Context(), userID, status, afterID, limit)
	if err != nil {
		respondErr(c, entities.NewKindedError(entities.KindTransientIO, err))
		return
	}
	if c.Query("active") == "true" {
		filtered := make([]*entities.Reminder, 0, len(reminders))
		for _, r := range reminders {
			if r.Status != entities.ReminderAnswered {
				filtered = append(filtered, r)
			}
		}
		reminders = filtered
	}
	respondOK(c, http.StatusOK, "reminders retrieved", reminders)
}

func (h *ReminderHandler) Answer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	reminderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reminder id"})
		return
	}

	var req entities.AnswerReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rem, err := h.reminders.Answer(c.Request.Context(), reminderID, userID, req.Value, req.Note)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "reminder answered", rem)
}

func (h *ReminderHandler) Snooze(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	reminderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reminder id"})
		return
	}

	var req entities.SnoozeReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rem, err := h.reminders.Snooze(c.Request.Context(), reminderID, userID, req.Minutes)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "reminder snoozed", rem)
}

func (h *ReminderHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	reminderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reminder id"})
		return
	}

	if err := h.reminders.Delete(c.Request.Context(), reminderID, userID); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

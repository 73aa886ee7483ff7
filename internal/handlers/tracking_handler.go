package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reminder-engine/internal/authctx"
	"reminder-engine/internal/domain/entities"
	"reminder-engine/internal/domain/interfaces"
	"reminder-engine/internal/engine"
)

// TrackingHandler exposes C3/C4's tracking operations over HTTP, grounded
// on the teacher's DebtHandlerGORM shape: a thin struct wrapping service
// collaborators, one method per route.
type TrackingHandler struct {
	store     interfaces.Store
	reminders *engine.ReminderEngine
	lifecycle *engine.TrackingLifecycle
}

func NewTrackingHandler(store interfaces.Store, reminders *engine.ReminderEngine, lifecycle *engine.TrackingLifecycle) *TrackingHandler {
	return &TrackingHandler{store: store, reminders: reminders, lifecycle: lifecycle}
}

func currentUserID(c *gin.Context) (uint64, bool) {
	identity, ok := authctx.FromContext(c)
	if !ok {
		return 0, false
	}
	return identity.UserID, true
}

func (h *TrackingHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	trackings, err := h.store.Trackings().ListByUser(c.Request.Context(), userID, false)
	if err != nil {
		respondErr(c, entities.NewKindedError(entities.KindTransientIO, err))
		return
	}

	type trackingWithUpcoming struct {
		*entities.Tracking
		Upcoming *entities.Reminder `json:"upcoming"`
	}
	out := make([]trackingWithUpcoming, 0, len(trackings))
	for _, t := range trackings {
		upcoming, err := h.store.Reminders().UpcomingForTracking(c.Request.Context(), t.ID)
		if err != nil {
			respondErr(c, entities.NewKindedError(entities.KindTransientIO, err))
			return
		}
		out = append(out, trackingWithUpcoming{Tracking: t, Upcoming: upcoming})
	}
	respondOK(c, http.StatusOK, "trackings retrieved", out)
}

func (h *TrackingHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req entities.CreateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t := &entities.Tracking{
		UserID:    userID,
		Question:  req.Question,
		Notes:     req.Notes,
		Icon:      req.Icon,
		Days:      req.Days,
		Schedules: req.Schedules,
		State:     entities.TrackingRunning,
	}
	if err := t.IsValid(); err != nil {
		respondErr(c, entities.NewKindedError(entities.KindValidation, err))
		return
	}
	if req.Days == nil && req.OneTimeDate == nil {
		respondErr(c, entities.NewKindedError(entities.KindValidation, entities.ErrInvalidPattern))
		return
	}

	if err := h.store.Trackings().Create(c.Request.Context(), t); err != nil {
		respondErr(c, entities.NewKindedError(entities.KindTransientIO, err))
		return
	}
	if err := h.reminders.CreateTrackingInitial(c.Request.Context(), t, req.OneTimeDate); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "tracking created", t)
}

func (h *TrackingHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	trackingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tracking id"})
		return
	}

	var req entities.UpdateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.lifecycle.UpdateFields(c.Request.Context(), trackingID, userID, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "tracking updated", t)
}

func (h *TrackingHandler) ChangeState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	trackingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tracking id"})
		return
	}

	var req entities.ChangeTrackingStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.lifecycle.ChangeState(c.Request.Context(), trackingID, userID, req.State)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "tracking state changed", t)
}

func (h *TrackingHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	trackingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tracking id"})
		return
	}

	if err := h.lifecycle.Delete(c.Request.Context(), trackingID, userID); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"holiday-service/internal/models"
	"holiday-service/internal/services"
)

const maxBrowseLimit = 100

// ProfileHandler serves profile reads and owner edits.
type ProfileHandler struct {
	profiles *services.ProfileService
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Browse lists visible profiles filtered by city and role.
func (h *ProfileHandler) Browse(c *gin.Context) {
	viewerID, ok := callerID(c)
	if !ok {
		return
	}

	filter := models.BrowseFilter{
		City: c.Query("city"),
		Role: models.Role(c.Query("role")),
	}
	var err error
	if filter.Limit, err = intQuery(c, "limit", 20); err != nil || filter.Limit <= 0 {
		badRequest(c, "invalid limit")
		return
	}
	if filter.Limit > maxBrowseLimit {
		filter.Limit = maxBrowseLimit
	}
	if filter.Offset, err = intQuery(c, "offset", 0); err != nil || filter.Offset < 0 {
		badRequest(c, "invalid offset")
		return
	}

	profiles, err := h.profiles.Browse(c.Request.Context(), viewerID, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// Get returns a single profile projected for the caller.
func (h *ProfileHandler) Get(c *gin.Context) {
	viewerID, ok := callerID(c)
	if !ok {
		return
	}
	targetID, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), viewerID, targetID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Save upserts the caller's own profile.
func (h *ProfileHandler) Save(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	var in services.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}

	profile, err := h.profiles.Save(c.Request.Context(), ownerID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// AttachPhoto appends a photo URL, creating a draft profile if needed.
func (h *ProfileHandler) AttachPhoto(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	profile, err := h.profiles.AttachPhoto(c.Request.Context(), userID, req.URL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// SetVerified is called by the verification collaborator.
func (h *ProfileHandler) SetVerified(c *gin.Context) {
	userID, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	var req struct {
		Verified *bool `json:"verified" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.profiles.SetVerified(c.Request.Context(), userID, *req.Verified); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

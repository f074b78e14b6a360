package handlers

import (
	"errors"
	"net/http"

	"socialfeed/models"

	"github.com/gin-gonic/gin"
)

type UpdateProfileRequest struct {
	Username *string       `json:"username" binding:"omitempty,min=3,max=30"`
	Name     *string       `json:"name" binding:"omitempty,max=80"`
	About    *string       `json:"about" binding:"omitempty,max=300"`
	Images   []models.Image `json:"images"`
}

func (h *Handler) GetMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), userID)
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMyProfile changes profile fields. Posts already written keep their author's old username.
func (h *Handler) UpdateMyProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.Users.Update(c.Request.Context(), userID, models.UserUpdate{
		Username: req.Username,
		Name:     req.Name,
		About:    req.About,
		Images:   req.Images,
	})
	if errors.Is(err, models.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken", "field": "username"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Public())
	}
	c.JSON(http.StatusOK, profiles)
}

// PublicProfile returns another user's public profile, or null for an unknown username.
func (h *Handler) PublicProfile(c *gin.Context) {
	user, err := h.Users.FindByUsername(c.Request.Context(), c.Param("username"))
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

package handlers

import (
	"errors"
	"net/http"

	"socialfeed/feed"
	"socialfeed/models"

	"github.com/gin-gonic/gin"
)

// Posts serves one feed page: GET /api/posts?page=N.
func (h *Handler) Posts(c *gin.Context) {
	var req feed.PostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.Feed.Posts(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Post returns a single post, or null when the id is unknown.
func (h *Handler) Post(c *gin.Context) {
	post, err := h.Feed.Post(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) PostCount(c *gin.Context) {
	total, err := h.Feed.TotalPosts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalPosts": total})
}

// PostsByAuthor lists the caller's own posts.
func (h *Handler) PostsByAuthor(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.listByAuthor(c, userID.Hex())
}

func (h *Handler) UserPosts(c *gin.Context) {
	h.listByAuthor(c, c.Param("id"))
}

func (h *Handler) listByAuthor(c *gin.Context, authorID string) {
	posts, err := h.Feed.PostsByAuthor(c.Request.Context(), authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) SearchPosts(c *gin.Context) {
	var req feed.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	posts, err := h.Feed.SearchPosts(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req feed.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	author, ok := h.author(c)
	if !ok {
		return
	}

	post, err := h.Feed.CreatePost(c.Request.Context(), author, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) UpdatePost(c *gin.Context) {
	var req feed.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.ID = c.Param("id")

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	post, err := h.Feed.UpdatePost(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	post, err := h.Feed.DeletePost(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// author resolves the caller to the reference stored on their posts.
func (h *Handler) author(c *gin.Context) (models.Author, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return models.Author{}, false
	}
	user, err := h.Users.FindByID(c.Request.Context(), userID)
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
		return models.Author{}, false
	}
	if err != nil {
		respondError(c, err)
		return models.Author{}, false
	}
	return user.AsAuthor(), true
}

package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"socialfeed/feed"
	"socialfeed/middleware"
	"socialfeed/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error)
}

type ImageHost interface {
	Upload(ctx context.Context, file interface{}) (models.Image, error)
	Remove(ctx context.Context, publicID string) error
}

type PushStore interface {
	Save(ctx context.Context, sub models.PushSubscription) error
}

// Handler holds the dependencies shared by every route.
type Handler struct {
	Feed           *feed.Service
	Users          UserStore
	Images         ImageHost    // nil when no image host is configured
	Push           PushStore    // nil disables push subscriptions
	Google         *GoogleOAuth // nil disables Google sign-in
	JWTSecret      string
	VAPIDPublicKey string
}

// currentUserID reads the id the auth middleware stored on the context.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.ContextUserID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondError maps domain errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to change this resource"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Already in use"})
	case errors.Is(err, models.ErrServiceUnavailable):
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable, please try again"})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// respondBindError reports the first failing field of a gin binding error.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fieldMessage(fe),
			"field": lowerFirst(fe.Field()),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func fieldMessage(fe validator.FieldError) string {
	name := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "max":
		return name + " must be at most " + fe.Param() + " characters"
	case "min":
		return name + " must be at least " + fe.Param() + " characters"
	case "email":
		return name + " must be a valid email"
	}
	return name + " is invalid"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

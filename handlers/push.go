package handlers

import (
	"log"
	"net/http"

	"socialfeed/models"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
)

type subscribePushRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

func (h *Handler) GetVapidPublicKey(c *gin.Context) {
	if h.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "VAPID public key not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.VAPIDPublicKey})
}

func (h *Handler) SubscribePush(c *gin.Context) {
	if h.Push == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications are not configured"})
		return
	}

	var req subscribePushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	err := h.Push.Save(c.Request.Context(), models.PushSubscription{
		UserID: userID,
		Sub: webpush.Subscription{
			Endpoint: req.Endpoint,
			Keys:     webpush.Keys{P256dh: req.Keys.P256dh, Auth: req.Keys.Auth},
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("Push subscription saved for user: %s", userID.Hex())
	c.JSON(http.StatusOK, gin.H{"message": "Push subscription saved successfully"})
}

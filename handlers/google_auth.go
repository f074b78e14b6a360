package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"socialfeed/middleware"
	"socialfeed/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuth holds the sign-in with Google configuration.
type GoogleOAuth struct {
	Config      *oauth2.Config
	UserInfoURL string
}

// NewGoogleOAuth returns nil when the client credentials are missing, which disables Google sign-in.
func NewGoogleOAuth(clientID, clientSecret, redirectURL string) *GoogleOAuth {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &GoogleOAuth{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: endpoints.Google,
		},
		UserInfoURL: googleUserInfoURL,
	}
}

type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (g *GoogleOAuth) fetchUser(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.Config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("request user info: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read user info: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var info GoogleUserInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse user info: %w", err)
	}
	return &info, nil
}

// GoogleAuthURL returns the consent screen URL with a signed state value.
func (h *Handler) GoogleAuthURL(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in is not configured"})
		return
	}
	state, err := middleware.IssueState(h.JWTSecret)
	if err != nil {
		log.Printf("❌ [GoogleAuth] state signing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start Google sign-in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": h.Google.Config.AuthCodeURL(state)})
}

// GoogleCallback exchanges the authorization code, then signs the Google account in, creating a
// local user on first use.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in is not configured"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization code missing"})
		return
	}
	if err := middleware.VerifyState(h.JWTSecret, c.Query("state")); err != nil {
		log.Printf("❌ [GoogleAuth] bad state: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired sign-in attempt"})
		return
	}

	ctx := c.Request.Context()
	token, err := h.Google.Config.Exchange(ctx, code)
	if err != nil {
		log.Printf("❌ [GoogleAuth] token exchange failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to exchange authorization code"})
		return
	}

	info, err := h.Google.fetchUser(ctx, token)
	if err != nil {
		respondError(c, fmt.Errorf("%w: google user info: %v", models.ErrServiceUnavailable, err))
		return
	}
	if info.Email == "" || !info.VerifiedEmail {
		c.JSON(http.StatusForbidden, gin.H{"error": "Google account has no verified email"})
		return
	}

	user, err := h.Users.FindByEmail(ctx, info.Email)
	if errors.Is(err, models.ErrNotFound) {
		user, err = h.Users.Create(ctx, userFromGoogle(info))
		if err == nil {
			log.Printf("✅ [GoogleAuth] new user %s from Google", user.ID.Hex())
		}
	}
	if err != nil {
		respondError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

func userFromGoogle(info *GoogleUserInfo) models.User {
	user := models.User{
		Email:    info.Email,
		Username: randomUsername(),
		Name:     strings.TrimSpace(info.Name),
	}
	if info.Picture != "" {
		user.Images = []models.Image{{URL: info.Picture}}
	}
	return user
}

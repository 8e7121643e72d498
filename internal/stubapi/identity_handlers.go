package stubapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"eventhub/pkg/models"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type oauthRequest struct {
	Provider string `json:"provider" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type profileRequest struct {
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

func (s *Server) authReply(c *gin.Context, status int, a *account) {
	token, err := s.issueToken(a)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	refreshToken := uuid.New().String()
	s.store.saveRefreshToken(refreshToken, a.UID)

	c.JSON(status, gin.H{
		"idToken":      token,
		"refreshToken": refreshToken,
		"expiresIn":    int64(tokenLifetime.Seconds()),
		"user":         accountUser(a),
	})
}

func accountUser(a *account) models.User {
	return models.User{
		UID:         a.UID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		PhotoURL:    a.PhotoURL,
	}
}

func (s *Server) signUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a := &account{UID: uuid.New().String(), Email: req.Email, Password: req.Password}
	if !s.store.addAccount(a) {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	s.logger.Info("account created", zap.String("uid", a.UID), zap.String("email", a.Email))
	s.authReply(c, http.StatusCreated, a)
}

func (s *Server) signIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, ok := s.store.accountByEmail(req.Email)
	if !ok || a.Password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	s.authReply(c, http.StatusOK, a)
}

// oauth fakes a federated sign-in: any code is accepted and mapped to a
// deterministic account, created on first use.
func (s *Server) oauth(c *gin.Context) {
	var req oauthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := req.Code + "@" + req.Provider
	a, ok := s.store.accountByEmail(email)
	if !ok {
		a = &account{UID: uuid.New().String(), Email: email, DisplayName: "Federated User"}
		s.store.addAccount(a)
	}

	s.authReply(c, http.StatusOK, a)
}

func (s *Server) refreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, ok := s.store.uidForRefreshToken(req.RefreshToken)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown refresh token"})
		return
	}
	a, ok := s.store.accountByUID(uid)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account gone"})
		return
	}

	s.authReply(c, http.StatusOK, a)
}

func (s *Server) getProfile(c *gin.Context) {
	a, ok := s.store.accountByUID(callerUID(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, accountUser(a))
}

func (s *Server) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, ok := s.store.updateAccount(callerUID(c), req.DisplayName, req.PhotoURL)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, accountUser(a))
}

package stubapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"eventhub/internal/validate"
	"eventhub/pkg/models"
)

// searchEvents lists events, optionally narrowed by ?type=. Replies with a
// bare JSON array, the shape the platform's search endpoint uses.
func (s *Server) searchEvents(c *gin.Context) {
	eventType := models.EventType(c.Query("type"))
	if eventType != "" && !models.ValidEventType(eventType) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unknown event type"})
		return
	}
	c.JSON(http.StatusOK, s.store.listEvents(eventType, ""))
}

func (s *Server) getEventByID(c *gin.Context) {
	e, ok := s.store.getEvent(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "event not found"})
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) createEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err := validate.CreateEvent(req, time.Now()); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	now := time.Now().UTC()
	e := models.EventRecord{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		EventType:   req.EventType,
		Thumbnail:   req.Thumbnail,
		Date:        req.Date,
		CreatorID:   callerUID(c),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.store.putEvent(e)

	s.logger.Info("event created",
		zap.String("event_id", e.ID),
		zap.String("creator_id", e.CreatorID))

	c.JSON(http.StatusCreated, gin.H{"insertedId": e.ID, "acknowledged": true})
}

func (s *Server) updateEvent(c *gin.Context) {
	e, ok := s.store.getEvent(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "event not found"})
		return
	}
	if e.CreatorID != callerUID(c) {
		c.JSON(http.StatusForbidden, gin.H{"message": "not the event creator"})
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err := validate.UpdateEvent(req, time.Now()); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	if req.Title != "" {
		e.Title = req.Title
	}
	if req.Description != "" {
		e.Description = req.Description
	}
	if req.Location != "" {
		e.Location = req.Location
	}
	if req.EventType != "" {
		e.EventType = req.EventType
	}
	if req.Thumbnail != "" {
		e.Thumbnail = req.Thumbnail
	}
	if !req.Date.IsZero() {
		e.Date = req.Date
	}
	e.UpdatedAt = time.Now().UTC()
	s.store.putEvent(e)

	c.JSON(http.StatusOK, e)
}

func (s *Server) deleteEvent(c *gin.Context) {
	e, ok := s.store.getEvent(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "event not found"})
		return
	}
	if e.CreatorID != callerUID(c) {
		c.JSON(http.StatusForbidden, gin.H{"message": "not the event creator"})
		return
	}

	s.store.deleteEvent(e.ID)
	c.JSON(http.StatusOK, gin.H{"acknowledged": true})
}

// myEvents lists the caller's own events. Replies with the wrapped object
// shape so clients handle both list encodings.
func (s *Server) myEvents(c *gin.Context) {
	eventType := models.EventType(c.Query("type"))
	c.JSON(http.StatusOK, gin.H{
		"events": s.store.listEvents(eventType, callerUID(c)),
	})
}

func (s *Server) joinEvent(c *gin.Context) {
	var req models.JoinEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if _, ok := s.store.getEvent(req.EventID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "event not found"})
		return
	}

	uid := callerUID(c)
	if !s.store.addJoin(uid, req.EventID) {
		c.JSON(http.StatusConflict, gin.H{"message": "already joined"})
		return
	}

	s.logger.Info("event joined",
		zap.String("event_id", req.EventID),
		zap.String("user_id", uid))

	c.JSON(http.StatusCreated, gin.H{"acknowledged": true})
}

func (s *Server) myJoinedEvents(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.joinedEvents(callerUID(c)))
}

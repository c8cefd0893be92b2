package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"linkly-be/internal/middleware"
	"linkly-be/internal/models"
	"linkly-be/internal/service"
)

type ShortenerController struct {
	linkService service.LinkService
}

func NewShortenerController(linkService service.LinkService) *ShortenerController {
	return &ShortenerController{
		linkService: linkService,
	}
}

// Shorten handles POST /api/shorten
func (sc *ShortenerController) Shorten(c *gin.Context) {
	var req models.ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	// Set by OptionalAuth when the caller sent a valid token
	var userID *string
	if id, exists := c.Get(middleware.UserIDKey); exists {
		idStr := id.(string)
		userID = &idStr
	}

	resp, created, err := sc.linkService.Shorten(&req, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL), errors.Is(err, service.ErrInvalidAlias):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAliasTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create short link"})
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// Redirect handles GET /:shortCode
func (sc *ShortenerController) Redirect(c *gin.Context) {
	shortCode := c.Param("shortCode")

	originalURL, err := sc.linkService.Resolve(shortCode, service.ClickInfo{
		UserAgent: c.GetHeader("User-Agent"),
		IP:        c.ClientIP(),
		Referer:   c.GetHeader("Referer"),
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Short link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve short link"})
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}

// Stats handles GET /api/stats/:shortCode
func (sc *ShortenerController) Stats(c *gin.Context) {
	shortCode := c.Param("shortCode")

	stats, err := sc.linkService.Stats(shortCode)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Short link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Timeline handles GET /api/stats/:shortCode/timeline
func (sc *ShortenerController) Timeline(c *gin.Context) {
	shortCode := c.Param("shortCode")

	hours := 24
	if hoursStr := c.Query("hours"); hoursStr != "" {
		if parsed, err := strconv.Atoi(hoursStr); err == nil && parsed > 0 {
			hours = parsed
		}
	}

	timeline, err := sc.linkService.Timeline(shortCode, hours)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Short link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get timeline"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"short_code": shortCode,
		"hours":      hours,
		"timeline":   timeline,
	})
}

// UserLinks handles GET /api/urls - links owned by the authenticated user
func (sc *ShortenerController) UserLinks(c *gin.Context) {
	id, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	links, err := sc.linkService.UserLinks(id.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list links"})
		return
	}

	c.JSON(http.StatusOK, links)
}

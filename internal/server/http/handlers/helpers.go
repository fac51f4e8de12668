package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ravenlane/compo/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// OptionalUserID returns the user identifier when the request carried a
// valid session, nil for guests.
func OptionalUserID(c *gin.Context) *int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return nil
	}
	id, ok := val.(int64)
	if !ok {
		return nil
	}
	return &id
}

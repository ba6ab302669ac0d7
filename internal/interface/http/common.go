package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
	"github.com/eventsphere/eventsphere-api/internal/interface/middleware"
)

func currentUser(c *gin.Context) *entity.User {
	return middleware.CurrentUser(c)
}

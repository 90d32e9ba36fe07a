package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/presentation/http/dto/response"
	"github.com/sangkips/checkout-api/internal/presentation/http/middleware"
	"github.com/sangkips/checkout-api/pkg/pagination"
)

// GetOperatorID extracts the operator ID from the Gin context
func GetOperatorID(c *gin.Context) *uuid.UUID {
	id := middleware.GetOperatorID(c)
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// GetOperatorName extracts the operator display name from the Gin context
func GetOperatorName(c *gin.Context) string {
	return c.GetString(middleware.OperatorNameKey)
}

// pathUUID parses a UUID path parameter, writing a 400 on failure
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	p := &pagination.PaginationParams{Page: page, PerPage: perPage}
	p.Validate()
	return p
}

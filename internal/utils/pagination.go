package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
)

type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// GetPaginationParams reads page/limit from the query string. An explicit skip
// offset takes precedence over page for clients that page by offset.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < 1 {
		page = 1
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	offset := (page - 1) * limit
	if skip, err := strconv.Atoi(c.Query("skip")); err == nil && skip >= 0 {
		offset = skip
		page = skip/limit + 1
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: offset,
	}
}

package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"farmlyf_back_end/internal/store"
)

// PageFromQuery reads ?page= and ?limit= from the request.
func PageFromQuery(c *gin.Context) store.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return store.Page{Page: page, Limit: limit}.Normalize()
}

// PageResponse is the envelope of paginated listings.
func PageResponse(key string, items any, total int64, p store.Page) gin.H {
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return gin.H{
		key:     items,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
		"pages": pages,
	}
}

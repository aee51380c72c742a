package v1

import (
	"strconv"
	"strings"

	"placement-backend/internal/delivery/http/middleware"
	"placement-backend/internal/domain"
	"placement-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func actorOf(c *gin.Context) domain.Actor {
	return middleware.CurrentActor(c)
}

// pathID parses a positive int64 path parameter, reporting a 400 through c.Error otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return false
	}
	return true
}

func pageOf(c *gin.Context) domain.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(domain.DefaultPageSize)))
	return domain.Page{Page: page, PageSize: pageSize}.Normalize()
}

func queryInt(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.Query(key))
	return v
}

func queryInt64(c *gin.Context, key string) int64 {
	v, _ := strconv.ParseInt(c.Query(key), 10, 64)
	return v
}

// queryList accepts both ?k=a,b and ?k=a&k=b.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryBool(c *gin.Context, key string) *bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return nil
	}
	return &v
}

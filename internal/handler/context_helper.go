package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-engagement-api/internal/middleware"
	"github.com/noah-isme/sma-engagement-api/internal/service"
	appErrors "github.com/noah-isme/sma-engagement-api/pkg/errors"
)

func engagementRequestFromContext(c *gin.Context) (service.EngagementRequest, error) {
	req := service.EngagementRequest{
		TenantID: middleware.TenantFromContext(c),
		Cohort:   strings.TrimSpace(c.Query("cohort")),
	}
	var err error
	if req.WindowDays, err = queryInt(c, "windowDays"); err != nil {
		return req, err
	}
	if req.RiskWindowDays, err = queryInt(c, "riskWindowDays"); err != nil {
		return req, err
	}
	if req.TermCount, err = queryInt(c, "termCount"); err != nil {
		return req, err
	}
	return req, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be an integer")
	}
	return value, nil
}

func withProcessingMeta(c *gin.Context, cacheHit bool, extra map[string]interface{}) map[string]interface{} {
	middleware.SetCacheHit(c, cacheHit)
	for k, v := range extra {
		middleware.SetMeta(c, k, v)
	}
	return middleware.ExtractMeta(c)
}

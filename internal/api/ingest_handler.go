package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"GameIngest/internal/model"
	"GameIngest/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// IngestRunner 触发一次入库运行（service.IngestService 实现）
type IngestRunner interface {
	RunOnce(ctx context.Context) (*model.RunSummary, error)
}

type IngestHandler struct {
	runner    IngestRunner
	apiSecret string
	logger    *logrus.Logger
}

func NewIngestHandler(runner IngestRunner, apiSecret string, logger *logrus.Logger) *IngestHandler {
	return &IngestHandler{
		runner:    runner,
		apiSecret: apiSecret,
		logger:    logger,
	}
}

// RetrieveInfo 由定时批处理调用，拉取热门搜索对应的游戏信息并入库
// @Summary 触发游戏信息入库
// @Param Authorization header string true "Bearer <API_SECRET>"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/game/retrieve-info [post]
func (h *IngestHandler) RetrieveInfo(c *gin.Context) {
	authorization := c.GetHeader("Authorization")
	if h.apiSecret == "" || authorization == "" {
		c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized!"})
		return
	}
	token := strings.TrimPrefix(authorization, "Bearer ")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.apiSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token!"})
		return
	}

	summary, err := h.runner.RunOnce(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"message": "Already running!"})
			return
		}
		h.logger.WithError(err).Error("入库运行失败")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "There was a problem!"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "OK",
		"summary": summary,
	})
}

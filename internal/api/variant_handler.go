package api

import (
	"net/http"
	"strconv"

	"GameIngest/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// VariantHandler 已入库游戏版本的查询接口
type VariantHandler struct {
	repo   repository.VariantRepository
	logger *logrus.Logger
}

// NewVariantHandler 创建 VariantHandler
func NewVariantHandler(repo repository.VariantRepository, logger *logrus.Logger) *VariantHandler {
	return &VariantHandler{
		repo:   repo,
		logger: logger,
	}
}

type variantItem struct {
	ID          uint64  `json:"id"`
	GameID      uint64  `json:"game_id"`
	Title       string  `json:"title"`
	Year        int     `json:"year"`
	Image       string  `json:"image"`
	Rate        float64 `json:"rate"`
	Description string  `json:"description"`
	Platform    string  `json:"platform"`
	Condition   string  `json:"condition"`
	Region      string  `json:"region"`
}

// ListVariants 版本列表接口
// GET /api/variants?page=1&page_size=20
func (h *VariantHandler) ListVariants(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	list, total, err := h.repo.ListVariants(c.Request.Context(), page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListVariants failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]variantItem, 0, len(list))
	for _, v := range list {
		items = append(items, variantItem{
			ID:          v.ID,
			GameID:      v.GameID,
			Title:       v.Game.Title,
			Year:        v.Game.Year,
			Image:       v.Game.Image,
			Rate:        v.Game.Rate,
			Description: v.Game.Description,
			Platform:    v.Platform.Code,
			Condition:   v.Condition.Code,
			Region:      v.Region.Code,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
	})
}

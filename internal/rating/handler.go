package rating

import (
	"net/http"

	"github.com/guessthegame/guess-the-game-backend/internal/user"
	"github.com/guessthegame/guess-the-game-backend/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// RateRequestBody 定义了提交评分的请求体
type RateRequestBody struct {
	ScreenshotID uint `json:"screenshotId" binding:"required"`
	// Rating 允许越界，服务层会钳制进[0,10]
	Rating int `json:"rating"`
}

// RateHandler 记录调用者对一张截图的评分
func RateHandler(c *gin.Context) {
	var body RateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	identity := user.IdentityFromContext(c)
	stats, err := Rate(identity, body.ScreenshotID, body.Rating)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

package moderation

import (
	"net/http"

	"github.com/guessthegame/guess-the-game-backend/internal/user"
	"github.com/guessthegame/guess-the-game-backend/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// ModerateRequestBody 定义了审核操作的请求体
type ModerateRequestBody struct {
	ScreenshotID uint `json:"screenshotId" binding:"required"`
}

// ListPendingHandler 返回待审核截图列表
func ListPendingHandler(c *gin.Context) {
	identity := user.IdentityFromContext(c)
	list, err := ListPending(identity)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// ApproveHandler 通过一张待审核截图
func ApproveHandler(c *gin.Context) {
	var body ModerateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	identity := user.IdentityFromContext(c)
	if err := Approve(identity, body.ScreenshotID); err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// RejectHandler 拒绝一张待审核截图
func RejectHandler(c *gin.Context) {
	var body ModerateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	identity := user.IdentityFromContext(c)
	if err := Reject(identity, body.ScreenshotID); err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

package user

import (
	"net/http"

	"github.com/guessthegame/guess-the-game-backend/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// ProfileResponse 是用户资料接口的JSON响应
type ProfileResponse struct {
	ID                  string `json:"id"`
	Username            string `json:"username"`
	Email               string `json:"email"`
	EmailUpdates        string `json:"emailUpdates"`
	NbSolvedScreenshots int    `json:"nbSolvedScreenshots"`
	NbAddedScreenshots  int64  `json:"nbAddedScreenshots"`
}

// GetProfileHandler 返回当前调用者的资料
func GetProfileHandler(c *gin.Context) {
	identity := IdentityFromContext(c)
	profile, err := GetProfile(identity)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{
		ID:                  profile.UUID,
		Username:            profile.Username,
		Email:               profile.Email,
		EmailUpdates:        profile.EmailUpdates,
		NbSolvedScreenshots: profile.NbSolvedScreenshots,
		NbAddedScreenshots:  profile.NbAddedScreenshots,
	})
}

// UpdateRequestBody 定义了更新用户设置的请求体
type UpdateRequestBody struct {
	Values struct {
		EmailUpdates string `json:"emailUpdates"`
	} `json:"values"`
}

// UpdateHandler 更新当前调用者的可变设置
func UpdateHandler(c *gin.Context) {
	var body UpdateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	if body.Values.EmailUpdates == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "没有可更新的字段"})
		return
	}

	identity := IdentityFromContext(c)
	if err := UpdateEmailPrefs(identity, body.Values.EmailUpdates); err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UnsubscribeRequestBody 定义了退订请求的请求体
type UnsubscribeRequestBody struct {
	EmailToken string `json:"emailToken"`
}

// UnsubscribeHandler 处理邮件退订链接中的一次性令牌
func UnsubscribeHandler(c *gin.Context) {
	var body UnsubscribeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	if err := Unsubscribe(body.EmailToken); err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

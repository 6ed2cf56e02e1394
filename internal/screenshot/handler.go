package screenshot

import (
	"net/http"
	"strconv"
	"time"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/guessthegame/guess-the-game-backend/internal/user"
	"github.com/guessthegame/guess-the-game-backend/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// --- API响应模型 ---

// ViewResponse 是截图视图的JSON形态
type ViewResponse struct {
	ID             uint       `json:"id"`
	ImageURL       string     `json:"imageUrl"`
	CreatedAt      time.Time  `json:"createdAt"`
	ApprovalStatus string     `json:"approvalStatus"`
	IsOwn          bool       `json:"isOwn"`
	IsSolved       bool       `json:"isSolved"`
	Name           string     `json:"name,omitempty"`
	Year           *int       `json:"year,omitempty"`
	Stats          StatsDTO   `json:"stats"`
	OwnRating      *int       `json:"ownRating"`
}

func formatView(dto *ViewDTO) ViewResponse {
	return ViewResponse{
		ID:             dto.ID,
		ImageURL:       dto.ImageURL,
		CreatedAt:      dto.CreatedAt,
		ApprovalStatus: string(dto.ApprovalStatus),
		IsOwn:          dto.IsOwn,
		IsSolved:       dto.IsSolved,
		Name:           dto.Name,
		Year:           dto.Year,
		Stats:          dto.Stats,
		OwnRating:      dto.OwnRating,
	}
}

// --- 控制器函数 ---

// GetScreenshotHandler 根据ID获取单张截图的可见视图
func GetScreenshotHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "截图ID格式错误"})
		return
	}

	identity := user.IdentityFromContext(c)
	view, err := GetByID(uint(id), identity)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, formatView(view))
}

// UnsolvedRequestBody 定义了获取下一张未解截图的请求体
type UnsolvedRequestBody struct {
	Exclude []uint `json:"exclude"`
}

// UnsolvedResponse 在截图视图外附带选题引擎的两个信号
type UnsolvedResponse struct {
	ViewResponse
	IsUnseenScreenshot   bool `json:"isUnseenScreenshot"`
	NeedToResetExclusion bool `json:"needToResetExclusion"`
}

// GetUnsolvedHandler 为调用者选出下一张待猜截图
func GetUnsolvedHandler(c *gin.Context) {
	if !database.IsRedisHealthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "服务暂时不可用，请稍后重试"})
		return
	}

	var body UnsolvedRequestBody
	// 空请求体等价于没有排除集
	_ = c.ShouldBindJSON(&body)

	identity := user.IdentityFromContext(c)
	selection, err := PickUnsolved(identity, body.Exclude)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	view, err := GetByID(selection.ScreenshotID, identity)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, UnsolvedResponse{
		ViewResponse:         formatView(view),
		IsUnseenScreenshot:   selection.IsUnseen,
		NeedToResetExclusion: selection.NeedToResetExclusion,
	})
}

// GetLastAddedHandler 返回最新一张已审核截图
func GetLastAddedHandler(c *gin.Context) {
	identity := user.IdentityFromContext(c)
	view, err := GetLastAdded(identity)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, formatView(view))
}

// PrevNextRequestBody 定义了查询相邻截图的请求体
type PrevNextRequestBody struct {
	ScreenshotID uint `json:"screenshotId" binding:"required"`
}

// PrevNextHandler 返回一张截图在已审核序列中的前后邻居
func PrevNextHandler(c *gin.Context) {
	var body PrevNextRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	adjacent, err := GetPrevAndNext(body.ScreenshotID)
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, adjacent)
}

// ProposalRequestBody 定义了提交猜测的请求体
type ProposalRequestBody struct {
	ScreenshotID uint   `json:"screenshotId" binding:"required"`
	Proposal     string `json:"proposal" binding:"required"`
}

// ProposalResponse 是猜测评估结果的JSON形态
type ProposalResponse struct {
	Correct        bool             `json:"correct"`
	ScreenshotName string           `json:"screenshotName,omitempty"`
	Year           *int             `json:"year,omitempty"`
	NewRankingData *user.RankingDTO `json:"newRankingData,omitempty"`
	Token          string           `json:"token,omitempty"`
}

// ProposalHandler 评估一条猜测，必要时完成匿名晋升
func ProposalHandler(c *gin.Context) {
	var body ProposalRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	// 滑动窗口限制单IP的猜测频率，减缓暴力枚举答案
	if database.IsRedisHealthy() {
		count, err := IncrementGuessCount(c.ClientIP(), time.Now())
		if err == nil && count > MaxGuessesPerWindow {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "猜测太频繁，请稍后再试"})
			return
		}
	}

	identity := user.IdentityFromContext(c)
	result, err := EvaluateProposal(identity, body.ScreenshotID, body.Proposal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "处理猜测失败"})
		return
	}

	c.JSON(http.StatusOK, ProposalResponse{
		Correct:        result.Correct,
		ScreenshotName: result.ScreenshotName,
		Year:           result.Year,
		NewRankingData: result.Ranking,
		Token:          result.IssuedToken,
	})
}

// AddRequestBody 定义了创建截图的请求体
type AddRequestBody struct {
	Name             string   `json:"name" binding:"required"`
	AlternativeNames []string `json:"alternativeNames"`
	Year             *int     `json:"year"`
	ImageURL         string   `json:"imageUrl" binding:"required"`
	RecaptchaToken   string   `json:"recaptchaToken"`
}

// AddScreenshotHandler 创建一张新截图（初始PENDING，等待审核）
func AddScreenshotHandler(c *gin.Context) {
	var body AddRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	identity := user.IdentityFromContext(c)
	s, err := Create(identity, CreateInput{
		Name:             body.Name,
		AlternativeNames: body.AlternativeNames,
		Year:             body.Year,
		ImageURL:         body.ImageURL,
		CaptchaToken:     body.RecaptchaToken,
	})
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":             s.ID,
		"approvalStatus": s.ApprovalStatus,
	})
}

// EditRequestBody 定义了编辑截图的请求体
type EditRequestBody struct {
	ID               uint     `json:"id" binding:"required"`
	Name             string   `json:"name" binding:"required"`
	AlternativeNames []string `json:"alternativeNames"`
	Year             *int     `json:"year"`
}

// EditScreenshotHandler 编辑自己上传的截图
func EditScreenshotHandler(c *gin.Context) {
	var body EditRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	identity := user.IdentityFromContext(c)
	s, err := Edit(identity, body.ID, EditInput{
		Name:             body.Name,
		AlternativeNames: body.AlternativeNames,
		Year:             body.Year,
	})
	if err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": s.ID})
}

// RemoveRequestBody 定义了删除截图的请求体
type RemoveRequestBody struct {
	ScreenshotID uint `json:"screenshotId" binding:"required"`
}

// RemoveScreenshotHandler 删除自己上传的截图
func RemoveScreenshotHandler(c *gin.Context) {
	var body RemoveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	identity := user.IdentityFromContext(c)
	if err := DeleteOwn(identity, body.ScreenshotID); err != nil {
		c.JSON(apperror.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

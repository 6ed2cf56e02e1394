package screenshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/captcha"
	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/guessthegame/guess-the-game-backend/internal/progress"
	"github.com/guessthegame/guess-the-game-backend/internal/user"
	"github.com/guessthegame/guess-the-game-backend/pkg/apperror"
	"gorm.io/gorm"
)

// --- Service-Level Data Transfer Objects (DTOs) ---

// StatsDTO 是截图聚合统计的对外形态
type StatsDTO struct {
	RatingSum     int      `json:"ratingSum"`
	RatingCount   int      `json:"ratingCount"`
	AverageRating float64  `json:"averageRating"`
	FirstSolvedBy *string  `json:"firstSolvedBy"`
}

// ViewDTO 是单张截图经过可见性过滤后的完整视图。
// Name和Year只在IsSolved或IsOwn时填充。
type ViewDTO struct {
	ID             uint
	ImageURL       string
	CreatedAt      time.Time
	AddedBy        string
	ApprovalStatus ApprovalStatus
	IsOwn          bool
	IsSolved       bool
	Name           string
	Year           *int
	Stats          StatsDTO
	OwnRating      *int
}

// notifyNewScreenshot 是新截图创建后的审核通知钩子，由moderation模块在启动时注册。
// 通知是fire-and-forget：钩子的任何失败都不会影响创建操作本身。
var notifyNewScreenshot func(id uint, name string)

// RegisterModerationNotifier 注册新截图的审核通知钩子。
func RegisterModerationNotifier(fn func(id uint, name string)) {
	notifyNewScreenshot = fn
}

// getRawByID 按主键读取截图，不做任何可见性过滤。
func getRawByID(id uint) (*Screenshot, error) {
	var s Screenshot
	err := database.DB.First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Newf(apperror.CodeNotFound, "找不到ID为 %d 的截图", id)
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取截图 %d: %w", id, err)
	}
	return &s, nil
}

// canSee 实现核心可见性规则：
// 非所有者、非审核员只能看到APPROVED状态的截图。
func canSee(s *Screenshot, identity user.Identity) bool {
	if s.ApprovalStatus == StatusApproved {
		return true
	}
	return identity.CanModerate || (identity.IsDurable() && s.AddedBy == identity.UUID)
}

// GetByID 组装一张截图的可见性过滤视图。
// 对持久化身份同时记录一次viewed事件（匿名身份不记录）。
// 不可见与不存在对调用者是同一种NOT_FOUND，不泄露审核状态。
func GetByID(id uint, identity user.Identity) (*ViewDTO, error) {
	s, err := getRawByID(id)
	if err != nil {
		return nil, err
	}
	if !canSee(s, identity) {
		return nil, apperror.Newf(apperror.CodeNotFound, "找不到ID为 %d 的截图", id)
	}

	if err := progress.MarkViewed(identity.UUID, s.ID); err != nil {
		// viewed只影响选题偏好，记录失败不阻塞读取
		fmt.Printf("警告: 无法记录viewed事件: %v\n", err)
	}

	return assembleView(s, identity)
}

// assembleView 构建视图并套用名称/年份的隐藏规则。
func assembleView(s *Screenshot, identity user.Identity) (*ViewDTO, error) {
	view := &ViewDTO{
		ID:             s.ID,
		ImageURL:       s.ImageURL,
		CreatedAt:      s.CreatedAt,
		AddedBy:        s.AddedBy,
		ApprovalStatus: s.ApprovalStatus,
		IsOwn:          identity.IsDurable() && s.AddedBy == identity.UUID,
		Stats: StatsDTO{
			RatingSum:     s.RatingSum,
			RatingCount:   s.RatingCount,
			AverageRating: s.AverageRating(),
			FirstSolvedBy: s.FirstSolvedBy,
		},
	}

	if identity.IsDurable() {
		solved, err := progress.HasSolved(identity.UUID, s.ID)
		if err != nil {
			return nil, err
		}
		view.IsSolved = solved

		var ownRating struct{ Value int }
		err = database.DB.Table("rating_records").
			Select("value").
			Where("user_uuid = ? AND screenshot_id = ? AND deleted_at IS NULL", identity.UUID, s.ID).
			Take(&ownRating).Error
		if err == nil {
			view.OwnRating = &ownRating.Value
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("无法读取用户评分: %w", err)
		}
	}

	// 答案只对解出者和所有者可见
	if view.IsSolved || view.IsOwn {
		view.Name = s.CanonicalName
		view.Year = s.Year
	}
	return view, nil
}

// CreateInput 是创建截图所需的全部输入。
type CreateInput struct {
	Name             string
	AlternativeNames []string
	Year             *int
	ImageURL         string
	CaptchaToken     string
}

// Create 创建一张新的截图，初始状态为PENDING。
// 需要持久化身份和一次成功的人机验证；创建成功后异步通知审核员。
func Create(identity user.Identity, input CreateInput) (*Screenshot, error) {
	if !identity.IsDurable() {
		return nil, apperror.New(apperror.CodeUnauthenticated, "需要登录才能添加截图")
	}
	if input.Name == "" {
		return nil, apperror.New(apperror.CodeValidation, "截图必须有游戏名称")
	}
	if input.ImageURL == "" {
		return nil, apperror.New(apperror.CodeValidation, "截图必须有图片")
	}

	verified, err := captcha.VerifyToken(input.CaptchaToken)
	if err != nil {
		return nil, apperror.Newf(apperror.CodeExternalDependency, "人机验证服务不可用: %v", err)
	}
	if !verified {
		return nil, apperror.New(apperror.CodeValidation, "人机验证未通过")
	}

	s := Screenshot{
		ImageURL:         input.ImageURL,
		AddedBy:          identity.UUID,
		CanonicalName:    input.Name,
		AlternativeNames: EncodeAlternativeNames(input.AlternativeNames),
		Year:             input.Year,
		ApprovalStatus:   StatusPending,
	}
	if err := database.DB.Create(&s).Error; err != nil {
		return nil, fmt.Errorf("无法创建截图: %w", err)
	}

	// 审核通知是fire-and-forget，绝不回滚或阻塞创建
	if notifyNewScreenshot != nil {
		notifyNewScreenshot(s.ID, s.CanonicalName)
	}
	return &s, nil
}

// EditInput 是编辑截图时可修改的字段。
type EditInput struct {
	Name             string
	AlternativeNames []string
	Year             *int
}

// Edit 修改一张截图的答案字段，仅限所有者。
func Edit(identity user.Identity, id uint, input EditInput) (*Screenshot, error) {
	if !identity.IsDurable() {
		return nil, apperror.New(apperror.CodeUnauthenticated, "需要登录才能编辑截图")
	}
	if input.Name == "" {
		return nil, apperror.New(apperror.CodeValidation, "截图必须有游戏名称")
	}

	s, err := getRawByID(id)
	if err != nil {
		return nil, err
	}
	if s.AddedBy != identity.UUID {
		return nil, apperror.Newf(apperror.CodeNotFound, "找不到ID为 %d 的截图", id)
	}

	s.CanonicalName = input.Name
	s.AlternativeNames = EncodeAlternativeNames(input.AlternativeNames)
	s.Year = input.Year
	if err := database.DB.Save(s).Error; err != nil {
		return nil, fmt.Errorf("无法保存截图 %d: %w", id, err)
	}
	return s, nil
}

// DeleteOwn 删除调用者自己上传的一张截图。
func DeleteOwn(identity user.Identity, id uint) error {
	if !identity.IsDurable() {
		return apperror.New(apperror.CodeUnauthenticated, "需要登录才能删除截图")
	}

	result := database.DB.Where("id = ? AND added_by = ?", id, identity.UUID).Delete(&Screenshot{})
	if result.Error != nil {
		return fmt.Errorf("无法删除截图 %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.Newf(apperror.CodeNotFound, "找不到ID为 %d 的截图", id)
	}

	if err := RemoveApprovedFromCache(id); err != nil {
		fmt.Printf("警告: 无法将截图 %d 移出已审核缓存: %v\n", id, err)
	}
	return nil
}

// AdjacentDTO 携带一张截图在已审核序列中的前后邻居。
type AdjacentDTO struct {
	PrevID *uint `json:"prevId"`
	NextID *uint `json:"nextId"`
}

// GetPrevAndNext 返回按主键升序排列的已审核截图中，给定截图的前一张和后一张。
// 位于两端时对应方向为null，不回绕。
func GetPrevAndNext(id uint) (*AdjacentDTO, error) {
	var result AdjacentDTO

	var prev Screenshot
	err := database.DB.
		Where("id < ? AND approval_status = ?", id, StatusApproved).
		Order("id desc").First(&prev).Error
	if err == nil {
		result.PrevID = &prev.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("无法查询前一张截图: %w", err)
	}

	var next Screenshot
	err = database.DB.
		Where("id > ? AND approval_status = ?", id, StatusApproved).
		Order("id asc").First(&next).Error
	if err == nil {
		result.NextID = &next.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("无法查询后一张截图: %w", err)
	}

	return &result, nil
}

// GetLastAdded 返回最新一张已审核截图的视图。
func GetLastAdded(identity user.Identity) (*ViewDTO, error) {
	var s Screenshot
	err := database.DB.
		Where("approval_status = ?", StatusApproved).
		Order("id desc").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.New(apperror.CodeNotFound, "还没有任何已审核的截图")
	}
	if err != nil {
		return nil, fmt.Errorf("无法查询最新截图: %w", err)
	}
	return GetByID(s.ID, identity)
}

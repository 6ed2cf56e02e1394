package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/guessthegame/guess-the-game-backend/pkg/apperror"
	"github.com/guessthegame/guess-the-game-backend/pkg/token"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResolveIdentity 从身份令牌解析调用者身份。
// 缺失、格式错误、签名无效、超过新鲜度窗口、或UUID不对应任何已持久化用户的
// 令牌都解析为匿名占位身份，绝不返回错误——这是晋升流程能工作的前提。
func ResolveIdentity(tokenStr string) Identity {
	if tokenStr == "" {
		return Identity{}
	}
	payload, err := token.DecodeUserToken(tokenStr)
	if err != nil {
		return Identity{}
	}
	if !token.IsFresh(payload, time.Now()) {
		return Identity{}
	}
	// 签名有效但用户记录已不存在（数据库重置、账号删除）：
	// 退化为匿名身份，让下游走正常的晋升路径，而不是在排名计算处失败
	if !IsKnownUser(payload.UserID) {
		return Identity{}
	}
	return Identity{UUID: payload.UserID, CanModerate: payload.CanModerate}
}

// IsKnownUser 判断一个UUID是否对应一条已持久化的User记录。
// 优先查询Redis已知用户集合；Redis不可用时回退到SQL权威记录。
func IsKnownUser(uuidStr string) bool {
	member, err := database.RDB.SIsMember(database.Ctx, KnownUsersKey, uuidStr).Result()
	if err == nil {
		return member
	}

	var count int64
	if err := database.DB.Model(&User{}).Where("uuid = ?", uuidStr).Count(&count).Error; err != nil {
		fmt.Printf("警告: 无法校验用户 %s 是否存在: %v\n", uuidStr, err)
		return false
	}
	return count > 0
}

// CreateUser 铸造一个新的持久化用户并签发绑定到它的身份令牌。
// 这是匿名玩家首次猜对时的晋升路径，也被注册流程复用。
// SQLite写入和Redis缓存写入是原子的：缓存写入失败时数据库写入会被回滚。
func CreateUser() (*User, string, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return nil, "", fmt.Errorf("无法生成UUID v7: %w", err)
	}

	now := time.Now()
	newUser := User{
		UUID:                 newUUID.String(),
		EmailUpdates:         EmailUpdatesASAP,
		SolvedCountUpdatedAt: now,
	}

	// 开启一个数据库事务
	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, "", fmt.Errorf("无法开始数据库事务: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&newUser).Error; err != nil {
		tx.Rollback()
		return nil, "", fmt.Errorf("无法创建新用户: %w", err)
	}

	// 将新UUID写入Redis已知用户缓存；失败则回滚SQL写入，保证一致性
	if err := database.RDB.SAdd(database.Ctx, KnownUsersKey, newUser.UUID).Err(); err != nil {
		tx.Rollback()
		return nil, "", fmt.Errorf("无法将新用户 %s 添加到Redis缓存: %w", newUser.UUID, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, "", fmt.Errorf("无法提交用户创建事务: %w", err)
	}

	userToken, err := token.GenerateUserToken(newUser.UUID, newUser.CanModerate, now)
	if err != nil {
		return nil, "", fmt.Errorf("无法为新用户签发令牌: %w", err)
	}
	return &newUser, userToken, nil
}

// GetByUUID 按主键读取一个用户。未找到时返回NOT_FOUND业务错误。
func GetByUUID(uuidStr string) (*User, error) {
	var u User
	err := database.DB.Where("uuid = ?", uuidStr).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Newf(apperror.CodeNotFound, "找不到用户 %s", uuidStr)
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取用户 %s: %w", uuidStr, err)
	}
	return &u, nil
}

// ProfileDTO 是用户资料接口返回的数据包。
type ProfileDTO struct {
	UUID                 string
	Username             string
	Email                string
	EmailUpdates         string
	NbSolvedScreenshots  int
	NbAddedScreenshots   int64
}

// GetProfile 组装用户资料。
// 已添加截图数通过表名直接计数，避免对screenshot模块的反向依赖。
func GetProfile(identity Identity) (*ProfileDTO, error) {
	if !identity.IsDurable() {
		return nil, apperror.New(apperror.CodeUnauthenticated, "需要持久化身份才能查看资料")
	}
	u, err := GetByUUID(identity.UUID)
	if err != nil {
		return nil, err
	}

	var addedCount int64
	if err := database.DB.Table("screenshots").
		Where("added_by = ? AND deleted_at IS NULL", u.UUID).
		Count(&addedCount).Error; err != nil {
		return nil, fmt.Errorf("无法统计用户已添加的截图数: %w", err)
	}

	return &ProfileDTO{
		UUID:                u.UUID,
		Username:            u.Username,
		Email:               u.Email,
		EmailUpdates:        u.EmailUpdates,
		NbSolvedScreenshots: u.SolvedCount,
		NbAddedScreenshots:  addedCount,
	}, nil
}

// UpdateEmailPrefs 更新用户的邮件订阅频率。
func UpdateEmailPrefs(identity Identity, emailUpdates string) error {
	if !identity.IsDurable() {
		return apperror.New(apperror.CodeUnauthenticated, "需要持久化身份才能更新设置")
	}
	switch emailUpdates {
	case EmailUpdatesNever, EmailUpdatesWeekly, EmailUpdatesDaily, EmailUpdatesASAP:
	default:
		return apperror.Newf(apperror.CodeValidation, "emailUpdates 必须是 never/weekly/daily/asap 之一，收到 %q", emailUpdates)
	}
	return database.DB.Model(&User{}).
		Where("uuid = ?", identity.UUID).
		Update("email_updates", emailUpdates).Error
}

// Unsubscribe 处理来自邮件链接的一次性退订令牌。
// 令牌超过新鲜度窗口时返回EXPIRED_TOKEN。
func Unsubscribe(emailToken string) error {
	if emailToken == "" {
		return apperror.New(apperror.CodeValidation, "缺少emailToken")
	}
	payload, err := token.DecodeUserToken(emailToken)
	if err != nil {
		return apperror.New(apperror.CodeValidation, "退订令牌无效")
	}
	if !token.IsFresh(payload, time.Now()) {
		return apperror.New(apperror.CodeExpiredToken, "退订令牌已过期")
	}
	return database.DB.Model(&User{}).
		Where("uuid = ?", payload.UserID).
		Update("email_updates", EmailUpdatesNever).Error
}

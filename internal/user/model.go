package user

import (
	"time"

	"gorm.io/gorm"
)

// EmailUpdates 的合法取值。asap是新用户的默认值。
const (
	EmailUpdatesNever  = "never"
	EmailUpdatesWeekly = "weekly"
	EmailUpdatesDaily  = "daily"
	EmailUpdatesASAP   = "asap"
)

// User 定义了玩家身份在数据库中的持久化模型。
// 匿名玩家没有任何持久化记录：第一条User记录在注册或首次猜对时才被创建。
type User struct {
	// UUID 是用户的主键，由服务端生成（UUIDv7），写入身份令牌。
	UUID string `gorm:"primarykey;type:varchar(36)"`

	// Username 和 Email 是可选的持久化属性。
	// 由首次猜对晋升而来的用户在补全注册前两者都为空。
	Username string `gorm:"index"`
	Email    string

	// EmailUpdates 控制营销/更新邮件的频率
	EmailUpdates string `gorm:"default:asap"`

	// CanModerate 标记该用户是否具有审核截图的能力
	CanModerate bool

	// SolvedCount 是已解出截图的总数，驱动排行榜。
	// 它只通过SQL表达式自增，绝不在应用层读改写。
	SolvedCount int `gorm:"index"`

	// SolvedCountUpdatedAt 记录用户达到当前SolvedCount的时刻。
	// 同分用户按先达到者在前排序，保证排名稳定、确定。
	SolvedCountUpdatedAt time.Time

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Identity 是一次请求中解析出的调用者身份。
// UUID为空表示匿名占位身份——下游所有操作都必须容忍这种情况。
type Identity struct {
	UUID        string
	CanModerate bool
}

// IsDurable 报告该身份是否对应一条持久化的User记录。
func (id Identity) IsDurable() bool {
	return id.UUID != ""
}

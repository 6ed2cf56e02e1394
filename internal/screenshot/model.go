package screenshot

import (
	"encoding/json"

	"gorm.io/gorm"
)

// ApprovalStatus 定义了截图审核状态的枚举类型
type ApprovalStatus string

const (
	// StatusPending 是新截图的初始状态，对非所有者不可见
	StatusPending ApprovalStatus = "PENDING"
	// StatusApproved 表示截图已通过审核，可以被选题和猜测
	StatusApproved ApprovalStatus = "APPROVED"
	// StatusRejected 表示截图被审核拒绝，对本引擎而言是终态
	StatusRejected ApprovalStatus = "REJECTED"
)

// Screenshot 定义了数据库中截图的数据结构
type Screenshot struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// ImageURL 是截图图片的稳定引用，由外部的对象存储返回
	ImageURL string

	// AddedBy 是上传者的用户UUID
	AddedBy string `gorm:"index;type:varchar(36)"`

	// CanonicalName 是被接受的标准答案（游戏名）
	// 在调用者解出或拥有这张截图之前，绝不能出现在任何响应里
	CanonicalName string

	// AlternativeNames 是额外接受的同义答案，以JSON数组形式序列化存储
	AlternativeNames string

	// Year 是游戏的发行年份，可选；可见性规则与名称相同
	Year *int

	// ApprovalStatus 控制可见性。
	// 只允许 PENDING -> APPROVED 或 PENDING -> REJECTED 的单向迁移。
	ApprovalStatus ApprovalStatus `gorm:"index;default:PENDING"`

	// RatingSum / RatingCount 是评分聚合。
	// 永远同时存储两者，均值由两者推导；聚合只做增量调整，绝不全表重算。
	RatingSum   int
	RatingCount int

	// FirstSolvedBy 记录第一个解出这张截图的用户UUID。
	// 只能通过"仍为NULL时才写入"的条件更新来认领，全局至多一人。
	FirstSolvedBy *string `gorm:"type:varchar(36)"`
}

// AcceptedNames 返回这张截图接受的全部答案：标准名加所有同义名。
func (s *Screenshot) AcceptedNames() []string {
	names := []string{s.CanonicalName}
	if s.AlternativeNames != "" {
		var alternatives []string
		if err := json.Unmarshal([]byte(s.AlternativeNames), &alternatives); err == nil {
			names = append(names, alternatives...)
		}
	}
	return names
}

// EncodeAlternativeNames 将同义名列表序列化为存储格式。
func EncodeAlternativeNames(names []string) string {
	if len(names) == 0 {
		return ""
	}
	encoded, err := json.Marshal(names)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// AverageRating 由聚合字段推导出平均评分；没有评分时为0。
func (s *Screenshot) AverageRating() float64 {
	if s.RatingCount == 0 {
		return 0
	}
	return float64(s.RatingSum) / float64(s.RatingCount)
}

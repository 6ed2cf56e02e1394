package screenshot

import (
	"fmt"
	"time"

	"github.com/guessthegame/guess-the-game-backend/internal/platform/database"
	"github.com/guessthegame/guess-the-game-backend/internal/progress"
	"github.com/guessthegame/guess-the-game-backend/internal/user"
	"gorm.io/gorm"
)

// ProposalResultDTO 是一次猜测评估的完整结果。
type ProposalResultDTO struct {
	Correct bool
	// 以下字段只在Correct时填充
	ScreenshotName string
	Year           *int
	// Ranking 只在本次猜测产生了新的解题记录时填充；幂等重解时为nil
	Ranking *user.RankingDTO
	// IssuedToken 只在本次调用把匿名身份晋升为持久化身份时填充
	IssuedToken string
	// Identity 是评估结束后的生效身份（可能是晋升出的新身份）
	Identity user.Identity
}

// EvaluateProposal 评估一条针对截图的自由文本猜测。
//
// 截图不存在或未通过审核时，结果与猜错完全一致，不向调用者泄露审核状态。
// 猜对时（按顺序）：
//  1. 匿名身份在同一次调用内晋升为持久化身份并签发令牌——
//     绝不让玩家在"猜对"和"拿到身份"之间丢失成果；
//  2. 记录解题前排名；
//  3. 在一个事务中写入解题记录（唯一约束幂等）、自增SolvedCount、
//     用单条条件更新认领FirstSolvedBy（仍为NULL时才写入，并发首解只有一个赢家，
//     输家同样得到correct=true，只是不带首解归属）；
//  4. 重算解题后排名。
//
// 已解出用户的重复猜对是无副作用的幂等操作。
func EvaluateProposal(identity user.Identity, screenshotID uint, rawGuess string) (*ProposalResultDTO, error) {
	incorrect := &ProposalResultDTO{Correct: false, Identity: identity}

	s, err := getRawByID(screenshotID)
	if err != nil {
		// NOT_FOUND与猜错不可区分
		return incorrect, nil
	}
	if s.ApprovalStatus != StatusApproved {
		return incorrect, nil
	}
	if !matchesAnyName(rawGuess, s.AcceptedNames()) {
		return incorrect, nil
	}

	result := &ProposalResultDTO{
		Correct:        true,
		ScreenshotName: s.CanonicalName,
		Year:           s.Year,
		Identity:       identity,
	}

	// 匿名晋升：这是未注册玩家获得持久化身份的唯一路径
	if !identity.IsDurable() {
		newUser, issuedToken, err := user.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("无法晋升匿名用户: %w", err)
		}
		result.Identity = user.Identity{UUID: newUser.UUID, CanModerate: newUser.CanModerate}
		result.IssuedToken = issuedToken
	}
	effective := result.Identity

	rankBefore, err := user.CurrentRank(effective.UUID)
	if err != nil {
		return nil, fmt.Errorf("无法计算解题前排名: %w", err)
	}

	var isNewSolve bool
	now := time.Now()
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		isNewSolve, txErr = progress.MarkSolvedTx(tx, effective.UUID, s.ID)
		if txErr != nil {
			return txErr
		}
		if !isNewSolve {
			// 幂等重解：不动任何聚合
			return nil
		}

		if txErr := user.ApplySolveTx(tx, effective.UUID, now); txErr != nil {
			return txErr
		}

		// 首解认领：单条条件更新，绝不读后写。
		// RowsAffected为0说明别人先到，这不是错误。
		claim := tx.Model(&Screenshot{}).
			Where("id = ? AND first_solved_by IS NULL", s.ID).
			Update("first_solved_by", effective.UUID)
		return claim.Error
	})
	if err != nil {
		return nil, fmt.Errorf("无法记录解题: %w", err)
	}

	if isNewSolve {
		if err := progress.MirrorSolved(effective.UUID, s.ID); err != nil {
			fmt.Printf("警告: 无法更新已解出缓存: %v\n", err)
		}

		rankAfter, err := user.CurrentRank(effective.UUID)
		if err != nil {
			return nil, fmt.Errorf("无法计算解题后排名: %w", err)
		}
		result.Ranking = &user.RankingDTO{Before: rankBefore, After: rankAfter}
	}

	return result, nil
}

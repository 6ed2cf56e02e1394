package screenshot

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticsStripper 先做NFD分解，移除所有组合记号（重音等），再重组为NFC。
// transform链是无状态的，可以安全地被并发使用。
var diacriticsStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeGameName 把一个游戏名或猜测归一化为可比较的形式：
// 小写化、去除变音符号、把所有空白和标点的连续串折叠为单个空格。
// 比较是归一化后的精确相等，不做任何模糊/编辑距离匹配。
func NormalizeGameName(raw string) string {
	lowered := strings.ToLower(raw)

	stripped, _, err := transform.String(diacriticsStripper, lowered)
	if err != nil {
		// 变音符号处理失败时退回小写原文，比较仍然可用
		stripped = lowered
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSpace := false
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			// 空白、标点、其他符号统一视为分隔
			pendingSpace = true
		}
	}
	return b.String()
}

// matchesAnyName 判断一个猜测在归一化后是否命中任意一个接受的答案。
func matchesAnyName(guess string, acceptedNames []string) bool {
	normalizedGuess := NormalizeGameName(guess)
	if normalizedGuess == "" {
		return false
	}
	for _, name := range acceptedNames {
		if NormalizeGameName(name) == normalizedGuess {
			return true
		}
	}
	return false
}

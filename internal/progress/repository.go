package progress

// --- Redis 键名常量 ---
// 每个用户两个Set，镜像SQL中的Solved/Viewed记录，供选题引擎做差集过滤。
// 这些键可随时从SQL完整重建（见setup.go的WarmupCache）。

const (
	// SolvedKeyPrefix + UserUUID 是该用户已解出截图ID的Set
	SolvedKeyPrefix = "progress:solved:"
	// ViewedKeyPrefix + UserUUID 是该用户已看过截图ID的Set
	ViewedKeyPrefix = "progress:viewed:"
)

// SolvedKey 返回一个用户的已解出集合的Redis键名。
func SolvedKey(userUUID string) string {
	return SolvedKeyPrefix + userUUID
}

// ViewedKey 返回一个用户的已看过集合的Redis键名。
func ViewedKey(userUUID string) string {
	return ViewedKeyPrefix + userUUID
}

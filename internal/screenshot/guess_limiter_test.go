package screenshot

import (
	"testing"
	"time"
)

func TestIncrementGuessCount(t *testing.T) {
	setupTestEnv(t)

	now := time.Now()
	for i := 1; i <= 3; i++ {
		count, err := IncrementGuessCount("203.0.113.7", now)
		if err != nil {
			t.Fatalf("IncrementGuessCount: %v", err)
		}
		if count != int64(i) {
			t.Fatalf("第%d次猜测后计数应为%d，得到 %d", i, i, count)
		}
	}

	// 其他IP互不影响
	count, err := IncrementGuessCount("198.51.100.9", now)
	if err != nil {
		t.Fatalf("IncrementGuessCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("不同IP应独立计数，得到 %d", count)
	}
}

func TestIncrementGuessCountSlidingWindow(t *testing.T) {
	setupTestEnv(t)

	base := time.Now()
	if _, err := IncrementGuessCount("203.0.113.7", base); err != nil {
		t.Fatalf("IncrementGuessCount: %v", err)
	}
	if _, err := IncrementGuessCount("203.0.113.7", base.Add(10*time.Second)); err != nil {
		t.Fatalf("IncrementGuessCount: %v", err)
	}

	// 第一条记录已滑出窗口，只剩后两条
	count, err := IncrementGuessCount("203.0.113.7", base.Add(guessRateWindow+5*time.Second))
	if err != nil {
		t.Fatalf("IncrementGuessCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("窗口外的记录应被清理，得到 %d", count)
	}
}

func TestIncrementGuessCountRejectsBadIP(t *testing.T) {
	setupTestEnv(t)

	if _, err := IncrementGuessCount("", time.Now()); err == nil {
		t.Fatalf("空IP应报错")
	}
	if _, err := IncrementGuessCount("not-an-ip", time.Now()); err == nil {
		t.Fatalf("无效IP应报错")
	}
}

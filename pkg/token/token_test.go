package token

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateAndDecodeRoundtrip(t *testing.T) {
	InitializeSecretKey("unit-test-secret")

	issuedAt := time.Now()
	tokenStr, err := GenerateUserToken("0190f1c2-0000-7000-8000-000000000001", true, issuedAt)
	if err != nil {
		t.Fatalf("GenerateUserToken: %v", err)
	}

	payload, err := DecodeUserToken(tokenStr)
	if err != nil {
		t.Fatalf("DecodeUserToken: %v", err)
	}
	if payload.UserID != "0190f1c2-0000-7000-8000-000000000001" {
		t.Fatalf("UserID不匹配: %q", payload.UserID)
	}
	if !payload.CanModerate {
		t.Fatalf("CanModerate应为true")
	}
	if payload.IssuedAt != issuedAt.Unix() {
		t.Fatalf("IssuedAt不匹配: %d vs %d", payload.IssuedAt, issuedAt.Unix())
	}
}

func TestDecodeRejectsTamperedPayload(t *testing.T) {
	InitializeSecretKey("unit-test-secret")

	tokenStr, err := GenerateUserToken("user-a", false, time.Now())
	if err != nil {
		t.Fatalf("GenerateUserToken: %v", err)
	}

	parts := strings.SplitN(tokenStr, ".", 2)
	// 换一个payload但保留原签名
	forged, err := GenerateUserToken("user-b", true, time.Now())
	if err != nil {
		t.Fatalf("GenerateUserToken: %v", err)
	}
	forgedParts := strings.SplitN(forged, ".", 2)

	if _, err := DecodeUserToken(forgedParts[0] + "." + parts[1]); err == nil {
		t.Fatalf("篡改payload的令牌应被拒绝")
	}
	if _, err := DecodeUserToken("not-a-token"); err == nil {
		t.Fatalf("格式错误的令牌应被拒绝")
	}
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	InitializeSecretKey("key-one")
	tokenStr, err := GenerateUserToken("user-a", false, time.Now())
	if err != nil {
		t.Fatalf("GenerateUserToken: %v", err)
	}

	InitializeSecretKey("key-two")
	if _, err := DecodeUserToken(tokenStr); err == nil {
		t.Fatalf("密钥轮换后旧令牌应验签失败")
	}
}

func TestIsFresh(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name     string
		issuedAt time.Time
		want     bool
	}{
		{"刚签发", now, true},
		{"窗口内", now.Add(-24 * time.Hour), true},
		{"恰好在边界", now.Add(-MaxTokenAge), true},
		{"超过窗口", now.Add(-MaxTokenAge - time.Minute), false},
	}
	for _, tc := range cases {
		payload := &UserPayload{UserID: "u", IssuedAt: tc.issuedAt.Unix()}
		if got := IsFresh(payload, now); got != tc.want {
			t.Errorf("%s: IsFresh=%v, want %v", tc.name, got, tc.want)
		}
	}
}

package screenshot

import "testing"

func TestNormalizeGameName(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"  Chrono-Trigger ", "chrono trigger"},
		{"Chrono  Trigger", "chrono trigger"},
		{"Pokémon", "pokemon"},
		{"FINAL FANTASY VII!!!", "final fantasy vii"},
		{"Baldur's Gate 3", "baldur s gate 3"},
		{"Âge of Empires", "age of empires"},
		{"", ""},
		{"--- !!! ---", ""},
	}
	for _, tc := range cases {
		if got := NormalizeGameName(tc.raw); got != tc.want {
			t.Errorf("NormalizeGameName(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestMatchesAnyName(t *testing.T) {
	accepted := []string{"Chrono Trigger", "CT"}

	if !matchesAnyName("  chrono-TRIGGER ", accepted) {
		t.Errorf("归一化后相等的猜测应命中")
	}
	if !matchesAnyName("ct", accepted) {
		t.Errorf("同义名应命中")
	}
	if matchesAnyName("Chrono Cross", accepted) {
		t.Errorf("不同游戏名不应命中")
	}
	if matchesAnyName("", accepted) {
		t.Errorf("空猜测不应命中")
	}
	if matchesAnyName("!!!", accepted) {
		t.Errorf("归一化为空的猜测不应命中")
	}
}

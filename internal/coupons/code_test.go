package coupons

import (
	"strings"
	"testing"
)

func TestGenerateRewardCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateRewardCode()
		if err != nil {
			t.Fatalf("GenerateRewardCode returned error: %v", err)
		}
		if !strings.HasPrefix(code, rewardCodePrefix) {
			t.Fatalf("code %q missing prefix", code)
		}
		suffix := strings.TrimPrefix(code, rewardCodePrefix)
		if len(suffix) != rewardCodeLength {
			t.Fatalf("code %q has suffix length %d, want %d", code, len(suffix), rewardCodeLength)
		}
		for _, c := range suffix {
			if !strings.ContainsRune(rewardCodeChars, c) {
				t.Fatalf("code %q contains %q outside the charset", code, c)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected distinct codes across generations")
	}
}

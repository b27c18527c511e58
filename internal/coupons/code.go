package coupons

import (
	"crypto/rand"
	"fmt"
)

const (
	rewardCodePrefix = "FIDELIDADE-"
	rewardCodeLength = 8
	rewardCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateRewardCode produces a loyalty coupon code like FIDELIDADE-7KQ2M9X4.
// Bytes outside the largest multiple of the charset size are rejected so
// every character is drawn uniformly.
func GenerateRewardCode() (string, error) {
	// 252 is the largest multiple of 36 that fits in a byte.
	const usable = byte(252)

	code := make([]byte, 0, rewardCodeLength)
	buf := make([]byte, rewardCodeLength)
	for len(code) < rewardCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= usable {
				continue
			}
			code = append(code, rewardCodeChars[int(b)%len(rewardCodeChars)])
			if len(code) == rewardCodeLength {
				break
			}
		}
	}
	return rewardCodePrefix + string(code), nil
}

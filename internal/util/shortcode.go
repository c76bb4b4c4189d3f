package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// 字母表去掉了容易混淆的 0、O、I、l
const charset = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ123456789"

const (
	DefaultShortCodeLength = 6
	MinShortCodeLength     = 3
	MaxShortCodeLength     = 50
)

var shortCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// 保留字不允许作为自定义短码，避免与路由冲突
var reservedCodes = map[string]bool{
	"api":     true,
	"admin":   true,
	"login":   true,
	"signup":  true,
	"logout":  true,
	"docs":    true,
	"redoc":   true,
	"auth":    true,
	"healthz": true,
}

// GenerateShortCode 从受限字母表中均匀抽取指定长度的随机短码
func GenerateShortCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultShortCodeLength
	}
	code := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random char index: %w", err)
		}
		code[i] = charset[n.Int64()]
	}
	return string(code), nil
}

// ValidateShortCode 校验自定义短码的长度、字符集与保留字
func ValidateShortCode(code string) error {
	if len(code) < MinShortCodeLength || len(code) > MaxShortCodeLength {
		return ErrInvalidCodeFormat
	}
	if !shortCodePattern.MatchString(code) {
		return ErrInvalidCodeFormat
	}
	if reservedCodes[strings.ToLower(code)] {
		return ErrInvalidCodeFormat
	}
	return nil
}

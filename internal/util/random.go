package util

import (
	"crypto/rand"
	"math/big"
)

const randomCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRandomString 生成指定长度的随机串，用于班级邀请码和文件名后缀。
// 字符集去掉了易混淆的 0/O/1/I
func GenerateRandomString(length int) string {
	result := make([]byte, length)
	max := big.NewInt(int64(len(randomCharset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			result[i] = randomCharset[0]
			continue
		}
		result[i] = randomCharset[n.Int64()]
	}
	return string(result)
}

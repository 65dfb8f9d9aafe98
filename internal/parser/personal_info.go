package parser

import (
	"regexp"
	"strings"

	"portfolio-go/internal/types"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	// 印度手机号优先，其次是 NNN-NNN-NNNN 形式
	phoneRe = regexp.MustCompile(`(\+91[\-\s]?)?[6-9]\d{9}|\b\d{3}[-.\s]??\d{3}[-.\s]??\d{4}\b`)

	locationGazetteer = []string{"pune", "mumbai", "delhi", "bangalore", "hyderabad", "chennai", "india"}
)

// ExtractPersonalInfo 提取邮箱、电话和所在地，任何字段都可能为空。
// 所在地只在第一行中查找。
func ExtractPersonalInfo(text string) types.PersonalInfo {
	var info types.PersonalInfo
	info.Email = emailRe.FindString(text)
	info.Phone = phoneRe.FindString(text)

	firstLine := strings.ToLower(splitLines(text)[0])
	for _, city := range locationGazetteer {
		if strings.Contains(firstLine, city) {
			info.Location = city
			break
		}
	}
	return info
}

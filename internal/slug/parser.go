// Package slug 解析用户搜索键（如 pokemon-red-pal-cib）为标题与平台/品相/区域编码
package slug

import (
	"strings"

	"GameIngest/internal/model"
)

const separator = "-"

var (
	platformTokens  = newSet("gb", "gba", "nes", "snes", "smd", "sms")
	conditionTokens = newSet("loose", "cib", "sealed")
	regionTokens    = newSet("pal", "ntsc", "jap")
)

func newSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// IsCodeToken 判断词是否属于任一编码词表
func IsCodeToken(token string) bool {
	_, p := platformTokens[token]
	_, c := conditionTokens[token]
	_, r := regionTokens[token]
	return p || c || r
}

// Parse 纯函数：按 - 切分，编码词以外的词组成标题，
// 各词表命中的词按出现顺序拼接并转大写（未命中为空串，多个命中原样拼接，由下游判定为歧义）
func Parse(key string) model.ParsedSearchKey {
	parsed := model.ParsedSearchKey{Key: key}

	var platform, condition, region strings.Builder
	for _, token := range strings.Split(key, separator) {
		switch {
		case has(platformTokens, token):
			platform.WriteString(token)
			parsed.PlatformMatches++
		case has(conditionTokens, token):
			condition.WriteString(token)
			parsed.ConditionMatches++
		case has(regionTokens, token):
			region.WriteString(token)
			parsed.RegionMatches++
		default:
			parsed.TitleTokens = append(parsed.TitleTokens, token)
		}
	}

	parsed.Title = strings.Join(parsed.TitleTokens, separator)
	parsed.Platform = model.PlatformCode(strings.ToUpper(platform.String()))
	parsed.Condition = model.ConditionCode(strings.ToUpper(condition.String()))
	parsed.Region = model.RegionCode(strings.ToUpper(region.String()))
	return parsed
}

func has(set map[string]struct{}, token string) bool {
	_, ok := set[token]
	return ok
}

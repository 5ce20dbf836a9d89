package model

import (
	"errors"
	"fmt"
)

// ErrInvalidCode 平台/品相/区域编码缺失、无法识别或存在歧义
var ErrInvalidCode = errors.New("无效的参考编码")

// PlatformCode 平台编码
type PlatformCode string

// ConditionCode 品相编码
type ConditionCode string

// RegionCode 区域编码
type RegionCode string

const (
	PlatformGB   PlatformCode = "GB"
	PlatformGBC  PlatformCode = "GBC"
	PlatformGBA  PlatformCode = "GBA"
	PlatformNES  PlatformCode = "NES"
	PlatformSNES PlatformCode = "SNES"
	PlatformSMS  PlatformCode = "SMS"
	PlatformSMD  PlatformCode = "SMD"
)

const (
	ConditionLoose  ConditionCode = "LOOSE"
	ConditionCIB    ConditionCode = "CIB"
	ConditionSealed ConditionCode = "SEALED"
)

const (
	RegionPAL  RegionCode = "PAL"
	RegionNTSC RegionCode = "NTSC"
	RegionJAP  RegionCode = "JAP"
)

var (
	knownPlatforms = map[PlatformCode]struct{}{
		PlatformGB: {}, PlatformGBC: {}, PlatformGBA: {}, PlatformNES: {},
		PlatformSNES: {}, PlatformSMS: {}, PlatformSMD: {},
	}
	knownConditions = map[ConditionCode]struct{}{
		ConditionLoose: {}, ConditionCIB: {}, ConditionSealed: {},
	}
	knownRegions = map[RegionCode]struct{}{
		RegionPAL: {}, RegionNTSC: {}, RegionJAP: {},
	}
)

func (c PlatformCode) Known() bool {
	_, ok := knownPlatforms[c]
	return ok
}

func (c ConditionCode) Known() bool {
	_, ok := knownConditions[c]
	return ok
}

func (c RegionCode) Known() bool {
	_, ok := knownRegions[c]
	return ok
}

// CodeStatus 解析出的编码的分类结果
type CodeStatus string

const (
	CodeOK           CodeStatus = "ok"
	CodeMissing      CodeStatus = "missing"      // 搜索键中没有任何匹配
	CodeUnrecognized CodeStatus = "unrecognized" // 不在封闭枚举内
	CodeAmbiguous    CodeStatus = "ambiguous"    // 匹配了多个词，拼接结果无意义
)

func classify(matches int, known bool) CodeStatus {
	switch {
	case matches == 0:
		return CodeMissing
	case matches > 1:
		return CodeAmbiguous
	case !known:
		return CodeUnrecognized
	default:
		return CodeOK
	}
}

// ParsedSearchKey 搜索键解析结果（不落库）
type ParsedSearchKey struct {
	Key         string
	TitleTokens []string
	Title       string // 剔除编码词后以 - 重新拼接的标题，即目录中的 slug

	Platform  PlatformCode
	Condition ConditionCode
	Region    RegionCode

	// 各词表命中的词数，大于 1 表示输入有歧义
	PlatformMatches  int
	ConditionMatches int
	RegionMatches    int
}

func (p ParsedSearchKey) PlatformStatus() CodeStatus {
	return classify(p.PlatformMatches, p.Platform.Known())
}

func (p ParsedSearchKey) ConditionStatus() CodeStatus {
	return classify(p.ConditionMatches, p.Condition.Known())
}

func (p ParsedSearchKey) RegionStatus() CodeStatus {
	return classify(p.RegionMatches, p.Region.Known())
}

// ValidateCodes 三项编码必须全部为 CodeOK，否则返回包装了 ErrInvalidCode 的错误
func (p ParsedSearchKey) ValidateCodes() error {
	checks := []struct {
		kind   string
		code   string
		status CodeStatus
	}{
		{"platform", string(p.Platform), p.PlatformStatus()},
		{"condition", string(p.Condition), p.ConditionStatus()},
		{"region", string(p.Region), p.RegionStatus()},
	}
	for _, c := range checks {
		if c.status != CodeOK {
			return fmt.Errorf("%w: %s=%q (%s)", ErrInvalidCode, c.kind, c.code, c.status)
		}
	}
	return nil
}

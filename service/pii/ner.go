/*
 * @module service/pii/ner
 * @description 人名检测能力接口与内置启发式实现
 * @architecture 接口隔离原则 - 人名检测作为可替换能力
 * @documentReference ai_docs/pii_engine_req.md
 * @stateFlow 文本分词 -> 称谓/常用名判定 -> 候选人名提取
 * @rules 内置实现为启发式，生产环境可替换为NER服务实现
 * @dependencies regexp, strings
 * @refs engine.go
 */

package pii

import (
	"regexp"
	"strings"
	"unicode"
)

// NameDetector 人名检测能力接口
type NameDetector interface {
	// DetectNames 提取文本中的人名，保持出现顺序、去重
	DetectNames(text string) []string

	// ContainsName 判断文本是否含有可检测的人名
	ContainsName(text string) bool
}

// HeuristicNameDetector 启发式人名检测器
// 基于称谓词与常用英文名词表识别大写开头的姓名词组
type HeuristicNameDetector struct{}

// NewHeuristicNameDetector 创建启发式人名检测器
func NewHeuristicNameDetector() *HeuristicNameDetector {
	return &HeuristicNameDetector{}
}

var wordPattern = regexp.MustCompile(`[A-Za-z]+(?:'[A-Za-z]+)?`)

// honorifics 称谓词，后接大写词即视为人名
var honorifics = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "miss": true, "dr": true, "prof": true,
}

// givenNames 常用英文名词表，小写
var givenNames = map[string]bool{
	"james": true, "john": true, "robert": true, "michael": true, "william": true,
	"david": true, "richard": true, "joseph": true, "thomas": true, "charles": true,
	"daniel": true, "matthew": true, "anthony": true, "mark": true, "donald": true,
	"steven": true, "paul": true, "andrew": true, "joshua": true, "kenneth": true,
	"kevin": true, "brian": true, "george": true, "timothy": true, "ronald": true,
	"jason": true, "edward": true, "jeffrey": true, "ryan": true, "jacob": true,
	"gary": true, "nicholas": true, "eric": true, "jonathan": true, "stephen": true,
	"larry": true, "justin": true, "scott": true, "brandon": true, "benjamin": true,
	"samuel": true, "peter": true, "henry": true, "carlos": true, "juan": true,
	"luis": true, "frank": true, "raymond": true, "patrick": true, "jack": true,
	"mary": true, "patricia": true, "jennifer": true, "linda": true, "elizabeth": true,
	"barbara": true, "susan": true, "jessica": true, "sarah": true, "karen": true,
	"nancy": true, "lisa": true, "betty": true, "margaret": true, "sandra": true,
	"ashley": true, "kimberly": true, "emily": true, "donna": true, "michelle": true,
	"carol": true, "amanda": true, "dorothy": true, "melissa": true, "deborah": true,
	"stephanie": true, "rebecca": true, "sharon": true, "laura": true, "cynthia": true,
	"anna": true, "emma": true, "olivia": true, "sophia": true, "alice": true,
	"grace": true, "jane": true, "maria": true, "ana": true, "rachel": true,
}

// DetectNames 提取文本中的人名
func (d *HeuristicNameDetector) DetectNames(text string) []string {
	matches := wordPattern.FindAllStringIndex(text, -1)
	words := make([]string, 0, len(matches))
	for _, m := range matches {
		words = append(words, text[m[0]:m[1]])
	}

	var names []string
	seen := make(map[string]bool)
	appendName := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for i := 0; i < len(words); i++ {
		lower := strings.ToLower(words[i])

		// 称谓词后接大写词：Dr Smith -> Smith
		if honorifics[lower] && i+1 < len(words) && isCapitalized(words[i+1]) {
			name := words[i+1]
			if i+2 < len(words) && isCapitalized(words[i+2]) && !givenNames[strings.ToLower(words[i+2])] {
				name = name + " " + words[i+2]
				i++
			}
			appendName(name)
			i++
			continue
		}

		// 常用名后接大写姓氏：John Smith
		if isCapitalized(words[i]) && givenNames[lower] && i+1 < len(words) && isCapitalized(words[i+1]) {
			appendName(words[i] + " " + words[i+1])
			i++
		}
	}

	return names
}

// ContainsName 判断文本是否含有可检测的人名
func (d *HeuristicNameDetector) ContainsName(text string) bool {
	return len(d.DetectNames(text)) > 0
}

func isCapitalized(word string) bool {
	if word == "" {
		return false
	}
	runes := []rune(word)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) && r != '\'' {
			return false
		}
	}
	return true
}

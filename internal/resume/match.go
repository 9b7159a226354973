package resume

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MatchOptions 控制关键词包含判断的方式。
type MatchOptions struct {
	// WordBoundary 为 true 时要求关键词两侧不是字母或数字，"go" 不再命中 "going"。
	WordBoundary bool
}

// MatchResult 是职位描述与简历的关键词比对结果。
type MatchResult struct {
	Score    int      `json:"score"`
	Matching []string `json:"matching"`
	Missing  []string `json:"missing"`
}

// MatchKeywords 用词典扫描职位描述：出现在职位描述中的关键词，
// 若也出现在简历语料中记为 matching，否则记为 missing。
// Score = round(matching / (matching + missing) * 100)，两者皆空时为 0。
func MatchKeywords(jobDescription string, r Resume, dict Dictionary, opts MatchOptions) MatchResult {
	result := MatchResult{Matching: []string{}, Missing: []string{}}

	job := strings.ToLower(jobDescription)
	if job == "" {
		return result
	}
	corpus := Flatten(r)

	contains := strings.Contains
	if opts.WordBoundary {
		contains = containsWord
	}

	for _, keyword := range dict.keywords {
		needle := strings.ToLower(keyword)
		if !contains(job, needle) {
			continue
		}
		if contains(corpus, needle) {
			result.Matching = append(result.Matching, keyword)
		} else {
			result.Missing = append(result.Missing, keyword)
		}
	}

	total := len(result.Matching) + len(result.Missing)
	if total > 0 {
		result.Score = int(math.Round(float64(len(result.Matching)) / float64(total) * 100))
	}
	return result
}

func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	offset := 0
	for offset <= len(haystack) {
		i := strings.Index(haystack[offset:], needle)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(needle)
		if !wordRuneBefore(haystack, start) && !wordRuneAfter(haystack, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

func wordRuneBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func wordRuneAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

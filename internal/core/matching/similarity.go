package matching

import (
	"strings"

	"shopping-assistant/internal/pkg/common"
)

// Similarity 名稱相似度：相同為 1.0，包含為 0.8，
// 否則為共同詞數除以較多的詞數
func Similarity(a, b string) float64 {
	na, nb := common.NormalizeName(a), common.NormalizeName(b)
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.8
	}

	wordsA, wordsB := wordSet(na), wordSet(nb)
	shared := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			shared++
		}
	}
	larger := len(wordsA)
	if len(wordsB) > larger {
		larger = len(wordsB)
	}
	return float64(shared) / float64(larger)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func firstToken(s string) string {
	fields := strings.Fields(common.NormalizeName(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

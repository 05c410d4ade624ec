package recommend

import (
	"math"

	"shopping-assistant/internal/core/catalog"
	"shopping-assistant/internal/pkg/common"
)

// RelevanceScore 兩個商品的關聯分數，限制在 [0,1]：
// 同分類 0.3、每個共同標籤 0.1、名稱詞 Jaccard × 0.4、價格接近度 × 0.2
func (t Tables) RelevanceScore(a, b catalog.Item) float64 {
	score := 0.0

	if ca := common.NormalizeName(a.Category); ca != "" && ca == common.NormalizeName(b.Category) {
		score += 0.3
	}

	score += 0.1 * float64(sharedTags(a.Tags, b.Tags))
	score += 0.4 * jaccard(t.tokens(a.Name), t.tokens(b.Name))

	if a.Price > 0 && b.Price > 0 {
		score += 0.2 * (1 - math.Abs(a.Price-b.Price)/math.Max(a.Price, b.Price))
	}

	return common.Clamp01(score)
}

func sharedTags(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		if tag = common.NormalizeName(tag); tag != "" {
			set[tag] = struct{}{}
		}
	}
	count := 0
	for _, tag := range b {
		tag = common.NormalizeName(tag)
		if _, ok := set[tag]; ok {
			count++
			delete(set, tag)
		}
	}
	return count
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

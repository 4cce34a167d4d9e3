package normalize

import "strings"

// Difficulty and category vocabulary. Ordered so partial matching resolves
// ties to the earlier entry.
var difficultyTable = []struct{ key, canonical string }{
	{"初心者", "beginner"},
	{"しょしんしゃ", "beginner"},
	{"中級者", "intermediate"},
	{"ちゅうきゅうしゃ", "intermediate"},
	{"上級者", "expert"},
	{"じょうきゅうしゃ", "expert"},
	{"上級", "expert"},
	{"簡単", "easy"},
	{"かんたん", "easy"},
	{"普通", "moderate"},
	{"ふつう", "moderate"},
	{"中級", "moderate"},
	{"難しい", "difficult"},
	{"むずかしい", "difficult"},
	{"高度", "very difficult"},
	{"こうど", "very difficult"},
}

var categoryTable = []struct{ key, canonical string }{
	{"画面修理", "screen repair"},
	{"がめんしゅうり", "screen repair"},
	{"バッテリー交換", "battery replacement"},
	{"ばってりーこうかん", "battery replacement"},
	{"基板修理", "motherboard repair"},
	{"きばんしゅうり", "motherboard repair"},
	{"タッチパネル", "touchscreen repair"},
	{"たっちぱねる", "touchscreen repair"},
	{"充電器修理", "charger repair"},
	{"じゅうでんきしゅうり", "charger repair"},
	{"ボタン修理", "button repair"},
	{"ぼたんしゅうり", "button repair"},
	{"スピーカー修理", "speaker repair"},
	{"すぴーかーしゅうり", "speaker repair"},
	{"カメラ修理", "camera repair"},
	{"水没修理", "water damage repair"},
}

// categoryParts decomposes each Japanese category key into semantic parts:
// keys carrying a 修理/交換 suffix split into subject + action, so inputs
// like 画面の修理 still resolve. Built once at package init.
type categoryPartsEntry struct {
	parts     []string
	canonical string
}

var (
	difficultyExact = buildExactIndex(difficultyTable)
	categoryExact   = buildExactIndex(categoryTable)
	categoryPartial = buildCategoryParts()
)

func buildExactIndex(table []struct{ key, canonical string }) map[string]string {
	out := make(map[string]string, len(table))
	for _, e := range table {
		key := strings.ToLower(strings.TrimSpace(e.key))
		if _, seen := out[key]; !seen {
			out[key] = e.canonical
		}
	}
	return out
}

func buildCategoryParts() []categoryPartsEntry {
	suffixes := []string{"修理", "交換"}
	out := make([]categoryPartsEntry, 0, len(categoryTable))
	for _, e := range categoryTable {
		key := strings.ToLower(strings.TrimSpace(e.key))
		if len([]rune(key)) <= 2 {
			continue
		}
		parts := []string{key}
		for _, suffix := range suffixes {
			if prefix, found := strings.CutSuffix(key, suffix); found && prefix != "" {
				parts = []string{prefix, suffix}
				break
			}
		}
		out = append(out, categoryPartsEntry{parts: parts, canonical: e.canonical})
	}
	return out
}

// Difficulty maps a difficulty label (Japanese or English) to its canonical
// English term. Empty input and unmapped values are returned unchanged;
// the function never fails.
func Difficulty(value string) string {
	if value == "" {
		return value
	}
	key := strings.ToLower(strings.TrimSpace(value))
	if canonical, ok := difficultyExact[key]; ok {
		return canonical
	}
	return value
}

// Category maps a repair category (Japanese or English) to its canonical
// English term. On an exact miss it attempts partial matching: an input
// matches an entry when all of that entry's key parts appear as substrings.
func Category(value string) string {
	if value == "" {
		return value
	}
	key := strings.ToLower(strings.TrimSpace(value))
	if canonical, ok := categoryExact[key]; ok {
		return canonical
	}
	for _, entry := range categoryPartial {
		if containsAll(key, entry.parts) {
			return entry.canonical
		}
	}
	return value
}

func containsAll(s string, parts []string) bool {
	for _, part := range parts {
		if !strings.Contains(s, part) {
			return false
		}
	}
	return true
}

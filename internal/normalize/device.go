// Package normalize maps Japanese and English repair vocabulary (device
// names, difficulty levels, repair categories) to canonical English terms.
// All lookup indices are built once at construction or package init and are
// read-only afterwards.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DeviceNormalizer converts a single query token into a canonical device
// name via exact lookup, with a fuzzy fallback and a device-likeness
// heuristic for tokens that never map.
type DeviceNormalizer struct {
	exact map[string]string

	// keys holds the normalized spellings in table declaration order.
	// FuzzyMatch iterates this slice so tied scores resolve to the
	// earlier declared entry.
	keys     []string
	keywords map[string]struct{}
}

func NewDeviceNormalizer() *DeviceNormalizer {
	n := &DeviceNormalizer{
		exact:    make(map[string]string, len(deviceTable)),
		keys:     make([]string, 0, len(deviceTable)),
		keywords: make(map[string]struct{}),
	}
	for _, entry := range deviceTable {
		key := normalizeToken(entry.spelling)
		if key == "" {
			continue
		}
		if _, seen := n.exact[key]; !seen {
			n.exact[key] = entry.canonical
			n.keys = append(n.keys, key)
		}
		addKeywordSubstrings(n.keywords, key)
	}
	return n
}

// Normalize returns the canonical device name for token, exact match only.
func (n *DeviceNormalizer) Normalize(token string) (string, bool) {
	key := normalizeToken(token)
	if key == "" {
		return "", false
	}
	canonical, ok := n.exact[key]
	return canonical, ok
}

// FuzzyMatch returns the best-scoring canonical name whose normalized
// spelling has edit similarity >= threshold with the normalized token.
// Identical normalized strings score 1.0.
func (n *DeviceNormalizer) FuzzyMatch(token string, threshold float64) (string, float64, bool) {
	key := normalizeToken(token)
	if key == "" {
		return "", 0, false
	}

	best := ""
	bestScore := 0.0
	for _, candidate := range n.keys {
		score := editSimilarity(key, candidate)
		if score > bestScore && score >= threshold {
			bestScore = score
			best = n.exact[candidate]
		}
	}
	if best == "" {
		return "", 0, false
	}
	return best, bestScore, true
}

// IsDeviceLike reports whether token plausibly names a device: an exact
// table hit, equality with a table keyword of >= 3 runes, or (for tokens of
// >= 4 normalized runes) containment of a keyword of >= 4 runes. The length
// guards keep short generic fragments (e.g. "air" inside "repair") from
// matching; this is a tuned heuristic, not a strict contract.
func (n *DeviceNormalizer) IsDeviceLike(token string) bool {
	key := normalizeToken(token)
	if key == "" {
		return false
	}
	if _, ok := n.exact[key]; ok {
		return true
	}

	keyRunes := utf8.RuneCountInString(key)
	if keyRunes >= 3 {
		if _, ok := n.keywords[key]; ok {
			return true
		}
	}
	if keyRunes < 4 {
		return false
	}
	for keyword := range n.keywords {
		if utf8.RuneCountInString(keyword) < 4 {
			continue
		}
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// addKeywordSubstrings contributes every contiguous substring of length >= 2
// runes of key to the keyword set.
func addKeywordSubstrings(set map[string]struct{}, key string) {
	runes := []rune(key)
	if len(runes) < 2 {
		return
	}
	set[key] = struct{}{}
	for i := 0; i < len(runes)-1; i++ {
		for j := i + 2; j <= len(runes); j++ {
			set[string(runes[i:j])] = struct{}{}
		}
	}
}

// normalizeToken lower-cases and strips whitespace, hyphens, underscores,
// periods and bracket punctuation. Scripts are preserved, not
// transliterated.
func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		switch r {
		case '-', '_', '.', ',', '!', '?', '(', ')', '（', '）':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func editSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	if dist >= longest {
		return 0
	}
	return 1.0 - float64(dist)/float64(longest)
}

// ContainsJapanese reports whether s contains hiragana, katakana
// (full- or half-width) or CJK ideographs.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		switch {
		case r >= 0x3040 && r <= 0x309F: // hiragana
			return true
		case r >= 0x30A0 && r <= 0x30FF: // katakana
			return true
		case r >= 0x4E00 && r <= 0x9FFF: // CJK ideographs
			return true
		case r >= 0xFF66 && r <= 0xFF9D: // half-width katakana
			return true
		}
	}
	return false
}

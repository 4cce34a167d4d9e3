package normalize

import "testing"

func TestNormalizeExactMappings(t *testing.T) {
	n := NewDeviceNormalizer()

	cases := []struct {
		token string
		want  string
	}{
		{"スイッチ", "Nintendo Switch"},
		{"switch", "Nintendo Switch"},
		{"Switch", "Nintendo Switch"},
		{"アイフォン", "iPhone"},
		{"iPhone", "iPhone"},
		{"プレステ5", "PlayStation 5"},
		{"ノートパソコン", "Laptop"},
		{"すまほ", "Smartphone"},
		{"えあぽっず", "AirPods"},
		{"apple watch", "Apple Watch"},
	}
	for _, tc := range cases {
		got, ok := n.Normalize(tc.token)
		if !ok {
			t.Fatalf("expected mapping for %q, got none", tc.token)
		}
		if got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.token, got, tc.want)
		}
	}
}

func TestNormalizeMissReturnsFalse(t *testing.T) {
	n := NewDeviceNormalizer()
	for _, token := range []string{"invalid_device_xyz", "", "   ", "toaster"} {
		if got, ok := n.Normalize(token); ok {
			t.Fatalf("expected no mapping for %q, got %q", token, got)
		}
	}
}

func TestNormalizeStripsPunctuation(t *testing.T) {
	n := NewDeviceNormalizer()
	got, ok := n.Normalize(" Nintendo-Switch. ")
	if !ok || got != "Nintendo Switch" {
		t.Fatalf("expected punctuation-stripped hit, got %q ok=%v", got, ok)
	}
}

func TestNormalizeAcceptsCanonicalNames(t *testing.T) {
	n := NewDeviceNormalizer()
	for _, name := range []string{
		"Nintendo Switch",
		"PlayStation 5",
		"PlayStation 4",
		"Desktop PC",
		"Gaming Console",
		"Smart Watch",
		"Digital Camera",
		"Wireless Router",
		"iPhone",
		"MacBook",
	} {
		got, ok := n.Normalize(name)
		if !ok || got != name {
			t.Fatalf("canonical name %q must map to itself, got %q ok=%v", name, got, ok)
		}
	}
}

func TestFuzzyMatchAboveThreshold(t *testing.T) {
	n := NewDeviceNormalizer()
	name, score, ok := n.FuzzyMatch("すいち", 0.6)
	if !ok {
		t.Fatalf("expected fuzzy hit for すいち")
	}
	if name != "Nintendo Switch" {
		t.Fatalf("expected Nintendo Switch, got %q", name)
	}
	if score <= 0.6 || score >= 1.0 {
		t.Fatalf("expected score in (0.6, 1.0), got %f", score)
	}
}

func TestFuzzyMatchBelowThreshold(t *testing.T) {
	n := NewDeviceNormalizer()
	if name, _, ok := n.FuzzyMatch("xyz", 0.9); ok {
		t.Fatalf("expected no fuzzy hit for xyz at 0.9, got %q", name)
	}
}

func TestFuzzyMatchIdentityScoresOne(t *testing.T) {
	n := NewDeviceNormalizer()
	_, score, ok := n.FuzzyMatch("スイッチ", 0.9)
	if !ok || score != 1.0 {
		t.Fatalf("expected identity score 1.0, got %f ok=%v", score, ok)
	}
}

func TestIsDeviceLike(t *testing.T) {
	n := NewDeviceNormalizer()

	for _, token := range []string{"スイッチ", "switch", "ニンテンドースイッチ本体", "macbook"} {
		if !n.IsDeviceLike(token) {
			t.Fatalf("expected %q to be device-like", token)
		}
	}
	for _, token := range []string{"", "の", "repair", "こと"} {
		if n.IsDeviceLike(token) {
			t.Fatalf("expected %q not to be device-like", token)
		}
	}
}

func TestContainsJapanese(t *testing.T) {
	for _, s := range []string{"スイッチ 修理", "あいふぉん", "修理ガイド", "スマホ repair", "ｱｲﾌｫﾝ"} {
		if !ContainsJapanese(s) {
			t.Fatalf("expected %q to contain Japanese", s)
		}
	}
	for _, s := range []string{"iPhone repair", "123 test", "", "repair guide"} {
		if ContainsJapanese(s) {
			t.Fatalf("expected %q not to contain Japanese", s)
		}
	}
}

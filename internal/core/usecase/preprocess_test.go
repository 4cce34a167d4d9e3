package usecase

import (
	"strings"
	"testing"
)

func newPreprocessOrchestrator() *SearchOrchestrator {
	return newTestOrchestrator(&fakeCatalog{}, &fakeOffline{}, newFakeCache(), &fakeLimiter{})
}

func TestPreprocessSubstitutesCanonicalDeviceNames(t *testing.T) {
	orchestrator := newPreprocessOrchestrator()

	analysis := orchestrator.preprocessQuery("スイッチ 画面修理")
	if !strings.Contains(analysis.Processed, "Nintendo Switch") {
		t.Fatalf("expected canonical device name, got %q", analysis.Processed)
	}
	if !strings.Contains(analysis.Processed, "画面修理") {
		t.Fatalf("non-device tokens must pass through, got %q", analysis.Processed)
	}
	if !analysis.Japanese {
		t.Fatalf("expected Japanese detection")
	}
	if analysis.MappingQuality != 1.0 {
		t.Fatalf("expected full mapping quality, got %f", analysis.MappingQuality)
	}
}

func TestPreprocessFuzzyFallback(t *testing.T) {
	orchestrator := newPreprocessOrchestrator()

	// すいち misses the exact table but sits above the 0.7 default
	// threshold against すいっち.
	analysis := orchestrator.preprocessQuery("すいち 修理")
	if !strings.Contains(analysis.Processed, "Nintendo Switch") {
		t.Fatalf("expected fuzzy substitution, got %q", analysis.Processed)
	}
}

func TestPreprocessHandlesFullWidthSpace(t *testing.T) {
	orchestrator := newPreprocessOrchestrator()

	analysis := orchestrator.preprocessQuery("アイフォン　画面")
	if !strings.Contains(analysis.Processed, "iPhone") {
		t.Fatalf("full-width space should split tokens, got %q", analysis.Processed)
	}
}

func TestPreprocessUnmappedQueryPassesThrough(t *testing.T) {
	orchestrator := newPreprocessOrchestrator()

	analysis := orchestrator.preprocessQuery("quantum flux capacitor")
	if analysis.Processed != "quantum flux capacitor" {
		t.Fatalf("unmapped query must pass through, got %q", analysis.Processed)
	}
	if analysis.Japanese {
		t.Fatalf("no Japanese characters expected")
	}
	if analysis.MappingQuality != 1.0 {
		t.Fatalf("queries without device-like tokens default to quality 1.0, got %f", analysis.MappingQuality)
	}
}

func TestPreprocessEmptyQuery(t *testing.T) {
	orchestrator := newPreprocessOrchestrator()

	analysis := orchestrator.preprocessQuery("   ")
	if analysis.Processed != "   " {
		t.Fatalf("blank query returned unchanged, got %q", analysis.Processed)
	}
}

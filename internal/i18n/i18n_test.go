package i18n

import (
	"context"
	"strings"
	"testing"
)

func TestInitAndTranslate(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	ctx := WithLocalizer(context.Background(), NewLocalizer("en"))
	got := T(ctx, "error.missing_name")
	if got != "Please enter your name." {
		t.Errorf("unexpected translation %q", got)
	}

	// Unknown IDs fall back to the ID itself.
	if got := T(ctx, "error.does_not_exist"); got != "error.does_not_exist" {
		t.Errorf("expected ID fallback, got %q", got)
	}
}

func TestTranslateWithData(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	ctx := WithLocalizer(context.Background(), NewLocalizer("en"))
	got := Td(ctx, "error.bad_count", map[string]any{"Min": 5, "Max": 25})
	if !strings.Contains(got, "5") || !strings.Contains(got, "25") {
		t.Errorf("expected bounds in message, got %q", got)
	}

	got = Td(ctx, "results.band_excellent", map[string]any{"Name": "Alex"})
	if !strings.Contains(got, "Alex") {
		t.Errorf("expected name in message, got %q", got)
	}
}

func TestRussianLocale(t *testing.T) {
	if err := Init("ru"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	ctx := WithLocalizer(context.Background(), NewLocalizer("ru"))
	got := T(ctx, "error.missing_topics")
	if got == "error.missing_topics" || got == "Please select at least one topic." {
		t.Errorf("expected Russian translation, got %q", got)
	}
}

func TestInitBadLanguage(t *testing.T) {
	if err := Init("not a language tag"); err == nil {
		t.Error("expected error for invalid language tag")
	}
}

func TestContextWithoutLocalizer(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// Falls back to English when no localizer is in context.
	got := T(context.Background(), "error.missing_name")
	if got != "Please enter your name." {
		t.Errorf("unexpected fallback translation %q", got)
	}
}

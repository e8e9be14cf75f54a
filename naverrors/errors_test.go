package naverrors

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestWrapSentinelPreservesIsAndMetadata(t *testing.T) {
	err := WrapSentinel(ErrInvalidKey, "", map[string]any{
		MetaFeatureKey: "fpa.forecasting",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected errors.Is to match sentinel")
	}
	rich, ok := As(err)
	if !ok {
		t.Fatalf("expected rich error")
	}
	if rich.Category != goerrors.CategoryBadInput {
		t.Fatalf("unexpected category: %s", rich.Category)
	}
	if rich.TextCode != TextCodeInvalidKey {
		t.Fatalf("unexpected text code: %s", rich.TextCode)
	}
	if rich.Metadata == nil || rich.Metadata[MetaFeatureKey] != "fpa.forecasting" {
		t.Fatalf("expected metadata to include feature key")
	}
}

func TestWrapExternalKeepsSource(t *testing.T) {
	cause := errors.New("backend down")
	err := WrapExternal(cause, TextCodeCheckFailed, "entitlement check failed", map[string]any{
		MetaFeatureKey: "pmi.integration",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Category != goerrors.CategoryExternal {
		t.Fatalf("unexpected category: %s", err.Category)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
}

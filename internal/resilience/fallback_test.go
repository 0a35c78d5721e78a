package resilience

import (
	"errors"
	"testing"
)

func TestFallbackGroup_PrimaryFirst(t *testing.T) {
	t.Parallel()

	fg := NewFallbackGroup("primary", "primary", FallbackConfig{})
	fg.AddFallback("secondary", "secondary")

	got, err := ExecuteWithResult(fg, func(v string) (string, error) {
		return v, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "primary" {
		t.Errorf("served by %q, want primary", got)
	}
}

func TestFallbackGroup_FailoverOrder(t *testing.T) {
	t.Parallel()

	fg := NewFallbackGroup("a", "a", FallbackConfig{})
	fg.AddFallback("b", "b")
	fg.AddFallback("c", "c")

	var tried []string
	got, err := ExecuteWithResult(fg, func(v string) (string, error) {
		tried = append(tried, v)
		if v != "c" {
			return "", errors.New("down")
		}
		return v, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "c" {
		t.Errorf("served by %q, want c", got)
	}
	if len(tried) != 3 || tried[0] != "a" || tried[1] != "b" {
		t.Errorf("tried order = %v, want [a b c]", tried)
	}
}

func TestFallbackGroup_AllFailed(t *testing.T) {
	t.Parallel()

	fg := NewFallbackGroup("a", "a", FallbackConfig{})
	fg.AddFallback("b", "b")

	_, err := ExecuteWithResult(fg, func(string) (int, error) {
		return 0, errors.New("down")
	})
	if !errors.Is(err, ErrAllFailed) {
		t.Errorf("err = %v, want ErrAllFailed", err)
	}
}

func TestFallbackGroup_OpenBreakerSkipsEntry(t *testing.T) {
	t.Parallel()

	fg := NewFallbackGroup("a", "a", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 1},
	})
	fg.AddFallback("b", "b")

	// Trip the primary's breaker.
	_, _ = ExecuteWithResult(fg, func(v string) (string, error) {
		if v == "a" {
			return "", errors.New("down")
		}
		return v, nil
	})

	// The primary's breaker is now open; it must be skipped entirely.
	var tried []string
	got, err := ExecuteWithResult(fg, func(v string) (string, error) {
		tried = append(tried, v)
		return v, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "b" {
		t.Errorf("served by %q, want b", got)
	}
	if len(tried) != 1 || tried[0] != "b" {
		t.Errorf("tried = %v, want [b]", tried)
	}
}

func TestFallbackGroup_Primary(t *testing.T) {
	t.Parallel()

	fg := NewFallbackGroup(42, "first", FallbackConfig{})
	fg.AddFallback("second", 7)

	if got := fg.Primary(); got != 42 {
		t.Errorf("Primary() = %d, want 42", got)
	}
}

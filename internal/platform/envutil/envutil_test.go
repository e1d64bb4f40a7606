package envutil

import (
	"testing"
	"time"
)

func TestReaders(t *testing.T) {
	t.Setenv("SA_TEST_STR", "  gemini ")
	t.Setenv("SA_TEST_INT", "x")
	t.Setenv("SA_TEST_BOOL", "off")
	t.Setenv("SA_TEST_MIN", "90")

	if got := String("SA_TEST_STR", "openai"); got != "gemini" {
		t.Fatalf("String: want=gemini got=%s", got)
	}
	if got := String("SA_TEST_UNSET", "openai"); got != "openai" {
		t.Fatalf("String default: got=%s", got)
	}
	if got := Int("SA_TEST_INT", 7); got != 7 {
		t.Fatalf("Int fallback: got=%d", got)
	}
	if Bool("SA_TEST_BOOL", true) {
		t.Fatalf("Bool: want false")
	}
	if got := Minutes("SA_TEST_MIN", time.Hour); got != 90*time.Minute {
		t.Fatalf("Minutes: got=%s", got)
	}
}

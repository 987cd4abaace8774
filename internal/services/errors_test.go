package services_test

import (
	"errors"
	"strings"
	"testing"

	"yammer/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrDecode, "inference", "decode chunk", "runner exited", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"inference", "decode chunk", "runner exited"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToExternalTool(t *testing.T) {
	err := services.Wrap(nil, "segmenter", "split", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestIsFileFatal(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{services.Wrap(services.ErrMediaRead, "segmenter", "open", "corrupt header", nil), true},
		{services.Wrap(services.ErrDecode, "inference", "decode", "", errors.New("oom")), true},
		{services.Wrap(services.ErrCorrectorInit, "postprocess", "acquire", "", nil), false},
		{errors.New("plain"), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := services.IsFileFatal(tc.err); got != tc.want {
			t.Fatalf("IsFileFatal(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

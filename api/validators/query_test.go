package validators

import (
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	pkgerrors "github.com/pestilink/pestilink-backend/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=25", nil)
	got, err := ParseQueryInt(req, "limit", 20, 1, 100)
	if err != nil {
		t.Fatalf("parse limit: %v", err)
	}
	if got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}

	req = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryInt(req, "limit", 20, 1, 100)
	if err != nil || got != 20 {
		t.Fatalf("expected default 20, got %d (%v)", got, err)
	}

	req = httptest.NewRequest("GET", "/?limit=500", nil)
	if _, err := ParseQueryInt(req, "limit", 20, 1, 100); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryStringTrimsAndCaps(t *testing.T) {
	req := httptest.NewRequest("GET", "/?q=%20cyper%20", nil)
	if got := ParseQueryString(req, "q", 120); got != "cyper" {
		t.Fatalf("expected trimmed value, got %q", got)
	}

	req = httptest.NewRequest("GET", "/?q="+strings.Repeat("a", 50), nil)
	if got := ParseQueryString(req, "q", 10); len(got) != 10 {
		t.Fatalf("expected 10 characters, got %d", len(got))
	}
}

func TestParseQueryStringTruncatesOnRuneBoundary(t *testing.T) {
	// Ten two-byte runes; a byte-level cap of 7 would split the fourth.
	req := httptest.NewRequest("GET", "/?q="+"палайпалай", nil)
	got := ParseQueryString(req, "q", 7)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated value is not valid UTF-8: %q", got)
	}
	if utf8.RuneCountInString(got) != 7 {
		t.Fatalf("expected 7 runes, got %d", utf8.RuneCountInString(got))
	}
}

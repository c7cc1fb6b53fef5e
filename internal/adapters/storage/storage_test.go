package storage

import (
	"regexp"
	"testing"
)

func TestValidateContentType(t *testing.T) {
	if err := ValidateContentType("application/pdf; charset=binary"); err != nil {
		t.Fatalf("expected pdf to be allowed: %v", err)
	}
	if err := ValidateContentType("image/png"); err == nil {
		t.Fatal("expected non-pdf content to be rejected")
	}
}

func TestValidateFileSize(t *testing.T) {
	cases := []struct {
		size, max int64
		ok        bool
	}{
		{0, 100, false},
		{50, 100, true},
		{101, 100, false},
		{1 << 30, 0, true},
	}
	for _, tc := range cases {
		err := ValidateFileSize(tc.size, tc.max)
		if (err == nil) != tc.ok {
			t.Fatalf("ValidateFileSize(%d, %d) error = %v, want ok=%v", tc.size, tc.max, err, tc.ok)
		}
	}
}

func TestObjectKeyKeepsFolderAndExtension(t *testing.T) {
	key := ObjectKey("quotes/ORC-20260504-133000-000", "Orcamento-ORC-20260504-133000-000.pdf")
	pattern := regexp.MustCompile(`^quotes/ORC-20260504-133000-000/Orcamento-ORC-20260504-133000-000_[0-9a-f]{8}\.pdf$`)
	if !pattern.MatchString(key) {
		t.Fatalf("unexpected key %q", key)
	}
}

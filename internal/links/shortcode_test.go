package links

import (
	"errors"
	"testing"
)

func TestGenerateShortCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := GenerateShortCode(ShortCodeLength)
		if err != nil {
			t.Fatalf("GenerateShortCode: %v", err)
		}
		if len(code) != ShortCodeLength {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), ShortCodeLength)
		}
		if err := ValidateShortCode(code); err != nil {
			t.Fatalf("generated code %q is invalid: %v", code, err)
		}
		seen[code] = true
	}
	// 62^7 possibilities; 200 draws colliding means the source is broken.
	if len(seen) < 199 {
		t.Errorf("only %d distinct codes in 200 draws", len(seen))
	}
}

func TestGenerateShortCode_DefaultLength(t *testing.T) {
	code, err := GenerateShortCode(0)
	if err != nil {
		t.Fatalf("GenerateShortCode: %v", err)
	}
	if len(code) != ShortCodeLength {
		t.Errorf("len = %d, want %d", len(code), ShortCodeLength)
	}
}

func TestValidateShortCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{name: "lowercase", code: "abc", wantErr: nil},
		{name: "mixed case and digits", code: "aB3xY9z", wantErr: nil},
		{name: "single char", code: "Z", wantErr: nil},
		{name: "empty", code: "", wantErr: ErrShortCodeEmpty},
		{name: "hyphen", code: "ab-c", wantErr: ErrShortCodeFormat},
		{name: "slash", code: "ab/c", wantErr: ErrShortCodeFormat},
		{name: "space", code: "ab c", wantErr: ErrShortCodeFormat},
		{name: "too long", code: "abcdefghijklmnopqrstuvwxyz0123456", wantErr: ErrShortCodeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateShortCode(tt.code)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateShortCode(%q) = %v, want %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

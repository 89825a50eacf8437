package encoding

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestNormalizeMTDName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`N:\GR\data\Material\mtd\C[AMSN]_e.mtd`, "c[amsn]_e"},
		{"c[amsn].matxml", "c[amsn]"},
		{"P[ARSN]", "p[arsn]"},
		{"dir/sub/M[ARSN]_Cloth.MTD", "m[arsn]_cloth"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeMTDName(tt.in); got != tt.want {
				t.Errorf("NormalizeMTDName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewReader_ShiftJIS(t *testing.T) {
	// "テスト" in Shift_JIS.
	sjis := "\x83\x65\x83\x58\x83\x67"

	r, err := NewReader("Shift_JIS", strings.NewReader(sjis))
	if err != nil {
		t.Fatalf("NewReader() error: %v", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading decoded text: %v", err)
	}
	if string(out) != "テスト" {
		t.Errorf("decoded %q, want テスト", out)
	}
}

func TestNewReader_Unknown(t *testing.T) {
	_, err := NewReader("x-not-a-charset", strings.NewReader(""))
	if !errors.Is(err, ErrUnsupportedCharset) {
		t.Errorf("expected ErrUnsupportedCharset, got %v", err)
	}
}

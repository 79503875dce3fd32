package claim

import (
	"errors"
	"testing"

	"github.com/blues/trs/internal/model"
)

func TestNormalizeWallet(t *testing.T) {
	got, err := NormalizeWallet("0xAbCdEF0123456789abcdef0123456789ABCDEF01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0xabcdef0123456789abcdef0123456789abcdef01" {
		t.Fatalf("wallet not lowercased: %s", got)
	}
}

func TestNormalizeWalletRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"0x123",
		"abcdef0123456789abcdef0123456789abcdef01",                    // 缺 0x 前缀
		"0xabcdef0123456789abcdef0123456789abcdef0g",                  // 非十六进制
		"0xabcdef0123456789abcdef0123456789abcdef0123",                // 过长
		"0x abcdef0123456789abcdef0123456789abcdef0",                  // 空格
		"0xabcdef0123456789abcdef0123456789abcdef01abcdef0123456789", // 更长
	}
	for _, w := range bad {
		if _, err := NormalizeWallet(w); err == nil {
			t.Fatalf("expected error for wallet %q", w)
		} else {
			var invalidErr *InvalidIdentityError
			if !errors.As(err, &invalidErr) {
				t.Fatalf("expected InvalidIdentityError, got %T", err)
			}
			if invalidErr.Field != "wallet" {
				t.Fatalf("expected wallet field, got %s", invalidErr.Field)
			}
		}
	}
}

func TestNormalizeTxHash(t *testing.T) {
	hash := "0xABCDEF0123456789abcdef0123456789ABCDEF0123456789abcdef0123456789"
	got, err := NormalizeTxHash(hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "0xabcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789"
	if got != want {
		t.Fatalf("tx hash not lowercased: %s", got)
	}

	if _, err := NormalizeTxHash("0x1234"); err == nil {
		t.Fatal("expected error for short tx hash")
	}
	if _, err := NormalizeTxHash(""); err == nil {
		t.Fatal("expected error for empty tx hash")
	}
}

func TestClientIp(t *testing.T) {
	cases := []struct {
		name         string
		forwardedFor string
		remoteAddr   string
		want         string
	}{
		{"forwarded single", "203.0.113.7", "10.0.0.1:443", "203.0.113.7"},
		{"forwarded chain takes first hop", "203.0.113.7, 70.41.3.18, 150.172.238.178", "10.0.0.1:443", "203.0.113.7"},
		{"fallback to remote addr", "", "192.0.2.44:51442", "192.0.2.44"},
		{"remote addr without port", "", "192.0.2.44", "192.0.2.44"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClientIp(tc.forwardedFor, tc.remoteAddr); got != tc.want {
				t.Fatalf("ClientIp() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSubjectKey(t *testing.T) {
	key := SubjectKey(model.ClaimKindDaily, "0xabc", "203.0.113.7")
	if key != "daily:0xabc:203.0.113.7" {
		t.Fatalf("unexpected subject key: %s", key)
	}
}

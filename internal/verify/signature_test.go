package verify

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blues/trs/internal/claim"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestSignatureRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	wallet := strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())
	day := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	hash := accounts.TextHash([]byte(SignMessage(wallet, day)))
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	v := New(nil, nil, nil, nil)
	if err := v.Signature(wallet, hexutil.Encode(sig), day); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
}

func TestSignaturePersonalSignVOffset(t *testing.T) {
	key, _ := crypto.GenerateKey()
	wallet := strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())
	day := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	hash := accounts.TextHash([]byte(SignMessage(wallet, day)))
	sig, _ := crypto.Sign(hash, key)
	// 钱包端 personal_sign 返回的 v 是 27/28
	sig[64] += 27

	v := New(nil, nil, nil, nil)
	if err := v.Signature(wallet, hexutil.Encode(sig), day); err != nil {
		t.Fatalf("signature with v=27/28 rejected: %v", err)
	}
}

func TestSignatureReplayAcrossDaysFails(t *testing.T) {
	key, _ := crypto.GenerateKey()
	wallet := strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())
	day := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)

	hash := accounts.TextHash([]byte(SignMessage(wallet, day)))
	sig, _ := crypto.Sign(hash, key)

	v := New(nil, nil, nil, nil)
	nextDay := day.Add(2 * time.Hour) // 已经是 6 月 2 日
	err := v.Signature(wallet, hexutil.Encode(sig), nextDay)
	if err == nil {
		t.Fatal("signature replay across days must fail")
	}
	var precondErr *claim.PreconditionError
	if !errors.As(err, &precondErr) {
		t.Fatalf("expected PreconditionError, got %T", err)
	}
}

func TestSignatureWrongWalletFails(t *testing.T) {
	key, _ := crypto.GenerateKey()
	otherKey, _ := crypto.GenerateKey()
	wallet := strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())
	day := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	// 用别人的私钥签自己的消息
	hash := accounts.TextHash([]byte(SignMessage(wallet, day)))
	sig, _ := crypto.Sign(hash, otherKey)

	v := New(nil, nil, nil, nil)
	if err := v.Signature(wallet, hexutil.Encode(sig), day); err == nil {
		t.Fatal("signature from another key must fail")
	}
}

func TestSignatureMalformed(t *testing.T) {
	v := New(nil, nil, nil, nil)
	day := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	for _, sig := range []string{"", "0x1234", "not-hex"} {
		err := v.Signature("0xabcdef0123456789abcdef0123456789abcdef01", sig, day)
		var invalidErr *claim.InvalidIdentityError
		if !errors.As(err, &invalidErr) {
			t.Fatalf("expected InvalidIdentityError for %q, got %v", sig, err)
		}
	}
}

func TestSignMessageEmbedsDay(t *testing.T) {
	wallet := "0xabcdef0123456789abcdef0123456789abcdef01"
	day1 := time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 2, 0, 1, 0, 0, time.UTC)
	if SignMessage(wallet, day1) == SignMessage(wallet, day2) {
		t.Fatal("messages for different calendar days must differ")
	}
	if SignMessage(wallet, day1) != SignMessage(wallet, day1.Add(-time.Hour)) {
		t.Fatal("messages within the same calendar day must match")
	}
}

package verify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blues/trs/internal/claim"
	"github.com/shopspring/decimal"
)

// fakeExternal 可编程的外部校验服务
type fakeExternal struct {
	calls int
	ref   string
	err   error
}

func (f *fakeExternal) Verify(_ context.Context, check, subject string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.ref, nil
}

// fakeChain 可编程的链上查证
type fakeChain struct {
	matched bool
	err     error
}

func (f *fakeChain) PurchaseOccurred(_ context.Context, wallet, txHash string, amount decimal.Decimal, since time.Time) (bool, error) {
	return f.matched, f.err
}

func TestAdminAllowList(t *testing.T) {
	v := New(nil, nil, nil, []string{"0xADmin0123456789abcdef0123456789abcdef0123"})

	if err := v.Admin("0xadmin0123456789abcdef0123456789abcdef0123"); err != nil {
		t.Fatalf("lowercase admin rejected: %v", err)
	}
	if err := v.Admin("0xADMIN0123456789ABCDEF0123456789ABCDEF0123"); err != nil {
		t.Fatalf("uppercase admin rejected: %v", err)
	}
	if err := v.Admin("0x0000000000000000000000000000000000000001"); !errors.Is(err, claim.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := v.Admin(""); !errors.Is(err, claim.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty address, got %v", err)
	}
}

func TestExternalUsesCache(t *testing.T) {
	svc := &fakeExternal{ref: "evidence-1"}
	cache := NewMemoryCache(5 * time.Minute)
	v := New(svc, nil, cache, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ref, err := v.External(ctx, "twitter_like", "user-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref != "evidence-1" {
			t.Fatalf("unexpected ref: %s", ref)
		}
	}
	if svc.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", svc.calls)
	}
}

func TestExternalFailureNotCached(t *testing.T) {
	svc := &fakeExternal{err: &claim.PreconditionError{Reason: "not a member"}}
	cache := NewMemoryCache(5 * time.Minute)
	v := New(svc, nil, cache, nil)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := v.External(ctx, "telegram_member", "user-2"); err == nil {
			t.Fatal("expected failure")
		}
	}
	// 失败不落缓存，每次都要重查
	if svc.calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", svc.calls)
	}
}

func TestOnChainNotMatched(t *testing.T) {
	v := New(nil, &fakeChain{matched: false}, nil, nil)
	err := v.OnChain(context.Background(), "0xabc", "0xdef", decimal.NewFromInt(1000), time.Now())
	var precondErr *claim.PreconditionError
	if !errors.As(err, &precondErr) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
}

func TestOnChainRpcErrorIsTemporary(t *testing.T) {
	v := New(nil, &fakeChain{err: fmt.Errorf("connection refused")}, nil, nil)
	err := v.OnChain(context.Background(), "0xabc", "0xdef", decimal.NewFromInt(1000), time.Now())
	if !IsTemporary(err) {
		t.Fatalf("rpc failure must be temporary, got %v", err)
	}
}

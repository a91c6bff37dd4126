package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"timeguesser/internal/chain"
	"timeguesser/internal/domain"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(ctx context.Context) { c.calls++ }

func seedUnverified(t *testing.T, store *memStore, gameID, txHash string) {
	t.Helper()
	canonical := strings.ToLower(testWallet)
	store.users[canonical] = domain.User{CanonicalUserID: canonical}
	store.games[gameID] = domain.Game{ID: gameID, CanonicalUserID: canonical}
	if err := (mintStore{store}).Create(context.Background(), &domain.Mint{GameID: gameID, TxHash: txHash, Status: domain.MintUnverified}); err != nil {
		t.Fatalf("seed mint: %v", err)
	}
}

func TestReconcilerSettlesUnverifiedMints(t *testing.T) {
	store := newMemStore()
	const (
		confirmedTx = "0x1000000000000000000000000000000000000000000000000000000000000001"
		forgedTx    = "0x2000000000000000000000000000000000000000000000000000000000000002"
		pendingTx   = "0x3000000000000000000000000000000000000000000000000000000000000003"
	)
	seedUnverified(t, store, "confirmed", confirmedTx)
	seedUnverified(t, store, "forged", forgedTx)
	seedUnverified(t, store, "pending", pendingTx)

	forged := matchingReceipt()
	forged.To = "0x2222222222222222222222222222222222222222"
	receipts := &fakeReceipts{byHash: map[string]*chain.Receipt{
		confirmedTx: matchingReceipt(),
		forgedTx:    forged,
	}}
	inv := &countingInvalidator{}

	r := NewReconciler(receipts, mintStore{store}, testContract, 10, inv)
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := ReconcileResult{Checked: 3, Confirmed: 1, Failed: 1, Pending: 1}
	if res != want {
		t.Fatalf("result = %+v; want %+v", res, want)
	}
	if got := store.mintFor("confirmed").Status; got != domain.MintSuccess {
		t.Fatalf("confirmed status = %s", got)
	}
	if got := store.mintFor("forged").Status; got != domain.MintFailed {
		t.Fatalf("forged status = %s", got)
	}
	if got := store.mintFor("pending").Status; got != domain.MintUnverified {
		t.Fatalf("pending status = %s", got)
	}
	if inv.calls != 1 {
		t.Fatalf("invalidator called %d times", inv.calls)
	}

	// settled mints are not revisited
	res, err = r.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Checked != 1 || res.Pending != 1 {
		t.Fatalf("second run = %+v", res)
	}
}

func TestReconcilerRotatesPastMissingReceipts(t *testing.T) {
	store := newMemStore()
	const realTx = "0x4000000000000000000000000000000000000000000000000000000000000004"
	for i, tx := range []string{
		"0x1000000000000000000000000000000000000000000000000000000000000001",
		"0x2000000000000000000000000000000000000000000000000000000000000002",
		"0x3000000000000000000000000000000000000000000000000000000000000003",
	} {
		seedUnverified(t, store, "fake-"+string(rune('a'+i)), tx)
	}
	seedUnverified(t, store, "real", realTx)

	receipts := &fakeReceipts{byHash: map[string]*chain.Receipt{realTx: matchingReceipt()}}
	r := NewReconciler(receipts, mintStore{store}, testContract, 3, nil)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if want := (ReconcileResult{Checked: 3, Pending: 3}); res != want {
		t.Fatalf("first run = %+v; want %+v", res, want)
	}
	if store.mintFor("fake-a").CheckedAt == nil {
		t.Fatalf("missing receipt not marked as checked")
	}

	res, err = r.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Confirmed != 1 {
		t.Fatalf("second run = %+v; want the newer mint confirmed", res)
	}
	if got := store.mintFor("real").Status; got != domain.MintSuccess {
		t.Fatalf("real status = %s", got)
	}
	if got := store.mintFor("fake-c").Status; got != domain.MintUnverified {
		t.Fatalf("fake status = %s", got)
	}
}

func TestReconcilerKeepsMintsOnFetchErrors(t *testing.T) {
	store := newMemStore()
	seedUnverified(t, store, "g", testTxHash)

	receipts := &fakeReceipts{failTimes: 1, err: errors.New("rpc down")}
	res, err := NewReconciler(receipts, mintStore{store}, testContract, 10, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Pending != 1 || store.mintFor("g").Status != domain.MintUnverified {
		t.Fatalf("transient error changed status: %+v", res)
	}
}

func TestReconcilerNotConfigured(t *testing.T) {
	if _, err := NewReconciler(nil, nil, "", 0, nil).Run(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v; want NotConfigured", err)
	}
}

package service

import (
	"context"
	"errors"

	"timeguesser/internal/chain"
	"timeguesser/internal/domain"
	"timeguesser/internal/logger"
	"timeguesser/internal/repository"
)

// MintLedger is the part of the mint store reconciliation needs.
type MintLedger interface {
	ListForReconcile(ctx context.Context, limit int) ([]*domain.Mint, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.MintStatus) error
	MarkChecked(ctx context.Context, id int64) error
}

// Invalidator drops derived data after mint statuses change.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type ReconcileResult struct {
	Checked   int `json:"checked"`
	Confirmed int `json:"confirmed"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
}

// Reconciler settles mints that were stored without a receipt.
type Reconciler struct {
	receipts    ReceiptSource
	mints       MintLedger
	contract    string
	batchSize   int
	invalidator Invalidator
}

func NewReconciler(receipts ReceiptSource, mints MintLedger, contract string, batchSize int, invalidator Invalidator) *Reconciler {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Reconciler{
		receipts:    receipts,
		mints:       mints,
		contract:    contract,
		batchSize:   batchSize,
		invalidator: invalidator,
	}
}

// Run checks one batch of unverified mints. Each receipt is fetched once;
// mints whose receipt is still missing stay unverified and move to the back
// of the queue.
func (r *Reconciler) Run(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult
	if r.receipts == nil || r.mints == nil || r.contract == "" {
		return res, newError(ErrNotConfigured, "reconciliation not configured", nil)
	}

	pending, err := r.mints.ListForReconcile(ctx, r.batchSize)
	if err != nil {
		return res, newError(ErrPersistenceFailure, err.Error(), err)
	}

	for _, m := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++

		next, ok := r.settle(ctx, m)
		if !ok {
			res.Pending++
			if err := r.mints.MarkChecked(ctx, m.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				logger.Warn("reconcile: mark checked failed", "game_id", m.GameID, "error", err)
			}
			continue
		}

		err := r.mints.UpdateStatus(ctx, m.ID, domain.MintUnverified, next)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			// settled concurrently
			continue
		case err != nil:
			logger.Error("reconcile: update mint failed", "game_id", m.GameID, "error", err)
			res.Pending++
			continue
		}

		MintsReconciled.WithLabelValues(string(next)).Inc()
		if next == domain.MintSuccess {
			res.Confirmed++
		} else {
			res.Failed++
		}
	}

	if (res.Confirmed > 0 || res.Failed > 0) && r.invalidator != nil {
		r.invalidator.Invalidate(ctx)
	}

	logger.Info("reconcile finished",
		"checked", res.Checked, "confirmed", res.Confirmed, "failed", res.Failed, "pending", res.Pending)
	return res, nil
}

// settle returns the status m should move to, or false to leave it alone.
func (r *Reconciler) settle(ctx context.Context, m *domain.Mint) (domain.MintStatus, bool) {
	receipt, err := r.receipts.TransactionReceipt(ctx, m.TxHash)
	switch {
	case errors.Is(err, chain.ErrReceiptNotFound):
		return "", false
	case errors.Is(err, chain.ErrInvalidTxHash):
		logger.Warn("reconcile: stored tx hash is malformed", "game_id", m.GameID)
		return domain.MintFailed, true
	case err != nil:
		logger.Warn("reconcile: receipt fetch failed", "game_id", m.GameID, "error", err)
		return "", false
	}

	if err := receipt.Match(r.contract, m.Player); err != nil {
		logger.Warn("reconcile: receipt does not match", "game_id", m.GameID, "tx_hash", m.TxHash, "reason", err)
		return domain.MintFailed, true
	}
	return domain.MintSuccess, true
}

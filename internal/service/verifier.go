package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"timeguesser/internal/chain"
	"timeguesser/internal/domain"
	"timeguesser/internal/logger"
	"timeguesser/internal/repository"
	"timeguesser/internal/retry"
)

// ReceiptSource fetches transaction receipts. *chain.Client implements it.
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, txHash string) (*chain.Receipt, error)
}

type UserStore interface {
	Upsert(ctx context.Context, u *domain.User) error
}

type GameStore interface {
	Create(ctx context.Context, g *domain.Game) error
	GetByID(ctx context.Context, id string) (*domain.Game, error)
	Delete(ctx context.Context, id string) error
}

type RoundStore interface {
	CreateBatch(ctx context.Context, rounds []domain.Round) error
}

type MintStore interface {
	Create(ctx context.Context, m *domain.Mint) error
	GetByGameID(ctx context.Context, gameID string) (*domain.Mint, error)
	GetByTxHash(ctx context.Context, txHash string) (*domain.Mint, error)
}

// Stores groups the tables a submission writes to.
type Stores struct {
	Users  UserStore
	Games  GameStore
	Rounds RoundStore
	Mints  MintStore
}

// ScoreListener is notified after a score has been persisted.
type ScoreListener interface {
	ScorePersisted(ctx context.Context, ev domain.ScoreEvent)
}

type VerifierConfig struct {
	ContractAddress string
	ChainID         int64
	Retry           retry.Config
	// TrustOnMissingReceipt stores the score as unverified when no receipt
	// could be fetched within the retry budget instead of failing.
	TrustOnMissingReceipt bool
}

// MintVerifier checks a mint transaction and records the game.
type MintVerifier struct {
	cfg       VerifierConfig
	receipts  ReceiptSource
	stores    *Stores
	listeners []ScoreListener
	now       func() time.Time
}

// NewMintVerifier builds a verifier. receipts or stores may be nil when the
// deployment lacks an RPC endpoint or a database; Submit then answers NotConfigured.
func NewMintVerifier(cfg VerifierConfig, receipts ReceiptSource, stores *Stores, listeners ...ScoreListener) *MintVerifier {
	return &MintVerifier{
		cfg:       cfg,
		receipts:  receipts,
		stores:    stores,
		listeners: listeners,
		now:       time.Now,
	}
}

// RoundInput is one round as reported by the client.
type RoundInput struct {
	PhotoID   any  `json:"photoId"`
	YearGuess *int `json:"yearGuess"`
	YearTrue  *int `json:"yearTrue"`
	Delta     *int `json:"delta"`
	Score     *int `json:"score"`
}

// ScoreSubmission is the body of a score report. Fields are loosely typed so
// shape errors become MissingFields / InvalidInput instead of decode failures.
type ScoreSubmission struct {
	GameID    any             `json:"gameId"`
	Score     any             `json:"score"`
	TxHash    any             `json:"txHash"`
	Wallet    any             `json:"wallet"`
	Rounds    json.RawMessage `json:"rounds,omitempty"`
	Farcaster json.RawMessage `json:"farcaster,omitempty"`
}

type submission struct {
	gameID string
	score  int
	txHash string
	wallet string
	rounds []RoundInput
	fc     *domain.FarcasterProfile
}

// Submit verifies the mint transaction behind sub and persists the game.
func (v *MintVerifier) Submit(ctx context.Context, sub ScoreSubmission) error {
	err := v.submit(ctx, sub)
	ScoreSubmissions.WithLabelValues(resultLabel(err)).Inc()
	return err
}

func (v *MintVerifier) submit(ctx context.Context, sub ScoreSubmission) error {
	if v.stores == nil {
		return newError(ErrNotConfigured, "persistence store not configured", nil)
	}

	s, err := v.parse(sub)
	if err != nil {
		return err
	}

	if v.cfg.ContractAddress == "" {
		return newError(ErrNotConfigured, "score contract address not configured", nil)
	}
	if v.receipts == nil {
		return newError(ErrNotConfigured, "rpc endpoint not configured", nil)
	}

	log := logger.WithContext(ctx).With("game_id", s.gameID, "tx_hash", s.txHash)

	status, err := v.checkReceipt(ctx, s, log)
	if err != nil {
		return err
	}

	return v.persist(ctx, s, status, log)
}

func (v *MintVerifier) parse(sub ScoreSubmission) (*submission, error) {
	gameID, _ := sub.GameID.(string)
	txHash, _ := sub.TxHash.(string)
	wallet, _ := sub.Wallet.(string)
	if gameID == "" || txHash == "" || wallet == "" || !isNumber(sub.Score) {
		return nil, newError(ErrMissingFields, "missing gameId, score, txHash, or wallet", nil)
	}

	wallet, err := chain.NormalizeAddress(wallet)
	if err != nil {
		return nil, newError(ErrInvalidAddress, "invalid wallet address", nil)
	}

	score, ok := scoreValue(sub.Score)
	if !ok || score < 0 || score > domain.MaxGameScore {
		return nil, newError(ErrInvalidInput, "score must be an integer between 0 and 5000", nil)
	}

	if _, err := chain.ParseTxHash(txHash); err != nil {
		return nil, newError(ErrInvalidInput, "invalid transaction hash", nil)
	}

	return &submission{
		gameID: gameID,
		score:  int(score),
		txHash: strings.ToLower(txHash),
		wallet: wallet,
		rounds: parseRounds(sub.Rounds),
		fc:     parseProfile(sub.Farcaster),
	}, nil
}

// parseRounds is lenient: round detail is supplementary, so a malformed
// array is dropped rather than failing the submission.
func parseRounds(raw json.RawMessage) []RoundInput {
	if len(raw) == 0 {
		return nil
	}
	var rounds []RoundInput
	if err := json.Unmarshal(raw, &rounds); err != nil {
		logger.Warn("ignoring malformed rounds", "error", err)
		return nil
	}
	if len(rounds) > domain.RoundsPerGame {
		rounds = rounds[:domain.RoundsPerGame]
	}
	return rounds
}

// parseProfile keeps the well-formed profile fields and drops the rest;
// profile metadata never fails a submission.
func parseProfile(raw json.RawMessage) *domain.FarcasterProfile {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		logger.Warn("ignoring malformed farcaster profile", "error", err)
		return nil
	}
	p := domain.FarcasterProfile{
		FID:         profileFID(fields["fid"]),
		Username:    profileString(fields["username"]),
		DisplayName: profileString(fields["displayName"]),
		PfpURL:      profileString(fields["pfpUrl"]),
	}
	if p == (domain.FarcasterProfile{}) {
		return nil
	}
	return &p
}

func profileString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// profileFID accepts a number or a numeric string.
func profileFID(raw json.RawMessage) int64 {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	fid, err := n.Int64()
	if err != nil || fid < 0 {
		return 0
	}
	return fid
}

// checkReceipt polls for the receipt and decides the mint status.
func (v *MintVerifier) checkReceipt(ctx context.Context, s *submission, log *slog.Logger) (domain.MintStatus, error) {
	cfg := v.cfg.Retry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Info("receipt not available yet", "attempt", attempt, "max_attempts", cfg.MaxAttempts, "retry_in", delay, "error", err)
	}

	receipt, err := retry.Do(ctx, cfg, isRetryableReceiptError, func(ctx context.Context, attempt int) (*chain.Receipt, error) {
		r, err := v.receipts.TransactionReceipt(ctx, s.txHash)
		if err != nil {
			ReceiptFetchFailures.Inc()
		}
		return r, err
	})

	switch {
	case err == nil:
		if err := receipt.Match(v.cfg.ContractAddress, s.wallet); err != nil {
			log.Warn("transaction rejected", "reason", err, "from", receipt.From, "to", receipt.To)
			return "", newError(ErrTransactionMismatch, mismatchMessage(err), err)
		}
		return domain.MintSuccess, nil

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Info("score submission aborted", "error", err)
		return "", newError(ErrCanceled, "request canceled", err)

	case !v.cfg.TrustOnMissingReceipt:
		log.Warn("receipt unavailable, rejecting", "error", err)
		return "", newError(ErrReceiptUnavailable, "transaction receipt unavailable, retry later", err)

	default:
		log.Warn("receipt unavailable, storing as unverified", "error", err)
		return domain.MintUnverified, nil
	}
}

func isRetryableReceiptError(err error) bool {
	return !errors.Is(err, chain.ErrInvalidTxHash)
}

func mismatchMessage(err error) string {
	switch {
	case errors.Is(err, chain.ErrTxNotSuccessful):
		return "Transaction not successful."
	case errors.Is(err, chain.ErrTargetMismatch):
		return "Transaction target mismatch."
	case errors.Is(err, chain.ErrSenderMismatch):
		return "Wallet does not match transaction sender."
	}
	return "Transaction mismatch."
}

func (v *MintVerifier) persist(ctx context.Context, s *submission, status domain.MintStatus, log *slog.Logger) error {
	now := v.now().UTC()

	// nothing is written for a transaction that already backs another game
	if err := v.checkTxUnused(ctx, s); err != nil {
		return err
	}

	user := &domain.User{CanonicalUserID: s.wallet, Wallet: s.wallet}
	if s.fc != nil {
		applyProfile(user, s.fc)
	}
	if err := v.stores.Users.Upsert(ctx, user); err != nil {
		return newError(ErrPersistenceFailure, err.Error(), err)
	}

	game := &domain.Game{ID: s.gameID, CanonicalUserID: s.wallet, TotalScore: s.score, EndedAt: now}
	created := true
	err := v.stores.Games.Create(ctx, game)
	switch {
	case errors.Is(err, repository.ErrDuplicateGame):
		created = false
		replay, err := v.resolveDuplicate(ctx, s)
		if err != nil {
			return err
		}
		if replay {
			log.Info("duplicate score submission acknowledged")
			return nil
		}
		log.Info("resuming partially recorded game")
	case err != nil:
		return newError(ErrPersistenceFailure, err.Error(), err)
	}

	if rounds := buildRounds(s.gameID, s.rounds, now); len(rounds) > 0 {
		if err := v.stores.Rounds.CreateBatch(ctx, rounds); err != nil {
			log.Warn("failed to insert rounds", "error", err)
		}
	}

	mint := &domain.Mint{GameID: s.gameID, TxHash: s.txHash, ChainID: v.cfg.ChainID, Status: status}
	if status == domain.MintSuccess {
		mint.VerifiedAt = &now
	}
	err = v.stores.Mints.Create(ctx, mint)
	switch {
	case errors.Is(err, repository.ErrDuplicateMint):
		// a concurrent submission claimed the transaction first
		if created {
			v.dropGame(ctx, s.gameID, log)
		}
		return newError(ErrDuplicateGame, "transaction already recorded for another game", err)
	case err != nil:
		return newError(ErrPersistenceFailure, err.Error(), err)
	}

	log.Info("score recorded", "player", s.wallet, "score", s.score, "mint_status", status)

	ev := domain.ScoreEvent{
		GameID:          s.gameID,
		CanonicalUserID: s.wallet,
		Score:           s.score,
		Verified:        status == domain.MintSuccess,
		At:              now,
	}
	if user.DisplayName != nil {
		ev.DisplayName = *user.DisplayName
	}
	for _, l := range v.listeners {
		l.ScorePersisted(ctx, ev)
	}
	return nil
}

func (v *MintVerifier) checkTxUnused(ctx context.Context, s *submission) error {
	existing, err := v.stores.Mints.GetByTxHash(ctx, s.txHash)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return newError(ErrPersistenceFailure, err.Error(), err)
	case existing.GameID != s.gameID:
		return newError(ErrDuplicateGame, "transaction already recorded for another game", repository.ErrDuplicateMint)
	}
	return nil
}

// dropGame removes a game row this submission created but could not attach
// a mint to, so no game is left without its transaction.
func (v *MintVerifier) dropGame(ctx context.Context, gameID string, log *slog.Logger) {
	if err := v.stores.Games.Delete(ctx, gameID); err != nil {
		log.Error("failed to remove game without mint", "error", err)
	}
}

// resolveDuplicate handles a gameId that is already stored. A repeat of the
// same transaction is a replay and succeeds without writes. A game with no
// mint row yet, owned by the same wallet, is resumed. Anything else conflicts.
func (v *MintVerifier) resolveDuplicate(ctx context.Context, s *submission) (replay bool, err error) {
	existing, err := v.stores.Games.GetByID(ctx, s.gameID)
	if err != nil {
		return false, newError(ErrPersistenceFailure, err.Error(), err)
	}
	if existing.CanonicalUserID != s.wallet {
		return false, newError(ErrDuplicateGame, "game already recorded", repository.ErrDuplicateGame)
	}

	mint, err := v.stores.Mints.GetByGameID(ctx, s.gameID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	case err != nil:
		return false, newError(ErrPersistenceFailure, err.Error(), err)
	case strings.EqualFold(mint.TxHash, s.txHash):
		return true, nil
	}
	return false, newError(ErrDuplicateGame, "game already recorded", repository.ErrDuplicateGame)
}

func applyProfile(u *domain.User, fc *domain.FarcasterProfile) {
	if fc.FID > 0 {
		fid := fc.FID
		u.FarcasterFID = &fid
	}
	name := fc.DisplayName
	if name == "" {
		name = fc.Username
	}
	if name != "" {
		u.DisplayName = &name
	}
	if fc.PfpURL != "" {
		pfp := fc.PfpURL
		u.AvatarURL = &pfp
	}
}

// buildRounds converts client rounds to rows. Rounds without both years are
// skipped; a missing delta or score is derived from the years.
func buildRounds(gameID string, in []RoundInput, at time.Time) []domain.Round {
	rounds := make([]domain.Round, 0, len(in))
	for i, r := range in {
		if r.YearGuess == nil || r.YearTrue == nil {
			continue
		}

		delta := *r.YearTrue - *r.YearGuess
		if delta < 0 {
			delta = -delta
		}
		if r.Delta != nil && *r.Delta >= 0 {
			delta = *r.Delta
		}
		score := RoundScore(*r.YearTrue, *r.YearGuess)
		if r.Score != nil && *r.Score >= 0 && *r.Score <= domain.MaxRoundScore {
			score = *r.Score
		}

		rounds = append(rounds, domain.Round{
			GameID:     gameID,
			PhotoID:    photoID(r.PhotoID),
			RoundIndex: i + 1,
			YearGuess:  *r.YearGuess,
			YearTrue:   *r.YearTrue,
			DeltaYears: delta,
			Score:      score,
			AnsweredAt: at,
		})
	}
	return rounds
}

func photoID(v any) *string {
	var id string
	switch p := v.(type) {
	case string:
		id = p
	case float64:
		id = strconv.FormatFloat(p, 'f', -1, 64)
	case json.Number:
		id = p.String()
	}
	if id == "" {
		return nil
	}
	return &id
}

package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"timeguesser/internal/domain"
	"timeguesser/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func openDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)
	return db
}

// randomWallet returns a fresh lower-case address so runs do not collide.
func randomWallet() string {
	return "0x" + strings.ReplaceAll(uuid.NewString(), "-", "")[:32] + "00000000"
}

func randomTx() string {
	return "0x" + strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

func TestScorePersistence(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	games := repository.NewGameRepository(db)
	rounds := repository.NewRoundRepository(db)
	mints := repository.NewMintRepository(db)

	wallet := randomWallet()
	name := "alice"
	fid := int64(42)

	if err := users.Upsert(ctx, &domain.User{CanonicalUserID: wallet, Wallet: wallet, FarcasterFID: &fid, DisplayName: &name}); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	// a bare re-submission keeps the profile
	if err := users.Upsert(ctx, &domain.User{CanonicalUserID: wallet, Wallet: wallet}); err != nil {
		t.Fatalf("re-upsert user: %v", err)
	}
	u, err := users.GetByID(ctx, wallet)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.DisplayName == nil || *u.DisplayName != name || u.FarcasterFID == nil || *u.FarcasterFID != fid {
		t.Fatalf("profile lost on upsert: %+v", u)
	}

	game := &domain.Game{ID: uuid.NewString(), CanonicalUserID: wallet, TotalScore: 4200, EndedAt: time.Now().UTC()}
	if err := games.Create(ctx, game); err != nil {
		t.Fatalf("create game: %v", err)
	}
	if err := games.Create(ctx, &domain.Game{ID: game.ID, CanonicalUserID: wallet, TotalScore: 1, EndedAt: time.Now()}); !errors.Is(err, repository.ErrDuplicateGame) {
		t.Fatalf("second create = %v; want ErrDuplicateGame", err)
	}
	stored, err := games.GetByID(ctx, game.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if stored.TotalScore != 4200 {
		t.Fatalf("game overwritten: %+v", stored)
	}

	photo := "p1"
	batch := []domain.Round{
		{GameID: game.ID, PhotoID: &photo, RoundIndex: 1, YearGuess: 1960, YearTrue: 1969, DeltaYears: 9, Score: 910, AnsweredAt: game.EndedAt},
		{GameID: game.ID, RoundIndex: 2, YearGuess: 2000, YearTrue: 2000, DeltaYears: 0, Score: 1000, AnsweredAt: game.EndedAt},
	}
	if err := rounds.CreateBatch(ctx, batch); err != nil {
		t.Fatalf("create rounds: %v", err)
	}
	got, err := rounds.GetByGame(ctx, game.ID)
	if err != nil || len(got) != 2 {
		t.Fatalf("rounds = %v, %v", got, err)
	}

	tx := randomTx()
	mint := &domain.Mint{GameID: game.ID, TxHash: tx, ChainID: 8453, Status: domain.MintUnverified}
	if err := mints.Create(ctx, mint); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	if mint.ID == 0 {
		t.Fatalf("mint id not returned")
	}

	byTx, err := mints.GetByTxHash(ctx, "0x"+strings.ToUpper(tx[2:]))
	if err != nil || byTx.GameID != game.ID {
		t.Fatalf("get by tx = %+v, %v", byTx, err)
	}
	if _, err := mints.GetByTxHash(ctx, randomTx()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown tx = %v; want ErrNotFound", err)
	}

	queue, err := mints.ListForReconcile(ctx, 500)
	if err != nil {
		t.Fatalf("list for reconcile: %v", err)
	}
	for i := 1; i < len(queue); i++ {
		if queue[i-1].CheckedAt != nil && queue[i].CheckedAt == nil {
			t.Fatalf("checked mint ordered before unchecked one")
		}
	}
	if err := mints.MarkChecked(ctx, mint.ID); err != nil {
		t.Fatalf("mark checked: %v", err)
	}
	if m, _ := mints.GetByGameID(ctx, game.ID); m.CheckedAt == nil {
		t.Fatalf("checked_at not stamped")
	}

	// the same tx cannot back a second game
	other := &domain.Game{ID: uuid.NewString(), CanonicalUserID: wallet, TotalScore: 10, EndedAt: time.Now()}
	if err := games.Create(ctx, other); err != nil {
		t.Fatalf("create other game: %v", err)
	}
	if err := mints.Create(ctx, &domain.Mint{GameID: other.ID, TxHash: tx, ChainID: 8453, Status: domain.MintSuccess}); !errors.Is(err, repository.ErrDuplicateMint) {
		t.Fatalf("reused tx = %v; want ErrDuplicateMint", err)
	}
	if err := games.Delete(ctx, other.ID); err != nil {
		t.Fatalf("delete game: %v", err)
	}
	if _, err := games.GetByID(ctx, other.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("deleted game = %v; want ErrNotFound", err)
	}

	m, err := mints.GetByGameID(ctx, game.ID)
	if err != nil {
		t.Fatalf("get mint: %v", err)
	}
	if m.Player != wallet || m.Status != domain.MintUnverified {
		t.Fatalf("mint = %+v", m)
	}

	if err := mints.UpdateStatus(ctx, m.ID, domain.MintUnverified, domain.MintSuccess); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := mints.UpdateStatus(ctx, m.ID, domain.MintUnverified, domain.MintFailed); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("stale update = %v; want ErrNotFound", err)
	}
	m, _ = mints.GetByGameID(ctx, game.ID)
	if m.Status != domain.MintSuccess || m.VerifiedAt == nil {
		t.Fatalf("mint after update = %+v", m)
	}

	lb := repository.NewLeaderboardRepository(db)
	entries, err := lb.BestAccuracy(ctx, 1000)
	if err != nil {
		t.Fatalf("best accuracy: %v", err)
	}
	found := false
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Fatalf("rank %d at position %d", e.Rank, i)
		}
		if e.CanonicalUserID == wallet {
			found = true
			if e.AvgDelta == nil || *e.AvgDelta != 4.5 {
				t.Fatalf("avg delta = %v", e.AvgDelta)
			}
		}
	}
	if !found {
		t.Fatalf("user missing from best_accuracy")
	}

	if _, err := repository.NewPhotoRepository(db).List(ctx); err != nil {
		t.Fatalf("list photos: %v", err)
	}
}

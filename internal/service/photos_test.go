package service

import (
	"context"
	"errors"
	"testing"

	"timeguesser/internal/domain"

	"github.com/google/uuid"
)

type fakePhotos struct {
	photos []domain.Photo
	err    error
}

func (f fakePhotos) List(ctx context.Context) ([]domain.Photo, error) {
	return f.photos, f.err
}

func TestPhotoReport(t *testing.T) {
	photos := []domain.Photo{
		{ID: "a", YearTrue: 1905},
		{ID: "b", YearTrue: 1959},
		{ID: "c", YearTrue: 1960},
		{ID: "d", YearTrue: 1999},
		{ID: "e", YearTrue: 2024},
		{ID: "f", YearTrue: 1888},
	}

	report, err := NewPhotoService(fakePhotos{photos: photos}).Report(context.Background())
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Total != 6 {
		t.Fatalf("total = %d", report.Total)
	}

	wantRange := map[string]int{"1900-1959": 2, "1960-1979": 1, "1980-1999": 1, "2000-2009": 0, "2010-2024": 1}
	for k, v := range wantRange {
		if report.ByRange[k] != v {
			t.Fatalf("ByRange[%s] = %d; want %d", k, report.ByRange[k], v)
		}
	}

	wantDecade := map[string]int{"1880s": 1, "1900s": 1, "1950s": 1, "1960s": 1, "1990s": 1, "2020s": 1}
	if len(report.ByDecade) != len(wantDecade) {
		t.Fatalf("ByDecade = %v", report.ByDecade)
	}
	for k, v := range wantDecade {
		if report.ByDecade[k] != v {
			t.Fatalf("ByDecade[%s] = %d; want %d", k, report.ByDecade[k], v)
		}
	}
}

func TestPhotoListErrors(t *testing.T) {
	if _, err := NewPhotoService(nil).List(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v; want NotConfigured", err)
	}
	if _, err := NewPhotoService(fakePhotos{err: errors.New("boom")}).List(context.Background()); !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("err = %v; want PersistenceFailure", err)
	}

	photos, err := NewPhotoService(fakePhotos{}).List(context.Background())
	if err != nil || photos == nil {
		t.Fatalf("empty list should be non-nil, got %v %v", photos, err)
	}
}

func TestNewGameID(t *testing.T) {
	a, b := NewGameID(), NewGameID()
	if a == b {
		t.Fatalf("game ids repeat")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("game id %q is not a uuid: %v", a, err)
	}
}

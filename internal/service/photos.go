package service

import (
	"context"
	"strconv"

	"timeguesser/internal/domain"

	"github.com/google/uuid"
)

type PhotoSource interface {
	List(ctx context.Context) ([]domain.Photo, error)
}

type PhotoService struct {
	source PhotoSource
}

func NewPhotoService(source PhotoSource) *PhotoService {
	return &PhotoService{source: source}
}

func (s *PhotoService) List(ctx context.Context) ([]domain.Photo, error) {
	if s.source == nil {
		return nil, newError(ErrNotConfigured, "photo store not configured", nil)
	}
	photos, err := s.source.List(ctx)
	if err != nil {
		return nil, newError(ErrPersistenceFailure, err.Error(), err)
	}
	if photos == nil {
		photos = []domain.Photo{}
	}
	return photos, nil
}

// Report counts photos per decade and per year range.
func (s *PhotoService) Report(ctx context.Context) (domain.PhotoReport, error) {
	photos, err := s.List(ctx)
	if err != nil {
		return domain.PhotoReport{}, err
	}
	return BuildPhotoReport(photos), nil
}

type yearRange struct {
	label    string
	from, to int
}

var reportRanges = []yearRange{
	{"1900-1959", 1900, 1959},
	{"1960-1979", 1960, 1979},
	{"1980-1999", 1980, 1999},
	{"2000-2009", 2000, 2009},
	{"2010-2024", 2010, 2024},
}

func BuildPhotoReport(photos []domain.Photo) domain.PhotoReport {
	report := domain.PhotoReport{
		Total:    len(photos),
		ByDecade: make(map[string]int),
		ByRange:  make(map[string]int, len(reportRanges)),
	}
	for _, r := range reportRanges {
		report.ByRange[r.label] = 0
	}

	for _, p := range photos {
		report.ByDecade[decadeLabel(p.YearTrue)]++
		for _, r := range reportRanges {
			if p.YearTrue >= r.from && p.YearTrue <= r.to {
				report.ByRange[r.label]++
				break
			}
		}
	}
	return report
}

func decadeLabel(year int) string {
	start := year / 10 * 10
	if year < 0 && year%10 != 0 {
		start -= 10
	}
	return strconv.Itoa(start) + "s"
}

// NewGameID issues an opaque play session id.
func NewGameID() string {
	return uuid.NewString()
}

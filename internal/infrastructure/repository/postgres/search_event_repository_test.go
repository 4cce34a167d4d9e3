package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*SearchEventRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &SearchEventRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestRecordInsertsEvent(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	performedAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO search_events").
		WithArgs("req-1", "スイッチ 画面修理", "Nintendo Switch screen repair", "ja", 3, 0.85, int64(420), performedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Record(context.Background(), domain.SearchEvent{
		RequestID:        "req-1",
		Query:            "スイッチ 画面修理",
		ProcessedQuery:   "Nintendo Switch screen repair",
		LanguageDetected: "ja",
		ResultCount:      3,
		TopConfidence:    0.85,
		DurationMillis:   420,
		PerformedAt:      performedAt,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordIsIdempotentOnRedelivery(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO search_events").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Record(context.Background(), domain.SearchEvent{RequestID: "req-dup"})
	if err != nil {
		t.Fatalf("Record() on conflict error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTopQueriesScansCounts(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	since := time.Now().Add(-24 * time.Hour)
	rows := sqlmock.NewRows([]string{"processed_query", "searches"}).
		AddRow("Nintendo Switch screen repair", 12).
		AddRow("iPhone battery replacement", 7)
	mock.ExpectQuery("SELECT processed_query, COUNT").
		WithArgs(since, 5).
		WillReturnRows(rows)

	counts, err := repo.TopQueries(context.Background(), since, 5)
	if err != nil {
		t.Fatalf("TopQueries() error = %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(counts))
	}
	if counts[0].Query != "Nintendo Switch screen repair" || counts[0].Count != 12 {
		t.Fatalf("unexpected first row: %+v", counts[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

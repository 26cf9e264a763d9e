package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus/hooks/test"
)

func expectSchema(mock pgxmock.PgxPoolIface) {
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS trips`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS geocode_cache`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_trips_created_at`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCommit()
}

func TestRunSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.json")
	body := `[
		{"query":"Omaha, NE","latitude":41.2565,"longitude":-95.9345,"display_name":"Omaha, Nebraska"},
		{"query":"Denver, CO","latitude":39.7392,"longitude":-104.9903,"display_name":"Denver, Colorado"}
	]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	expectSchema(mock)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO geocode_cache`).
		WithArgs("omaha, ne", -95.9345, 41.2565, "Omaha, Nebraska").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO geocode_cache`).
		WithArgs("denver, co", -104.9903, 39.7392, "Denver, Colorado").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	logger, hook := test.NewNullLogger()
	if err := run(context.Background(), mock, path, logger); err != nil {
		t.Fatalf("init and seed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Message != "Seeding complete." {
		t.Fatalf("expected completion log, got %+v", hook.LastEntry())
	}
}

func TestRunRequiresSeedFile(t *testing.T) {
	for _, path := range []string{"", "  ", filepath.Join(t.TempDir(), "missing.json")} {
		mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
		if err != nil {
			t.Fatalf("mock pool: %v", err)
		}

		logger, _ := test.NewNullLogger()
		if err := run(context.Background(), mock, path, logger); err == nil {
			t.Fatalf("path %q: expected error", path)
		}
		// Nothing touches the database before the seed file is confirmed.
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("path %q: unmet expectations: %v", path, err)
		}
		mock.Close()
	}
}

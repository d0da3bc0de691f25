// Package testdb opens hermetic SQLite databases with the service schema for tests
// that do not need a Postgres container.
package testdb

import (
	"testing"
	"time"

	"deliveryhub/internal/adapters/out/postgres/deliveryrepo"
	"deliveryhub/internal/adapters/out/postgres/partnerrepo"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns an isolated in-memory database migrated with the partner and
// delivery tables. SQLite has no row locks, so the pool is limited to a single
// connection and transactions run one after another.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:deliveryhub_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err = db.AutoMigrate(&partnerrepo.PartnerDTO{}, &deliveryrepo.DeliveryDTO{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

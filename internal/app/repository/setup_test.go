package repository

import (
	"testing"
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/pricing"
	"renovation/internal/app/role"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(ds.Models()...))
	return NewWithDB(db, pricing.DefaultRates, decimal.NewFromInt(30))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type fixture struct {
	user     *ds.User
	project  *ds.Project
	supplier *ds.Supplier
}

func seed(t *testing.T, r *Repository) fixture {
	t.Helper()

	user, err := r.CreateUser("designer", "hash", "Dana Designer", "dana@example.com", role.Manager)
	require.NoError(t, err)

	project := &ds.Project{Name: "Outremont duplex", ClientName: "M. Tremblay", OwnerID: user.ID}
	require.NoError(t, r.CreateProject(project))

	supplier := &ds.Supplier{Name: "Atelier Bois", Email: "sales@atelierbois.test"}
	require.NoError(t, r.CreateSupplier(supplier))

	return fixture{user: user, project: project, supplier: supplier}
}

func (f fixture) specItem(t *testing.T, r *Repository, name string, qty int, cost string, rrp *decimal.Decimal) *ds.SpecItem {
	t.Helper()
	item := &ds.SpecItem{
		ProjectID: f.project.ID,
		Name:      name,
		Room:      "Living",
		Quantity:  qty,
		CostPrice: dec(cost),
		RRP:       rrp,
	}
	require.NoError(t, r.CreateSpecItem(item))
	return item
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

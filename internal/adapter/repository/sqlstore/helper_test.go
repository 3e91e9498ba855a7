package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ict-ticketing/internal/domain/device"
	"ict-ticketing/internal/domain/request"
	"ict-ticketing/internal/domain/user"
)

// openTestDB creates an in-memory sqlite DB with the real domain schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&user.User{}, &device.Device{}, &request.Request{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *user.User {
	t.Helper()
	u := &user.User{
		Username:       username,
		Email:          username + "@x.io",
		HashedPassword: "hash",
		Role:           user.RoleUser,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u), "seed user %s", username)
	return u
}

func makeRequest(code string, requesterID uint64) *request.Request {
	return &request.Request{
		RequestCode: code,
		Device:      "Laptop",
		Quantity:    1,
		Status:      request.StatusPending,
		RequesterID: requesterID,
	}
}

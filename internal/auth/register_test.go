package auth

import (
	"context"
	"testing"

	"github.com/pestilink/pestilink-backend/pkg/config"
	"github.com/pestilink/pestilink-backend/pkg/db"
	"github.com/pestilink/pestilink-backend/pkg/enums"
	pkgerrors "github.com/pestilink/pestilink-backend/pkg/errors"
	"github.com/pestilink/pestilink-backend/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegisterTestDB(t *testing.T) *db.Client {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		DSN:    "file::memory:?cache=shared&_busy_timeout=5000",
		Driver: "sqlite",
	}, nil)
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, client.DB().Exec(users).Error)

	t.Cleanup(func() {
		client.DB().Exec("DELETE FROM users")
		client.Close()
	})
	return client
}

func testRegisterPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    16 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestRegister_CreatesFarmer(t *testing.T) {
	client := setupRegisterTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: testRegisterPasswordConfig(),
	})
	require.NoError(t, err)

	created, err := svc.Register(context.Background(), RegisterRequest{
		Username: "juan.delacruz",
		Email:    "Juan@Example.com",
		Password: "hunter2hunter2",
		Role:     enums.UserRoleFarmer,
	})
	require.NoError(t, err)
	assert.Equal(t, "juan@example.com", created.Email, "email is stored lowercased")
	assert.Equal(t, enums.UserRoleFarmer, created.Role)
	assert.True(t, created.IsActive)

	var hash string
	require.NoError(t, client.DB().Raw("SELECT password_hash FROM users WHERE email = ?", "juan@example.com").Scan(&hash).Error)
	ok, err := security.VerifyPassword("hunter2hunter2", hash)
	require.NoError(t, err)
	assert.True(t, ok, "stored hash must verify")
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	client := setupRegisterTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: testRegisterPasswordConfig(),
	})
	require.NoError(t, err)

	req := RegisterRequest{
		Username: "juan.delacruz",
		Email:    "juan@example.com",
		Password: "hunter2hunter2",
		Role:     enums.UserRoleFarmer,
	}
	_, err = svc.Register(context.Background(), req)
	require.NoError(t, err)

	req.Username = "someone.else"
	_, err = svc.Register(context.Background(), req)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestRegister_InvalidRole(t *testing.T) {
	client := setupRegisterTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: testRegisterPasswordConfig(),
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Username: "juan.delacruz",
		Email:    "juan@example.com",
		Password: "hunter2hunter2",
		Role:     "admin",
	})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store_rating_v1/internal/api/dto"
	"store_rating_v1/internal/model"
)

func TestSeedService_Run(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seeder := NewSeedService(env.userRepo, nil)

	admin := SeedAccount{
		Name: "admin1", Email: "admin@og.com", Password: "admin@123",
		Address: "Central Admin Office, City 123", Role: model.UserRoleAdmin,
	}
	accounts := append([]SeedAccount{admin}, DemoAccounts...)

	created, err := seeder.Run(ctx, accounts...)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	// 再次执行不重复创建
	created, err = seeder.Run(ctx, accounts...)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	count, err := env.userRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	resp, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "admin@og.com", Password: "admin@123"})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.User.Role)
}

func TestSeedService_InvalidAccount(t *testing.T) {
	env := newTestEnv(t)
	seeder := NewSeedService(env.userRepo, nil)

	_, err := seeder.Run(context.Background(), SeedAccount{
		Name: "admin1", Email: "admin@og.com", Password: "weak", Role: model.UserRoleAdmin,
	})
	assert.True(t, errors.Is(err, ErrPasswordRule))
}

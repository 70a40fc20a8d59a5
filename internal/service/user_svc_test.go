package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store_rating_v1/internal/api/dto"
	"store_rating_v1/internal/model"
)

func TestUserService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "Alice Admin", "alice@example.com", model.UserRoleAdmin)
	env.createUser(t, "Bob Normal", "bob@example.com", model.UserRoleNormal)
	env.createUser(t, "Carol Owner", "carol@example.com", model.UserRoleStoreOwner)

	t.Run("role 合法时过滤", func(t *testing.T) {
		resp, err := env.users.List(ctx, &dto.UserListRequest{Role: "store_owner"})
		require.NoError(t, err)
		require.Len(t, resp.Users, 1)
		assert.Equal(t, "Carol Owner", resp.Users[0].Name)
	})

	t.Run("role 非法时忽略", func(t *testing.T) {
		resp, err := env.users.List(ctx, &dto.UserListRequest{Role: "bogus"})
		require.NoError(t, err)
		assert.Len(t, resp.Users, 3)
		assert.Equal(t, int64(3), resp.Pagination.Total)
		assert.Equal(t, "totalUsers", resp.Pagination.TotalKey)
	})

	t.Run("邮箱模糊匹配并按姓名排序", func(t *testing.T) {
		resp, err := env.users.List(ctx, &dto.UserListRequest{Email: "EXAMPLE", Sort: "name", Order: "ASC"})
		require.NoError(t, err)
		require.Len(t, resp.Users, 3)
		assert.Equal(t, "Alice Admin", resp.Users[0].Name)
		assert.Equal(t, "Carol Owner", resp.Users[2].Name)
	})

	t.Run("非法排序字段回退默认", func(t *testing.T) {
		resp, err := env.users.List(ctx, &dto.UserListRequest{Sort: "password_hash; DROP TABLE users"})
		require.NoError(t, err)
		assert.Len(t, resp.Users, 3)
	})

	t.Run("非法分页参数回退默认", func(t *testing.T) {
		resp, err := env.users.List(ctx, &dto.UserListRequest{Page: "0", Limit: "abc"})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Pagination.CurrentPage)
		assert.Equal(t, 1, resp.Pagination.TotalPages)
	})
}

func TestUserService_Detail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Carol Owner", "carol@example.com", model.UserRoleStoreOwner)
	bob := env.createUser(t, "Bob Normal", "bob@example.com", model.UserRoleNormal)
	dave := env.createUser(t, "Dave Normal", "dave@example.com", model.UserRoleNormal)

	info, err := env.users.Detail(ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, info.StoreRating, "店主返回 store_rating")
	assert.InDelta(t, 0, *info.StoreRating, 0.001)

	s1 := env.createStore(t, "First Shop", owner.ID, time.Now())
	s2 := env.createStore(t, "Second Shop", owner.ID, time.Now())
	env.createRating(t, s1.ID, bob.ID, 5, model.RatingStatusActive)
	env.createRating(t, s2.ID, bob.ID, 2, model.RatingStatusActive)
	env.createRating(t, s2.ID, dave.ID, 1, model.RatingStatusRejected)

	info, err = env.users.Detail(ctx, owner.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, *info.StoreRating, 0.001)

	info, err = env.users.Detail(ctx, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, info.StoreRating)

	_, err = env.users.Detail(ctx, 0)
	assert.True(t, errors.Is(err, ErrInvalidUserID))
	_, err = env.users.Detail(ctx, 999)
	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUserService_CreateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	info, err := env.users.CreateUser(ctx, &dto.CreateUserRequest{
		Name: "Store Owner", Email: "owner@example.com", Password: "owner@123", Role: "store_owner",
	})
	require.NoError(t, err)
	assert.Equal(t, "store_owner", info.Role)

	stored, err := env.userRepo.GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "owner@123", stored.PasswordHash, "只保存哈希")

	tests := []struct {
		name string
		req  dto.CreateUserRequest
		want error
	}{
		{"角色非法", dto.CreateUserRequest{Name: "Someone", Email: "a@b.co", Password: "abc@1234", Role: "root"}, ErrInvalidRole},
		{"姓名过短", dto.CreateUserRequest{Name: "A", Email: "a@b.co", Password: "abc@1234", Role: "admin"}, ErrUserNameLength},
		{"邮箱格式", dto.CreateUserRequest{Name: "Someone", Email: "a@b", Password: "abc@1234", Role: "admin"}, ErrInvalidEmail},
		{"密码缺少特殊字符", dto.CreateUserRequest{Name: "Someone", Email: "a@b.co", Password: "abcd1234", Role: "admin"}, ErrPasswordRule},
		{"密码缺少小写字母", dto.CreateUserRequest{Name: "Someone", Email: "a@b.co", Password: "ABCD@1234", Role: "admin"}, ErrPasswordRule},
		{"邮箱重复", dto.CreateUserRequest{Name: "Someone", Email: "owner@example.com", Password: "abc@1234", Role: "admin"}, ErrEmailExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.CreateUser(ctx, &tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestUserService_Search(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "Zed Smith", "zed@example.com", model.UserRoleNormal)
	env.createUser(t, "Amy Smith", "amy@example.com", model.UserRoleNormal)
	env.createUser(t, "Bob Jones", "bob@example.com", model.UserRoleNormal)

	resp, err := env.users.Search(ctx, "smith")
	require.NoError(t, err)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "Amy Smith", resp.Results[0].Name)
	assert.Equal(t, "Zed Smith", resp.Results[1].Name)
	assert.Equal(t, "smith", resp.SearchTerm)

	_, err = env.users.Search(ctx, "")
	assert.True(t, errors.Is(err, ErrSearchQueryRequired))
}

func TestUserService_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Carol Owner", "carol@example.com", model.UserRoleStoreOwner)
	bob := env.createUser(t, "Bob Normal", "bob@example.com", model.UserRoleNormal)
	store := env.createStore(t, "First Shop", owner.ID, time.Now())
	env.createRating(t, store.ID, bob.ID, 5, model.RatingStatusPending)

	resp, err := env.users.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.DashboardData{TotalUsers: 2, TotalStores: 1, TotalRatings: 1}, resp.DashboardData)
}

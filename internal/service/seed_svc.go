package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"store_rating_v1/internal/model"
	"store_rating_v1/internal/repository"
)

// SeedAccount 启动时确保存在的账号
type SeedAccount struct {
	Name     string
	Email    string
	Password string
	Address  string
	Role     model.UserRole
}

// DemoAccounts 本地演示账号
var DemoAccounts = []SeedAccount{
	{Name: "user1", Email: "user56@og.com", Password: "user@123", Address: "Central Admin Office, City 123", Role: model.UserRoleNormal},
	{Name: "owner1", Email: "owner1@og.com", Password: "owner@123", Address: "Central Admin Office, City 123", Role: model.UserRoleStoreOwner},
}

// ==================== SeedService 初始化数据 ====================

// SeedService 初始化管理员与演示账号
type SeedService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

// NewSeedService 创建初始化服务
func NewSeedService(userRepo repository.UserRepository, log *zap.Logger) *SeedService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SeedService{userRepo: userRepo, log: log}
}

// Run 依次创建账号，邮箱已存在的跳过，返回新建数量
func (s *SeedService) Run(ctx context.Context, accounts ...SeedAccount) (int, error) {
	created := 0
	for _, acc := range accounts {
		exists, err := s.userRepo.ExistsByEmail(ctx, acc.Email)
		if err != nil {
			return created, fmt.Errorf("check seed %s: %w", acc.Email, err)
		}
		if exists {
			s.log.Debug("seed account exists", zap.String("email", acc.Email))
			continue
		}

		user, err := createUser(ctx, s.userRepo, acc.Name, acc.Email, acc.Password, acc.Address, acc.Role)
		if err != nil {
			// 并发启动的另一个实例已创建
			if KindOf(err) == KindConflict {
				continue
			}
			return created, fmt.Errorf("seed %s: %w", acc.Email, err)
		}
		created++
		s.log.Info("seed account created",
			zap.Int64("id", user.ID),
			zap.String("email", user.Email),
			zap.String("role", string(user.Role)),
		)
	}
	return created, nil
}

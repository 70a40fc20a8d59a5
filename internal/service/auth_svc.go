package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"store_rating_v1/internal/api/dto"
	"store_rating_v1/internal/middleware"
	"store_rating_v1/internal/model"
	"store_rating_v1/internal/repository"
)

// ==================== AuthService 认证服务 ====================

// AuthService 登录、注册、修改密码
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Login 用户登录，返回 token 与用户信息
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrCredentialsRequired
	}

	// 查找用户
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 生成 Token
	token, _, err := middleware.GenerateAccessToken(user.ID, user.Email, string(user.Role), user.Name)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &dto.LoginResponse{
		Token: token,
		User:  toUserInfo(user),
	}, nil
}

// Register 自助注册，角色固定为 normal_user
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserInfo, error) {
	user, err := createUser(ctx, s.userRepo, req.Name, req.Email, req.Password, req.Address, model.UserRoleNormal)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

// ChangePassword 修改密码
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if !dto.ValidPassword(req.NewPassword) {
		return ErrPasswordRule
	}

	// 获取用户
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user %d: %w", userID, err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	// 验证旧密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrInvalidOldPassword
	}

	// 加密新密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// 更新密码
	return s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword))
}

// GetProfile 获取当前用户信息
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserInfo(user), nil
}

// ==================== 公共 ====================

// createUser 校验并创建用户，注册与管理员创建共用
func createUser(ctx context.Context, repo repository.UserRepository, name, email, password, address string, role model.UserRole) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if n := len([]rune(name)); n < 2 || n > 60 {
		return nil, ErrUserNameLength
	}
	if !dto.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !dto.ValidPassword(password) {
		return nil, ErrPasswordRule
	}
	if len([]rune(address)) > 400 {
		return nil, ErrAddressTooLong
	}

	// 检查邮箱是否存在
	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Address:      address,
		Role:         role,
	}
	if err := repo.Create(ctx, user); err != nil {
		// 并发注册同一邮箱
		if repository.IsUniqueViolation(err) {
			return nil, ConflictError(ErrEmailExists.Message, err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Address:   user.Address,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

// 业务错误
var (
	ErrCredentialsRequired = ValidationError("Email and password are required")
	ErrInvalidCredentials  = newError(KindAuthentication, "Invalid credentials")
	ErrInvalidRole         = ValidationError("Invalid role")
	ErrUserNameLength      = ValidationError("Name must be between 2 and 60 characters")
	ErrPasswordRule        = ValidationError(dto.PasswordRuleMessage)
	ErrPasswordMismatch    = ValidationError("New password and confirmation do not match")
	ErrInvalidOldPassword  = ValidationError("Current password is incorrect")
	ErrEmailExists         = newError(KindConflict, "Email already exists")
)

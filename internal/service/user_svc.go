package service

import (
	"context"
	"fmt"
	"strings"

	"store_rating_v1/internal/api/dto"
	"store_rating_v1/internal/model"
	"store_rating_v1/internal/repository"
	"store_rating_v1/pkg/listing"
)

// UserSearchLimit 用户搜索最多返回条数
const UserSearchLimit = 50

// ==================== UserService 用户管理（管理员） ====================

// UserService 用户管理
type UserService struct {
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

// NewUserService 创建用户服务
func NewUserService(
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	ratingRepo repository.RatingRepository,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

// CreateUser 管理员创建任意角色的用户
func (s *UserService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserInfo, error) {
	user, err := createUser(ctx, s.userRepo, req.Name, req.Email, req.Password, req.Address, model.UserRole(req.Role))
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

// List 用户列表，role 非法时不作为过滤条件
func (s *UserService) List(ctx context.Context, req *dto.UserListRequest) (*dto.UserListResponse, error) {
	page := listing.ParsePage(req.Page, req.Limit)
	users, total, err := s.userRepo.List(ctx, repository.UserFilter{
		Predicates: userListPredicates(req),
		Sort:       req.Sort,
		Order:      req.Order,
		Page:       page,
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	list := make([]*dto.UserInfo, 0, len(users))
	for i := range users {
		list = append(list, toUserInfo(&users[i]))
	}
	return &dto.UserListResponse{
		Users:      list,
		Pagination: page.Paginate(total, "totalUsers"),
	}, nil
}

// Detail 用户详情，店主额外返回名下门店的平均分
func (s *UserService) Detail(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	info := toUserInfo(user)
	if user.Role == model.UserRoleStoreOwner {
		avg, err := s.storeRepo.OwnerAverage(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("owner average %d: %w", user.ID, err)
		}
		info.StoreRating = &avg
	}
	return info, nil
}

// Search 按姓名 / 邮箱 / 地址搜索用户
func (s *UserService) Search(ctx context.Context, q string) (*dto.UserSearchResponse, error) {
	if strings.TrimSpace(q) == "" {
		return nil, ErrSearchQueryRequired
	}
	users, err := s.userRepo.Search(ctx, q, UserSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	results := make([]*dto.UserInfo, 0, len(users))
	for i := range users {
		results = append(results, toUserInfo(&users[i]))
	}
	return &dto.UserSearchResponse{
		SearchTerm: q,
		Results:    results,
		Count:      len(results),
	}, nil
}

// Dashboard 用户 / 门店 / 评分总数，评分包含所有状态
func (s *UserService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	stores, err := s.storeRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count stores: %w", err)
	}
	ratings, err := s.ratingRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count ratings: %w", err)
	}
	return &dto.DashboardResponse{
		DashboardData: dto.DashboardData{
			TotalUsers:   users,
			TotalStores:  stores,
			TotalRatings: ratings,
		},
	}, nil
}

// 业务错误
var (
	ErrInvalidUserID = ValidationError("Invalid user ID provided.")
	ErrUserNotFound  = newError(KindNotFound, "User not found.")
)

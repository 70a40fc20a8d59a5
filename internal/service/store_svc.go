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

// RecentRatingsPerStore 店主门店列表中每个门店附带的最近评分条数
const RecentRatingsPerStore = 5

// ==================== StoreService 门店服务 ====================

// StoreService 门店服务
type StoreService struct {
	storeRepo  repository.StoreRepository
	userRepo   repository.UserRepository
	ratingRepo repository.RatingRepository
}

// NewStoreService 创建门店服务
func NewStoreService(
	storeRepo repository.StoreRepository,
	userRepo repository.UserRepository,
	ratingRepo repository.RatingRepository,
) *StoreService {
	return &StoreService{
		storeRepo:  storeRepo,
		userRepo:   userRepo,
		ratingRepo: ratingRepo,
	}
}

// ==================== 创建 ====================

// CreateByAdmin 管理员为指定店主创建门店
func (s *StoreService) CreateByAdmin(ctx context.Context, req *dto.AdminCreateStoreRequest) (*dto.StoreInfo, error) {
	if req.OwnerID <= 0 {
		return nil, ErrInvalidOwnerID
	}
	return s.create(ctx, req.OwnerID, req.Name, req.Address, req.Email)
}

// CreateByOwner 店主为自己创建门店
func (s *StoreService) CreateByOwner(ctx context.Context, ownerID int64, req *dto.CreateStoreRequest) (*dto.StoreInfo, error) {
	return s.create(ctx, ownerID, req.Name, req.Address, req.Email)
}

func (s *StoreService) create(ctx context.Context, ownerID int64, name, address, email string) (*dto.StoreInfo, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < 2 || n > 100 {
		return nil, ErrStoreNameLength
	}
	if len([]rune(address)) > 400 {
		return nil, ErrAddressTooLong
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get owner %d: %w", ownerID, err)
	}
	if owner == nil || owner.Role != model.UserRoleStoreOwner {
		return nil, ErrOwnerNotStoreOwner
	}

	store := &model.Store{
		Name:    name,
		Address: address,
		OwnerID: ownerID,
	}

	// 邮箱为空存 NULL
	if email = strings.TrimSpace(email); email != "" {
		if !dto.ValidEmail(email) {
			return nil, ErrInvalidEmail
		}
		exists, err := s.storeRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("check store email: %w", err)
		}
		if exists {
			return nil, ErrStoreEmailExists
		}
		store.Email = &email
	}

	if err := s.storeRepo.Create(ctx, store); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ConflictError(ErrStoreEmailExists.Message, err)
		}
		return nil, fmt.Errorf("create store: %w", err)
	}

	return &dto.StoreInfo{
		ID:        store.ID,
		Name:      store.Name,
		Address:   store.Address,
		Email:     store.Email,
		OwnerID:   store.OwnerID,
		CreatedAt: store.CreatedAt,
	}, nil
}

// ==================== 列表 ====================

// ListForAdmin 管理员门店列表
func (s *StoreService) ListForAdmin(ctx context.Context, req *dto.StoreListRequest) (*dto.StoreListResponse, error) {
	return s.list(ctx, req, repository.StoreFilter{View: repository.StoreViewAdmin})
}

// ListForUser 普通用户门店列表，附带本人评分
func (s *StoreService) ListForUser(ctx context.Context, userID int64, req *dto.StoreListRequest) (*dto.StoreListResponse, error) {
	return s.list(ctx, req, repository.StoreFilter{
		View:     repository.StoreViewUser,
		ViewerID: userID,
	})
}

// ListForOwner 店主自己的门店，附带评分条数和最近评分
func (s *StoreService) ListForOwner(ctx context.Context, ownerID int64, req *dto.StoreListRequest) (*dto.StoreListResponse, error) {
	resp, err := s.list(ctx, req, repository.StoreFilter{
		View:       repository.StoreViewOwner,
		OwnerScope: ownerID,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Stores) == 0 {
		return resp, nil
	}

	ids := make([]int64, 0, len(resp.Stores))
	for _, st := range resp.Stores {
		ids = append(ids, st.ID)
	}
	recent, err := s.ratingRepo.RecentByStores(ctx, ids, RecentRatingsPerStore)
	if err != nil {
		return nil, fmt.Errorf("recent ratings: %w", err)
	}
	for _, st := range resp.Stores {
		st.RecentRatings = toRatingInfos(recent[st.ID])
	}
	return resp, nil
}

func (s *StoreService) list(ctx context.Context, req *dto.StoreListRequest, filter repository.StoreFilter) (*dto.StoreListResponse, error) {
	filter.Predicates = storeListPredicates(req, filter.View)
	filter.Sort = req.Sort
	filter.Order = req.Order
	filter.Page = listing.ParsePage(req.Page, req.Limit)

	rows, total, err := s.storeRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}

	withCount := filter.View == repository.StoreViewOwner
	stores := make([]*dto.StoreInfo, 0, len(rows))
	for i := range rows {
		info := toStoreInfo(&rows[i], withCount)
		info.ViewerScoped = filter.View == repository.StoreViewUser
		stores = append(stores, info)
	}

	return &dto.StoreListResponse{
		Stores:     stores,
		Pagination: filter.Page.Paginate(total, "totalStores"),
	}, nil
}

// ==================== 详情 / 搜索 ====================

// Detail 门店详情：店主名与平均分
func (s *StoreService) Detail(ctx context.Context, storeID int64) (*dto.StoreInfo, error) {
	if storeID <= 0 {
		return nil, ErrInvalidStoreID
	}
	row, err := s.storeRepo.Detail(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("store detail %d: %w", storeID, err)
	}
	if row == nil {
		return nil, ErrStoreNotFound
	}
	return toStoreInfo(row, false), nil
}

// Search 门店搜索
// useFullText 在不支持全文检索的数据库上退化为模糊匹配，searchType 反映实际方式
func (s *StoreService) Search(ctx context.Context, req *dto.StoreSearchRequest) (*dto.StoreSearchResponse, error) {
	if strings.TrimSpace(req.Q) == "" {
		return nil, ErrSearchQueryRequired
	}

	rows, fullText, err := s.storeRepo.Search(ctx, req.Q, req.UseFullText)
	if err != nil {
		return nil, fmt.Errorf("search stores: %w", err)
	}

	results := make([]*dto.StoreInfo, 0, len(rows))
	for i := range rows {
		results = append(results, toStoreInfo(&rows[i], false))
	}

	searchType := dto.SearchTypeSimple
	if fullText {
		searchType = dto.SearchTypeFullText
	}
	return &dto.StoreSearchResponse{
		SearchTerm: req.Q,
		SearchType: searchType,
		Results:    results,
		Count:      len(results),
	}, nil
}

// OwnerStoreDetail 店主查看自己的门店：统计信息与该门店的 active 评分
// 门店不存在或不属于当前店主都返回 404
func (s *StoreService) OwnerStoreDetail(ctx context.Context, ownerID, storeID int64, req *dto.RatingListRequest) (*dto.OwnerStoreDetailResponse, error) {
	if storeID <= 0 {
		return nil, ErrInvalidStoreID
	}

	row, err := s.storeRepo.Detail(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("store detail %d: %w", storeID, err)
	}
	if row == nil || row.OwnerID != ownerID {
		return nil, ErrStoreNotFound
	}

	// 门店由路径决定，忽略查询参数中的 store_id
	q := *req
	q.StoreID = ""
	preds, err := ratingListPredicates(&q, repository.RatingViewOwner)
	if err != nil {
		return nil, err
	}

	page := listing.ParsePage(q.Page, q.Limit)
	ratings, total, err := s.ratingRepo.List(ctx, repository.RatingFilter{
		View:       repository.RatingViewOwner,
		Predicates: preds,
		OwnerScope: ownerID,
		StoreScope: storeID,
		Sort:       q.Sort,
		Order:      q.Order,
		Page:       page,
	})
	if err != nil {
		return nil, fmt.Errorf("store ratings %d: %w", storeID, err)
	}

	return &dto.OwnerStoreDetailResponse{
		Store: toStoreInfo(row, false),
		Metrics: dto.StoreMetrics{
			AverageRating:     row.AverageRating,
			TotalRatingsCount: row.TotalRatingsCount,
		},
		Ratings:    toRatingInfos(ratings),
		Pagination: page.Paginate(total, "totalRatings"),
	}, nil
}

// ==================== 转换 ====================

func toStoreInfo(row *repository.StoreRow, withCount bool) *dto.StoreInfo {
	avg := row.AverageRating
	info := &dto.StoreInfo{
		ID:            row.ID,
		Name:          row.Name,
		Address:       row.Address,
		Email:         row.Email,
		OwnerID:       row.OwnerID,
		OwnerName:     row.OwnerName,
		CreatedAt:     row.CreatedAt,
		AverageRating: &avg,
		UserRating:    row.UserRating,
	}
	if withCount {
		count := row.TotalRatingsCount
		info.TotalRatingsCount = &count
	}
	return info
}

// 业务错误
var (
	ErrInvalidStoreID      = ValidationError("Invalid store ID provided.")
	ErrInvalidOwnerID      = ValidationError("owner_id must be a positive integer")
	ErrStoreNameLength     = ValidationError("Store name must be between 2 and 100 characters")
	ErrAddressTooLong      = ValidationError("Address cannot exceed 400 characters")
	ErrOwnerNotStoreOwner  = ValidationError("Owner must exist and be a store owner")
	ErrInvalidEmail        = ValidationError("Invalid email format")
	ErrSearchQueryRequired = ValidationError("A non-empty search query (q) is required.")
	ErrStoreNotFound       = newError(KindNotFound, "Store not found.")
	ErrStoreEmailExists    = newError(KindConflict, "Store email already exists")
)

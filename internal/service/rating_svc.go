package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"store_rating_v1/internal/api/dto"
	"store_rating_v1/internal/event"
	"store_rating_v1/internal/model"
	"store_rating_v1/internal/repository"
	"store_rating_v1/pkg/listing"
)

// ==================== RatingService 评分服务 ====================

// RatingService 评分提交、修改与列表
type RatingService struct {
	ratingRepo repository.RatingRepository
	storeRepo  repository.StoreRepository
	publisher  event.Publisher
	log        *zap.Logger
}

// NewRatingService 创建评分服务
func NewRatingService(
	ratingRepo repository.RatingRepository,
	storeRepo repository.StoreRepository,
	publisher event.Publisher,
	log *zap.Logger,
) *RatingService {
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &RatingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
		publisher:  publisher,
		log:        log,
	}
}

func validScore(n int) bool {
	return n >= model.MinScore && n <= model.MaxScore
}

// ==================== 提交 / 修改 ====================

// Submit 提交评分
// 同一用户对同一门店重复提交由唯一索引拦截，返回冲突
func (s *RatingService) Submit(ctx context.Context, userID, storeID int64, req *dto.SubmitRatingRequest) (*dto.RatingInfo, error) {
	if storeID <= 0 {
		return nil, ErrInvalidStoreID
	}
	if !req.Score.Set || !req.Score.Valid || !validScore(req.Score.Value) {
		return nil, ErrScoreRequired
	}

	// 未传或 null 时存空串
	text := ""
	if req.Text.Set {
		if !req.Text.Valid {
			return nil, ErrTextNotString
		}
		if req.Text.Value != nil {
			text = *req.Text.Value
		}
	}

	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("get store %d: %w", storeID, err)
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}

	rating := &model.Rating{
		StoreID: storeID,
		UserID:  userID,
		Score:   req.Score.Value,
		Text:    &text,
		Status:  model.RatingStatusActive,
	}
	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ConflictError(ErrAlreadyRated.Message, err)
		}
		return nil, fmt.Errorf("create rating: %w", err)
	}

	s.publish(event.SubjectRatingSubmitted, rating)
	return toRatingInfo(rating), nil
}

// Edit 修改本人评分
// 归属校验与更新是同一条语句，评分不存在和不属于当前用户都返回 404
func (s *RatingService) Edit(ctx context.Context, userID, ratingID int64, req *dto.EditRatingRequest) (*dto.RatingInfo, error) {
	if ratingID <= 0 {
		return nil, ErrInvalidRatingID
	}

	fields := make(map[string]interface{}, 3)
	if req.Score.Set {
		if !req.Score.Valid || !validScore(req.Score.Value) {
			return nil, ErrInvalidScore
		}
		fields["score"] = req.Score.Value
	}
	if req.Text.Set {
		if !req.Text.Valid {
			return nil, ErrTextNotStringOrNull
		}
		if req.Text.Value == nil {
			fields["text"] = nil
		} else {
			fields["text"] = *req.Text.Value
		}
	}
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}

	ok, err := s.ratingRepo.UpdateOwned(ctx, ratingID, userID, fields)
	if err != nil {
		return nil, fmt.Errorf("update rating %d: %w", ratingID, err)
	}
	if !ok {
		return nil, ErrRatingNotFound
	}

	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		return nil, fmt.Errorf("reload rating %d: %w", ratingID, err)
	}
	if rating == nil {
		return nil, ErrRatingNotFound
	}

	s.publish(event.SubjectRatingEdited, rating)
	return toRatingInfo(rating), nil
}

// publish 事件发布失败只记录日志
func (s *RatingService) publish(subject string, rating *model.Rating) {
	err := s.publisher.PublishRating(subject, event.RatingEvent{
		EventType:  subject,
		RatingID:   rating.RatingID,
		StoreID:    rating.StoreID,
		UserID:     rating.UserID,
		Score:      rating.Score,
		OccurredAt: time.Now(),
	})
	if err != nil && s.log != nil {
		s.log.Warn("评分事件发布失败",
			zap.String("subject", subject),
			zap.Int64("rating_id", rating.RatingID),
			zap.Error(err),
		)
	}
}

// ==================== 列表 ====================

// ListForUser 当前用户的 active 评分
func (s *RatingService) ListForUser(ctx context.Context, userID int64, req *dto.RatingListRequest) (*dto.RatingListResponse, error) {
	return s.list(ctx, req, repository.RatingFilter{
		View:      repository.RatingViewUser,
		UserScope: userID,
	})
}

// ListForAdmin 管理员查看全部评分
func (s *RatingService) ListForAdmin(ctx context.Context, req *dto.RatingListRequest) (*dto.RatingListResponse, error) {
	return s.list(ctx, req, repository.RatingFilter{View: repository.RatingViewAdmin})
}

// ListForOwner 店主名下所有门店的 active 评分
func (s *RatingService) ListForOwner(ctx context.Context, ownerID int64, req *dto.RatingListRequest) (*dto.RatingListResponse, error) {
	return s.list(ctx, req, repository.RatingFilter{
		View:       repository.RatingViewOwner,
		OwnerScope: ownerID,
	})
}

func (s *RatingService) list(ctx context.Context, req *dto.RatingListRequest, filter repository.RatingFilter) (*dto.RatingListResponse, error) {
	preds, err := ratingListPredicates(req, filter.View)
	if err != nil {
		return nil, err
	}

	filter.Predicates = preds
	filter.Sort = req.Sort
	filter.Order = req.Order
	filter.Page = listing.ParsePage(req.Page, req.Limit)

	rows, total, err := s.ratingRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	return &dto.RatingListResponse{
		Ratings:    toRatingInfos(rows),
		Pagination: filter.Page.Paginate(total, "totalRatings"),
	}, nil
}

// ==================== 转换 ====================

func toRatingInfo(r *model.Rating) *dto.RatingInfo {
	return &dto.RatingInfo{
		RatingID:   r.RatingID,
		StoreID:    r.StoreID,
		UserID:     r.UserID,
		Score:      r.Score,
		Text:       r.Text,
		LikesCount: r.LikesCount,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func rowToRatingInfo(r *repository.RatingRow) *dto.RatingInfo {
	return &dto.RatingInfo{
		RatingID:   r.RatingID,
		StoreID:    r.StoreID,
		UserID:     r.UserID,
		Score:      r.Score,
		Text:       r.Text,
		LikesCount: r.LikesCount,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		StoreName:  r.StoreName,
		UserName:   r.UserName,
		UserEmail:  r.UserEmail,
	}
}

func toRatingInfos(rows []repository.RatingRow) []*dto.RatingInfo {
	list := make([]*dto.RatingInfo, 0, len(rows))
	for i := range rows {
		list = append(list, rowToRatingInfo(&rows[i]))
	}
	return list
}

// 业务错误
var (
	ErrInvalidRatingID     = ValidationError("Invalid rating ID provided.")
	ErrScoreRequired       = ValidationError("Score is required and must be an integer between 1 and 5.")
	ErrInvalidScore        = ValidationError("Score must be an integer between 1 and 5.")
	ErrTextNotString       = ValidationError("Text must be a string.")
	ErrTextNotStringOrNull = ValidationError("Text must be a string or null.")
	ErrNothingToUpdate     = ValidationError("At least one field (score or text) must be provided for update.")
	ErrRatingNotFound      = newError(KindNotFound, "Rating not found.")
	ErrAlreadyRated        = newError(KindConflict, "You have already submitted a rating for this store.")
)

package service

import (
	"strconv"
	"strings"

	"store_rating_v1/internal/api/dto"
	"store_rating_v1/internal/model"
	"store_rating_v1/internal/repository"
	"store_rating_v1/pkg/listing"
)

// ==================== 列表过滤参数解析 ====================
// 各接口对非法过滤值的处理不同：
//   用户列表 role 非法时忽略
//   门店列表 owner_id 非法时忽略
//   评分列表 store_id / user_id / score / status 非法时返回 400

func contains(field, value string) listing.Predicate {
	return listing.Predicate{Field: field, Op: listing.OpContains, Value: value}
}

func equal(field string, value interface{}) listing.Predicate {
	return listing.Predicate{Field: field, Op: listing.OpEqual, Value: value}
}

// positiveID 严格解析正整数，"3abc"、"0"、"-1" 均不合法
func positiveID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func parseScore(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < model.MinScore || n > model.MaxScore {
		return 0, false
	}
	return n, true
}

func appendContains(preds []listing.Predicate, field, value string) []listing.Predicate {
	if strings.TrimSpace(value) == "" {
		return preds
	}
	return append(preds, contains(field, value))
}

// userListPredicates 管理员用户列表
func userListPredicates(req *dto.UserListRequest) []listing.Predicate {
	var preds []listing.Predicate
	preds = appendContains(preds, "name", req.Name)
	preds = appendContains(preds, "email", req.Email)
	preds = appendContains(preds, "address", req.Address)

	if role := model.UserRole(req.Role); role.Valid() {
		preds = append(preds, equal("role", string(role)))
	}
	return preds
}

// storeListPredicates 门店列表，email / owner_id 只在管理员视角生效
func storeListPredicates(req *dto.StoreListRequest, view repository.StoreView) []listing.Predicate {
	var preds []listing.Predicate
	preds = appendContains(preds, "name", req.Name)
	preds = appendContains(preds, "address", req.Address)

	if view != repository.StoreViewAdmin {
		return preds
	}
	preds = appendContains(preds, "email", req.Email)
	if id, ok := positiveID(req.OwnerID); ok {
		preds = append(preds, equal("owner_id", id))
	}
	return preds
}

// ratingListPredicates 评分列表，任一过滤值非法即返回校验错误
// user_id / status 只在管理员视角解析
func ratingListPredicates(req *dto.RatingListRequest, view repository.RatingView) ([]listing.Predicate, error) {
	var preds []listing.Predicate

	if req.StoreID != "" {
		id, ok := positiveID(req.StoreID)
		if !ok {
			return nil, ErrInvalidStoreFilter
		}
		preds = append(preds, equal("store_id", id))
	}

	if view == repository.RatingViewAdmin && req.UserID != "" {
		id, ok := positiveID(req.UserID)
		if !ok {
			return nil, ErrInvalidUserFilter
		}
		preds = append(preds, equal("user_id", id))
	}

	if req.Score != "" {
		score, ok := parseScore(req.Score)
		if !ok {
			return nil, ErrInvalidScoreFilter
		}
		preds = append(preds, equal("score", score))
	}

	if view == repository.RatingViewAdmin && req.Status != "" {
		status := model.RatingStatus(req.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatusFilter
		}
		preds = append(preds, equal("status", string(status)))
	}

	return preds, nil
}

// 过滤参数错误
var (
	ErrInvalidStoreFilter  = ValidationError("Invalid store_id filter value.")
	ErrInvalidUserFilter   = ValidationError("Invalid user_id filter value.")
	ErrInvalidScoreFilter  = ValidationError("Score filter must be an integer between 1 and 5.")
	ErrInvalidStatusFilter = ValidationError("Invalid status filter value.")
)

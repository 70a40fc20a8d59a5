package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"store_rating_v1/internal/event"
	"store_rating_v1/internal/model"
	"store_rating_v1/internal/repository"
)

// ==================== 测试辅助 ====================

const testPassword = "secret@123"

type testEnv struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
	events     *recordingPublisher

	auth    *AuthService
	users   *UserService
	stores  *StoreService
	ratings *RatingService
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	// :memory: 库按连接隔离，固定单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Store{}, &model.Rating{}))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupServiceTestDB(t)
	env := &testEnv{
		db:         db,
		userRepo:   repository.NewUserRepository(db),
		storeRepo:  repository.NewStoreRepository(db),
		ratingRepo: repository.NewRatingRepository(db),
		events:     &recordingPublisher{},
	}
	env.auth = NewAuthService(env.userRepo)
	env.users = NewUserService(env.userRepo, env.storeRepo, env.ratingRepo)
	env.stores = NewStoreService(env.storeRepo, env.userRepo, env.ratingRepo)
	env.ratings = NewRatingService(env.ratingRepo, env.storeRepo, env.events, nil)
	return env
}

var (
	testHashOnce sync.Once
	testHash     string
)

// passwordHash 测试用低成本哈希
func passwordHash(t *testing.T) string {
	testHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
		require.NoError(t, err)
		testHash = string(h)
	})
	return testHash
}

func (e *testEnv) createUser(t *testing.T, name, email string, role model.UserRole) *model.User {
	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash(t),
		Address:      name + " street",
		Role:         role,
	}
	require.NoError(t, e.userRepo.Create(context.Background(), u))
	return u
}

func (e *testEnv) createStore(t *testing.T, name string, ownerID int64, createdAt time.Time) *model.Store {
	s := &model.Store{
		Name:    name,
		Address: name + " road",
		OwnerID: ownerID,
	}
	s.CreatedAt = createdAt
	require.NoError(t, e.storeRepo.Create(context.Background(), s))
	return s
}

func (e *testEnv) createRating(t *testing.T, storeID, userID int64, score int, status model.RatingStatus) *model.Rating {
	text := ""
	r := &model.Rating{StoreID: storeID, UserID: userID, Score: score, Text: &text, Status: status}
	require.NoError(t, e.ratingRepo.Create(context.Background(), r))
	return r
}

func (e *testEnv) average(t *testing.T, storeID int64) float64 {
	row, err := e.storeRepo.Detail(context.Background(), storeID)
	require.NoError(t, err)
	require.NotNil(t, row)
	return row.AverageRating
}

// ==================== 事件记录 ====================

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.RatingEvent
	err    error
}

func (p *recordingPublisher) PublishRating(subject string, evt event.RatingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	evt.EventType = subject
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

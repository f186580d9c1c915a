package service

import (
	"context"
	"encoding/json"
	"time"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/repository"
	"qbank_review_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	queueCountsCacheKey     = "dashboard:queue_counts"
	classificationsCacheKey = "dashboard:classifications"
	dashboardCacheTTL       = 30 * time.Second
)

// DashboardService 审核看板：各状态题量与分类索引。
// 读多写少，走redis旁路缓存，redis不可用时直接回源
type DashboardService struct {
	Questions *repository.QuestionRepository
	Taxonomy  *repository.TaxonomyRepository
	RDB       *redis.Client
}

func NewDashboardService(questions *repository.QuestionRepository, taxonomy *repository.TaxonomyRepository, rdb *redis.Client) *DashboardService {
	return &DashboardService{Questions: questions, Taxonomy: taxonomy, RDB: rdb}
}

func (s *DashboardService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.RDB == nil {
		return false
	}
	raw, err := s.RDB.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, v interface{}) {
	if s.RDB == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.RDB.Set(ctx, key, raw, dashboardCacheTTL).Err(); err != nil {
		logger.Log.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// QueueCounts 每个工作流状态下的题量
func (s *DashboardService) QueueCounts(ctx context.Context) (map[string]int64, error) {
	var counts map[string]int64
	if s.cacheGet(ctx, queueCountsCacheKey, &counts) {
		return counts, nil
	}

	counts, err := s.Questions.CountByStatus()
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, queueCountsCacheKey, counts)
	return counts, nil
}

// Classifications 分类索引，仅用于检索/报表展示
func (s *DashboardService) Classifications(ctx context.Context) ([]model.Classification, error) {
	var cs []model.Classification
	if s.cacheGet(ctx, classificationsCacheKey, &cs) {
		return cs, nil
	}

	cs, err := s.Taxonomy.ListClassifications()
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, classificationsCacheKey, cs)
	return cs, nil
}

package repository

import (
	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(tx *gorm.DB, q *model.Question) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Create(q).Error
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var q model.Question
	err := r.DB.Where("id = ?", id).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// QuestionFilter 工作队列/检索条件
type QuestionFilter struct {
	Status            model.QuestionStatus
	ExamID            uint
	SubjectID         uint
	TopicID           uint
	AssignedProcessor uint
	AssignedCreator   uint
	AssignedExplainer uint
	CreatedBy         uint
	VisibleOnly       bool
	FlaggedOnly       bool
}

func (r *QuestionRepository) FindMany(f QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	query := r.DB.Model(&model.Question{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.ExamID != 0 {
		query = query.Where("exam_id = ?", f.ExamID)
	}
	if f.SubjectID != 0 {
		query = query.Where("subject_id = ?", f.SubjectID)
	}
	if f.TopicID != 0 {
		query = query.Where("topic_id = ?", f.TopicID)
	}
	if f.AssignedProcessor != 0 {
		query = query.Where("assigned_processor = ?", f.AssignedProcessor)
	}
	if f.AssignedCreator != 0 {
		query = query.Where("assigned_creator = ?", f.AssignedCreator)
	}
	if f.AssignedExplainer != 0 {
		query = query.Where("assigned_explainer = ?", f.AssignedExplainer)
	}
	if f.CreatedBy != 0 {
		query = query.Where("created_by = ?", f.CreatedBy)
	}
	if f.VisibleOnly {
		query = query.Where("is_visible = ? AND status = ?", true, model.StatusCompleted)
	}
	if f.FlaggedOnly {
		query = query.Where("is_flagged = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []model.Question
	offset := (page - 1) * limit
	err := query.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&questions).Error
	return questions, total, err
}

// SaveWithVersion 乐观锁写入：WHERE id=? AND version=读取时的version。
// 版本不匹配说明并发修改，返回 ErrConflict 且不落任何字段。
func (r *QuestionRepository) SaveWithVersion(tx *gorm.DB, q *model.Question) error {
	if tx == nil {
		tx = r.DB
	}

	readVersion := q.Version
	q.Version = readVersion + 1

	res := tx.Model(&model.Question{}).
		Where("id = ? AND version = ?", q.ID, readVersion).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(q)
	if res.Error != nil {
		q.Version = readVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		q.Version = readVersion
		return util.ErrConflict
	}
	return nil
}

func (r *QuestionRepository) AppendHistory(tx *gorm.DB, h *model.QuestionHistory) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Create(h).Error
}

func (r *QuestionRepository) AppendComment(c *model.QuestionComment) error {
	return r.DB.Create(c).Error
}

// ListHistory 按时间倒序，最近的动作排最前
func (r *QuestionRepository) ListHistory(questionID string) ([]model.QuestionHistory, error) {
	var hs []model.QuestionHistory
	err := r.DB.Where("question_id = ?", questionID).
		Order("created_at DESC, id DESC").
		Find(&hs).Error
	return hs, err
}

func (r *QuestionRepository) ListComments(questionID string) ([]model.QuestionComment, error) {
	var cs []model.QuestionComment
	err := r.DB.Where("question_id = ?", questionID).
		Order("created_at DESC, id DESC").
		Find(&cs).Error
	return cs, err
}

// FindVariants 某原题派生出的全部变体
func (r *QuestionRepository) FindVariants(originalID string) ([]model.Question, error) {
	var variants []model.Question
	err := r.DB.Where("original_question_id = ?", originalID).Order("created_at").Find(&variants).Error
	return variants, err
}

// AssignExplainerToSiblings 给同一原题下尚未指派解析人的变体批量指派，
// 已有指派的保持不动（指派只写一次）
func (r *QuestionRepository) AssignExplainerToSiblings(tx *gorm.DB, originalID, excludeID string, explainerID uint) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Model(&model.Question{}).
		Where("original_question_id = ? AND id != ? AND assigned_explainer = 0", originalID, excludeID).
		Updates(map[string]interface{}{
			"assigned_explainer": explainerID,
			"version":            gorm.Expr("version + 1"),
		}).Error
}

// CountByStatus 看板用的各状态题量统计
func (r *QuestionRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.DB.Model(&model.Question{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

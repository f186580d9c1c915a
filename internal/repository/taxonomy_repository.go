package repository

import (
	"qbank_review_backend/internal/model"

	"gorm.io/gorm"
)

type TaxonomyRepository struct {
	DB *gorm.DB
}

func NewTaxonomyRepository(db *gorm.DB) *TaxonomyRepository {
	return &TaxonomyRepository{DB: db}
}

func (r *TaxonomyRepository) FindExamByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.First(&exam, id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *TaxonomyRepository) FindSubjectByID(id uint) (*model.Subject, error) {
	var subject model.Subject
	err := r.DB.First(&subject, id).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *TaxonomyRepository) FindTopicByID(id uint) (*model.Topic, error) {
	var topic model.Topic
	err := r.DB.First(&topic, id).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *TaxonomyRepository) CreateExam(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

func (r *TaxonomyRepository) CreateSubject(subject *model.Subject) error {
	return r.DB.Create(subject).Error
}

func (r *TaxonomyRepository) CreateTopic(topic *model.Topic) error {
	return r.DB.Create(topic).Error
}

func (r *TaxonomyRepository) ListExams() ([]model.Exam, error) {
	var exams []model.Exam
	err := r.DB.Order("id").Find(&exams).Error
	return exams, err
}

func (r *TaxonomyRepository) ListSubjects() ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.DB.Order("id").Find(&subjects).Error
	return subjects, err
}

func (r *TaxonomyRepository) ListTopicsBySubject(subjectID uint) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.DB.Where("subject_id = ?", subjectID).Order("id").Find(&topics).Error
	return topics, err
}

// UpsertClassification 幂等写入 (考试,科目,主题) 分类索引
func (r *TaxonomyRepository) UpsertClassification(examID, subjectID, topicID uint) error {
	var c model.Classification
	err := r.DB.Where("exam_id = ? AND subject_id = ? AND topic_id = ?", examID, subjectID, topicID).
		First(&c).Error
	if err == nil {
		if c.Status != model.TaxonomyActive {
			return r.DB.Model(&c).Update("status", model.TaxonomyActive).Error
		}
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.DB.Create(&model.Classification{
		ExamID:    examID,
		SubjectID: subjectID,
		TopicID:   topicID,
		Status:    model.TaxonomyActive,
	}).Error
}

func (r *TaxonomyRepository) ListClassifications() ([]model.Classification, error) {
	var cs []model.Classification
	err := r.DB.Order("id").Find(&cs).Error
	return cs, err
}

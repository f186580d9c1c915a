package service

import (
	"errors"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/repository"
	"qbank_review_backend/internal/util"

	"gorm.io/gorm"
)

type TaxonomyService struct {
	Repo *repository.TaxonomyRepository
}

func NewTaxonomyService(repo *repository.TaxonomyRepository) *TaxonomyService {
	return &TaxonomyService{Repo: repo}
}

// ValidateAndClassify 校验 (考试,科目,主题) 三元组并幂等写入分类索引。
// 主题必须归属给定科目。校验失败不产生任何副作用。
func (s *TaxonomyService) ValidateAndClassify(examID, subjectID, topicID uint) error {
	if examID == 0 || subjectID == 0 || topicID == 0 {
		return util.Validationf("examId, subjectId and topicId are required")
	}

	if _, err := s.Repo.FindExamByID(examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NotFoundf("exam %d", examID)
		}
		return err
	}

	if _, err := s.Repo.FindSubjectByID(subjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NotFoundf("subject %d", subjectID)
		}
		return err
	}

	topic, err := s.Repo.FindTopicByID(topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NotFoundf("topic %d", topicID)
		}
		return err
	}

	if topic.SubjectID != subjectID {
		return util.Validationf("topic does not belong to subject")
	}

	return s.Repo.UpsertClassification(examID, subjectID, topicID)
}

type ExamRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code"`
}

type SubjectRequest struct {
	Name string `json:"name" binding:"required"`
}

type TopicRequest struct {
	Name      string `json:"name" binding:"required"`
	SubjectID uint   `json:"subjectId" binding:"required"`
}

func (s *TaxonomyService) CreateExam(req ExamRequest) (*model.Exam, error) {
	exam := &model.Exam{Name: req.Name, Code: req.Code, Status: model.TaxonomyActive}
	if err := s.Repo.CreateExam(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *TaxonomyService) CreateSubject(req SubjectRequest) (*model.Subject, error) {
	subject := &model.Subject{Name: req.Name, Status: model.TaxonomyActive}
	if err := s.Repo.CreateSubject(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *TaxonomyService) CreateTopic(req TopicRequest) (*model.Topic, error) {
	if _, err := s.Repo.FindSubjectByID(req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundf("subject %d", req.SubjectID)
		}
		return nil, err
	}
	topic := &model.Topic{Name: req.Name, SubjectID: req.SubjectID, Status: model.TaxonomyActive}
	if err := s.Repo.CreateTopic(topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *TaxonomyService) ListExams() ([]model.Exam, error) {
	return s.Repo.ListExams()
}

func (s *TaxonomyService) ListSubjects() ([]model.Subject, error) {
	return s.Repo.ListSubjects()
}

func (s *TaxonomyService) ListTopics(subjectID uint) ([]model.Topic, error) {
	return s.Repo.ListTopicsBySubject(subjectID)
}

func (s *TaxonomyService) ListClassifications() ([]model.Classification, error) {
	return s.Repo.ListClassifications()
}

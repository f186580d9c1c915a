package model

type TaxonomyStatus string

const (
	TaxonomyActive   TaxonomyStatus = "active"
	TaxonomyInactive TaxonomyStatus = "inactive"
)

// swagger:model Exam
type Exam struct {
	BaseModel
	Name   string         `gorm:"size:100;not null" json:"name"`
	Code   string         `gorm:"size:50;unique" json:"code"`
	Status TaxonomyStatus `gorm:"size:20;default:'active'" json:"status"`
}

func (Exam) TableName() string {
	return "exams"
}

// swagger:model Subject
type Subject struct {
	BaseModel
	Name   string         `gorm:"size:100;not null" json:"name"`
	Status TaxonomyStatus `gorm:"size:20;default:'active'" json:"status"`
}

func (Subject) TableName() string {
	return "subjects"
}

// Topic 必须归属某个科目，校验题目分类时使用
// swagger:model Topic
type Topic struct {
	BaseModel
	Name      string         `gorm:"size:100;not null" json:"name"`
	SubjectID uint           `gorm:"index;not null" json:"subjectId"`
	Status    TaxonomyStatus `gorm:"size:20;default:'active'" json:"status"`
}

func (Topic) TableName() string {
	return "topics"
}

// Classification (考试,科目,主题) 三元组的冗余索引，仅用于看板/检索，不参与流转判定
// swagger:model Classification
type Classification struct {
	BaseModel
	ExamID    uint           `gorm:"uniqueIndex:idx_class_triple;not null" json:"examId"`
	SubjectID uint           `gorm:"uniqueIndex:idx_class_triple;not null" json:"subjectId"`
	TopicID   uint           `gorm:"uniqueIndex:idx_class_triple;not null" json:"topicId"`
	Status    TaxonomyStatus `gorm:"size:20;default:'active'" json:"status"`
}

func (Classification) TableName() string {
	return "classifications"
}

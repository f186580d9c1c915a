package model

import "encoding/json"

type QuestionStatus string

const (
	StatusPendingProcessor QuestionStatus = "pending_processor"
	StatusPendingGatherer  QuestionStatus = "pending_gatherer"
	StatusPendingCreator   QuestionStatus = "pending_creator"
	StatusPendingExplainer QuestionStatus = "pending_explainer"
	StatusCompleted        QuestionStatus = "completed"
	StatusRejected         QuestionStatus = "rejected"
)

type FlagType string

const (
	FlagNone      FlagType = ""
	FlagCreator   FlagType = "creator"
	FlagExplainer FlagType = "explainer"
	FlagStudent   FlagType = "student"
)

type FlagStatus string

const (
	FlagStatusNone     FlagStatus = ""
	FlagStatusPending  FlagStatus = "pending"
	FlagStatusApproved FlagStatus = "approved"
	FlagStatusRejected FlagStatus = "rejected"
)

type QuestionType string

const (
	TypeMCQ QuestionType = "mcq"
)

// QuestionOption 单个选项，MCQ固定为A~D四项
type QuestionOption struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question 审核流水线的核心实体。
// 指派字段(AssignedProcessor/Creator/Explainer)一经写入不再覆盖；
// 同一时刻至多存在一个未决标记；FlagType 在 IsFlagged 清除后仍可能保留，
// 作为"最近是谁质疑过这道题"的路由记忆，由下一次审批消费。
// swagger:model Question
type Question struct {
	UUIDBase

	// 分类
	ExamID    uint `gorm:"index;not null" json:"examId"`
	SubjectID uint `gorm:"index;not null" json:"subjectId"`
	TopicID   uint `gorm:"index;not null" json:"topicId"`

	// 内容
	QuestionText     string          `gorm:"type:text;not null" json:"questionText"`
	QuestionType     QuestionType    `gorm:"size:30;default:'mcq'" json:"questionType"`
	Options          json.RawMessage `gorm:"type:json" json:"options"` // []QuestionOption
	CorrectAnswer    string          `gorm:"size:5" json:"correctAnswer"`
	Explanation      string          `gorm:"type:text" json:"explanation"`
	SolutionVideoURL string          `gorm:"size:255" json:"solutionVideoUrl"`
	DiagramURL       string          `gorm:"size:255" json:"diagramUrl"`

	// 生命周期
	Status             QuestionStatus `gorm:"size:30;index;not null" json:"status"`
	IsVariant          bool           `gorm:"default:false" json:"isVariant"`
	OriginalQuestionID string         `gorm:"size:36;index" json:"originalQuestionId"`

	// 来源与审批痕迹
	CreatedBy       uint   `gorm:"index;not null" json:"createdBy"`
	LastModifiedBy  uint   `json:"lastModifiedBy"`
	ApprovedBy      uint   `json:"approvedBy"`
	RejectedBy      uint   `json:"rejectedBy"`
	RejectionReason string `gorm:"type:text" json:"rejectionReason"`

	// 指派（只写一次）
	AssignedProcessor uint `gorm:"index;not null" json:"assignedProcessor"`
	AssignedCreator   uint `gorm:"index" json:"assignedCreator"`
	AssignedExplainer uint `gorm:"index" json:"assignedExplainer"`

	// 标记状态
	IsFlagged           bool       `gorm:"default:false;index" json:"isFlagged"`
	FlagType            FlagType   `gorm:"size:20;default:''" json:"flagType"`
	FlagStatus          FlagStatus `gorm:"size:20;default:''" json:"flagStatus"`
	FlagReason          string     `gorm:"type:text" json:"flagReason"`
	FlaggedBy           uint       `json:"flaggedBy"`
	FlagReviewedBy      uint       `json:"flagReviewedBy"`
	FlagRejectionReason string     `gorm:"type:text" json:"flagRejectionReason"`

	// 学生可见性，仅 completed 后可切换
	IsVisible bool `gorm:"default:false;index" json:"isVisible"`

	// 最近一次动作的冗余字段，替代按时间倒序扫描history
	LastActionRole UserRole `gorm:"size:20" json:"lastActionRole"`
	LastActionKind string   `gorm:"size:40" json:"lastActionKind"`

	// 乐观锁版本号，读改写冲突时返回 ErrConflict
	Version int `gorm:"default:1;not null" json:"version"`
}

func (Question) TableName() string {
	return "questions"
}

// HasExplanation 解析是否已填写，审批规则0的判定依据
func (q *Question) HasExplanation() bool {
	return q.Explanation != ""
}

// ParseOptions 解析选项JSON，未设置时返回空切片
func (q *Question) ParseOptions() ([]QuestionOption, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}
	var opts []QuestionOption
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

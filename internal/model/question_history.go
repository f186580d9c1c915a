package model

// 历史动作类型。history表只追加，从不修改或删除。
const (
	ActionCreated          = "created"
	ActionUpdated          = "updated"
	ActionSubmitted        = "submitted"
	ActionApproved         = "approved"
	ActionRejected         = "rejected"
	ActionResubmitted      = "resubmitted"
	ActionFlagged          = "flagged"
	ActionFlagApproved     = "flag_approved"
	ActionFlagRejected     = "flag_rejected"
	ActionFlagCorrected    = "flag_corrected"
	ActionFlagDisputed     = "flag_disputed"
	ActionFlagRestored     = "flag_restored"
	ActionVariantCreated   = "variant_created"
	ActionExplanationAdded = "explanation_added"
	ActionVisibilityToggle = "visibility_toggled"
)

// QuestionHistory 审计日志，每次流转追加一条，按时间倒序查询
// swagger:model QuestionHistory
type QuestionHistory struct {
	BaseModel
	QuestionID  string   `gorm:"size:36;index;not null" json:"questionId"`
	Action      string   `gorm:"size:40;not null" json:"action"`
	PerformedBy uint     `gorm:"not null" json:"performedBy"`
	Role        UserRole `gorm:"size:20" json:"role"`
	Note        string   `gorm:"type:text" json:"note"`
}

func (QuestionHistory) TableName() string {
	return "question_histories"
}

// QuestionComment 审核备注，只追加，对流转无影响
// swagger:model QuestionComment
type QuestionComment struct {
	BaseModel
	QuestionID  string   `gorm:"size:36;index;not null" json:"questionId"`
	CommentedBy uint     `gorm:"not null" json:"commentedBy"`
	Role        UserRole `gorm:"size:20" json:"role"`
	Content     string   `gorm:"type:text;not null" json:"content"`
}

func (QuestionComment) TableName() string {
	return "question_comments"
}

package service

import (
	"encoding/json"
	"errors"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/repository"
	"qbank_review_backend/internal/util"

	"gorm.io/gorm"
)

// loadActor 加载操作人，不存在或停用都视为失败
func loadActor(users *repository.UserRepository, id uint) (*model.User, error) {
	actor, err := users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundf("user %d", id)
		}
		return nil, err
	}
	if !actor.IsActive() {
		return nil, util.ErrInactiveUser
	}
	return actor, nil
}

// requireProcessor 审核员只能处理指派给自己的题目，超级管理员除外
func requireProcessor(q *model.Question, actor *model.User) error {
	if actor.IsSuperadmin() {
		return nil
	}
	if actor.Role != model.Processor || q.AssignedProcessor != actor.ID {
		return util.AccessDeniedf("question %s is not assigned to processor %d", q.ID, actor.ID)
	}
	return nil
}

func requireCreator(q *model.Question, actor *model.User) error {
	if actor.IsSuperadmin() {
		return nil
	}
	if actor.Role != model.Creator || q.AssignedCreator != actor.ID {
		return util.AccessDeniedf("question %s is not assigned to creator %d", q.ID, actor.ID)
	}
	return nil
}

func requireExplainer(q *model.Question, actor *model.User) error {
	if actor.IsSuperadmin() {
		return nil
	}
	if actor.Role != model.Explainer || q.AssignedExplainer != actor.ID {
		return util.AccessDeniedf("question %s is not assigned to explainer %d", q.ID, actor.ID)
	}
	return nil
}

// requireCorrector 被批准标记后的修题责任人：原题是其采集人，变体是其创题人
func requireCorrector(q *model.Question, actor *model.User) error {
	if actor.IsSuperadmin() {
		return nil
	}
	if q.IsVariant {
		if actor.Role == model.Creator && (q.AssignedCreator == actor.ID || q.CreatedBy == actor.ID) {
			return nil
		}
	} else {
		if actor.Role == model.Gatherer && q.CreatedBy == actor.ID {
			return nil
		}
	}
	return util.AccessDeniedf("user %d is not the corrector of question %s", actor.ID, q.ID)
}

// QuestionContent 各类提交/修订操作携带的内容载荷，字段为空表示不改
type QuestionContent struct {
	QuestionText     string                 `json:"questionText"`
	Options          []model.QuestionOption `json:"options"`
	CorrectAnswer    string                 `json:"correctAnswer"`
	DiagramURL       string                 `json:"diagramUrl"`
	SolutionVideoURL string                 `json:"solutionVideoUrl"`
}

// applyContent 把载荷合并到题目上，返回是否有实际变更。
// 纯推进状态的调用（无内容增量）跳过内容校验。
func applyContent(q *model.Question, c *QuestionContent) (bool, error) {
	if c == nil {
		return false, nil
	}

	changed := false
	if c.QuestionText != "" && c.QuestionText != q.QuestionText {
		q.QuestionText = c.QuestionText
		changed = true
	}
	if len(c.Options) > 0 {
		raw, err := json.Marshal(c.Options)
		if err != nil {
			return false, err
		}
		if string(raw) != string(q.Options) {
			q.Options = raw
			changed = true
		}
	}
	if c.CorrectAnswer != "" && c.CorrectAnswer != q.CorrectAnswer {
		q.CorrectAnswer = c.CorrectAnswer
		changed = true
	}
	if c.DiagramURL != "" && c.DiagramURL != q.DiagramURL {
		q.DiagramURL = c.DiagramURL
		changed = true
	}
	if c.SolutionVideoURL != "" && c.SolutionVideoURL != q.SolutionVideoURL {
		q.SolutionVideoURL = c.SolutionVideoURL
		changed = true
	}
	return changed, nil
}

var mcqLabels = []string{"A", "B", "C", "D"}

// validateMCQ 结构完整性校验：四个选项齐全且答案在A~D内
func validateMCQ(q *model.Question) error {
	if q.QuestionType != model.TypeMCQ {
		return nil
	}
	if q.QuestionText == "" {
		return util.Validationf("question text is required")
	}

	opts, err := q.ParseOptions()
	if err != nil {
		return util.Validationf("options are not valid JSON")
	}
	if len(opts) != len(mcqLabels) {
		return util.Validationf("mcq requires exactly %d options", len(mcqLabels))
	}

	seen := make(map[string]bool, len(opts))
	for _, o := range opts {
		if o.Text == "" {
			return util.Validationf("option %s has no text", o.Label)
		}
		seen[o.Label] = true
	}
	for _, l := range mcqLabels {
		if !seen[l] {
			return util.Validationf("option %s is missing", l)
		}
	}

	if !seen[q.CorrectAnswer] || (q.CorrectAnswer != "A" && q.CorrectAnswer != "B" && q.CorrectAnswer != "C" && q.CorrectAnswer != "D") {
		return util.Validationf("correct answer must be one of A, B, C, D")
	}
	return nil
}

// applyTransition 每次成功流转统一落库：乐观锁保存题目、维护最近动作冗余字段、
// 追加一条不可变历史。必须与状态变化同事务提交。
func applyTransition(tx *gorm.DB, repo *repository.QuestionRepository, q *model.Question, actor *model.User, action, note string) error {
	q.LastActionRole = actor.Role
	q.LastActionKind = action
	q.LastModifiedBy = actor.ID

	if err := repo.SaveWithVersion(tx, q); err != nil {
		return err
	}

	return repo.AppendHistory(tx, &model.QuestionHistory{
		QuestionID:  q.ID,
		Action:      action,
		PerformedBy: actor.ID,
		Role:        actor.Role,
		Note:        note,
	})
}

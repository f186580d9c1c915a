package service

import (
	"qbank_review_backend/internal/model"
)

// 审批路由：按严格优先级自上而下求值，命中即停。
// 下一状态取决于 当前状态、标记类型、标记状态、解析是否已填、最近动作人角色
// 的组合，这里把原本嵌套的分支摊平成一张有序规则表，每条规则可单独测试。

// correctorRole 原题的修题人是采集人，变体的修题人是创题人
func correctorRole(q *model.Question) model.UserRole {
	if q.IsVariant {
		return model.Creator
	}
	return model.Gatherer
}

// correctorStage 标记批准后题目应回到的修题阶段
func correctorStage(q *model.Question) model.QuestionStatus {
	switch q.FlagType {
	case model.FlagExplainer:
		return model.StatusPendingExplainer
	default: // creator / student
		if q.IsVariant {
			return model.StatusPendingCreator
		}
		return model.StatusPendingGatherer
	}
}

// openFlagRoute 标记已批准但尚未修订时的路由
func openFlagRoute(q *model.Question) model.QuestionStatus {
	switch q.FlagType {
	case model.FlagExplainer:
		return model.StatusPendingExplainer
	case model.FlagStudent:
		if q.IsVariant {
			return model.StatusPendingCreator
		}
		return model.StatusPendingGatherer
	default: // creator
		return model.StatusPendingCreator
	}
}

// correctedFlagRoute 修题人已提交修订后的路由：修好的题送下一审校角色
func correctedFlagRoute(q *model.Question) model.QuestionStatus {
	if q.FlagType == model.FlagExplainer {
		return model.StatusPendingExplainer
	}
	return model.StatusPendingCreator
}

// isCorrectionAction 修题人产生内容变更的动作
func isCorrectionAction(kind string) bool {
	switch kind {
	case model.ActionUpdated, model.ActionFlagCorrected, model.ActionSubmitted, model.ActionResubmitted:
		return true
	}
	return false
}

type approveRule struct {
	name string
	// consumesFlagType 命中后本次审批消费掉FlagType路由记忆
	consumesFlagType bool
	apply            func(q *model.Question) (model.QuestionStatus, bool)
}

var approveRules = []approveRule{
	{
		// 0. 解析已填写即完成，压倒一切标记状态
		name: "explanation-complete",
		apply: func(q *model.Question) (model.QuestionStatus, bool) {
			if q.HasExplanation() {
				return model.StatusCompleted, true
			}
			return "", false
		},
	},
	{
		// 1. 标记批准后修题人已修订：按标记类型送下一审校角色。
		// 两种形态：标记仍挂着但最近动作是修题人的修订；
		// 或 FlagType 残留、标记已清、最近动作人是采集人。
		name:             "corrected-after-flag-approval",
		consumesFlagType: true,
		apply: func(q *model.Question) (model.QuestionStatus, bool) {
			correctedWhileOpen := q.IsFlagged &&
				q.FlagStatus == model.FlagStatusApproved &&
				q.LastActionRole == correctorRole(q) &&
				isCorrectionAction(q.LastActionKind)
			correctedAfterClear := q.FlagType != model.FlagNone &&
				!q.IsFlagged &&
				q.FlagStatus != model.FlagStatusRejected &&
				q.LastActionRole == model.Gatherer
			if correctedWhileOpen || correctedAfterClear {
				return correctedFlagRoute(q), true
			}
			return "", false
		},
	},
	{
		// 2. 标记已批准、尚无修订：送修题阶段
		name:             "open-approved-flag",
		consumesFlagType: true,
		apply: func(q *model.Question) (model.QuestionStatus, bool) {
			if q.IsFlagged && q.FlagStatus == model.FlagStatusApproved {
				return openFlagRoute(q), true
			}
			return "", false
		},
	},
	{
		// 3. FlagType残留但标记已清（未经显式修订流程）：同规则2路由。
		// 被驳回的标记（flagStatus=rejected）不算，提出人需走正常流程重争。
		name:             "residual-flag-type",
		consumesFlagType: true,
		apply: func(q *model.Question) (model.QuestionStatus, bool) {
			if q.FlagType != model.FlagNone &&
				!q.IsFlagged &&
				q.FlagStatus != model.FlagStatusRejected {
				return openFlagRoute(q), true
			}
			return "", false
		},
	},
	{
		// 4. 最近动作人是采集人：送创题，解析人标记例外仍送解析
		name: "gatherer-last",
		apply: func(q *model.Question) (model.QuestionStatus, bool) {
			if q.LastActionRole == model.Gatherer {
				if q.FlagType == model.FlagExplainer {
					return model.StatusPendingExplainer, true
				}
				return model.StatusPendingCreator, true
			}
			return "", false
		},
	},
	{
		// 5. 最近动作人是创题人：送解析
		name: "creator-last",
		apply: func(q *model.Question) (model.QuestionStatus, bool) {
			if q.LastActionRole == model.Creator {
				return model.StatusPendingExplainer, true
			}
			return "", false
		},
	},
	{
		// 6. 解析人提交但解析仍为空：留在解析阶段
		name: "explainer-awaiting-explanation",
		apply: func(q *model.Question) (model.QuestionStatus, bool) {
			if q.LastActionRole == model.Explainer && !q.HasExplanation() {
				return model.StatusPendingExplainer, true
			}
			return "", false
		},
	},
	{
		// 7. 兜底：送创题
		name: "default",
		apply: func(q *model.Question) (model.QuestionStatus, bool) {
			return model.StatusPendingCreator, true
		},
	},
}

// nextStatusOnApprove 求值规则表，返回目标状态、命中规则名和是否消费FlagType
func nextStatusOnApprove(q *model.Question) (model.QuestionStatus, string, bool) {
	for _, r := range approveRules {
		if status, ok := r.apply(q); ok {
			return status, r.name, r.consumesFlagType
		}
	}
	// 规则表以兜底规则收尾，不会走到这里
	return model.StatusPendingCreator, "default", false
}

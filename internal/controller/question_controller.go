package controller

import (
	"strconv"

	"qbank_review_backend/internal/model"
	"qbank_review_backend/internal/repository"
	"qbank_review_backend/internal/service"
	"qbank_review_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	Workflow *service.WorkflowService
}

func NewQuestionController(workflow *service.WorkflowService) *QuestionController {
	return &QuestionController{Workflow: workflow}
}

// currentUserID 取登录态里的用户ID，中间件保证存在
func currentUserID(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return claims.UserID, true
}

// Create godoc
// @Summary 采集员录入新题
// @Description 录入后进入待审核队列，必须指定审核员
// @Tags 题目
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CreateQuestionRequest true "题目内容与指派"
// @Success 201 {object} util.Response{data=model.Question} "创建成功"
// @Failure 400 {object} util.Response "校验失败"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.CreateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Workflow.CreateQuestion(actorID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// Get godoc
// @Summary 题目详情
// @Tags 题目
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	q, err := c.Workflow.GetQuestion(ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// List godoc
// @Summary 题目列表
// @Description 按状态/分类/指派筛选，各角色的工作队列都走这个接口
// @Tags 题目
// @Produce  json
// @Security BearerAuth
// @Param   status query string false "工作流状态"
// @Param   examId query int false "考试ID"
// @Param   subjectId query int false "科目ID"
// @Param   topicId query int false "知识点ID"
// @Param   assignedProcessor query int false "指派审核员"
// @Param   assignedCreator query int false "指派创题人"
// @Param   assignedExplainer query int false "指派讲解员"
// @Param   createdBy query int false "录入人"
// @Param   flagged query bool false "仅看有举报的"
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	f := repository.QuestionFilter{
		Status:      model.QuestionStatus(ctx.Query("status")),
		FlaggedOnly: ctx.Query("flagged") == "true",
	}
	if v, err := strconv.ParseUint(ctx.Query("examId"), 10, 64); err == nil {
		f.ExamID = uint(v)
	}
	if v, err := strconv.ParseUint(ctx.Query("subjectId"), 10, 64); err == nil {
		f.SubjectID = uint(v)
	}
	if v, err := strconv.ParseUint(ctx.Query("topicId"), 10, 64); err == nil {
		f.TopicID = uint(v)
	}
	if v, err := strconv.ParseUint(ctx.Query("assignedProcessor"), 10, 64); err == nil {
		f.AssignedProcessor = uint(v)
	}
	if v, err := strconv.ParseUint(ctx.Query("assignedCreator"), 10, 64); err == nil {
		f.AssignedCreator = uint(v)
	}
	if v, err := strconv.ParseUint(ctx.Query("assignedExplainer"), 10, 64); err == nil {
		f.AssignedExplainer = uint(v)
	}
	if v, err := strconv.ParseUint(ctx.Query("createdBy"), 10, 64); err == nil {
		f.CreatedBy = uint(v)
	}

	// 学生端只看已完成且可见的题目
	claims := util.GetUserFromContext(ctx)
	if claims != nil && !claims.IsSuperadmin() && claims.Role == model.Student {
		f.VisibleOnly = true
	}

	questions, total, err := c.Workflow.ListQuestions(f, page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  questions,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

type ApproveRequest struct {
	// AssigneeID 本次审批通过时为下一环节指定的负责人；
	// 目标环节已有固定负责人时忽略
	AssigneeID uint `json:"assigneeId"`
}

// Approve godoc
// @Summary 审核通过
// @Description 审核员放行，按路由规则流向下一环节
// @Tags 审核
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Param   body body ApproveRequest true "下一环节指派"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Failure 403 {object} util.Response "不是该题审核员"
// @Failure 409 {object} util.Response "并发修改冲突"
// @Failure 422 {object} util.Response "当前状态不可审批"
// @Router /api/questions/{id}/approve [post]
func (c *QuestionController) Approve(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req ApproveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Workflow.Approve(ctx.Param("id"), actorID, req.AssigneeID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject godoc
// @Summary 审核驳回
// @Description 驳回到终态，采集员修改后可重新提交
// @Tags 审核
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Param   body body RejectRequest true "驳回原因"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Failure 422 {object} util.Response "当前状态不可驳回"
// @Router /api/questions/{id}/reject [post]
func (c *QuestionController) Reject(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req RejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Workflow.Reject(ctx.Param("id"), actorID, req.Reason)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// SubmitByCreator godoc
// @Summary 创题人提交
// @Description 创题环节完成，回到待审核。可携带内容修改
// @Tags 审核
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Param   body body service.QuestionContent false "内容增量"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Router /api/questions/{id}/submit-creator [post]
func (c *QuestionController) SubmitByCreator(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var content service.QuestionContent
	if err := ctx.ShouldBindJSON(&content); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Workflow.SubmitByCreator(ctx.Param("id"), actorID, &content)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

type ExplanationRequest struct {
	Explanation      string `json:"explanation"`
	SolutionVideoURL string `json:"solutionVideoUrl"`
}

// AddExplanation godoc
// @Summary 讲解员提交解析
// @Description 解析入库后回到待审核，审核通过即完成
// @Tags 审核
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Param   body body ExplanationRequest true "解析内容"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Failure 400 {object} util.Response "解析不能为空"
// @Router /api/questions/{id}/explanation [post]
func (c *QuestionController) AddExplanation(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req ExplanationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Workflow.AddExplanation(ctx.Param("id"), actorID, req.Explanation, req.SolutionVideoURL)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// SubmitByExplainer godoc
// @Summary 讲解员提交（无新解析）
// @Description 讲解环节过一遍没有问题时的放行动作
// @Tags 审核
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Param   body body ExplanationRequest false "可选解析补充"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Router /api/questions/{id}/submit-explainer [post]
func (c *QuestionController) SubmitByExplainer(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req ExplanationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Workflow.SubmitByExplainer(ctx.Param("id"), actorID, req.Explanation)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// Resubmit godoc
// @Summary 采集员重新提交被驳回的题
// @Tags 审核
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Param   body body service.QuestionContent false "修改后的内容"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Failure 422 {object} util.Response "只有被驳回的题可以重新提交"
// @Router /api/questions/{id}/resubmit [post]
func (c *QuestionController) Resubmit(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var content service.QuestionContent
	if err := ctx.ShouldBindJSON(&content); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Workflow.ResubmitByGatherer(ctx.Param("id"), actorID, &content)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// ToggleVisibility godoc
// @Summary 上架/下架已完成的题目
// @Tags 审核
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Failure 422 {object} util.Response "仅已完成的题目可切换可见性"
// @Router /api/questions/{id}/visibility [put]
func (c *QuestionController) ToggleVisibility(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	q, err := c.Workflow.ToggleVisibility(ctx.Param("id"), actorID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// History godoc
// @Summary 题目流转历史
// @Tags 题目
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Success 200 {object} util.Response{data=[]model.QuestionHistory} "成功"
// @Router /api/questions/{id}/history [get]
func (c *QuestionController) History(ctx *gin.Context) {
	items, err := c.Workflow.ListHistory(ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// Comments godoc
// @Summary 题目讨论区
// @Tags 题目
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Success 200 {object} util.Response{data=[]model.QuestionComment} "成功"
// @Router /api/questions/{id}/comments [get]
func (c *QuestionController) Comments(ctx *gin.Context) {
	items, err := c.Workflow.ListComments(ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddComment godoc
// @Summary 发表讨论
// @Tags 题目
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Param   body body CommentRequest true "评论内容"
// @Success 201 {object} util.Response{data=model.QuestionComment} "创建成功"
// @Router /api/questions/{id}/comments [post]
func (c *QuestionController) AddComment(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	comment, err := c.Workflow.AddComment(ctx.Param("id"), actorID, req.Content)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, comment)
}

package controller

import (
	"strconv"

	"qbank_review_backend/internal/service"
	"qbank_review_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TaxonomyController struct {
	TaxonomyService *service.TaxonomyService
}

func NewTaxonomyController(taxonomyService *service.TaxonomyService) *TaxonomyController {
	return &TaxonomyController{TaxonomyService: taxonomyService}
}

// ListExams godoc
// @Summary 考试列表
// @Tags 分类
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Exam} "成功"
// @Router /api/taxonomy/exams [get]
func (c *TaxonomyController) ListExams(ctx *gin.Context) {
	exams, err := c.TaxonomyService.ListExams()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, exams)
}

// CreateExam godoc
// @Summary 新建考试
// @Tags 分类
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.ExamRequest true "考试信息"
// @Success 201 {object} util.Response{data=model.Exam} "创建成功"
// @Router /api/admin/taxonomy/exams [post]
func (c *TaxonomyController) CreateExam(ctx *gin.Context) {
	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.TaxonomyService.CreateExam(req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, exam)
}

// ListSubjects godoc
// @Summary 科目列表
// @Tags 分类
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Subject} "成功"
// @Router /api/taxonomy/subjects [get]
func (c *TaxonomyController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.TaxonomyService.ListSubjects()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// CreateSubject godoc
// @Summary 新建科目
// @Tags 分类
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.SubjectRequest true "科目信息"
// @Success 201 {object} util.Response{data=model.Subject} "创建成功"
// @Router /api/admin/taxonomy/subjects [post]
func (c *TaxonomyController) CreateSubject(ctx *gin.Context) {
	var req service.SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.TaxonomyService.CreateSubject(req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// ListTopics godoc
// @Summary 知识点列表
// @Description 可按科目过滤
// @Tags 分类
// @Produce  json
// @Param   subjectId query int false "科目ID"
// @Success 200 {object} util.Response{data=[]model.Topic} "成功"
// @Router /api/taxonomy/topics [get]
func (c *TaxonomyController) ListTopics(ctx *gin.Context) {
	subjectID, _ := strconv.ParseUint(ctx.Query("subjectId"), 10, 64)

	topics, err := c.TaxonomyService.ListTopics(uint(subjectID))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, topics)
}

// CreateTopic godoc
// @Summary 新建知识点
// @Tags 分类
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.TopicRequest true "知识点信息"
// @Success 201 {object} util.Response{data=model.Topic} "创建成功"
// @Failure 404 {object} util.Response "所属科目不存在"
// @Router /api/admin/taxonomy/topics [post]
func (c *TaxonomyController) CreateTopic(ctx *gin.Context) {
	var req service.TopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic, err := c.TaxonomyService.CreateTopic(req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, topic)
}

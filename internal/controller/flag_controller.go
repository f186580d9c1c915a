package controller

import (
	"qbank_review_backend/internal/service"
	"qbank_review_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FlagController struct {
	FlagService *service.FlagService
}

func NewFlagController(flagService *service.FlagService) *FlagController {
	return &FlagController{FlagService: flagService}
}

type RaiseFlagRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Raise godoc
// @Summary 对题目提出质疑
// @Description 创题人/讲解员对流转中的题、学生对已上架的题提出质疑
// @Tags 质疑
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Param   body body RaiseFlagRequest true "质疑原因"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Failure 422 {object} util.Response "该题已有未处理的质疑"
// @Router /api/questions/{id}/flag [post]
func (c *FlagController) Raise(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req RaiseFlagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.FlagService.RaiseFlag(ctx.Param("id"), actorID, req.Reason)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

type ReviewFlagRequest struct {
	Approve bool `json:"approve"`
	// RejectionReason 驳回质疑时必填
	RejectionReason string `json:"rejectionReason"`
}

// Review godoc
// @Summary 审核员裁决质疑
// @Description 认可则转给责任人修正，驳回则清掉质疑、题目回到提出人所在环节
// @Tags 质疑
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Param   body body ReviewFlagRequest true "裁决结果"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Failure 422 {object} util.Response "没有待裁决的质疑"
// @Router /api/questions/{id}/flag/review [post]
func (c *FlagController) Review(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req ReviewFlagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.FlagService.ReviewFlag(ctx.Param("id"), actorID, req.Approve, req.RejectionReason)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

type DisputeFlagRequest struct {
	RejectionReason string `json:"rejectionReason" binding:"required"`
}

// Dispute godoc
// @Summary 责任人申诉
// @Description 责任人认为质疑不成立，提出理由退回审核员定夺
// @Tags 质疑
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Param   body body DisputeFlagRequest true "申诉理由"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Router /api/questions/{id}/flag/dispute [post]
func (c *FlagController) Dispute(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req DisputeFlagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.FlagService.DisputeFlagByCorrector(ctx.Param("id"), actorID, req.RejectionReason)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// CounterReject godoc
// @Summary 审核员驳回申诉
// @Description 维持原裁决，恢复质疑并退回责任人修正
// @Tags 质疑
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Failure 422 {object} util.Response "没有待处理的申诉"
// @Router /api/questions/{id}/flag/counter-reject [post]
func (c *FlagController) CounterReject(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	q, err := c.FlagService.CounterRejectDispute(ctx.Param("id"), actorID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// Correct godoc
// @Summary 责任人按质疑修正题目
// @Description 修正后回到待审核，审核通过按质疑来源继续流转
// @Tags 质疑
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "题目ID"
// @Param   body body service.QuestionContent false "修正内容"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Router /api/questions/{id}/flag/correct [post]
func (c *FlagController) Correct(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var content service.QuestionContent
	if err := ctx.ShouldBindJSON(&content); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.FlagService.CorrectAfterFlag(ctx.Param("id"), actorID, &content)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

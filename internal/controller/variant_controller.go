package controller

import (
	"qbank_review_backend/internal/service"
	"qbank_review_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type VariantController struct {
	VariantService *service.VariantService
}

func NewVariantController(variantService *service.VariantService) *VariantController {
	return &VariantController{VariantService: variantService}
}

// Create godoc
// @Summary 基于原题派生变体
// @Description 创题人出变体题，变体继承原题分类与全部指派
// @Tags 变体
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "原题ID"
// @Param   body body service.CreateVariantRequest true "变体内容"
// @Success 201 {object} util.Response{data=model.Question} "创建成功"
// @Failure 400 {object} util.Response "变体不能再派生变体"
// @Failure 403 {object} util.Response "不是该题创题人"
// @Router /api/questions/{id}/variants [post]
func (c *VariantController) Create(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.CreateVariantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	variant, err := c.VariantService.CreateVariant(ctx.Param("id"), actorID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, variant)
}

// List godoc
// @Summary 某原题的全部变体
// @Tags 变体
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "原题ID"
// @Success 200 {object} util.Response{data=[]model.Question} "成功"
// @Failure 404 {object} util.Response "原题不存在"
// @Router /api/questions/{id}/variants [get]
func (c *VariantController) List(ctx *gin.Context) {
	variants, err := c.VariantService.ListVariants(ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, variants)
}

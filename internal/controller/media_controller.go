package controller

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"qbank_review_backend/internal/service"
	"qbank_review_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MediaController struct {
	Storage *service.StorageService
}

func NewMediaController(storage *service.StorageService) *MediaController {
	return &MediaController{Storage: storage}
}

func extAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if a == ext {
			return true
		}
	}
	return false
}

// UploadDiagram godoc
// @Summary 上传题目配图
// @Description 上传成功后把返回的URL填进题目的diagramUrl字段
// @Tags 媒体
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "图片文件"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "文件类型或大小不合规"
// @Router /api/media/diagram [post]
func (c *MediaController) UploadDiagram(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少文件")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !extAllowed(ext, util.AllowedImageExtensions) {
		util.BadRequest(ctx, "不支持的图片格式: "+ext)
		return
	}
	if file.Size > util.MaxDiagramSize {
		util.BadRequest(ctx, "图片超过大小限制")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	filename := fmt.Sprintf("diagrams/%s/%s%s", time.Now().Format("200601"), uuid.NewString(), ext)
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = util.MimeOctetStream
	}

	url, err := c.Storage.Upload(ctx.Request.Context(), filename, src, file.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

// UploadSolutionVideo godoc
// @Summary 上传解答视频
// @Description 先落临时文件过ffprobe校验，再转存到存储后端
// @Tags 媒体
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "视频文件"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "文件类型或内容不合规"
// @Router /api/media/solution-video [post]
func (c *MediaController) UploadSolutionVideo(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少文件")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !extAllowed(ext, util.AllowedVideoExtensions) {
		util.BadRequest(ctx, "不支持的视频格式: "+ext)
		return
	}
	if file.Size > util.MaxSolutionVideoSize {
		util.BadRequest(ctx, "视频超过大小限制")
		return
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+ext)
	if err := ctx.SaveUploadedFile(file, tmpPath); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer os.Remove(tmpPath)

	info, err := util.ProbeVideo(tmpPath)
	if err != nil {
		util.BadRequest(ctx, "视频解析失败: "+err.Error())
		return
	}
	if info.Duration <= 0 {
		util.BadRequest(ctx, "视频时长无效")
		return
	}

	filename := fmt.Sprintf("solutions/%s/%s%s", time.Now().Format("200601"), uuid.NewString(), ext)
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = util.MimeOctetStream
	}

	url, err := c.Storage.UploadFile(ctx.Request.Context(), filename, tmpPath, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"url":      url,
		"duration": info.Duration,
		"width":    info.Width,
		"height":   info.Height,
		"format":   info.Format,
	})
}

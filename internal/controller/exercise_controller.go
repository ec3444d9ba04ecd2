package controller

import (
	"errors"

	"lingo_edu_backend/internal/cms"
	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/service"
	"lingo_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExerciseController struct {
	ExerciseService *service.ExerciseService
}

func NewExerciseController(exerciseService *service.ExerciseService) *ExerciseController {
	return &ExerciseController{ExerciseService: exerciseService}
}

// CreateExerciseRequest 创建练习请求
// swagger:model CreateExerciseRequest
type CreateExerciseRequest struct {
	Type          string `json:"type" binding:"required,oneof=quiz type-answer-image type-answer-audio"`
	Content       string `json:"content" binding:"required"`
	CorrectAnswer string `json:"correctAnswer" binding:"required"`
	ImageFileID   string `json:"imageFileId"` // CMS文件ID，type-answer-image 时必填
	AudioFileID   string `json:"audioFileId"` // CMS文件ID，type-answer-audio 时必填
}

// Create godoc
// @Summary 创建练习
// @Description 两阶段写：练习先落主库，媒体记录再写CMS。CMS失败时练习保留，
// @Description 媒体标记 pending 进补偿队列，返回 202
// @Tags 练习
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   topicId path string true "主题ID"
// @Param   body body CreateExerciseRequest true "练习内容"
// @Success 201 {object} util.Response{data=model.Exercise} "创建成功"
// @Success 202 {object} util.Response{data=model.Exercise} "已创建，媒体待补偿"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/topics/{topicId}/exercises [post]
func (c *ExerciseController) Create(ctx *gin.Context) {
	var req CreateExerciseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exercise := &model.Exercise{
		TopicID:       ctx.Param("topicId"),
		Type:          model.ExerciseType(req.Type),
		Content:       req.Content,
		CorrectAnswer: req.CorrectAnswer,
	}

	var record *cms.MediaRecord
	switch exercise.Type {
	case model.ExerciseTypeAnswerImage:
		if req.ImageFileID == "" {
			util.BadRequest(ctx, "看图题必须提供图片文件")
			return
		}
		exercise.AssetID = req.ImageFileID
		record = &cms.MediaRecord{Type: "image", ExerciseImage: req.ImageFileID}
	case model.ExerciseTypeAnswerAudio:
		if req.AudioFileID == "" {
			util.BadRequest(ctx, "听音题必须提供音频文件")
			return
		}
		exercise.AssetID = req.AudioFileID
		record = &cms.MediaRecord{Type: "audio", Audio: req.AudioFileID}
	}

	if err := c.ExerciseService.Create(ctx.Request.Context(), exercise, record); err != nil {
		if errors.Is(err, util.ErrMediaPending) {
			// 练习已创建成功，只有媒体在等补偿
			ctx.JSON(202, util.Response{
				Code:    202,
				Message: "练习已创建，媒体附件稍后自动补齐",
				Data:    exercise,
			})
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, exercise)
}

// List godoc
// @Summary 主题练习列表（合并媒体）
// @Description 返回主库练习与CMS媒体的合并视图，CMS不可用时媒体字段为空
// @Tags 练习
// @Produce  json
// @Security BearerAuth
// @Param   topicId path string true "主题ID"
// @Success 200 {object} util.Response{data=[]model.MergedExercise} "成功"
// @Router /api/topics/{topicId}/exercises [get]
func (c *ExerciseController) List(ctx *gin.Context) {
	merged, err := c.ExerciseService.List(ctx.Request.Context(), ctx.Param("topicId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, merged)
}

// Refresh godoc
// @Summary 强制刷新主题练习
// @Description 绕过缓存重新拉取并合并
// @Tags 练习
// @Produce  json
// @Security BearerAuth
// @Param   topicId path string true "主题ID"
// @Success 200 {object} util.Response{data=[]model.MergedExercise} "成功"
// @Router /api/topics/{topicId}/exercises/refresh [post]
func (c *ExerciseController) Refresh(ctx *gin.Context) {
	merged, err := c.ExerciseService.Refresh(ctx.Request.Context(), ctx.Param("topicId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, merged)
}

// UpdateExerciseRequest 练习更新请求
type UpdateExerciseRequest struct {
	Content       string `json:"content"`
	CorrectAnswer string `json:"correctAnswer"`
}

// Update godoc
// @Summary 更新练习
// @Tags 练习
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "练习ID"
// @Param   body body UpdateExerciseRequest true "更新字段"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "练习不存在"
// @Router /api/exercises/{id} [patch]
func (c *ExerciseController) Update(ctx *gin.Context) {
	var req UpdateExerciseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Content != "" {
		updates["content"] = req.Content
	}
	if req.CorrectAnswer != "" {
		updates["correct_answer"] = req.CorrectAnswer
	}
	if len(updates) == 0 {
		util.BadRequest(ctx, "没有可更新的字段")
		return
	}

	if err := c.ExerciseService.Update(ctx.Request.Context(), ctx.Param("id"), updates); err != nil {
		if errors.Is(err, util.ErrExerciseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// Delete godoc
// @Summary 删除练习
// @Description 主库删除后尝试清理CMS媒体，CMS清理失败不影响结果
// @Tags 练习
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "练习ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "练习不存在"
// @Router /api/exercises/{id} [delete]
func (c *ExerciseController) Delete(ctx *gin.Context) {
	if err := c.ExerciseService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrExerciseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

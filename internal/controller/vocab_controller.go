package controller

import (
	"errors"

	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/service"
	"lingo_edu_backend/internal/store"
	"lingo_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type VocabController struct {
	VocabService *service.VocabService
}

func NewVocabController(vocabService *service.VocabService) *VocabController {
	return &VocabController{VocabService: vocabService}
}

// CreateVocabRequest 创建词条请求
// swagger:model CreateVocabRequest
type CreateVocabRequest struct {
	Word     string `json:"word" binding:"required"`
	Meaning  string `json:"meaning" binding:"required"`
	Example  string `json:"example"`
	ImageURL string `json:"imageUrl"`
	AudioURL string `json:"audioUrl"`
}

// Create godoc
// @Summary 新建词条
// @Tags 词汇
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   topicId path string true "主题ID"
// @Param   body body CreateVocabRequest true "词条内容"
// @Success 201 {object} util.Response{data=model.VocabEntry} "创建成功"
// @Router /api/topics/{topicId}/vocab [post]
func (c *VocabController) Create(ctx *gin.Context) {
	var req CreateVocabRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	vocab := &model.VocabEntry{
		TopicID:  ctx.Param("topicId"),
		Word:     req.Word,
		Meaning:  req.Meaning,
		Example:  req.Example,
		ImageURL: req.ImageURL,
		AudioURL: req.AudioURL,
	}
	if err := c.VocabService.Create(vocab); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, vocab)
}

// ByTopic godoc
// @Summary 主题词汇列表
// @Description 整体加载主题下的词汇（刷新内存视图）
// @Tags 词汇
// @Produce  json
// @Security BearerAuth
// @Param   topicId path string true "主题ID"
// @Success 200 {object} util.Response{data=[]model.VocabEntry} "成功"
// @Router /api/topics/{topicId}/vocab [get]
func (c *VocabController) ByTopic(ctx *gin.Context) {
	vocabs, err := c.VocabService.LoadTopic(ctx.Param("topicId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, vocabs)
}

// Search godoc
// @Summary 词汇检索
// @Description 按单词或释义模糊检索，分页返回。topicId 查询参数为空时全局检索
// @Tags 词汇
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码"
// @Param   size query int false "每页数量"
// @Param   searchKey query string false "关键字"
// @Param   topicId query string false "限定主题"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/vocab/search [get]
func (c *VocabController) Search(ctx *gin.Context) {
	req := util.SearchRequestFromQuery(ctx)

	vocabs, total, err := c.VocabService.Search(ctx.Query("topicId"), req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  vocabs,
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
	})
}

// UpdateVocabRequest 词条更新请求，nil字段不改动
type UpdateVocabRequest struct {
	Word     *string `json:"word"`
	Meaning  *string `json:"meaning"`
	Example  *string `json:"example"`
	ImageURL *string `json:"imageUrl"`
	AudioURL *string `json:"audioUrl"`
}

// Update godoc
// @Summary 更新词条
// @Tags 词汇
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "词条ID"
// @Param   body body UpdateVocabRequest true "更新字段"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "词条不存在"
// @Router /api/vocab/{id} [patch]
func (c *VocabController) Update(ctx *gin.Context) {
	var req UpdateVocabRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.VocabService.Update(ctx.Param("id"), store.VocabUpdate{
		Word:     req.Word,
		Meaning:  req.Meaning,
		Example:  req.Example,
		ImageURL: req.ImageURL,
		AudioURL: req.AudioURL,
	})
	if err != nil {
		if errors.Is(err, util.ErrVocabNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// ToggleLearned godoc
// @Summary 切换词条学习状态
// @Description 切换已学/未学，返回主题最新进度
// @Tags 词汇
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "词条ID"
// @Success 200 {object} util.Response{data=model.TopicProgress} "成功"
// @Failure 404 {object} util.Response "词条不存在"
// @Router /api/vocab/{id}/toggle [post]
func (c *VocabController) ToggleLearned(ctx *gin.Context) {
	progress, err := c.VocabService.ToggleLearned(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrVocabNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, progress)
}

// Delete godoc
// @Summary 删除词条（软删除）
// @Tags 词汇
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "词条ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "词条不存在"
// @Router /api/vocab/{id} [delete]
func (c *VocabController) Delete(ctx *gin.Context) {
	if err := c.VocabService.Delete(ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrVocabNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// Progress godoc
// @Summary 主题学习进度
// @Description known/total 四舍五入成百分比，空主题为0
// @Tags 词汇
// @Produce  json
// @Security BearerAuth
// @Param   topicId path string true "主题ID"
// @Success 200 {object} util.Response{data=model.TopicProgress} "成功"
// @Router /api/topics/{topicId}/progress [get]
func (c *VocabController) Progress(ctx *gin.Context) {
	progress, err := c.VocabService.Progress(ctx.Param("topicId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

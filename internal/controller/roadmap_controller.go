package controller

import (
	"errors"

	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/service"
	"lingo_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RoadmapController struct {
	RoadmapService *service.RoadmapService
}

func NewRoadmapController(roadmapService *service.RoadmapService) *RoadmapController {
	return &RoadmapController{RoadmapService: roadmapService}
}

// CreateRoadmapRequest 创建路线请求
// swagger:model CreateRoadmapRequest
type CreateRoadmapRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Create godoc
// @Summary 创建学习路线
// @Tags 路线
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body CreateRoadmapRequest true "路线信息"
// @Success 201 {object} util.Response{data=model.Roadmap} "创建成功"
// @Router /api/roadmaps [post]
func (c *RoadmapController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateRoadmapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	roadmap := &model.Roadmap{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		CreatorID:   claims.UserID,
	}
	if err := c.RoadmapService.Create(roadmap); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, roadmap)
}

// List godoc
// @Summary 路线列表
// @Description 游客和学生只能看到已发布的路线，教师/管理员可看全部
// @Tags 路线
// @Produce  json
// @Param   page query int false "页码"
// @Param   size query int false "每页数量"
// @Param   searchKey query string false "名称关键字"
// @Param   category query string false "分类"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/roadmaps [get]
func (c *RoadmapController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	req := util.SearchRequestFromQuery(ctx)
	publishedOnly := claims == nil || claims.Role == model.Student

	roadmaps, total, err := c.RoadmapService.List(req, ctx.Query("category"), publishedOnly)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  roadmaps,
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
	})
}

// Get godoc
// @Summary 路线详情（含有序主题节点）
// @Tags 路线
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "路线ID"
// @Success 200 {object} util.Response{data=service.RoadmapDetail} "成功"
// @Failure 404 {object} util.Response "路线不存在"
// @Router /api/roadmaps/{id} [get]
func (c *RoadmapController) Get(ctx *gin.Context) {
	detail, err := c.RoadmapService.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrRoadmapNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, detail)
}

// UpdateRoadmapRequest 路线更新请求
type UpdateRoadmapRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
	Published   *bool   `json:"published"`
}

// Update godoc
// @Summary 更新路线
// @Tags 路线
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "路线ID"
// @Param   body body UpdateRoadmapRequest true "更新字段"
// @Success 200 {object} util.Response{data=model.Roadmap} "成功"
// @Failure 404 {object} util.Response "路线不存在"
// @Router /api/roadmaps/{id} [put]
func (c *RoadmapController) Update(ctx *gin.Context) {
	var req UpdateRoadmapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}

	roadmap, err := c.RoadmapService.Update(ctx.Param("id"), updates)
	if err != nil {
		if errors.Is(err, util.ErrRoadmapNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, roadmap)
}

// Delete godoc
// @Summary 删除路线
// @Description 连带删除路线下的主题节点
// @Tags 路线
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "路线ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "路线不存在"
// @Router /api/roadmaps/{id} [delete]
func (c *RoadmapController) Delete(ctx *gin.Context) {
	if err := c.RoadmapService.Delete(ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrRoadmapNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// CreateTopicRequest 添加主题节点请求
type CreateTopicRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// AddTopic godoc
// @Summary 在路线末尾添加主题节点
// @Tags 路线
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "路线ID"
// @Param   body body CreateTopicRequest true "主题信息"
// @Success 201 {object} util.Response{data=model.Topic} "创建成功"
// @Failure 404 {object} util.Response "路线不存在"
// @Router /api/roadmaps/{id}/topics [post]
func (c *RoadmapController) AddTopic(ctx *gin.Context) {
	var req CreateTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic := &model.Topic{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := c.RoadmapService.AddTopic(ctx.Param("id"), topic); err != nil {
		if errors.Is(err, util.ErrRoadmapNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, topic)
}

// UpdateTopicRequest 主题更新请求
type UpdateTopicRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateTopic godoc
// @Summary 更新主题节点
// @Tags 路线
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   topicId path string true "主题ID"
// @Param   body body UpdateTopicRequest true "更新字段"
// @Success 200 {object} util.Response{data=model.Topic} "成功"
// @Failure 404 {object} util.Response "主题不存在"
// @Router /api/topics/{topicId} [put]
func (c *RoadmapController) UpdateTopic(ctx *gin.Context) {
	var req UpdateTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic, err := c.RoadmapService.UpdateTopic(ctx.Param("topicId"), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, topic)
}

// DeleteTopic godoc
// @Summary 删除主题节点
// @Tags 路线
// @Produce  json
// @Security BearerAuth
// @Param   topicId path string true "主题ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "主题不存在"
// @Router /api/topics/{topicId} [delete]
func (c *RoadmapController) DeleteTopic(ctx *gin.Context) {
	if err := c.RoadmapService.DeleteTopic(ctx.Param("topicId")); err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// ReorderRequest 主题重排请求
type ReorderRequest struct {
	TopicIDs []string `json:"topicIds" binding:"required"`
}

// ReorderTopics godoc
// @Summary 重排路线下的主题节点
// @Description 传入完整的主题ID顺序，与现有主题集合必须一致
// @Tags 路线
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "路线ID"
// @Param   body body ReorderRequest true "新顺序"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "节点列表不一致"
// @Router /api/roadmaps/{id}/topics/reorder [put]
func (c *RoadmapController) ReorderTopics(ctx *gin.Context) {
	var req ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.RoadmapService.ReorderTopics(ctx.Param("id"), req.TopicIDs); err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, nil)
}

package controller

import (
	"errors"
	"strconv"

	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/service"
	"lingo_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ClassController struct {
	ClassService *service.ClassService
}

func NewClassController(classService *service.ClassService) *ClassController {
	return &ClassController{ClassService: classService}
}

// CreateClassRequest 建班请求
// swagger:model CreateClassRequest
type CreateClassRequest struct {
	Name      string `json:"name" binding:"required"`
	RoadmapID string `json:"roadmapId"`
	Note      string `json:"note"`
}

// Create godoc
// @Summary 创建班级
// @Description 教师创建班级，邀请码自动生成
// @Tags 班级
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body CreateClassRequest true "班级信息"
// @Success 201 {object} util.Response{data=model.Class} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/classes [post]
func (c *ClassController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class := &model.Class{
		Name:      req.Name,
		TeacherID: claims.UserID,
		RoadmapID: req.RoadmapID,
		Note:      req.Note,
	}
	if err := c.ClassService.Create(class); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, class)
}

// List godoc
// @Summary 班级列表
// @Description 教师看自己的班级，管理员看全部。支持分页和名称检索
// @Tags 班级
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码"
// @Param   size query int false "每页数量"
// @Param   searchKey query string false "名称关键字"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/classes [get]
func (c *ClassController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	req := util.SearchRequestFromQuery(ctx)

	teacherID := claims.UserID
	if claims.Role == model.Admin {
		teacherID = 0
	}

	classes, total, err := c.ClassService.List(teacherID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  classes,
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
	})
}

// Get godoc
// @Summary 班级详情
// @Tags 班级
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "班级ID"
// @Success 200 {object} util.Response{data=model.Class} "成功"
// @Failure 404 {object} util.Response "班级不存在"
// @Router /api/classes/{id} [get]
func (c *ClassController) Get(ctx *gin.Context) {
	class, err := c.ClassService.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrClassNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, class)
}

// UpdateClassRequest 班级更新请求
type UpdateClassRequest struct {
	Name      string `json:"name"`
	RoadmapID string `json:"roadmapId"`
	Note      string `json:"note"`
}

// Update godoc
// @Summary 更新班级
// @Tags 班级
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "班级ID"
// @Param   body body UpdateClassRequest true "更新字段"
// @Success 200 {object} util.Response{data=model.Class} "成功"
// @Failure 404 {object} util.Response "班级不存在"
// @Router /api/classes/{id} [put]
func (c *ClassController) Update(ctx *gin.Context) {
	var req UpdateClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.Update(ctx.Param("id"), req.Name, req.RoadmapID, req.Note)
	if err != nil {
		if errors.Is(err, util.ErrClassNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, class)
}

// Delete godoc
// @Summary 删除班级
// @Description 连带删除班级学生关联
// @Tags 班级
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "班级ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "班级不存在"
// @Router /api/classes/{id} [delete]
func (c *ClassController) Delete(ctx *gin.Context) {
	if err := c.ClassService.Delete(ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrClassNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// JoinRequest 学生加入班级请求
type JoinRequest struct {
	Code string `json:"code" binding:"required"`
}

// Join godoc
// @Summary 凭邀请码加入班级
// @Tags 班级
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body JoinRequest true "邀请码"
// @Success 200 {object} util.Response{data=model.Class} "成功"
// @Failure 404 {object} util.Response "邀请码无效"
// @Router /api/classes/join [post]
func (c *ClassController) Join(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req JoinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.JoinByCode(req.Code, claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrClassNotFound) {
			util.Error(ctx, 404, "邀请码无效")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, class)
}

// Students godoc
// @Summary 班级学生列表
// @Tags 班级
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "班级ID"
// @Success 200 {object} util.Response{data=[]model.User} "成功"
// @Failure 404 {object} util.Response "班级不存在"
// @Router /api/classes/{id}/students [get]
func (c *ClassController) Students(ctx *gin.Context) {
	students, err := c.ClassService.Students(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrClassNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, students)
}

// RemoveStudent godoc
// @Summary 移出班级学生
// @Tags 班级
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "班级ID"
// @Param   userId path int true "学生用户ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/classes/{id}/students/{userId} [delete]
func (c *ClassController) RemoveStudent(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("userId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	if err := c.ClassService.RemoveStudent(ctx.Param("id"), uint(userID)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ImportStudents godoc
// @Summary CSV批量导入学生
// @Description 上传CSV文件（name,email[,password]），不存在的账号自动创建并加入班级
// @Tags 班级
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "班级ID"
// @Param   file formData file true "CSV文件"
// @Success 200 {object} util.Response{data=service.ImportResult} "导入结果"
// @Failure 400 {object} util.Response "文件格式错误"
// @Router /api/classes/{id}/students/import [post]
func (c *ClassController) ImportStudents(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少上传文件")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	result, err := c.ClassService.ImportStudents(ctx.Param("id"), file)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrClassNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidImportRow):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

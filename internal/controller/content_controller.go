package controller

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"lingo_edu_backend/internal/cms"
	"lingo_edu_backend/internal/service"
	"lingo_edu_backend/internal/util"
	"lingo_edu_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContentController AI内容生成与媒体上传
type ContentController struct {
	AIService      *service.AIService
	VocabService   *service.VocabService
	RoadmapService *service.RoadmapService
	StorageService *service.StorageService
	CMSClient      *cms.Client
}

func NewContentController(aiService *service.AIService, vocabService *service.VocabService,
	roadmapService *service.RoadmapService, storageService *service.StorageService, cmsClient *cms.Client) *ContentController {
	return &ContentController{
		AIService:      aiService,
		VocabService:   vocabService,
		RoadmapService: roadmapService,
		StorageService: storageService,
		CMSClient:      cmsClient,
	}
}

// GenerateRequest AI生成请求
type GenerateRequest struct {
	Count int `json:"count" binding:"required,min=1,max=50"`
}

// GenerateVocab godoc
// @Summary AI生成词汇候选
// @Description 按主题名生成词条候选，不直接入库，由教师审核后提交
// @Tags 内容生成
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   topicId path string true "主题ID"
// @Param   body body GenerateRequest true "生成数量"
// @Success 200 {object} util.Response{data=[]service.GeneratedVocab} "成功"
// @Failure 404 {object} util.Response "主题不存在"
// @Router /api/topics/{topicId}/vocab/generate [post]
func (c *ContentController) GenerateVocab(ctx *gin.Context) {
	var req GenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic, err := c.RoadmapService.GetTopic(ctx.Param("topicId"))
	if err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	vocabs, err := c.AIService.GenerateVocab(ctx.Request.Context(), topic.Name, req.Count)
	if err != nil {
		logger.Log.Error("AI词汇生成失败", zap.String("topicId", topic.ID), zap.Error(err))
		util.Error(ctx, 502, "AI生成失败，请稍后重试")
		return
	}
	util.Success(ctx, vocabs)
}

// GenerateExercises godoc
// @Summary AI生成练习候选
// @Description 基于主题已有词汇生成选择题候选
// @Tags 内容生成
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   topicId path string true "主题ID"
// @Param   body body GenerateRequest true "生成数量"
// @Success 200 {object} util.Response{data=[]service.GeneratedExercise} "成功"
// @Failure 404 {object} util.Response "主题不存在"
// @Router /api/topics/{topicId}/exercises/generate [post]
func (c *ContentController) GenerateExercises(ctx *gin.Context) {
	var req GenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic, err := c.RoadmapService.GetTopic(ctx.Param("topicId"))
	if err != nil {
		if errors.Is(err, util.ErrTopicNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	vocabs, err := c.VocabService.LoadTopic(topic.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if len(vocabs) == 0 {
		util.BadRequest(ctx, "主题下没有词汇，无法生成练习")
		return
	}

	exercises, err := c.AIService.GenerateExercises(ctx.Request.Context(), topic.Name, vocabs, req.Count)
	if err != nil {
		logger.Log.Error("AI练习生成失败", zap.String("topicId", topic.ID), zap.Error(err))
		util.Error(ctx, 502, "AI生成失败，请稍后重试")
		return
	}
	util.Success(ctx, exercises)
}

var allowedMediaExts = map[string]string{
	".jpg":  "image/",
	".jpeg": "image/",
	".png":  "image/",
	".webp": "image/",
	".mp3":  "audio/",
	".wav":  "audio/",
	".ogg":  "application/ogg",
}

// UploadMedia godoc
// @Summary 上传练习媒体文件
// @Description 文件先本地落盘校验，音频附带时长探测，然后推到CMS并返回文件ID
// @Tags 内容生成
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "图片或音频文件"
// @Success 200 {object} util.Response{data=object} "成功，返回CMS文件ID"
// @Failure 400 {object} util.Response "文件格式不支持"
// @Router /api/media [post]
func (c *ContentController) UploadMedia(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少上传文件")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	mimePrefix, ok := allowedMediaExts[ext]
	if !ok {
		util.BadRequest(ctx, util.ErrInvalidMediaExt.Error())
		return
	}

	tmpName := util.GenerateRandomString(12) + ext
	tmpPath := filepath.Join(os.TempDir(), tmpName)
	if err := ctx.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer os.Remove(tmpPath)

	f, err := os.Open(tmpPath)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()

	if _, err := util.ValidateMimeType(f, []string{mimePrefix}); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if _, err := f.Seek(0, 0); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	var audioInfo *util.AudioInfo
	if strings.HasPrefix(mimePrefix, "audio") || mimePrefix == "application/ogg" {
		info, probeErr := util.GetAudioInfo(tmpPath)
		if probeErr != nil {
			logger.Log.Warn("音频探测失败", zap.String("file", fileHeader.Filename), zap.Error(probeErr))
		} else {
			audioInfo = info
		}
	}

	fileID, err := c.CMSClient.UploadFile(ctx.Request.Context(), fileHeader.Filename, f)
	if err != nil {
		logger.Log.Error("CMS文件上传失败", zap.String("file", fileHeader.Filename), zap.Error(err))
		util.Error(ctx, 502, "媒体后端暂不可用")
		return
	}

	// 同步一份到应用自己的存储，CMS故障时还能追溯原始文件
	if _, err := f.Seek(0, 0); err == nil {
		if _, backupErr := c.StorageService.Upload(ctx.Request.Context(), tmpName, f, fileHeader.Size, mimePrefix); backupErr != nil {
			logger.Log.Warn("媒体备份存储失败", zap.Error(backupErr))
		}
	}

	util.Success(ctx, gin.H{
		"fileId":    fileID,
		"assetUrl":  c.CMSClient.AssetURL(fileID),
		"audioInfo": audioInfo,
	})
}

package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")

	ErrClassNotFound    = errors.New("class not found")
	ErrRoadmapNotFound  = errors.New("roadmap not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrVocabNotFound    = errors.New("vocab entry not found")
	ErrExerciseNotFound = errors.New("exercise not found")

	// 主库写成功但CMS媒体写失败，练习进入 pending 状态等待补偿
	ErrMediaPending = errors.New("exercise created, media attachment pending")

	ErrInvalidImportRow = errors.New("学生导入文件格式错误")
	ErrInvalidMediaExt  = errors.New("不支持的媒体文件格式")
)

package service

import (
	"context"
	"math"

	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/repository"
	"lingo_edu_backend/internal/util"
)

// TopicReport 单个主题的班级学习进度
type TopicReport struct {
	TopicID    string `json:"topicId"`
	TopicName  string `json:"topicName"`
	Total      int64  `json:"total"`
	Known      int64  `json:"known"`
	Percentage int    `json:"percentage"`
}

// ClassReport 班级维度的进度报表
type ClassReport struct {
	ClassID      string        `json:"classId"`
	ClassName    string        `json:"className"`
	StudentCount int           `json:"studentCount"`
	Topics       []TopicReport `json:"topics"`
	Overall      int           `json:"overall"` // 各主题进度的平均值
}

// PlatformReport 平台概览
type PlatformReport struct {
	Students int64 `json:"students"`
	Teachers int64 `json:"teachers"`
	Admins   int64 `json:"admins"`
}

type ReportService struct {
	ClassRepo   *repository.ClassRepository
	RoadmapRepo *repository.RoadmapRepository
	VocabRepo   *repository.VocabRepository
	UserRepo    *repository.UserRepository
}

func NewReportService(classRepo *repository.ClassRepository, roadmapRepo *repository.RoadmapRepository,
	vocabRepo *repository.VocabRepository, userRepo *repository.UserRepository) *ReportService {
	return &ReportService{
		ClassRepo:   classRepo,
		RoadmapRepo: roadmapRepo,
		VocabRepo:   vocabRepo,
		UserRepo:    userRepo,
	}
}

// ClassProgress 汇总班级关联路线下每个主题的学习进度。
// 主题较多时逐个统计可能偏慢，ctx 取消后立即中止剩余统计
func (s *ReportService) ClassProgress(ctx context.Context, classID string) (*ClassReport, error) {
	class, err := s.ClassRepo.FindByID(classID)
	if err != nil {
		return nil, util.ErrClassNotFound
	}

	students, err := s.ClassRepo.Students(classID)
	if err != nil {
		return nil, err
	}

	report := &ClassReport{
		ClassID:      class.ID,
		ClassName:    class.Name,
		StudentCount: len(students),
		Topics:       []TopicReport{},
	}

	if class.RoadmapID == "" {
		return report, nil
	}

	topics, err := s.RoadmapRepo.TopicsByRoadmap(class.RoadmapID)
	if err != nil {
		return nil, err
	}

	sum := 0
	for _, topic := range topics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		total, known, err := s.VocabRepo.ProgressByTopic(topic.ID)
		if err != nil {
			return nil, err
		}

		percentage := 0
		if total > 0 {
			percentage = int(math.Round(float64(known) / float64(total) * 100))
		}
		sum += percentage

		report.Topics = append(report.Topics, TopicReport{
			TopicID:    topic.ID,
			TopicName:  topic.Name,
			Total:      total,
			Known:      known,
			Percentage: percentage,
		})
	}

	if len(report.Topics) > 0 {
		report.Overall = sum / len(report.Topics)
	}
	return report, nil
}

// RoleDistribution 平台用户角色分布
func (s *ReportService) RoleDistribution(ctx context.Context) (*PlatformReport, error) {
	counts, err := s.UserRepo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}

	return &PlatformReport{
		Students: counts[model.Student],
		Teachers: counts[model.Teacher],
		Admins:   counts[model.Admin],
	}, nil
}

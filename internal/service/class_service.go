package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/util"
	"lingo_edu_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const classCodeLength = 8

// ImportResult 学生导入汇总
type ImportResult struct {
	Created int      `json:"created"` // 新建的学生账号数
	Added   int      `json:"added"`   // 实际加入班级的人数
	Skipped int      `json:"skipped"` // 已在班级中被跳过的人数
	Errors  []string `json:"errors,omitempty"`
}

// ClassBackend 班级持久层访问
type ClassBackend interface {
	Create(class *model.Class) error
	FindByID(id string) (*model.Class, error)
	FindByCode(code string) (*model.Class, error)
	List(teacherID uint, req util.SearchRequest) ([]model.Class, int64, error)
	Update(class *model.Class) error
	Delete(id string) error
	AddStudents(classID string, userIDs []uint) (int, error)
	Students(classID string) ([]model.User, error)
	RemoveStudent(classID string, userID uint) error
}

// UserBackend 用户持久层访问，导入学生时用
type UserBackend interface {
	Create(user *model.User) error
	FindByEmail(email string) (*model.User, error)
}

type ClassService struct {
	ClassRepo ClassBackend
	UserRepo  UserBackend
}

func NewClassService(classRepo ClassBackend, userRepo UserBackend) *ClassService {
	return &ClassService{
		ClassRepo: classRepo,
		UserRepo:  userRepo,
	}
}

// Create 建班，邀请码自动生成，撞码时重试
func (s *ClassService) Create(class *model.Class) error {
	for attempt := 0; attempt < 3; attempt++ {
		code := util.GenerateRandomString(classCodeLength)
		class.Code = code

		_, err := s.ClassRepo.FindByCode(code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.ClassRepo.Create(class)
		}
		if err != nil {
			return err
		}
	}
	return errors.New("生成班级邀请码失败")
}

func (s *ClassService) Get(id string) (*model.Class, error) {
	class, err := s.ClassRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrClassNotFound
	}
	return class, err
}

func (s *ClassService) List(teacherID uint, req util.SearchRequest) ([]model.Class, int64, error) {
	return s.ClassRepo.List(teacherID, req)
}

func (s *ClassService) Update(id string, name, roadmapID, note string) (*model.Class, error) {
	class, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		class.Name = name
	}
	if roadmapID != "" {
		class.RoadmapID = roadmapID
	}
	class.Note = note

	if err := s.ClassRepo.Update(class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.ClassRepo.Delete(id)
}

// JoinByCode 学生凭邀请码加入班级
func (s *ClassService) JoinByCode(code string, userID uint) (*model.Class, error) {
	class, err := s.ClassRepo.FindByCode(code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.ClassRepo.AddStudents(class.ID, []uint{userID}); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) Students(classID string) ([]model.User, error) {
	if _, err := s.Get(classID); err != nil {
		return nil, err
	}
	return s.ClassRepo.Students(classID)
}

func (s *ClassService) RemoveStudent(classID string, userID uint) error {
	return s.ClassRepo.RemoveStudent(classID, userID)
}

// ImportStudents 从CSV批量导入学生。格式：name,email[,password]，首行为表头。
// 邮箱不存在的自动建号（默认角色 student），已有账号直接拉进班级。
// 单行出错不中断整个导入，错误逐行收集在结果里返回
func (s *ClassService) ImportStudents(classID string, r io.Reader) (*ImportResult, error) {
	if _, err := s.Get(classID); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidImportRow, err)
	}
	if len(rows) < 2 {
		return nil, util.ErrInvalidImportRow
	}

	result := &ImportResult{}
	userIDs := make([]uint, 0, len(rows)-1)

	for i, row := range rows[1:] {
		line := i + 2
		if len(row) < 2 {
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 列数不足", line))
			continue
		}

		name := strings.TrimSpace(row[0])
		email := strings.ToLower(strings.TrimSpace(row[1]))
		if name == "" || email == "" || !strings.Contains(email, "@") {
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 姓名或邮箱无效", line))
			continue
		}

		user, err := s.UserRepo.FindByEmail(email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			password := email
			if len(row) >= 3 && strings.TrimSpace(row[2]) != "" {
				password = strings.TrimSpace(row[2])
			}
			hashed, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if hashErr != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("第%d行: %v", line, hashErr))
				continue
			}

			user = &model.User{
				Name:     name,
				Email:    email,
				Password: string(hashed),
				Role:     model.Student,
			}
			if createErr := s.UserRepo.Create(user); createErr != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("第%d行: %v", line, createErr))
				continue
			}
			result.Created++
		} else if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: %v", line, err))
			continue
		}

		userIDs = append(userIDs, user.ID)
	}

	added, err := s.ClassRepo.AddStudents(classID, userIDs)
	if err != nil {
		return nil, err
	}
	result.Added = added
	result.Skipped = len(userIDs) - added

	logger.Log.Info("学生导入完成",
		zap.String("classId", classID),
		zap.Int("created", result.Created),
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

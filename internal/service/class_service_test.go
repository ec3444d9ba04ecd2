package service

import (
	"strings"
	"testing"

	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockClassRepo struct {
	classes  map[string]*model.Class
	byCode   map[string]*model.Class
	members  map[string]map[uint]bool
	removeFn func(string, uint) error
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{
		classes: make(map[string]*model.Class),
		byCode:  make(map[string]*model.Class),
		members: make(map[string]map[uint]bool),
	}
}

func (m *mockClassRepo) Create(class *model.Class) error {
	if class.ID == "" {
		class.ID = model.GenerateUUID()
	}
	m.classes[class.ID] = class
	m.byCode[class.Code] = class
	return nil
}

func (m *mockClassRepo) FindByID(id string) (*model.Class, error) {
	if class, ok := m.classes[id]; ok {
		return class, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) FindByCode(code string) (*model.Class, error) {
	if class, ok := m.byCode[code]; ok {
		return class, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) List(teacherID uint, req util.SearchRequest) ([]model.Class, int64, error) {
	return nil, 0, nil
}

func (m *mockClassRepo) Update(class *model.Class) error {
	m.classes[class.ID] = class
	return nil
}

func (m *mockClassRepo) Delete(id string) error {
	delete(m.classes, id)
	return nil
}

func (m *mockClassRepo) AddStudents(classID string, userIDs []uint) (int, error) {
	if m.members[classID] == nil {
		m.members[classID] = make(map[uint]bool)
	}
	added := 0
	for _, id := range userIDs {
		if m.members[classID][id] {
			continue
		}
		m.members[classID][id] = true
		added++
	}
	return added, nil
}

func (m *mockClassRepo) Students(classID string) ([]model.User, error) {
	var users []model.User
	for id := range m.members[classID] {
		user := model.User{Role: model.Student}
		user.ID = id
		users = append(users, user)
	}
	return users, nil
}

func (m *mockClassRepo) RemoveStudent(classID string, userID uint) error {
	if m.removeFn != nil {
		return m.removeFn(classID, userID)
	}
	delete(m.members[classID], userID)
	return nil
}

type mockUserStore struct {
	byEmail map[string]*model.User
	nextID  uint
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{byEmail: make(map[string]*model.User)}
}

func (m *mockUserStore) Create(user *model.User) error {
	m.nextID++
	user.ID = m.nextID
	m.byEmail[user.Email] = user
	return nil
}

func (m *mockUserStore) FindByEmail(email string) (*model.User, error) {
	if user, ok := m.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newClassFixture(t *testing.T) (*ClassService, *mockClassRepo, *model.Class) {
	t.Helper()
	repo := newMockClassRepo()
	svc := NewClassService(repo, newMockUserStore())

	class := &model.Class{Name: "三年二班", TeacherID: 7}
	require.NoError(t, svc.Create(class))
	return svc, repo, class
}

func TestCreateClassGeneratesCode(t *testing.T) {
	_, _, class := newClassFixture(t)

	assert.Len(t, class.Code, classCodeLength)
	assert.NotContains(t, class.Code, "0")
	assert.NotContains(t, class.Code, "O")
}

func TestJoinByCode(t *testing.T) {
	svc, repo, class := newClassFixture(t)

	joined, err := svc.JoinByCode(class.Code, 42)
	require.NoError(t, err)
	assert.Equal(t, class.ID, joined.ID)
	assert.True(t, repo.members[class.ID][42])

	_, err = svc.JoinByCode("WRONG123", 42)
	assert.ErrorIs(t, err, util.ErrClassNotFound)
}

func TestImportStudentsFromCSV(t *testing.T) {
	svc, repo, class := newClassFixture(t)

	csvData := strings.Join([]string{
		"name,email,password",
		"张三,zhangsan@example.com,secret1",
		"李四,lisi@example.com",
		"王五,LISI@example.com", // 邮箱大小写归一后算同一人
	}, "\n")

	result, err := svc.ImportStudents(class.ID, strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)
	assert.Len(t, repo.members[class.ID], 2)
}

func TestImportStudentsCollectsRowErrors(t *testing.T) {
	svc, _, class := newClassFixture(t)

	csvData := strings.Join([]string{
		"name,email",
		"张三,zhangsan@example.com",
		"没有邮箱列",
		"李四,not-an-email",
	}, "\n")

	result, err := svc.ImportStudents(class.ID, strings.NewReader(csvData))
	require.NoError(t, err)

	// 坏行不中断导入，好行照常进班
	assert.Equal(t, 1, result.Added)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "第3行")
	assert.Contains(t, result.Errors[1], "第4行")
}

func TestImportStudentsEmptyFile(t *testing.T) {
	svc, _, class := newClassFixture(t)

	_, err := svc.ImportStudents(class.ID, strings.NewReader("name,email"))
	assert.ErrorIs(t, err, util.ErrInvalidImportRow)
}

func TestImportStudentsUnknownClass(t *testing.T) {
	svc := NewClassService(newMockClassRepo(), newMockUserStore())

	_, err := svc.ImportStudents("ghost", strings.NewReader("name,email\na,b@c.d"))
	assert.ErrorIs(t, err, util.ErrClassNotFound)
}

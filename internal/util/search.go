package util

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10  // 列表视图
	BulkPageSize    = 100 // 主题内一次性加载
	maxPageSize     = 500
)

type SortField struct {
	Field string `json:"field" form:"field"`
	Order string `json:"order" form:"order"` // asc / desc
}

// SearchRequest 统一的分页检索载荷，主题内检索和全局检索共用。
// 越界页码不在这里截断，由数据层按实际行数返回空页
type SearchRequest struct {
	Page      int               `json:"page" form:"page"`
	Size      int               `json:"size" form:"size"`
	SearchKey string            `json:"searchKey" form:"searchKey"`
	Sort      []SortField       `json:"sort"`
	Filters   map[string]string `json:"filters"`
}

// NewSearchRequest 列表视图默认载荷：第一页、10条、创建时间倒序
func NewSearchRequest() SearchRequest {
	return SearchRequest{
		Page: 1,
		Size: DefaultPageSize,
		Sort: []SortField{{Field: "created_at", Order: "desc"}},
	}
}

// NewBulkSearchRequest 批量加载载荷（如一次拉取主题下全部词汇）
func NewBulkSearchRequest() SearchRequest {
	r := NewSearchRequest()
	r.Size = BulkPageSize
	return r
}

// SearchRequestFromQuery 从查询参数解析，缺省值与 NewSearchRequest 一致
func SearchRequestFromQuery(c *gin.Context) SearchRequest {
	r := NewSearchRequest()

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		r.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize))); err == nil && size > 0 {
		r.Size = size
	}
	r.SearchKey = c.Query("searchKey")

	if sortField := c.Query("sortField"); sortField != "" {
		order := strings.ToLower(c.DefaultQuery("sortOrder", "desc"))
		if order != "asc" {
			order = "desc"
		}
		r.Sort = []SortField{{Field: sortField, Order: order}}
	}

	return r
}

func (r SearchRequest) Offset() int {
	page := r.Page
	if page < 1 {
		page = 1
	}
	size := r.Size
	if size < 1 {
		size = DefaultPageSize
	}
	return (page - 1) * size
}

func (r SearchRequest) Limit() int {
	if r.Size < 1 {
		return DefaultPageSize
	}
	if r.Size > maxPageSize {
		return maxPageSize
	}
	return r.Size
}

// OrderClause 生成排序子句，字段必须在白名单内，否则退回创建时间倒序
func (r SearchRequest) OrderClause(allowed ...string) string {
	allowedSet := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		allowedSet[f] = true
	}

	var clauses []string
	for _, s := range r.Sort {
		if !allowedSet[s.Field] {
			continue
		}
		order := "desc"
		if strings.ToLower(s.Order) == "asc" {
			order = "asc"
		}
		clauses = append(clauses, s.Field+" "+order)
	}

	if len(clauses) == 0 {
		return "created_at desc"
	}
	return strings.Join(clauses, ", ")
}

// Paginate 返回可直接挂到 gorm 查询上的 scope
func (r SearchRequest) Paginate() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(r.Offset()).Limit(r.Limit())
	}
}

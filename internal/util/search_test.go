package util

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/vocabs?"+rawQuery, nil)
	return c
}

func TestSearchRequestDefaults(t *testing.T) {
	r := NewSearchRequest()
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 10, r.Size)
	require.Len(t, r.Sort, 1)
	assert.Equal(t, "created_at", r.Sort[0].Field)
	assert.Equal(t, "desc", r.Sort[0].Order)

	bulk := NewBulkSearchRequest()
	assert.Equal(t, 100, bulk.Size)
}

func TestSearchRequestFromQuery(t *testing.T) {
	c := queryContext(t, "page=3&size=25&searchKey=cat&sortField=word&sortOrder=asc")
	r := SearchRequestFromQuery(c)

	assert.Equal(t, 3, r.Page)
	assert.Equal(t, 25, r.Size)
	assert.Equal(t, "cat", r.SearchKey)
	require.Len(t, r.Sort, 1)
	assert.Equal(t, "word", r.Sort[0].Field)
	assert.Equal(t, "asc", r.Sort[0].Order)
}

func TestSearchRequestFromQueryBadValues(t *testing.T) {
	c := queryContext(t, "page=abc&size=-5")
	r := SearchRequestFromQuery(c)

	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 10, r.Size)
}

func TestOffsetAndLimit(t *testing.T) {
	r := SearchRequest{Page: 4, Size: 25}
	assert.Equal(t, 75, r.Offset())
	assert.Equal(t, 25, r.Limit())

	// 越界页码不截断，偏移照常计算
	r = SearchRequest{Page: 999, Size: 10}
	assert.Equal(t, 9980, r.Offset())

	r = SearchRequest{Page: 0, Size: 0}
	assert.Equal(t, 0, r.Offset())
	assert.Equal(t, 10, r.Limit())

	r = SearchRequest{Page: 1, Size: 10000}
	assert.Equal(t, 500, r.Limit())
}

func TestOrderClauseWhitelist(t *testing.T) {
	r := SearchRequest{Sort: []SortField{{Field: "word", Order: "asc"}}}
	assert.Equal(t, "word asc", r.OrderClause("word", "created_at"))

	// 白名单外的字段被忽略，退回默认排序
	r = SearchRequest{Sort: []SortField{{Field: "password; drop table users", Order: "asc"}}}
	assert.Equal(t, "created_at desc", r.OrderClause("word", "created_at"))
}

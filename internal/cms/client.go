package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MediaRecord CMS中的练习媒体附件，通过 ExerciseID 外键关联主库练习。
// ExerciseImage/Audio 存的是CMS文件ID，展示前需经 AssetURL 解析
type MediaRecord struct {
	ID            string `json:"id,omitempty"`
	ExerciseID    string `json:"exerciseId"`
	Type          string `json:"type"`
	ExerciseImage string `json:"exerciseImage,omitempty"`
	Audio         string `json:"audio,omitempty"`
}

type itemsEnvelope struct {
	Data []MediaRecord `json:"data"`
}

type itemEnvelope struct {
	Data MediaRecord `json:"data"`
}

type fileEnvelope struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Client 无头CMS客户端：按集合名做 item 增删改查和文件上传
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// AssetURL 把CMS文件ID解析成可访问的URL，空ID返回空串
func (c *Client) AssetURL(fileID string) string {
	if fileID == "" {
		return ""
	}
	return c.baseURL + "/assets/" + fileID
}

// ListItems 按 exerciseId 集合过滤拉取媒体记录；exerciseIDs 为空时拉取整个集合
func (c *Client) ListItems(ctx context.Context, collection string, exerciseIDs []string) ([]MediaRecord, error) {
	endpoint := c.baseURL + "/items/" + collection
	if len(exerciseIDs) > 0 {
		q := url.Values{}
		q.Set("filter[exerciseId][_in]", strings.Join(exerciseIDs, ","))
		q.Set("limit", "-1")
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Op: "list " + collection, Err: err}
	}

	body, err := c.do(req, "list "+collection)
	if err != nil {
		return nil, err
	}

	var envelope itemsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &DecodeError{Op: "list " + collection, Err: err}
	}
	return envelope.Data, nil
}

func (c *Client) CreateItem(ctx context.Context, collection string, record MediaRecord) (*MediaRecord, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, &TransportError{Op: "create " + collection, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/items/"+collection, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: "create " + collection, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, "create "+collection)
	if err != nil {
		return nil, err
	}

	var envelope itemEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &DecodeError{Op: "create " + collection, Err: err}
	}
	return &envelope.Data, nil
}

func (c *Client) UpdateItem(ctx context.Context, collection, id string, updates map[string]interface{}) error {
	payload, err := json.Marshal(updates)
	if err != nil {
		return &TransportError{Op: "update " + collection, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/items/"+collection+"/"+id, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Op: "update " + collection, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req, "update "+collection)
	return err
}

func (c *Client) DeleteItem(ctx context.Context, collection, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/items/"+collection+"/"+id, nil)
	if err != nil {
		return &TransportError{Op: "delete " + collection, Err: err}
	}

	_, err = c.do(req, "delete "+collection)
	return err
}

// UploadFile 上传媒体文件，返回CMS文件ID
func (c *Client) UploadFile(ctx context.Context, filename string, reader io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", &TransportError{Op: "upload file", Err: err}
	}
	if _, err := io.Copy(part, reader); err != nil {
		return "", &TransportError{Op: "upload file", Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &TransportError{Op: "upload file", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return "", &TransportError{Op: "upload file", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := c.do(req, "upload file")
	if err != nil {
		return "", err
	}

	var envelope fileEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &DecodeError{Op: "upload file", Err: err}
	}
	if envelope.Data.ID == "" {
		return "", &DecodeError{Op: "upload file", Err: fmt.Errorf("missing file id in response")}
	}
	return envelope.Data.ID, nil
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: msg}
	}

	return body, nil
}

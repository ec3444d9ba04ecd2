package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lingo_edu_backend/internal/config"
	"lingo_edu_backend/internal/model"
)

type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GeneratedVocab AI生成的词条
type GeneratedVocab struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Example string `json:"example"`
}

// GeneratedExercise AI生成的选择题
type GeneratedExercise struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// GenerateVocab 按主题生成词汇候选，由教师审核后入库
func (s *AIService) GenerateVocab(ctx context.Context, topicName string, count int) ([]GeneratedVocab, error) {
	prompt := fmt.Sprintf(
		"为语言学习主题「%s」生成 %d 个英语词条。"+
			"只输出JSON数组，不要任何解释文字，每个元素形如："+
			`{"word":"apple","meaning":"苹果","example":"I ate an apple."}`,
		topicName, count)

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var vocabs []GeneratedVocab
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &vocabs); err != nil {
		return nil, fmt.Errorf("AI返回内容解析失败: %w", err)
	}
	return vocabs, nil
}

// GenerateExercises 根据主题词汇生成选择题候选
func (s *AIService) GenerateExercises(ctx context.Context, topicName string, vocabs []model.VocabEntry, count int) ([]GeneratedExercise, error) {
	words := make([]string, 0, len(vocabs))
	for _, v := range vocabs {
		words = append(words, v.Word)
	}

	prompt := fmt.Sprintf(
		"基于主题「%s」的词汇表 [%s]，生成 %d 道四选一的词汇选择题。"+
			"只输出JSON数组，不要任何解释文字，每个元素形如："+
			`{"question":"What does 'apple' mean?","options":["苹果","香蕉","橙子","梨"],"correctAnswer":"苹果"}`,
		topicName, strings.Join(words, ", "), count)

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var exercises []GeneratedExercise
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &exercises); err != nil {
		return nil, fmt.Errorf("AI返回内容解析失败: %w", err)
	}
	return exercises, nil
}

func (s *AIService) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model": s.config.Model,
		"messages": []AIChatMessage{
			{Role: "system", Content: "你是一个语言教学内容生成助手，严格按要求输出JSON。"},
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI API returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// stripCodeFence 模型经常把JSON包在```代码块里，解析前剥掉
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}

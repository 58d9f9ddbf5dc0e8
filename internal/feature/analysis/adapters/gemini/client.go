// Package gemini はGoogle Gemini APIを使用したナラティブ生成クライアントを提供します。
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"tradedesk_backend/internal/feature/analysis/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// Narrator はGoogle Gemini APIを使用して分析ナラティブを生成します。
type Narrator struct {
	client *genai.Client
	model  string
}

// NarratorがNarratorインターフェースを実装していることをコンパイル時に検証します。
var _ usecase.Narrator = (*Narrator)(nil)

// NewNarrator はADCを使用してNarratorの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
// modelが空の場合はDefaultModelを使用します。
func NewNarrator(ctx context.Context, model string) (*Narrator, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Narrator{client: client, model: model}, nil
}

// Narrate はプロンプトからナラティブを生成します。空のレスポンスはエラーとして扱います。
func (n *Narrator) Narrate(ctx context.Context, prompt string) (string, error) {
	resp, err := n.client.Models.GenerateContent(ctx, n.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini API returned an empty response")
	}
	return text, nil
}

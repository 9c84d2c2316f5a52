package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/creativeos/creos/models"
)

const (
	summarySystemPrompt = "あなたは有用なアシスタントです。簡潔で情報豊富な要約を日本語で生成してください。"
	titleSystemPrompt   = "簡潔なタイトルのみ回答。説明不要。"

	maxTitleRunes = 25
)

var (
	thinkBlockRe    = regexp.MustCompile(`(?s)<think>.*?</think>`)
	thinkUnclosedRe = regexp.MustCompile(`(?s)<think>.*`)
	jsonObjectRe    = regexp.MustCompile(`(?s)\{.*\}`)
)

// Summarize generates a short Japanese summary for a bookmark. pageText is
// the extracted main content of the page and may be empty.
func (c *Client) Summarize(ctx context.Context, url, comment, pageText string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "このブックマークの要約を作成してください:\nURL: %s\nコメント: %s\n", url, comment)
	if pageText != "" {
		fmt.Fprintf(&b, "\nページ内容:\n%s\n", pageText)
	}
	b.WriteString("\nこのブックマークが何についてのものか本質を捉えた、簡潔な要約（3-4文）を生成してください。技術的な内容の場合は、具体的な技術名やキーワードを含めてください。")

	content, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: b.String()},
	}, 500, 0.7)
	if err != nil {
		return "", err
	}
	return stripThink(content), nil
}

// FallbackSummary is returned to clients when the provider is unavailable.
func FallbackSummary(comment string) string {
	return fmt.Sprintf("要約: %sに関するブックマーク", comment)
}

// GenerateTitle produces a short node title from the user's comment.
// Reasoning models sometimes leak <think> blocks; those are stripped and the
// result is capped at 25 characters.
func (c *Client) GenerateTitle(ctx context.Context, comment string) (string, error) {
	content, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: titleSystemPrompt},
		{Role: "user", Content: comment},
	}, 100, 0.7)
	if err != nil {
		return "", err
	}

	title := stripThink(content)
	if title == "" || strings.Contains(strings.ToLower(title), "think") {
		title = FallbackTitle(comment)
	}
	return truncateRunes(title, maxTitleRunes), nil
}

// FallbackTitle derives a title from the comment when generation fails.
func FallbackTitle(comment string) string {
	return truncateRunes(strings.TrimSpace(comment), maxTitleRunes)
}

// ExtractTags asks the model to classify a page and returns the parsed
// category, tags, and keywords. When the model response does not contain
// valid JSON the fixed fallback classification is returned without error.
func (c *Client) ExtractTags(ctx context.Context, text, url string) (*models.TagsResponse, error) {
	prompt := fmt.Sprintf(`以下のコンテンツを分析して、適切なタグとカテゴリを抽出してください。

コンテンツ:
"%s"

URL: %s

以下の形式でJSONを返してください：
{
  "category": "主要カテゴリ（技術、ビジネス、学習、エンタメ、ライフスタイル、ニュース、その他から選択）",
  "tags": ["タグ1", "タグ2", "タグ3", "タグ4", "タグ5"],
  "keywords": ["キーワード1", "キーワード2", "キーワード3"]
}

注意：
- タグは3-5個、簡潔で検索しやすいものを選択
- カテゴリは必ず指定した中から選択
- キーワードは重要な概念や用語を抽出
- 日本語と英語を混在させても構いません
- JSONフォーマット以外は出力しないでください`, text, url)

	content, err := c.complete(ctx, []chatMessage{{Role: "user", Content: prompt}}, 500, 0.3)
	if err != nil {
		return nil, err
	}

	result, ok := parseTagsResult(content)
	if !ok {
		return FallbackTags(), nil
	}
	return result, nil
}

// FallbackTags is the classification used when extraction fails.
func FallbackTags() *models.TagsResponse {
	return &models.TagsResponse{
		Category: "その他",
		Tags:     []string{"情報", "参考"},
		Keywords: []string{"コンテンツ"},
	}
}

// parseTagsResult pulls the first JSON object out of the model output.
// Models often wrap the JSON in prose or code fences.
func parseTagsResult(content string) (*models.TagsResponse, bool) {
	raw := jsonObjectRe.FindString(stripThink(content))
	if raw == "" {
		return nil, false
	}
	var result models.TagsResponse
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false
	}
	if result.Category == "" {
		result.Category = "その他"
	}
	return &result, true
}

func stripThink(s string) string {
	s = thinkBlockRe.ReplaceAllString(s, "")
	s = thinkUnclosedRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/creativeos/creos/config"
	"github.com/creativeos/creos/models"
)

func testConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Model:      "deepseek-chat",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	}
}

func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func completionBody(content string) string {
	return `{"choices":[{"message":{"content":` + jsonString(content) + `}}]}`
}

func jsonString(s string) string {
	out := `"`
	for _, r := range s {
		switch r {
		case '"':
			out += `\"`
		case '\n':
			out += `\n`
		default:
			out += string(r)
		}
	}
	return out + `"`
}

func TestSummarize(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(completionBody("Goの並行処理についての記事。")))
	})

	client := NewClient(nil, testConfig(srv.URL))
	summary, err := client.Summarize(context.Background(), "https://example.com", "go concurrency", "")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary != "Goの並行処理についての記事。" {
		t.Errorf("summary = %q", summary)
	}
}

func TestSummarizeStripsThinkBlocks(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("<think>reasoning here</think>実際の要約")))
	})

	client := NewClient(nil, testConfig(srv.URL))
	summary, err := client.Summarize(context.Background(), "https://example.com", "c", "")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary != "実際の要約" {
		t.Errorf("summary = %q, want think block removed", summary)
	}
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(completionBody("ok")))
	})

	client := NewClient(nil, testConfig(srv.URL))
	got, err := client.complete(context.Background(), []chatMessage{{Role: "user", Content: "hi"}}, 10, 0)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "ok" {
		t.Errorf("content = %q", got)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestCompleteDoesNotRetryAuthFailure(t *testing.T) {
	var calls atomic.Int32
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth"}}`))
	})

	client := NewClient(nil, testConfig(srv.URL))
	_, err := client.complete(context.Background(), []chatMessage{{Role: "user", Content: "hi"}}, 10, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.ErrCodeLLMAuthFailure {
		t.Errorf("error = %v, want LLM auth failure", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want no retries", n)
	}
}

func TestGenerateTitleCapsLength(t *testing.T) {
	long := "非常に長いタイトルが生成された場合でも二十五文字に切り詰められるはずです"
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody(long)))
	})

	client := NewClient(nil, testConfig(srv.URL))
	title, err := client.GenerateTitle(context.Background(), "comment")
	if err != nil {
		t.Fatalf("GenerateTitle: %v", err)
	}
	if got := len([]rune(title)); got > maxTitleRunes {
		t.Errorf("title length = %d runes, want <= %d", got, maxTitleRunes)
	}
}

func TestGenerateTitleFallsBackOnThinkLeak(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("<think>I should think about")))
	})

	client := NewClient(nil, testConfig(srv.URL))
	title, err := client.GenerateTitle(context.Background(), "DeepSeek APIの使い方")
	if err != nil {
		t.Fatalf("GenerateTitle: %v", err)
	}
	if title != "DeepSeek APIの使い方" {
		t.Errorf("title = %q, want fallback to comment", title)
	}
}

func TestExtractTags(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("結果は以下です。\n{\"category\":\"技術\",\"tags\":[\"Go\",\"並行処理\"],\"keywords\":[\"goroutine\"]}")))
	})

	client := NewClient(nil, testConfig(srv.URL))
	result, err := client.ExtractTags(context.Background(), "goroutines explained", "https://example.com")
	if err != nil {
		t.Fatalf("ExtractTags: %v", err)
	}
	if result.Category != "技術" {
		t.Errorf("category = %q", result.Category)
	}
	if len(result.Tags) != 2 || result.Tags[0] != "Go" {
		t.Errorf("tags = %v", result.Tags)
	}
}

func TestExtractTagsFallbackOnGarbage(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("sorry, I cannot produce JSON")))
	})

	client := NewClient(nil, testConfig(srv.URL))
	result, err := client.ExtractTags(context.Background(), "text", "https://example.com")
	if err != nil {
		t.Fatalf("ExtractTags: %v", err)
	}
	if result.Category != "その他" {
		t.Errorf("category = %q, want fallback", result.Category)
	}
}

func TestParseTagsResultDefaultsCategory(t *testing.T) {
	result, ok := parseTagsResult(`{"tags":["a"],"keywords":["b"]}`)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if result.Category != "その他" {
		t.Errorf("category = %q", result.Category)
	}
}

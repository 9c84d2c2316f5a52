package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// xPostResponse mirrors the creos x-post API response model.
type xPostResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Author struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"author"`
	Text      string   `json:"text"`
	Images    []string `json:"images"`
	VideoURL  string   `json:"videoUrl"`
	CreatedAt string   `json:"createdAt"`
}

// ogpResponse mirrors the creos OGP API response model.
type ogpResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	SiteName    string `json:"siteName"`
}

// summaryResponse mirrors the creos summary API response model.
type summaryResponse struct {
	Summary string `json:"summary"`
}

// nodeResponse mirrors the creos node model.
type nodeResponse struct {
	ID      string   `json:"id"`
	URL     string   `json:"url"`
	Comment string   `json:"comment"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// errorResponse mirrors the creos API error envelope.
type errorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("CREOS_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("CREOS_API_KEY")

	s := server.NewMCPServer(
		"creos",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	fetchPostTool := mcp.NewTool("fetch_post",
		mcp.WithDescription("Resolve an X (Twitter) post URL into structured content: author, text, images, video. Falls back through mirrors, oEmbed, and optionally a headless browser."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The post URL, e.g. https://x.com/user/status/123"),
		),
		mcp.WithBoolean("browser",
			mcp.Description("Force browser rendering for this request (slower, higher fidelity)"),
		),
	)
	s.AddTool(fetchPostTool, handleFetchPost(apiURL, apiKey))

	fetchMetadataTool := mcp.NewTool("fetch_metadata",
		mcp.WithDescription("Fetch Open Graph metadata (title, description, preview image) for any web page."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page"),
		),
	)
	s.AddTool(fetchMetadataTool, handleFetchMetadata(apiURL, apiKey))

	summarizeTool := mcp.NewTool("summarize_bookmark",
		mcp.WithDescription("Generate a short summary for a bookmarked page from its URL and an optional comment."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The bookmarked URL"),
		),
		mcp.WithString("comment",
			mcp.Description("The user's note about the bookmark"),
		),
	)
	s.AddTool(summarizeTool, handleSummarize(apiURL, apiKey))

	listNodesTool := mcp.NewTool("list_nodes",
		mcp.WithDescription("List all saved thought nodes (bookmarks) with their summaries and tags."),
	)
	s.AddTool(listNodesTool, handleListNodes(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the creos API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return respBody, resp.StatusCode, err
}

// apiErrorMessage extracts a readable message from an error envelope.
func apiErrorMessage(body []byte, status int) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != nil {
		return fmt.Sprintf("[%s] %s", er.Error.Code, er.Error.Message)
	}
	return fmt.Sprintf("request failed with status %d", status)
}

func handleFetchPost(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		browser := request.GetBool("browser", false)

		body, status, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/x-post",
			map[string]interface{}{"url": url, "browser": browser})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("x-post request failed: %v", err)), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(apiErrorMessage(body, status)), nil
		}

		var post xPostResponse
		if err := json.Unmarshal(body, &post); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "@%s (%s) — %s\n\n%s\n", post.Author.Username, post.Author.Name, post.CreatedAt, post.Text)
		for _, img := range post.Images {
			fmt.Fprintf(&sb, "\nImage: %s", img)
		}
		if post.VideoURL != "" {
			fmt.Fprintf(&sb, "\nVideo: %s", post.VideoURL)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleFetchMetadata(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		body, status, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/ogp",
			map[string]string{"url": url})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ogp request failed: %v", err)), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(apiErrorMessage(body, status)), nil
		}

		var meta ogpResponse
		if err := json.Unmarshal(body, &meta); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		result := fmt.Sprintf("Title: %s\nSite: %s\nDescription: %s\nImage: %s",
			meta.Title, meta.SiteName, meta.Description, meta.ImageURL)
		return mcp.NewToolResultText(result), nil
	}
}

func handleSummarize(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		comment := request.GetString("comment", "")

		body, status, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/summary",
			map[string]string{"url": url, "comment": comment})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("summary request failed: %v", err)), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(apiErrorMessage(body, status)), nil
		}

		var resp summaryResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		return mcp.NewToolResultText(resp.Summary), nil
	}
}

func handleListNodes(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/nodes", nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("create request: %v", err)), nil
		}
		if apiKey != "" {
			req.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("nodes request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("read response: %v", err)), nil
		}
		if resp.StatusCode != http.StatusOK {
			return mcp.NewToolResultError(apiErrorMessage(body, resp.StatusCode)), nil
		}

		var nodes []nodeResponse
		if err := json.Unmarshal(body, &nodes); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%d nodes:\n\n", len(nodes))
		for _, n := range nodes {
			fmt.Fprintf(&sb, "- [%s] %s\n", n.ID, n.URL)
			if n.Comment != "" {
				fmt.Fprintf(&sb, "  Comment: %s\n", n.Comment)
			}
			if n.Summary != "" {
				fmt.Fprintf(&sb, "  Summary: %s\n", n.Summary)
			}
			if len(n.Tags) > 0 {
				fmt.Fprintf(&sb, "  Tags: %s\n", strings.Join(n.Tags, ", "))
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

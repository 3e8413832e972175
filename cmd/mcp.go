package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/tsingjyujing/fastlang/controller"
	"github.com/tsingjyujing/fastlang/detect"
	"github.com/tsingjyujing/fastlang/split"
)

type DetectInput struct {
	Text  string `json:"text" jsonschema:"the text to identify the language of"`
	Model string `json:"model" jsonschema:"model tier to use: lite, full or auto"`
	Count int    `json:"k" jsonschema:"the number of candidate languages to return"`
}

type DetectOutput struct {
	Results []detect.Result `json:"results" jsonschema:"detected languages with confidence scores"`
}

type SegmentInput struct {
	Text string `json:"text" jsonschema:"the text to split into per-language cells"`
}

type SegmentOutput struct {
	Cells []split.Cell `json:"cells" jsonschema:"contiguous spans of text tagged with their dominant language"`
}

type FastlangMCP struct {
	client   *http.Client
	endpoint url.URL
}

func (f FastlangMCP) postJSON(path string, payload any, result any) error {
	u, err := url.Parse(path)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := f.client.Post(f.endpoint.ResolveReference(u).String(), "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func (f FastlangMCP) DetectLanguage(ctx context.Context, req *mcp.CallToolRequest, input DetectInput) (*mcp.CallToolResult, DetectOutput, error) {
	if input.Count <= 0 {
		input.Count = 1
	}
	var results []detect.Result
	err := f.postJSON("/api/v1/detect", controller.DetectParams{
		Text:  input.Text,
		Model: input.Model,
		K:     input.Count,
	}, &results)
	if err != nil {
		return nil, DetectOutput{}, err
	}
	return nil, DetectOutput{Results: results}, nil
}

func (f FastlangMCP) SegmentText(ctx context.Context, req *mcp.CallToolRequest, input SegmentInput) (*mcp.CallToolResult, SegmentOutput, error) {
	var cells []split.Cell
	err := f.postJSON("/api/v1/segment", controller.SegmentParams{Text: input.Text}, &cells)
	if err != nil {
		return nil, SegmentOutput{}, err
	}
	return nil, SegmentOutput{Cells: cells}, nil
}

// NewMcpCommand exposes the detection API as MCP tools over stdio, backed by
// a running fastlang server.
func NewMcpCommand() *cobra.Command {
	var fastlangEndpoint string

	mcpCommand := &cobra.Command{
		Use:   "mcp",
		Short: "Starting MCP server",
		Run: func(cmd *cobra.Command, args []string) {
			parsedURL, err := url.Parse(fastlangEndpoint)
			if err != nil {
				logger.Fatalf("Invalid fastlang endpoint URL: %v", err)
			}
			f := FastlangMCP{
				client:   http.DefaultClient,
				endpoint: *parsedURL,
			}
			server := mcp.NewServer(&mcp.Implementation{Name: "fastlang-mcp", Title: "MCP server for language identification", Version: "v1.0.0"}, nil)
			mcp.AddTool(server, &mcp.Tool{Name: "detect_language", Description: "Identify the natural language of a short text fragment"}, f.DetectLanguage)
			mcp.AddTool(server, &mcp.Tool{Name: "segment_text", Description: "Split mixed-language text into per-language cells"}, f.SegmentText)
			if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				logger.Fatal(err)
			}
		},
	}
	mcpCommand.Flags().StringVarP(
		&fastlangEndpoint,
		"endpoint",
		"e", "http://localhost:8080",
		"fastlang server endpoint URL",
	)
	return mcpCommand
}

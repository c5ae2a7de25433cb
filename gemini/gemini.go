// Package gemini 调用 Gemini 图像模型生成像素风素材。
package gemini

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	nhttp "github.com/chaos-io/pixelprep/util/http"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "nano"
	// DefaultOutputDir 未指定输出路径时写入该目录，文件名为 ksuid
	DefaultOutputDir = "generated"

	requestTimeout = 2 * time.Minute
	promptLogLen   = 150
)

// StylePrefix 固定的风格前缀，保证素材风格一致：
// 实心像素画、橙色系、纯黑背景、白色闪光点（后续去背景时会被移除）
const StylePrefix = "Chunky solid filled pixel art, retro 8-bit video game sprite style, " +
	"orange and dark orange color palette with shading on pure black background, " +
	"solid filled shapes not outlines, thick bold pixels, " +
	"small white sparkle stars scattered in the background, " +
	"dynamic energetic action pose, fitness themed, " +
	"no text, no watermarks, no UI elements. "

// Models 模型别名到模型 ID
var Models = map[string]string{
	"nano":  "gemini-2.5-flash-image",
	"pro":   "gemini-3-pro-image-preview",
	"nano2": "gemini-3.1-flash-image-preview",
}

var (
	ErrNoImageData  = errors.New("no image data in response, prompt may have been blocked")
	ErrUnknownModel = errors.New("unknown model")
	ErrEmptyPrompt  = errors.New("prompt is empty")
)

// ModelNames 排序后的模型别名，用于命令行帮助
func ModelNames() []string {
	names := make([]string, 0, len(Models))
	for name := range Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModelID 把别名解析为模型 ID，空字符串使用默认模型
func ModelID(name string) (string, error) {
	if name == "" {
		name = DefaultModel
	}
	id, ok := Models[name]
	if !ok {
		return "", errors.Wrapf(ErrUnknownModel, "%q, want one of %v", name, ModelNames())
	}
	return id, nil
}

type Request struct {
	Prompt string
	// Model 模型别名：nano / pro / nano2
	Model string
	// Raw 为 true 时不加风格前缀
	Raw bool
}

func (r Request) FullPrompt() string {
	if r.Raw {
		return r.Prompt
	}
	return StylePrefix + r.Prompt
}

type Client struct {
	apiKey  string
	baseURL string
	cli     nhttp.IClient
}

type Option func(c *Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(cli nhttp.IClient) Option {
	return func(c *Client) {
		c.cli = cli
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		cli:     nhttp.NewHTTPClient(nhttp.WithTimeout(requestTimeout)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type generateContentReq struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateContentResp struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

/*
	curl "$BASE_URL/v1beta/models/gemini-2.5-flash-image:generateContent" \
	  -H "x-goog-api-key: $GEMINI_API_KEY" \
	  -H "Content-Type: application/json" \
	  -d '{"contents": [{"parts": [{"text": "..."}]}], "generationConfig": {"responseModalities": ["IMAGE"]}}'
*/
func (c *Client) Generate(ctx context.Context, req Request) ([]byte, error) {
	if req.Prompt == "" {
		return nil, ErrEmptyPrompt
	}
	modelID, err := ModelID(req.Model)
	if err != nil {
		return nil, err
	}

	prompt := req.FullPrompt()
	slog.Info("generating image", "model", modelID, "prompt", truncate(prompt, promptLogLen))

	resp := &generateContentResp{}
	reqParam := &nhttp.RequestParam{
		RequestURI: c.baseURL + "/v1beta/models/" + modelID + ":generateContent",
		Method:     http.MethodPost,
		Header:     map[string]string{"x-goog-api-key": c.apiKey},
		Body: generateContentReq{
			Contents:         []content{{Parts: []part{{Text: prompt}}}},
			GenerationConfig: generationConfig{ResponseModalities: []string{"IMAGE"}},
		},
		Response: resp,
	}
	if err := c.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, errors.Wrap(err, "generate content")
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, errors.Wrapf(ErrNoImageData, "blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, ErrNoImageData
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData == nil || p.InlineData.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			return nil, errors.Wrap(err, "decode inline data")
		}
		return data, nil
	}

	return nil, errors.Wrapf(ErrNoImageData, "finish reason %q", resp.Candidates[0].FinishReason)
}

// GenerateToFile 生成图片并写入 output，返回绝对路径。
// output 为空时写到 generated/<ksuid>.png
func (c *Client) GenerateToFile(ctx context.Context, req Request, output string) (string, error) {
	data, err := c.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	if output == "" {
		output = filepath.Join(DefaultOutputDir, ksuid.New().String()+".png")
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", output)
	}
	if err := os.MkdirAll(filepath.Dir(abs), os.ModePerm); err != nil {
		return "", errors.Wrapf(err, "create dir for %s", abs)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", abs)
	}

	slog.Info("saved image", "path", abs, "bytes", len(data))
	return abs, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gemini 以 Google Gemini 實作 oracle.Oracle。
package gemini

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/oracle"
	"github.com/zintix-labs/hongbao/outcome"
)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey string
	Model  string
	// Mult 是要求模型抽吉兆倍率的區間，寫進 prompt。
	Mult outcome.MultiplierRange
	Log  *slog.Logger
}

type Client struct {
	c     *genai.Client
	model string
	mult  outcome.MultiplierRange
	log   *slog.Logger
}

// New 建立 Gemini client。APIKey 為空時回傳 oracle.ErrUnavailable，
// 呼叫端應改用 oracle.Offline。
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errs.Wrap(oracle.ErrUnavailable, "gemini api key missing")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, errs.WrapLevel(err, errs.Fatal, "failed to create gemini client")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{c: c, model: cfg.Model, mult: cfg.Mult, log: cfg.Log}, nil
}

func (c *Client) Close() error {
	return c.c.Close()
}

func (c *Client) JudgeAnswer(ctx context.Context, question, answer string) (oracle.AuntieVerdict, error) {
	text, err := c.generate(ctx, auntieSystem, auntieSchema, auntiePrompt(question, answer))
	if err != nil {
		return oracle.AuntieVerdict{}, err
	}
	return parseAuntie(text)
}

func (c *Client) InterpretDream(ctx context.Context, dream string) (oracle.DreamVerdict, error) {
	text, err := c.generate(ctx, dreamSystem, dreamSchema, dreamPrompt(dream, c.mult))
	if err != nil {
		return oracle.DreamVerdict{}, err
	}
	return parseDream(text)
}

func (c *Client) RelativeQuestion(ctx context.Context) (oracle.RelativeQuestion, error) {
	text, err := c.generate(ctx, relativeSystem, relativeQuestionSchema, relativeQuestionPrompt)
	if err != nil {
		return oracle.RelativeQuestion{}, err
	}
	return parseRelativeQuestion(text)
}

func (c *Client) JudgeRelative(ctx context.Context, description, answer string) (oracle.RelativeVerdict, error) {
	text, err := c.generate(ctx, relativeSystem, relativeJudgeSchema, relativeJudgePrompt(description, answer))
	if err != nil {
		return oracle.RelativeVerdict{}, err
	}
	return parseRelativeVerdict(text)
}

// generate 以 JSON 模式呼叫模型並回傳文字內容。
func (c *Client) generate(ctx context.Context, system string, schema *genai.Schema, prompt string) (string, error) {
	m := c.c.GenerativeModel(c.model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = schema

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", errs.WrapWithExtra(oracle.ErrUnavailable, "gemini generate failed", err.Error())
	}
	text := getText(resp)
	if strings.TrimSpace(text) == "" {
		return "", errs.Wrap(oracle.ErrMalformed, "gemini returned no text")
	}
	c.log.Debug("gemini reply", slog.String("model", c.model), slog.Int("bytes", len(text)))
	return text, nil
}

func getText(resp *genai.GenerateContentResponse) string {
	var text string
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				text += string(txt)
			}
		}
	}
	return text
}

var _ oracle.Oracle = (*Client)(nil)

func multLabel(r outcome.MultiplierRange) string {
	return fmt.Sprintf("%.1f 到 %.1f", r.Min, r.Max)
}

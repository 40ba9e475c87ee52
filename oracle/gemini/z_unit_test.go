package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/zintix-labs/hongbao/oracle"
	"github.com/zintix-labs/hongbao/outcome"
)

func TestParseAuntie(t *testing.T) {
	v, err := parseAuntie(`{"score": 87.6, "comment": " 嘖嘖嘖 ", "isPass": true}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Score != 88 || v.Comment != "嘖嘖嘖" || !v.Pass {
		t.Fatalf("unexpected verdict %+v", v)
	}
	if _, err := parseAuntie(`{"comment": "x"}`); !errors.Is(err, oracle.ErrMalformed) {
		t.Fatalf("missing fields must be malformed, got %v", err)
	}
}

func TestParseToleratesFences(t *testing.T) {
	text := "```json\n{\"type\": \"GOOD\", \"explanation\": \"大吉\", \"multiplier\": 2.5}\n```"
	v, err := parseDream(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !v.Good || v.Multiplier != 2.5 {
		t.Fatalf("unexpected verdict %+v", v)
	}
}

func TestParseDream(t *testing.T) {
	v, err := parseDream(`{"type": "bad", "explanation": "大凶", "multiplier": 2}`)
	if err != nil || v.Good || v.Multiplier != 0 {
		t.Fatalf("bad dream must carry 0 multiplier: %+v %v", v, err)
	}
	if _, err := parseDream(`{"type": "MEH", "explanation": ""}`); !errors.Is(err, oracle.ErrMalformed) {
		t.Fatalf("unknown type must be malformed")
	}
	if _, err := parseDream(`{"type": "GOOD", "explanation": ""}`); !errors.Is(err, oracle.ErrMalformed) {
		t.Fatalf("good without multiplier must be malformed")
	}
	if _, err := parseDream(`not json`); !errors.Is(err, oracle.ErrMalformed) {
		t.Fatalf("garbage must be malformed")
	}
}

func TestParseRelative(t *testing.T) {
	q, err := parseRelativeQuestion(`{"description": "媽媽的弟弟", "answer": "舅舅"}`)
	if err != nil || q.Description != "媽媽的弟弟" || q.Answer != "舅舅" {
		t.Fatalf("unexpected question %+v %v", q, err)
	}
	v, err := parseRelativeVerdict(`{"isCorrect": false, "correctAnswer": "舅舅", "comment": "亂叫"}`)
	if err != nil || v.Correct || v.CorrectAnswer != "舅舅" {
		t.Fatalf("unexpected verdict %+v %v", v, err)
	}
	if _, err := parseRelativeVerdict(`{"comment": "x"}`); !errors.Is(err, oracle.ErrMalformed) {
		t.Fatalf("missing isCorrect must be malformed")
	}
}

func TestGetText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`1}`)}},
	}}}
	if got := getText(resp); got != `{"a":1}` {
		t.Fatalf("unexpected text %q", got)
	}
	if getText(nil) != "" {
		t.Fatalf("nil response must yield empty text")
	}
}

func TestNewWithoutKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if !errors.Is(err, oracle.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestDreamPromptCarriesRange(t *testing.T) {
	p := dreamPrompt("馬桶", outcome.MultiplierRange{Min: 1.5, Max: 3})
	if !strings.Contains(p, "1.5 到 3.0") || !strings.Contains(p, "馬桶") {
		t.Fatalf("prompt missing inputs: %s", p)
	}
}

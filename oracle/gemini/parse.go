package gemini

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/oracle"
)

type auntieReply struct {
	Score   *float64 `json:"score"`
	Comment string   `json:"comment"`
	IsPass  *bool    `json:"isPass"`
}

type dreamReply struct {
	Type        string   `json:"type"`
	Explanation string   `json:"explanation"`
	Multiplier  *float64 `json:"multiplier"`
}

type relativeQuestionReply struct {
	Description string `json:"description"`
	Answer      string `json:"answer"`
}

type relativeJudgeReply struct {
	IsCorrect     *bool  `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
	Comment       string `json:"comment"`
}

// decode 先嘗試整段解析，失敗時擷取第一個 { 到最後一個 } 再試一次。
func decode(text string, v any) error {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return errs.Wrap(oracle.ErrMalformed, "empty reply")
	}
	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}
	if cleaned := extractJSONObject(raw); cleaned != "" {
		if err2 := json.Unmarshal([]byte(cleaned), v); err2 == nil {
			return nil
		}
	}
	return errs.WrapWithExtra(oracle.ErrMalformed, "reply is not json", err.Error())
}

func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end < start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}

func parseAuntie(text string) (oracle.AuntieVerdict, error) {
	var r auntieReply
	if err := decode(text, &r); err != nil {
		return oracle.AuntieVerdict{}, err
	}
	if r.Score == nil || r.IsPass == nil || math.IsNaN(*r.Score) || math.IsInf(*r.Score, 0) {
		return oracle.AuntieVerdict{}, errs.Wrap(oracle.ErrMalformed, "auntie reply missing score or isPass")
	}
	return oracle.AuntieVerdict{
		Score:   int(math.Round(*r.Score)),
		Comment: strings.TrimSpace(r.Comment),
		Pass:    *r.IsPass,
	}, nil
}

func parseDream(text string) (oracle.DreamVerdict, error) {
	var r dreamReply
	if err := decode(text, &r); err != nil {
		return oracle.DreamVerdict{}, err
	}
	var good bool
	switch strings.ToUpper(strings.TrimSpace(r.Type)) {
	case "GOOD":
		good = true
	case "BAD":
	default:
		return oracle.DreamVerdict{}, errs.WrapWithExtra(oracle.ErrMalformed, "unknown dream type", r.Type)
	}
	v := oracle.DreamVerdict{Good: good, Explanation: strings.TrimSpace(r.Explanation)}
	if good {
		if r.Multiplier == nil {
			return oracle.DreamVerdict{}, errs.Wrap(oracle.ErrMalformed, "good dream without multiplier")
		}
		v.Multiplier = *r.Multiplier
	}
	return v, nil
}

func parseRelativeQuestion(text string) (oracle.RelativeQuestion, error) {
	var r relativeQuestionReply
	if err := decode(text, &r); err != nil {
		return oracle.RelativeQuestion{}, err
	}
	return oracle.RelativeQuestion{
		Description: strings.TrimSpace(r.Description),
		Answer:      strings.TrimSpace(r.Answer),
	}, nil
}

func parseRelativeVerdict(text string) (oracle.RelativeVerdict, error) {
	var r relativeJudgeReply
	if err := decode(text, &r); err != nil {
		return oracle.RelativeVerdict{}, err
	}
	if r.IsCorrect == nil {
		return oracle.RelativeVerdict{}, errs.Wrap(oracle.ErrMalformed, "relative reply missing isCorrect")
	}
	return oracle.RelativeVerdict{
		Correct:       *r.IsCorrect,
		CorrectAnswer: strings.TrimSpace(r.CorrectAnswer),
		Comment:       strings.TrimSpace(r.Comment),
	}, nil
}

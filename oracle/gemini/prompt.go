package gemini

import (
	"fmt"

	"github.com/google/generative-ai-go/genai"

	"github.com/zintix-labs/hongbao/outcome"
)

const auntieSystem = "你是一位嚴格、傳統但內心其實關心晚輩的華人阿姨。請務必使用繁體中文回答。"

func auntiePrompt(question, answer string) string {
	return fmt.Sprintf(`你現在扮演一位在農曆新年期間的「毒舌華人阿姨」。
我問了使用者：「%s」。
使用者回答：「%s」。

請評斷他們的回應。
- 如果他們有禮貌、機智，或是吹牛吹得很成功，給高分。
- 如果他們無禮、含糊其辭或令人失望，給低分。
- 如果他們巧妙地迴避問題，給中高分。

請以 JSON 格式回覆。評論部分請使用繁體中文，語氣要像長輩（帶點「唉唷」、「嘖嘖嘖」或說教語氣）。`, question, answer)
}

var auntieSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score": {
			Type:        genai.TypeNumber,
			Description: "A score from 0 to 100 based on how satisfactory the user's answer is to a traditional Chinese auntie.",
		},
		"comment": {
			Type:        genai.TypeString,
			Description: "The auntie's verbal response to the answer in Traditional Chinese. Should be sassy, judgmental, or surprisingly approving.",
		},
		"isPass": {
			Type:        genai.TypeBoolean,
			Description: "True if the score is greater than or equal to 60, False otherwise.",
		},
	},
	Required: []string{"score", "comment", "isPass"},
}

const dreamSystem = "你是一位道行高深、說話玄妙又帶點幽默的周公解夢大師。請務必使用繁體中文回答。"

func dreamPrompt(dream string, r outcome.MultiplierRange) string {
	return fmt.Sprintf(`使用者在新年期間夢到了：「%s」。

請用周公解夢的口吻判斷這個夢是吉兆（GOOD）還是凶兆（BAD）。
- 越有創意、越離奇的夢越有機會是吉兆。
- 吉兆時請給一個介於 %s 之間的倍率（可以有一位小數）。
- 凶兆時倍率請填 0。

請以 JSON 格式回覆，解說請使用繁體中文，一到兩句即可。`, dream, multLabel(r))
}

var dreamSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"type": {
			Type:        genai.TypeString,
			Enum:        []string{"GOOD", "BAD"},
			Description: "GOOD for an auspicious dream, BAD otherwise.",
		},
		"explanation": {
			Type:        genai.TypeString,
			Description: "The interpretation in Traditional Chinese.",
		},
		"multiplier": {
			Type:        genai.TypeNumber,
			Description: "Payout multiplier for GOOD dreams, 0 for BAD dreams.",
		},
	},
	Required: []string{"type", "explanation", "multiplier"},
}

const relativeSystem = "你是過年時負責考晚輩親戚稱謂的長輩，熟悉台灣常用的親屬稱謂。請務必使用繁體中文回答。"

const relativeQuestionPrompt = `請出一道親戚稱謂題，用「誰的誰的誰」的方式描述一位親戚（兩到四層關係），
並給出台灣最常用的標準稱謂作為答案。題目不要太簡單，也不要出現歧義。

請以 JSON 格式回覆。`

var relativeQuestionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"description": {
			Type:        genai.TypeString,
			Description: "The relationship chain, e.g. 爸爸的哥哥的太太.",
		},
		"answer": {
			Type:        genai.TypeString,
			Description: "The standard kinship title.",
		},
	},
	Required: []string{"description", "answer"},
}

func relativeJudgePrompt(description, answer string) string {
	return fmt.Sprintf(`題目：「%s」。
晚輩回答：「%s」。

請判斷稱謂是否正確（常見的同義稱呼也算對），給出正確稱謂，並用長輩口吻講一句評語。
請以 JSON 格式回覆。`, description, answer)
}

var relativeJudgeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"isCorrect": {
			Type: genai.TypeBoolean,
		},
		"correctAnswer": {
			Type:        genai.TypeString,
			Description: "The standard kinship title.",
		},
		"comment": {
			Type:        genai.TypeString,
			Description: "A short remark in Traditional Chinese.",
		},
	},
	Required: []string{"isCorrect", "correctAnswer", "comment"},
}

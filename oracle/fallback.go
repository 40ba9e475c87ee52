package oracle

// 失敗時的固定回覆。看起來與正常 verdict 無異，只有 Fallback 旗標不同。

func FallbackAuntie() AuntieVerdict {
	return AuntieVerdict{
		Score:    0,
		Comment:  "唉唷！我的助聽器（伺服器）壞了，聽不清楚你說什麼。這局算你輸！",
		Pass:     false,
		Fallback: true,
	}
}

func FallbackDream() DreamVerdict {
	return DreamVerdict{
		Good:        false,
		Explanation: "周公今天休假，夢境一片模糊。天機不可洩漏，這局算凶！",
		Multiplier:  0,
		Fallback:    true,
	}
}

func FallbackRelativeQuestion() RelativeQuestion {
	return RelativeQuestion{
		Description: "爸爸的哥哥的太太，你要叫她什麼？",
		Answer:      "伯母",
		Fallback:    true,
	}
}

func FallbackRelative(correctAnswer string) RelativeVerdict {
	return RelativeVerdict{
		Correct:       false,
		CorrectAnswer: correctAnswer,
		Comment:       "親戚太多，連族譜都翻爛了也對不起來。這局算你叫錯！",
		Fallback:      true,
	}
}

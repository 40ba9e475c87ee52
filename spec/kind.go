package spec

import "strings"

// Kind 是小遊戲種類的識別字，同時作為設定檔 key 與 API 路徑參數。
type Kind string

const (
	KindAuntie   Kind = "auntie"   // 毒舌阿姨：口頭挑戰，oracle 評分
	KindDice     Kind = "dice"     // 馬年骰子樂：大/小/豹子
	KindDream    Kind = "dream"    // 周公解夢：oracle 給出吉凶與倍率
	KindRelative Kind = "relative" // 親戚稱謂：oracle 出題與判定（變體模式）
)

// Kinds 回傳所有已知種類，順序固定。
func Kinds() []Kind {
	return []Kind{KindAuntie, KindDice, KindDream, KindRelative}
}

// ParseKind 不分大小寫解析種類；未知種類回傳 false。
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, true
		}
	}
	return "", false
}

func (k Kind) String() string { return string(k) }

package stats

import "sort"

// WinBuckets 以「回收倍數」(派彩總額 / 下注) 分桶。
//
// 請勿修改預設值
//   - 區間: [0,0], (0,1), [1,2), [2,5), [5,10), [10,20), [20,+inf)
//
// 骰子遊戲的回收倍數只會是 0、1+even_payout、1+triple_payout，
// 但阿姨與解夢的倍數會落在中間區間，因此沿用同一組邊界。
type WinBuckets struct {
	bounds []float64
	labels []string
}

var Buckets = &WinBuckets{
	bounds: []float64{0, 1, 2, 5, 10, 20},
	labels: []string{"[0,0]", "(0,1)", "[1,2)", "[2,5)", "[5,10)", "[10,20)", "[20,+inf)"},
}

func (b *WinBuckets) WinBucketStr() []string {
	return b.labels
}

func (b *WinBuckets) Len() int { return len(b.labels) }

// Index 回傳 ret/bet 所屬的桶位置。bet <= 0 或 ret <= 0 一律落在 [0,0]。
func (b *WinBuckets) Index(ret, bet int) int {
	if ret <= 0 || bet <= 0 {
		return 0
	}
	m := float64(ret) / float64(bet)
	// bounds[1:] 之後第一個 > m 的邊界
	i := sort.Search(len(b.bounds)-1, func(i int) bool { return b.bounds[i+1] > m })
	return i + 1
}

package sentiment

// japaneseStems are matched as substrings. Stems stop before the inflection
// so that negated forms such as 難しくない still match.
var japaneseStems = map[string]float64{
	"嬉し":    0.8,
	"うれし":   0.8,
	"楽し":    0.7,
	"素晴らし":  1.0,
	"最高":    1.0,
	"満足":    0.6,
	"良い":    0.7,
	"良く":    0.7,
	"助か":    0.6,
	"便利":    0.5,
	"ありがとう": 0.6,
	"安心":    0.6,
	"悪い":    -0.7,
	"悪く":    -0.7,
	"最悪":    -1.0,
	"困":     -0.5,
	"不安":    -0.6,
	"不満":    -0.7,
	"難し":    -0.4,
	"嫌":     -0.8,
	"残念":    -0.6,
	"つまらな":  -0.6,
	"怒":     -0.7,
	"悲し":    -0.8,
	"大変":    -0.4,
}

var japaneseNegations = []string{
	"くない",
	"くなかった",
	"ない",
	"なかった",
	"ません",
	"ではない",
	"じゃない",
}

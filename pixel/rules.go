package pixel

// Sample 单个像素的 RGB 统计量，全部用 int 计算避免 uint8 下溢
type Sample struct {
	Max        int
	Min        int
	Saturation int
}

func NewSample(r, g, b uint8) Sample {
	hi := max(int(r), int(g), int(b))
	lo := min(int(r), int(g), int(b))
	return Sample{Max: hi, Min: lo, Saturation: hi - lo}
}

// Rule 一条背景判定规则，命中即视为背景
type Rule struct {
	Name  string
	Match func(s Sample) bool
}

const (
	RuleBlack       = "black"
	RuleSparkle     = "sparkle"
	RuleGraySparkle = "gray-sparkle"
)

// Rules 按顺序返回背景规则。两条闪光点规则各自独立调参，不要合并成一个公式
func (c Config) Rules() []Rule {
	return []Rule{
		{
			Name: RuleBlack,
			Match: func(s Sample) bool {
				return s.Max < c.BlackThreshold
			},
		},
		{
			Name: RuleSparkle,
			Match: func(s Sample) bool {
				return s.Min > c.WhiteThreshold && s.Saturation < c.SparkleSaturationMax
			},
		},
		{
			Name: RuleGraySparkle,
			Match: func(s Sample) bool {
				g := c.GraySparkle
				return s.Min > g.MinFloor && s.Saturation < g.SaturationMax && s.Max > g.MaxFloor
			},
		},
	}
}

// Classify 返回第一条命中的规则名，没有命中时 background 为 false
func Classify(s Sample, rules []Rule) (label string, background bool) {
	for _, r := range rules {
		if r.Match(s) {
			return r.Name, true
		}
	}
	return "", false
}

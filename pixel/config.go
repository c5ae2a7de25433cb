package pixel

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid pixel config")

// GraySparkle 第二条稀疏高光规则的参数，和 Config 中的 sparkle 规则分开调参
type GraySparkle struct {
	// MinFloor min(R,G,B) 必须大于该值
	MinFloor int `json:"min_floor" yaml:"min_floor"`
	// SaturationMax max-min 必须小于该值
	SaturationMax int `json:"saturation_max" yaml:"saturation_max"`
	// MaxFloor max(R,G,B) 必须大于该值
	MaxFloor int `json:"max_floor" yaml:"max_floor"`
}

type Config struct {
	// BlackThreshold max(R,G,B) 低于该值视为黑色背景
	BlackThreshold int `json:"black_threshold" yaml:"black_threshold"`
	// WhiteThreshold min(R,G,B) 高于该值且饱和度低时视为白色闪光点
	WhiteThreshold int `json:"white_threshold" yaml:"white_threshold"`
	// SparkleSaturationMax 闪光点检测的饱和度上限
	SparkleSaturationMax int `json:"sparkle_saturation_max" yaml:"sparkle_saturation_max"`
	// GraySparkle 较暗的灰色闪光点
	GraySparkle GraySparkle `json:"gray_sparkle" yaml:"gray_sparkle"`
	// Padding 裁剪框每边扩展的像素
	Padding int `json:"padding" yaml:"padding"`
}

func DefaultConfig() Config {
	return Config{
		BlackThreshold:       45,
		WhiteThreshold:       200,
		SparkleSaturationMax: 30,
		GraySparkle: GraySparkle{
			MinFloor:      150,
			SaturationMax: 20,
			MaxFloor:      170,
		},
		Padding: 4,
	}
}

func (c Config) Validate() error {
	channels := []struct {
		name string
		v    int
	}{
		{"black_threshold", c.BlackThreshold},
		{"white_threshold", c.WhiteThreshold},
		{"sparkle_saturation_max", c.SparkleSaturationMax},
		{"gray_sparkle.min_floor", c.GraySparkle.MinFloor},
		{"gray_sparkle.saturation_max", c.GraySparkle.SaturationMax},
		{"gray_sparkle.max_floor", c.GraySparkle.MaxFloor},
	}
	for _, ch := range channels {
		if ch.v < 0 || ch.v > 255 {
			return errors.Wrapf(ErrInvalidConfig, "%s = %d, want 0..255", ch.name, ch.v)
		}
	}
	if c.Padding < 0 {
		return errors.Wrapf(ErrInvalidConfig, "padding = %d, want >= 0", c.Padding)
	}
	return nil
}

// LoadConfig 读取 yaml 配置，未出现的字段保持默认值
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "unmarshal config %s", path)
	}

	return cfg, cfg.Validate()
}

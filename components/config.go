package components

// Config holds document-wide simulation settings.
type Config struct {
	TimeStep     float32    `json:"time_step"`
	FrameRate    int        `json:"frame_rate"`
	FrameSkip    int        `json:"frame_skip,omitempty"`
	Gravity      [3]float32 `json:"gravity"`
	ReturnNodes  bool       `json:"return_nodes"`
	ReturnFrames bool       `json:"return_frames"`
}

func NewConfig() *Config {
	return &Config{
		TimeStep:    0.02,
		FrameRate:   30,
		Gravity:     [3]float32{0, -9.81, 0},
		ReturnNodes: true,
	}
}

func (*Config) ExtensionName() string { return ConfigExtension }

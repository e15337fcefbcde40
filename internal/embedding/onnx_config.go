package embedding

// ONNXConfig configures the local ONNX encoder.
type ONNXConfig struct {
	ModelPath     string
	TokenizerPath string
	// LibraryPath points at libonnxruntime; empty uses the platform default.
	LibraryPath string
	OutputName  string
	Dimensions  int
	MaxTokens   int
	CacheSize   int
	// Tokenizer overrides TokenizerPath when set.
	Tokenizer Tokenizer
}

func (c *ONNXConfig) applyDefaults() {
	if c.OutputName == "" {
		c.OutputName = "last_hidden_state"
	}
	if c.Dimensions <= 0 {
		c.Dimensions = 768
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 512
	}
	if c.CacheSize < 0 {
		c.CacheSize = 0
	}
}

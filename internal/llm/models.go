package llm

// GeneratorModels are the Groq chat models the answer service was tuned on.
var GeneratorModels = []string{
	"llama3-8b-8192",
	"gemma-7b-it",
	"mixtral-8x7b-32768",
	"llama3-70b-8192",
}

// EmbeddingModels are the Hugging Face sentence-embedding models known to
// work with the index builder, with their output dimensions.
var EmbeddingModels = []struct {
	Name       string
	Dimensions int
}{
	{"BAAI/bge-base-en-v1.5", 768},
	{"BAAI/bge-large-en-v1.5", 1024},
	{"WhereIsAI/UAE-Large-V1", 1024},
	{"mixedbread-ai/mxbai-embed-large-v1", 1024},
	{"mixedbread-ai/mxbai-embed-2d-large-v1", 1024},
}

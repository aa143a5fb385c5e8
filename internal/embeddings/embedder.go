package embeddings

import (
	"context"
	"fmt"
	"os"
)

// Embedder generates text embeddings for semantic document search.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the identifier of the embedding model.
	Name() string
}

// NewEmbedder builds an embedder by kind. "openai" reads OPENAI_API_KEY;
// "ollama" reads OLLAMA_HOST and defaults to the local daemon.
func NewEmbedder(kind string) (Embedder, error) {
	switch kind {
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("embeddings: OPENAI_API_KEY not set")
		}
		return NewOpenAIEmbedder(key, ModelTextEmbedding3Small), nil
	case "ollama":
		return NewOllamaEmbedder("nomic-embed-text", 768, os.Getenv("OLLAMA_HOST")), nil
	default:
		return nil, fmt.Errorf("embeddings: unknown embedder %q", kind)
	}
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	GroqBaseURL          = "https://api.groq.com/openai/v1"
	MissingCredentialMsg = "GROQ_API_KEY not found in .env. Please add it."
)

var (
	ErrMissingCredential = errors.New("missing GROQ_API_KEY")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// Config is parsed by kong from flags, falling back to the environment.
type Config struct {
	// Generator config
	ApiKey      string  `name:"api-key" help:"API key for the chat model" env:"GROQ_API_KEY"`
	Provider    string  `help:"Chat model provider" enum:"groq,openai,anthropic,google" default:"groq" env:"GROOMWISE_PROVIDER"`
	BaseURL     string  `name:"base-url" help:"Override the chat API base URL" env:"GROOMWISE_BASE_URL"`
	Model       string  `help:"Chat model identifier" default:"llama3-8b-8192" env:"GROOMWISE_MODEL"`
	Temperature float32 `help:"Sampling temperature" default:"0.7" env:"GROOMWISE_TEMPERATURE"`
	MaxTokens   int     `name:"max-tokens" help:"Maximum tokens per model reply" default:"1024" env:"GROOMWISE_MAX_TOKENS"`

	// Embedder config
	Embedder           string `help:"Embedding provider" enum:"hash,openai,google" default:"hash" env:"GROOMWISE_EMBEDDER"`
	EmbeddingModel     string `name:"embedding-model" help:"Embedding model identifier, provider default when empty" env:"GROOMWISE_EMBEDDING_MODEL"`
	EmbeddingDimension int    `name:"embedding-dimension" help:"Vector size of every stored memory" default:"384" env:"GROOMWISE_EMBEDDING_DIMENSION"`
	EmbedderKey        string `name:"embedder-key" help:"API key for the embedding provider" env:"GROOMWISE_EMBEDDER_KEY"`
	EmbedderBaseURL    string `name:"embedder-base-url" help:"Override the embeddings API base URL" env:"GROOMWISE_EMBEDDER_BASE_URL"`

	// Memory config
	Store          string `help:"Memory store backend" enum:"local,sqlite,postgres,qdrant" default:"local" env:"GROOMWISE_STORE"`
	MemoryLocation string `name:"memory-location" help:"Directory, database file or address of the memory store" default:"memory_index" env:"GROOMWISE_MEMORY_LOCATION"`
	StoreKey       string `name:"store-key" help:"API key for the memory store" env:"GROOMWISE_STORE_KEY"`
	Collection     string `help:"Collection or table holding memories" default:"groomwise_memories" env:"GROOMWISE_COLLECTION"`
	RecallK        int    `name:"recall-k" help:"Past memories folded into each turn" default:"3" env:"GROOMWISE_RECALL_K"`

	// Agent config
	MaxIterations int  `name:"max-iterations" help:"Model calls allowed per turn" default:"15" env:"GROOMWISE_MAX_ITERATIONS"`
	Verbose       bool `help:"Log every reasoning step" env:"GROOMWISE_VERBOSE"`

	// Tool config
	PythonBinary   string        `name:"python-binary" help:"Interpreter for the Python_REPL tool" default:"python3" env:"GROOMWISE_PYTHON"`
	PythonTimeout  time.Duration `name:"python-timeout" help:"Time limit per Python_REPL run" default:"10s" env:"GROOMWISE_PYTHON_TIMEOUT"`
	SearchEndpoint string        `name:"search-endpoint" help:"DuckDuckGo HTML endpoint" default:"https://html.duckduckgo.com/html/" env:"GROOMWISE_SEARCH_ENDPOINT"`
	ToolAddrs      []string      `name:"tool-addrs" help:"UTCP servers exposing extra tools" env:"GROOMWISE_TOOL_ADDRS"`

	// Logging config
	LogLevel  string `name:"log-level" help:"Log level" enum:"debug,info,warn,error" default:"warn" env:"GROOMWISE_LOG_LEVEL"`
	LogPretty bool   `name:"log-pretty" help:"Human readable logs" env:"GROOMWISE_LOG_PRETTY"`
}

// LoadDotenv loads the given files (".env" when none) into the process
// environment. Missing files are ignored and set variables win.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}

	return nil
}

func (c *Config) Validate() error {
	if len(strings.TrimSpace(c.ApiKey)) == 0 {
		return ErrMissingCredential
	}

	switch {
	case c.EmbeddingDimension <= 0:
		return fmt.Errorf("%w: embedding dimension must be positive", ErrInvalidConfig)
	case c.RecallK < 0:
		return fmt.Errorf("%w: recall k must not be negative", ErrInvalidConfig)
	case c.MaxIterations <= 0:
		return fmt.Errorf("%w: max iterations must be positive", ErrInvalidConfig)
	case c.PythonTimeout <= 0:
		return fmt.Errorf("%w: python timeout must be positive", ErrInvalidConfig)
	case c.Store != "local" && len(strings.TrimSpace(c.MemoryLocation)) == 0:
		return fmt.Errorf("%w: %s store needs a memory location", ErrInvalidConfig, c.Store)
	}

	return nil
}

// ChatBaseURL is the base URL handed to the chat client.
func (c *Config) ChatBaseURL() string {
	if len(c.BaseURL) > 0 {
		return c.BaseURL
	}
	if c.Provider == "groq" {
		return GroqBaseURL
	}
	return ""
}

// EmbeddingKey falls back to the chat key when no separate key is set.
func (c *Config) EmbeddingKey() string {
	if len(c.EmbedderKey) > 0 {
		return c.EmbedderKey
	}
	return c.ApiKey
}

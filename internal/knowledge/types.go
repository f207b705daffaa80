package knowledge

import "time"

// Passage is one retrievable chunk of the financial reference corpus.
type Passage struct {
	ID        string
	Content   string
	Source    string
	Metadata  map[string]string
	CreatedAt time.Time
}

// Result is a single search hit with its cosine similarity score (0-1).
type Result struct {
	Passage    Passage
	Similarity float32
}

// SearchOption configures search behavior.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK    int
	filter  map[string]string
	timeout time.Duration
}

// WithTopK sets the maximum number of results. Default is 3.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		c.topK = k
	}
}

// WithFilter restricts results to passages whose metadata contains the pair.
// Multiple filters combine with AND.
func WithFilter(key, value string) SearchOption {
	return func(c *searchConfig) {
		if c.filter == nil {
			c.filter = make(map[string]string)
		}
		c.filter[key] = value
	}
}

// WithTimeout bounds the whole search, embedding included.
func WithTimeout(d time.Duration) SearchOption {
	return func(c *searchConfig) {
		c.timeout = d
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		topK:    3,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// UseAPI selects the Atom API (true) or the HTML search pages (false).
	UseAPI bool `json:"use_api" yaml:"use_api" mapstructure:"use_api"`

	// APIBase is the arXiv Atom API endpoint.
	APIBase string `json:"api_base" yaml:"api_base" mapstructure:"api_base"`

	// WebBase is the arXiv search page used when UseAPI is false.
	WebBase string `json:"web_base" yaml:"web_base" mapstructure:"web_base"`

	// QueryDelay is waited before every query (default 3s).
	QueryDelay time.Duration `json:"query_delay" yaml:"query_delay" mapstructure:"query_delay"`

	// PageDelay is waited between result pages of one query (default 3s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay" mapstructure:"page_delay"`

	// PageSize is the number of results requested per page (1-2000 for the
	// API; the web search only accepts 25, 50, 100 or 200).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// MaxResults caps the results taken per query. Zero means all.
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// MaxRetries bounds retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// NamesConfig holds settings for name normalization.
type NamesConfig struct {
	// OverridesFile is an optional YAML file mapping computed identities to
	// corrected ones. Entries are added to the built-in table.
	OverridesFile string `json:"overrides_file" yaml:"overrides_file" mapstructure:"overrides_file"`
}

// CleanConfig holds settings for the cleaning stage.
type CleanConfig struct {
	// MaxAuthors drops publications with this many authors or more (default 15).
	MaxAuthors int `json:"max_authors" yaml:"max_authors" mapstructure:"max_authors"`

	// StrictParse aborts cleaning on the first malformed author list instead
	// of dropping the record.
	StrictParse bool `json:"strict_parse" yaml:"strict_parse" mapstructure:"strict_parse"`
}

// GraphMode selects the edge construction.
type GraphMode string

const (
	// GraphAuthors emits one edge per co-author pair of each publication.
	GraphAuthors GraphMode = "authors"

	// GraphPapers emits one edge per ordered pair of publications sharing
	// an author. Quadratic in the number of publications.
	GraphPapers GraphMode = "papers"
)

// GraphConfig holds settings for the graph stage.
type GraphConfig struct {
	Mode GraphMode `json:"mode" yaml:"mode" mapstructure:"mode"`
}

// StoreConfig holds output locations.
type StoreConfig struct {
	// DataDir receives the CSV tables and the run manifest.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// DBPath is an optional SQLite database that accumulates every run.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty" mapstructure:"db_path"`
}

// Neo4jConfig holds the optional graph database sink. An empty URI disables it.
type Neo4jConfig struct {
	URI      string        `json:"uri,omitempty" yaml:"uri,omitempty" mapstructure:"uri"`
	User     string        `json:"user,omitempty" yaml:"user,omitempty" mapstructure:"user"`
	Password string        `json:"-" yaml:"-" mapstructure:"password"`
	Database string        `json:"database,omitempty" yaml:"database,omitempty" mapstructure:"database"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig selects logger verbosity and encoding.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Mode is "dev" (console encoding) or "prod" (JSON encoding).
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Log   LogConfig   `json:"log" yaml:"log" mapstructure:"log"`
	Fetch FetchConfig `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Names NamesConfig `json:"names" yaml:"names" mapstructure:"names"`
	Clean CleanConfig `json:"clean" yaml:"clean" mapstructure:"clean"`
	Graph GraphConfig `json:"graph" yaml:"graph" mapstructure:"graph"`
	Store StoreConfig `json:"store" yaml:"store" mapstructure:"store"`
	Neo4j Neo4jConfig `json:"neo4j" yaml:"neo4j" mapstructure:"neo4j"`
}

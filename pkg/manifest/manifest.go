package manifest

// RunManifest is the summary file written at the end of a crawl. It gives an
// overview of the run without querying the database.
type RunManifest struct {
	RunID         string         `json:"run_id" yaml:"run_id"`
	GeneratedAt   string         `json:"generated_at" yaml:"generated_at"`
	SeedURL       string         `json:"seed_url" yaml:"seed_url"`
	View360Policy string         `json:"view360_policy" yaml:"view360_policy"`
	Duration      string         `json:"duration" yaml:"duration"`
	Listings      KindSummary    `json:"listings" yaml:"listings"`
	Details       KindSummary    `json:"details" yaml:"details"`
	Records       int            `json:"records" yaml:"records"`
	Duplicates    int            `json:"duplicates" yaml:"duplicates"`
	Truncated     bool           `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Errors        map[string]int `json:"errors,omitempty" yaml:"errors,omitempty"`
	TopBrands     []string       `json:"top_brands,omitempty" yaml:"top_brands,omitempty"`
	TopSections   []string       `json:"top_sections,omitempty" yaml:"top_sections,omitempty"`
	TopTags       []string       `json:"top_tags,omitempty" yaml:"top_tags,omitempty"`
	Failures      []Failure      `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// KindSummary counts the outcomes of one request kind.
type KindSummary struct {
	OK     int `json:"ok" yaml:"ok"`
	Failed int `json:"failed" yaml:"failed"`
}

// Failure is one request the run gave up on.
type Failure struct {
	URL          string `json:"url" yaml:"url"`
	Kind         string `json:"kind" yaml:"kind"`
	ErrorType    string `json:"error_type" yaml:"error_type"`
	ErrorMessage string `json:"error_message" yaml:"error_message"`
}

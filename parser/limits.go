package parser

// Default resource ceilings. Each limit is checked independently during a
// single parse invocation; no counters are shared across documents.
const (
	DefaultMaxDepth         = 128
	DefaultMaxDocumentBytes = 10 * 1024 * 1024
	DefaultMaxArrayItems    = 100_000
	DefaultMaxObjectEntries = 10_000
)

// Limits bounds one parse invocation. The document size ceiling is fatal;
// the other three truncate and leave a usable partial tree.
type Limits struct {
	MaxDepth         int `json:"max_depth"`
	MaxDocumentBytes int `json:"max_document_bytes"`
	MaxArrayItems    int `json:"max_array_items"`
	MaxObjectEntries int `json:"max_object_entries"`
}

// DefaultLimits returns the standard ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:         DefaultMaxDepth,
		MaxDocumentBytes: DefaultMaxDocumentBytes,
		MaxArrayItems:    DefaultMaxArrayItems,
		MaxObjectEntries: DefaultMaxObjectEntries,
	}
}

// normalized replaces non-positive fields with their defaults so a
// zero-value Limits behaves like DefaultLimits.
func (l Limits) normalized() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxDocumentBytes <= 0 {
		l.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	if l.MaxArrayItems <= 0 {
		l.MaxArrayItems = DefaultMaxArrayItems
	}
	if l.MaxObjectEntries <= 0 {
		l.MaxObjectEntries = DefaultMaxObjectEntries
	}
	return l
}

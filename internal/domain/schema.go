package domain

// SourceKind identifies where an API description document was loaded from.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindHTTP   SourceKind = "http"
	SourceKindGitHub SourceKind = "github" // github://owner/repo/path[@ref]
)

// APISchema represents a fetched API description document before normalization.
type APISchema struct {
	// Source indicates the origin of the document (URL, github:// URL or file path).
	Source string
	// Kind specifies how the document was fetched.
	Kind SourceKind
	// RawData holds the unprocessed document content, normally JSON.
	RawData []byte
}

// IsLocal reports whether the document was read from the local filesystem
// and can therefore be rewritten in place.
func (s APISchema) IsLocal() bool {
	return s.Kind == SourceKindFile
}

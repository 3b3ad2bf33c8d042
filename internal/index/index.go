package index

// DocumentIndex defines the search index operations. Consumers depend on
// this interface rather than *DB so tests can swap it out.
type DocumentIndex interface {
	UpsertDocument(d DocumentRow, body string) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Count() (int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

var _ DocumentIndex = (*DB)(nil)

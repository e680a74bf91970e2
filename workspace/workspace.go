package workspace

// Store persists tool by-products such as screenshots, converted
// documents and generated reports, grouped by workflow run.
//
// Implementations must be safe for concurrent use and must copy data on
// save and retrieval so callers cannot mutate stored bytes.
type Store interface {
	// Save stores (or overwrites) the named file for the given run.
	Save(runID, name string, data []byte) error

	// Get returns a copy of the stored bytes or ErrNotFound.
	Get(runID, name string) ([]byte, error)

	// List returns the file names stored for the run. An unknown run
	// yields an empty slice, not an error.
	List(runID string) ([]string, error)

	// Delete removes the named file or returns ErrNotFound.
	Delete(runID, name string) error
}

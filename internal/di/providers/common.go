package providers

import "time"

const (
	// shutdownTimeout bounds draining SSE clients and in-flight HTTP requests.
	shutdownTimeout = 30 * time.Second

	// dataDirPerm is used for the data directory holding the database
	// and the search index. The auth key directory is stricter.
	dataDirPerm = 0o750
)

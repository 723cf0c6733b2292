// Package mirror uploads persisted chapter archives to a remote
// location (S3-compatible object storage or an SFTP server) as a
// secondary copy, independent of the local chapterstorage cache.
package mirror

import "context"

// Mirror uploads the file at localPath, keeping it under the same
// relative name it has locally. Implementations are expected to be
// called from a background goroutine; a failed upload does not affect
// local availability of the chapter.
type Mirror interface {
	Upload(ctx context.Context, localPath string) error
}

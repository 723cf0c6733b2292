package mirror

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/ssh"

	"github.com/hanatsumi/rakuyomi/rerr"
)

func TestS3Mirror_Upload_MissingLocalFile(t *testing.T) {
	m := &S3Mirror{bucket: "bucket", prefix: "prefix"}

	err := m.Upload(context.Background(), "/nonexistent/path/chapter.cbz")

	assert.Error(t, err)
	assert.Equal(t, rerr.Other, rerr.KindOf(err))
}

func TestSFTPMirror_Upload_ConnectionRefused(t *testing.T) {
	m := NewSFTPMirror("127.0.0.1:1", "/chapters", "user", "pass", ssh.InsecureIgnoreHostKey())

	err := m.Upload(context.Background(), "/nonexistent/path/chapter.cbz")

	assert.Error(t, err)
	assert.Equal(t, rerr.NetworkFailure, rerr.KindOf(err))
}

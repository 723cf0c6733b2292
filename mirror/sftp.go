package mirror

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/hanatsumi/rakuyomi/rerr"
)

// SFTPMirror uploads chapter archives to a remote directory over SFTP,
// adapted from the teacher's filestore/sftp.go client setup. A fresh
// connection is opened per upload rather than held open, since uploads
// happen in the background at a low, bursty rate.
type SFTPMirror struct {
	addr       string
	remoteDir  string
	clientConf *ssh.ClientConfig
}

func NewSFTPMirror(addr, remoteDir, user, password string, hostKeyCallback ssh.HostKeyCallback) *SFTPMirror {
	return &SFTPMirror{
		addr:      addr,
		remoteDir: remoteDir,
		clientConf: &ssh.ClientConfig{
			User:            user,
			Auth:            []ssh.AuthMethod{ssh.Password(password)},
			HostKeyCallback: hostKeyCallback,
		},
	}
}

func (m *SFTPMirror) Upload(ctx context.Context, localPath string) error {
	conn, err := ssh.Dial("tcp", m.addr, m.clientConf)
	if err != nil {
		return rerr.New(rerr.NetworkFailure, fmt.Errorf("dialing sftp host: %w", err))
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return rerr.New(rerr.NetworkFailure, fmt.Errorf("starting sftp session: %w", err))
	}
	defer client.Close()

	if err := client.MkdirAll(m.remoteDir); err != nil {
		return rerr.New(rerr.Other, fmt.Errorf("creating remote directory: %w", err))
	}

	local, err := os.Open(localPath)
	if err != nil {
		return rerr.New(rerr.Other, err)
	}
	defer local.Close()

	remotePath := path.Join(m.remoteDir, path.Base(localPath))
	remote, err := client.Create(remotePath)
	if err != nil {
		return rerr.New(rerr.Other, fmt.Errorf("creating remote file: %w", err))
	}
	defer remote.Close()

	if _, err := remote.ReadFrom(local); err != nil {
		return rerr.New(rerr.NetworkFailure, fmt.Errorf("uploading to %s: %w", remotePath, err))
	}
	return nil
}

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/hanatsumi/rakuyomi/chapterstorage"
	"github.com/hanatsumi/rakuyomi/config"
	"github.com/hanatsumi/rakuyomi/database"
	"github.com/hanatsumi/rakuyomi/mirror"
	"github.com/hanatsumi/rakuyomi/sourcemanager"
)

// app bundles the pieces every subcommand needs once the data
// directory has been resolved: the database, the loaded sources, the
// settings those sources were loaded against, and the chapter cache.
type app struct {
	DB       *database.DB
	Manager  *sourcemanager.Manager
	Settings *config.Settings
	Storage  *chapterstorage.Storage
}

// buildMirror constructs an optional Chapter Mirror from environment
// variables, following the priority hierarchy (env var, then default)
// the teacher's main.go uses for its data backend flags. No mirror is
// configured unless RAKUYOMI_MIRROR_BACKEND is set.
func buildMirror(ctx context.Context) mirror.Mirror {
	switch os.Getenv("RAKUYOMI_MIRROR_BACKEND") {
	case "s3":
		m, err := mirror.NewS3Mirror(ctx,
			os.Getenv("RAKUYOMI_MIRROR_S3_BUCKET"),
			os.Getenv("RAKUYOMI_MIRROR_S3_PREFIX"),
			os.Getenv("RAKUYOMI_MIRROR_S3_ENDPOINT"),
			os.Getenv("RAKUYOMI_MIRROR_S3_REGION"),
		)
		if err != nil {
			log.Warnf("Failed to configure S3 mirror: %v", err)
			return nil
		}
		return m
	case "sftp":
		port, _ := strconv.Atoi(os.Getenv("RAKUYOMI_MIRROR_SFTP_PORT"))
		if port == 0 {
			port = 22
		}
		addr := os.Getenv("RAKUYOMI_MIRROR_SFTP_HOST") + ":" + strconv.Itoa(port)
		return mirror.NewSFTPMirror(
			addr,
			os.Getenv("RAKUYOMI_MIRROR_SFTP_DIR"),
			os.Getenv("RAKUYOMI_MIRROR_SFTP_USERNAME"),
			os.Getenv("RAKUYOMI_MIRROR_SFTP_PASSWORD"),
			sftpHostKeyCallback(),
		)
	default:
		return nil
	}
}

// sftpHostKeyCallback verifies the remote SFTP host against a
// known_hosts file when RAKUYOMI_MIRROR_SFTP_KNOWN_HOSTS points at
// one, falling back to accepting any host key (with a warning) when it
// doesn't, so the mirror stays usable without forcing that setup on
// every CLI user.
func sftpHostKeyCallback() ssh.HostKeyCallback {
	path := os.Getenv("RAKUYOMI_MIRROR_SFTP_KNOWN_HOSTS")
	if path == "" {
		log.Warn("RAKUYOMI_MIRROR_SFTP_KNOWN_HOSTS is not set; accepting the SFTP mirror's host key unverified")
		return ssh.InsecureIgnoreHostKey()
	}

	callback, err := knownhosts.New(path)
	if err != nil {
		log.Warnf("Failed to load known_hosts from %s: %v; accepting the SFTP mirror's host key unverified", path, err)
		return ssh.InsecureIgnoreHostKey()
	}
	return callback
}

// withApp opens the database and discovers installed sources under
// dataDirectory, calls fn, then tears both down. If initialization or
// fn fails, the error is printed and the process exits with code 1,
// matching the teacher's withDB helper.
func withApp(dataDirectory *string, cmd *cobra.Command, fn func(a *app) error) {
	dir := *dataDirectory
	if dir == "" {
		resolved, err := config.DataDir()
		if err != nil {
			cmd.PrintErrf("Failed to resolve data directory: %v\n", err)
			os.Exit(1)
		}
		dir = resolved
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		cmd.PrintErrf("Failed to create data directory: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(filepath.Join(dir, "rakuyomi.db"))
	if err != nil {
		cmd.PrintErrf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorf("Failed to close database: %v", err)
		}
	}()

	settings := config.New()
	manager := sourcemanager.New(filepath.Join(dir, "sources"), settings)
	if errs := manager.Discover(context.Background()); len(errs) > 0 {
		for _, e := range errs {
			log.Warnf("Failed to load a source: %v", e)
		}
	}
	defer manager.Close(context.Background())

	storage := chapterstorage.New(filepath.Join(dir, "chapters"), settings.Storage.Bytes, buildMirror(context.Background()))

	a := &app{DB: db, Manager: manager, Settings: settings, Storage: storage}
	if err := fn(a); err != nil {
		cmd.PrintErrf("%v\n", err)
		os.Exit(1)
	}
}

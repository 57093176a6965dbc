package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/murmur-app/murmur/internal/blobstore"
	"github.com/murmur-app/murmur/internal/index"
	"github.com/murmur-app/murmur/internal/logger"
	"github.com/murmur-app/murmur/internal/sweeper"
)

// openLocal builds the index and store over a local data directory, the
// same layout the service uses. Maintenance commands operate on the data
// directly and must not run against a live service.
func openLocal(dataDir, backend string) (*index.Index, *blobstore.FS, index.DocStore, error) {
	log := logger.New("murmurctl")
	blobs, err := blobstore.NewFS(filepath.Join(dataDir, "recordings"), log)
	if err != nil {
		return nil, nil, nil, err
	}
	var docs index.DocStore
	switch backend {
	case "sqlite":
		docs, err = index.NewSqliteDoc(filepath.Join(dataDir, "index.db"))
	case "file":
		docs, err = index.NewFileDoc(filepath.Join(dataDir, "index.json"))
	default:
		return nil, nil, nil, fmt.Errorf("unsupported backend %q", backend)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	return index.New(docs, blobs, log), blobs, docs, nil
}

func init() {
	var dataDir, backend string
	var retentionDays int

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Reconcile the recording store against the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, blobs, docs, err := openLocal(dataDir, backend)
			if err != nil {
				return err
			}
			defer func() { _ = docs.Close() }()
			retention := time.Duration(retentionDays) * 24 * time.Hour
			rep, err := sweeper.New(idx, blobs, retention, logger.New("murmurctl")).Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("orphan dirs: %d, orphan files: %d, expired conversations: %d\n",
				rep.OrphanDirs, rep.OrphanFiles, rep.ExpiredConvos)
			return nil
		},
	}
	sweepCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Service data directory")
	sweepCmd.Flags().StringVar(&backend, "backend", "file", "Index backend: file or sqlite")
	sweepCmd.Flags().IntVar(&retentionDays, "retention-days", 0, "Evict conversations older than this many days (0 disables)")
	rootCmd.AddCommand(sweepCmd)

	var yes bool
	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every recording and reset the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("purge is destructive; re-run with --yes to confirm")
			}
			idx, _, docs, err := openLocal(dataDir, backend)
			if err != nil {
				return err
			}
			defer func() { _ = docs.Close() }()
			if err := idx.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("all recordings and metadata removed")
			return nil
		},
	}
	purgeCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Service data directory")
	purgeCmd.Flags().StringVar(&backend, "backend", "file", "Index backend: file or sqlite")
	purgeCmd.Flags().BoolVar(&yes, "yes", false, "Confirm the purge")
	rootCmd.AddCommand(purgeCmd)
}

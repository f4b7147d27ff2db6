// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	backupOut     string // Local output file
	backupBucket  string // GCS bucket name; empty = local only
	backupSAKey   string // Service account key path for GCS
	backupGCSPath string // Object path within the bucket
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// backupCmd streams a full backup of the deck database to a local file and
// optionally uploads it to a GCS bucket.
//
// # Examples
//
//	kanjikit backup -o decks.bak
//	kanjikit backup -o decks.bak --bucket my-backups --sa-key ~/gcs.json
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the deck database",
	Run:   runBackupCommand,
}

func init() {
	backupCmd.Flags().StringVarP(&backupOut, "out", "o", "",
		"Local backup file (default kanjikit-<date>.bak)")
	backupCmd.Flags().StringVar(&backupBucket, "bucket", "",
		"GCS bucket to upload the backup to")
	backupCmd.Flags().StringVar(&backupSAKey, "sa-key", "",
		"Path to a GCS service account key (required with --bucket)")
	backupCmd.Flags().StringVar(&backupGCSPath, "gcs-path", "",
		"Object path within the bucket (default backups/<filename>)")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runBackupCommand(cmd *cobra.Command, args []string) {
	out := backupOut
	if out == "" {
		out = fmt.Sprintf("kanjikit-%s.bak", time.Now().Format("2006-01-02"))
	}

	db, store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	file, err := os.Create(out)
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, fmt.Sprintf("create %s: %v", out, err)))
		os.Exit(1)
	}

	ctx := cmd.Context()
	version, err := store.Backup(ctx, file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, fmt.Sprintf("backup failed: %v", err)))
		os.Exit(1)
	}
	fmt.Printf("%s Backup written to %s (version %d)\n", styled(styleOK, "✓"), out, version)

	if backupBucket == "" {
		return
	}
	if backupSAKey == "" {
		fmt.Fprintln(os.Stderr, styled(styleErr, "--sa-key is required with --bucket"))
		os.Exit(1)
	}
	gcsPath := backupGCSPath
	if gcsPath == "" {
		gcsPath = "backups/" + out
	}
	if err := uploadToGCS(ctx, backupSAKey, backupBucket, out, gcsPath); err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, fmt.Sprintf("upload failed: %v", err)))
		os.Exit(1)
	}
	fmt.Printf("%s Uploaded to gs://%s/%s\n", styled(styleOK, "✓"), backupBucket, gcsPath)
}

// uploadToGCS copies a local file into a GCS bucket object.
func uploadToGCS(ctx context.Context, saKeyPath, bucket, localPath, gcsPath string) error {
	if _, err := os.Stat(saKeyPath); os.IsNotExist(err) {
		return fmt.Errorf("service account key not found at path: %s", saKeyPath)
	}

	client, err := storage.NewClient(ctx, option.WithCredentialsFile(saKeyPath))
	if err != nil {
		return fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	defer client.Close()

	local, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open the local file: %s: %w", localPath, err)
	}
	defer local.Close()

	writer := client.Bucket(bucket).Object(gcsPath).NewWriter(ctx)
	writer.ContentType = "application/octet-stream"
	if _, err := io.Copy(writer, local); err != nil {
		return fmt.Errorf("failed to copy %s to GCS object %s: %w", localPath, gcsPath, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", gcsPath, err)
	}
	return nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// WritePrivateFile replaces path with data, readable only by the owner.
// Readers see either the previous contents or all of data, never a mix:
// data goes to a synced temp file beside path, which is then renamed over it.
// Missing parent directories are created owner-only.
func WritePrivateFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	// CreateTemp opens with 0600, which is the mode wanted for the target.
	tmp, err := writeSynced(dir, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// writeSynced writes data to a new temp file in dir and returns its name.
// The file is closed on return; on error it is removed.
func writeSynced(dir string, data []byte) (name string, err error) {
	f, err := os.CreateTemp(dir, ".askdesk-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	// Closed before the rename; Windows refuses to rename an open file.
	if err = f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

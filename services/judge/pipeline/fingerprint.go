// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	ignoredDirs     = map[string]bool{"__pycache__": true, ".git": true, "node_modules": true}
	ignoredSuffixes = map[string]bool{".pyc": true, ".pyo": true, ".log": true, ".tmp": true}
)

// Fingerprint computes a deterministic digest of the files under root
// from their relative paths, sizes, and modification times. It keys the
// bundle cache: same fingerprint, same analysis input.
func Fingerprint(root string) (string, error) {
	var entries []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if ignoredSuffixes[filepath.Ext(path)] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// Races with file deletion are not fatal to fingerprinting.
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		entries = append(entries, filepath.ToSlash(rel)+"\x00"+
			strconv.FormatInt(info.Size(), 10)+"\x00"+
			strconv.FormatInt(info.ModTime().UnixNano(), 10))
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(entries)

	digest := sha256.New()
	digest.Write([]byte(strings.Join(entries, "\n")))
	return hex.EncodeToString(digest.Sum(nil)), nil
}

// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"os"
	"path/filepath"
	"strings"
)

// GetArenaDataDir returns the arena data directory.
//
// Priority:
// 1. ARENA_DATA_DIR environment variable (if set and non-empty)
// 2. ~/.arena (default)
//
// The returned path is always absolute. Tilde (~) in ARENA_DATA_DIR is expanded to the user's home directory.
// Relative paths in ARENA_DATA_DIR are converted to absolute paths.
//
// This function is called during bootstrap (before the config file is loaded) to locate the config file itself.
// After config is loaded, use Config.DataDir for consistency.
//
// Examples:
//
//	ARENA_DATA_DIR=/custom/arena       -> /custom/arena
//	ARENA_DATA_DIR=~/my-arena          -> /home/user/my-arena
//	ARENA_DATA_DIR=relative/path       -> /current/dir/relative/path
//	ARENA_DATA_DIR not set             -> /home/user/.arena
//
// Note: This function reads directly from os.Getenv(), not from viper, to avoid
// circular dependency during config initialization.
func GetArenaDataDir() string {
	// Check environment variable first
	if dataDir := os.Getenv("ARENA_DATA_DIR"); dataDir != "" {
		return expandPath(dataDir)
	}

	// Fall back to ~/.arena
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir cannot be determined
		return ".arena"
	}
	return filepath.Join(homeDir, ".arena")
}

// GetArenaSubDir returns a subdirectory within the arena data directory.
// Example: GetArenaSubDir("scenarios") returns ~/.arena/scenarios
func GetArenaSubDir(subdir string) string {
	return filepath.Join(GetArenaDataDir(), subdir)
}

// expandPath expands ~ and resolves to absolute path
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path // Return as-is if we can't get home dir
		}
		return filepath.Join(homeDir, path[2:])
	}

	// Make path absolute
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path // Return as-is if we can't make it absolute
	}
	return absPath
}

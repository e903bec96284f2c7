// Copyright © 2018 One Concern

// Package storage describes the interface to the object stores holding
// version metadata and binaries.
//
// Implementations:
//   - localfs: an afero file system, either local or in memory
package storage

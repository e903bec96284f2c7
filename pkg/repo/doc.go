// Copyright © 2018 One Concern

// Package repo maps version identifiers to their metadata and binaries.
//
// A repository home is made of two stores:
//   - the info store holds one metadata document per version, at "<version-id>/ki-metadata.json"
//   - the info store also holds the status records of each version, at "<version-id>/ki-statuses.json"
//   - the packages store holds the binaries of each version, at "<version-id>/<file path>"
//
// Versions are immutable once imported. Statuses are the only information added afterwards.
package repo

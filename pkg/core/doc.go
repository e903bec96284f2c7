// Package core resolves the complete file set of a version.
//
// A version declares its own files, its dependencies on other versions and
// operations which rewrite the resulting virtual file tree. The Walker
// traverses the dependency graph, the Finder merges the files contributed by
// every dependency under their virtual path prefix and applies operations, and
// the Tester verifies the integrity of physical files against recorded digests.
package core

// Package model describes the metadata of the versions stored in a depot repository.
//
// The object model for depot is composed of:
//
//  Versions:
//    A version is an immutable, uniquely identified release of a component,
//    identified as "component/path/version-number". A version carries some
//    metadata and a matching set of binary files.
//
//  Files:
//    Each file of a version is described by its relative path, its size,
//    some content digests and optional tags.
//
//  Dependencies:
//    A version may depend on other versions. A dependency may be mapped to a
//    virtual path prefix, be named, be internal and carry operations.
//
//  Operations:
//    Declarative transformations ("cp", "rm") applied to the virtual file tree
//    resolved for a version.
//
// Metadata is persisted as a JSON document (ki-metadata.json).
package model

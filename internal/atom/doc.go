// Package atom provides the dispatch registry for pipeline operations.
//
// An atom is a (type, action) pair bound to a handler function and a
// declared parameter specification. Business modules register their atoms
// during application startup; the registry is then sealed and serves
// concurrent lock-free reads for the lifetime of the process. Registration
// after sealing is a configuration error, not a runtime race.
package atom

// Package lifecycle sequences pack removal across the metadata store, the
// response cache, the blob store, and the search index.
package lifecycle

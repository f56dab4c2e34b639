// Package vectorstore persists text passages with their embeddings and
// metadata in a local SQLite database and serves similarity queries over them.
//
// A store owns one named collection inside a persist directory. Writes are
// serialized by SQLite (WAL mode, busy retry); collection creation is guarded
// by a file lock so concurrent processes can open the same path safely.
package vectorstore

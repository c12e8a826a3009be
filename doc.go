// Package godocmap provides reflection-based document mapping for Go.
//
// Define your records as Go structs with struct tags, and get type-safe
// dotted field paths into nested documents plus typed record construction
// from loosely typed maps. An embedded document store ties the pieces
// together for callers who want storage out of the box.
//
// The module is organized into four packages:
//
//   - [github.com/mbannour/go-docmap/docmap] — Mapping core: descriptors, paths, materialization
//   - [github.com/mbannour/go-docmap/pathexpr] — Textual path-expression parser
//   - [github.com/mbannour/go-docmap/query] — Document filters and update builders
//   - [github.com/mbannour/go-docmap/docstore] — Embedded document store (sqlite + msgpack)
//
// The docmap, pathexpr, and query packages have no storage dependencies;
// only docstore pulls in the sqlite backend.
package godocmap

// Package cache stores rendered artifacts keyed by a hash of their input.
//
// Rendering a rung to SVG runs Graphviz, which is the slowest step of an
// export. The pipeline hashes the DOT source and looks the artifact up here
// first. Three backends implement [Cache]:
//
//   - [FileCache] for the CLI, one JSON file per entry under the user cache
//     directory
//   - [RedisCache] for the HTTP server
//   - [NullCache] when caching is disabled
//
// Keys come from a [Keyer]; [ScopedKeyer] prefixes them so several tools can
// share one backend.
package cache

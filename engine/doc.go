// Package engine provides helpers for working with the modernc.org/sqlite
// driver in this module: opening connections, optionally with the vec_l2
// and vec_cosine scalar functions pre-registered. It keeps a thin surface so
// other packages can share the same driver instance.
package engine

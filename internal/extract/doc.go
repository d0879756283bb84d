// Package extract discovers provider source files and parses them into
// raw, untyped records. Discovery order is lexicographic by filename and
// is preserved through the emitted stream; downstream merge precedence
// depends on it. The provider id for every row is the source filename
// stem.
package extract

// Package config loads and validates reelmerge TOML configuration. The
// pipeline core never reads ambient process state; everything it needs,
// including the source-directory selection, arrives as explicit values
// resolved here at startup.
package config

// Package main hosts the blobmeta CLI.
//
// The Cobra command tree turns a local path, stdin, an HTTP(S) URL or an S3
// object into a blob, runs the metadata extractor over it and prints the
// record as JSON, CSV or a table. Configuration resolution and logger setup
// live in commandContext so subcommands only deal with their own flags.
package main

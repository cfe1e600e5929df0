// Package output provides the destinations generated artifacts are written
// to.
//
//   - [StdoutWriter] sends bytes to a terminal or pipe.
//
//   - [FileWriter] writes a file atomically: data goes to a temporary file
//     in the target directory which is then renamed over the target, so a
//     failed run never leaves a truncated artifact behind.
package output

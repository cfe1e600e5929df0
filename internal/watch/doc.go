// Package watch re-runs the conversion whenever one of the input documents
// changes. Rapid editor events are debounced into a single run.
package watch

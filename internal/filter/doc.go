// Package filter drops records before they reach the projector. Records
// can be excluded by id pattern or by the model they target.
//
// The package is built around the [Filter] interface and [Chain] type, which
// allow composable, ordered filter application.
package filter

// Package statsview serves live runtime statistics (heap, goroutines, GC
// pauses) over HTTP. It is only functional when built with the statsview
// tag:
//
//	go build -tags statsview ./cmd/nescore
//
// and then browsing to the address returned by URL.
package statsview

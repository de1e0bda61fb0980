// Package object reads HDF5 object headers of version 1 and 2, following
// continuation blocks, and encodes the version 2 headers this module writes.
//
// Messages come back undecoded as [message.Raw]; callers pick the ones they
// need and decode them with the message package.
package object

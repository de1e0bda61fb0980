// Package message decodes and encodes HDF5 object header messages.
//
// Each message type has a Go struct with a Parse function taking the raw
// message body and, where the writer needs it, an Encode method producing the
// newest version this module writes. Messages the reader does not interpret
// are kept as [Raw] values by the object header parser.
//
// Layout of the supported messages follows the HDF5 File Format
// Specification version 3; the versions handled per message are:
//
//	Dataspace        read v1 v2        write v2
//	Datatype         read v1-v3        write v1
//	Fill value       read v1-v3, old   write v3
//	Data layout      read v1-v4        write v3
//	Filter pipeline  read v1 v2        write v2
//	Attribute        read v1-v3        write v3
//	Link             read v1           write v1
//	Link info        read v0           write v0
//	Group info       -                 write v0
package message

// Package formats provides parsers for triangle mesh files.
//
// PLY (ASCII 1.0) files produce a single RawMesh. OBJ and 3MF files produce a
// Model with one Group per named object. Every parser maps file coordinates
// into the [-1, 1] cube on the longest axis, and multi-group files share a
// single box so groups keep their relative placement. Text parsers report
// structural problems as *ParseError and never return partial data.
package formats

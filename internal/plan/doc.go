// Package plan loads experiment plans written in CUE.
//
// A plan file sets any subset of the #Plan fields in schema.cue; the schema
// is embedded, unified with the file and fills in defaults. Fields not in the
// schema are rejected. The smallest useful plan is
//
//	tables: [{size: "small"}]
//
// which runs the paper layout of Table C.1 with the default pipeline.
package plan

// Package target provides the declared build target records for pybuild.
//
// A Target is a passive record: constructors copy their inputs, run the
// shared name/spec-path checks, and never touch the file system. Shared
// fields live on Target itself; kind-specific fields live in a sealed
// Extension variant (ThriftLibrary, PythonLibrary).
//
// Key constraints:
//   - Targets are immutable after construction. Accessors return copies.
//   - thrift_version, provides and exclusives are never validated here.
//     Toolchain selection and exclusives conflicts are checked by consumers.
//   - All JSON tags use snake_case
//   - This package imports nothing internal.
package target

package docmap

import "fmt"

// UnknownFieldError is returned when a path hop names a field that does not
// exist on the record type at that nesting level.
type UnknownFieldError struct {
	Record string // Go type name of the record being resolved
	Field  string // logical (Go) field name that was not found
}

// Error returns the error message for UnknownFieldError.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("record %s has no field %q", e.Record, e.Field)
}

// InvalidPathError is returned when a path attempts to descend through a
// field that is not record-valued.
type InvalidPathError struct {
	Record string // Go type name of the record holding the field
	Field  string // logical name of the non-record field
	Path   string // dotted document path resolved up to and including the field
}

// Error returns the error message for InvalidPathError.
func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("field %s.%s (%s) is not a record and cannot be descended into", e.Record, e.Field, e.Path)
}

// EmptyPathError is returned when a path expression contains no hops.
type EmptyPathError struct {
	Record string
}

// Error returns the error message for EmptyPathError.
func (e *EmptyPathError) Error() string {
	return fmt.Sprintf("empty path expression for record %s", e.Record)
}

// MissingFieldError is returned when a required field has no value in the
// input document and no declared default.
type MissingFieldError struct {
	Field string // fully dotted document name
}

// Error returns the error message for MissingFieldError.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field %q is missing", e.Field)
}

// EnumDecodeError is returned when a value can be matched neither to an enum
// case name nor to a valid zero-based ordinal.
type EnumDecodeError struct {
	Field string // fully dotted document name
	Enum  string // Go type name of the enum
	Value any
}

// Error returns the error message for EnumDecodeError.
func (e *EnumDecodeError) Error() string {
	return fmt.Sprintf("field %q: value %v (%T) is neither a case name nor an ordinal of enum %s",
		e.Field, e.Value, e.Value, e.Enum)
}

// NestedTypeError is returned when a record-valued field receives a value
// that is not a document.
type NestedTypeError struct {
	Field  string // fully dotted document name
	Record string // Go type name of the expected nested record
	Actual string // runtime type of the offending value
}

// Error returns the error message for NestedTypeError.
func (e *NestedTypeError) Error() string {
	return fmt.Sprintf("field %q: expected document for nested record %s, got %s", e.Field, e.Record, e.Actual)
}

// TypeCastError is returned when a scalar value's runtime type does not match
// the declared field type. No implicit widening is performed: an int is not
// an int64.
type TypeCastError struct {
	Field    string // fully dotted document name
	Expected string // declared type name
	Actual   string // runtime type name of the value
}

// Error returns the error message for TypeCastError.
func (e *TypeCastError) Error() string {
	return fmt.Sprintf("field %q: cannot use %s as %s", e.Field, e.Actual, e.Expected)
}

// UnsupportedTypeError is returned when a value is supplied for a field whose
// declared type the mapper cannot handle, such as a collection of records.
type UnsupportedTypeError struct {
	Field string // fully dotted document name
	Type  string // declared type name
}

// Error returns the error message for UnsupportedTypeError.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("field %q: unsupported type %s", e.Field, e.Type)
}

// DuplicateNameError is returned when two fields of one record map to the
// same document name.
type DuplicateNameError struct {
	Record string
	Name   string
}

// Error returns the error message for DuplicateNameError.
func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("record %s maps two fields to document name %q", e.Record, e.Name)
}

// FieldBuildError is returned by Materialize when building a field fails.
// It carries the fully dotted document path of the offending field and wraps
// the underlying cause. The first failing field aborts the whole call.
type FieldBuildError struct {
	Record string // Go type name of the record being built when the failure occurred
	Field  string // fully dotted document name
	Cause  error
}

// Error returns the error message for FieldBuildError.
func (e *FieldBuildError) Error() string {
	return fmt.Sprintf("materialize %s: field %q: %v", e.Record, e.Field, e.Cause)
}

// Unwrap returns the underlying cause of the FieldBuildError.
func (e *FieldBuildError) Unwrap() error {
	return e.Cause
}

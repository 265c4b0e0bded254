// Package member abstracts reading and writing named members of arbitrary
// objects behind the Accessor capability. The plan core stores and orders
// accessors without knowing their mechanism; this package supplies the
// reflect-backed implementation for struct fields, getter methods, and
// interface methods.
package member

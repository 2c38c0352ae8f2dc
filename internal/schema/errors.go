package schema

import "errors"

// Sentinel errors for schema construction.
var (
	// ErrNoFields indicates a record type that declares no field.
	ErrNoFields = errors.New("schema: at least one field is required")

	// ErrMultipleTimestamps indicates a record type with more than one timestamp.
	ErrMultipleTimestamps = errors.New("schema: at most one timestamp is allowed")

	// ErrEmptyName indicates an empty measurement or column name.
	ErrEmptyName = errors.New("schema: name is empty")

	// ErrNilAccessor indicates a column declared without an accessor.
	ErrNilAccessor = errors.New("schema: accessor is nil")

	// ErrConflictingRoles indicates a struct member tagged with more than one role.
	ErrConflictingRoles = errors.New("schema: member has more than one role")

	// ErrUnsupportedType indicates a member type with no line protocol representation.
	// 64-bit unsigned integers fall in this category.
	ErrUnsupportedType = errors.New("schema: unsupported member type")

	// ErrUnknownOption indicates an unrecognised influx struct tag option.
	ErrUnknownOption = errors.New("schema: unknown influx tag option")

	// ErrAlreadyRegistered indicates a second registration for the same record type.
	ErrAlreadyRegistered = errors.New("schema: record type already registered")
)

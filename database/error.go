// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific database Error.
const (
	// ErrDbTypeRegistered indicates two different database drivers
	// attempt to register with the name database type.
	ErrDbTypeRegistered ErrorCode = iota

	// ErrDbUnknownType indicates there is no driver registered for
	// the specified database type.
	ErrDbUnknownType

	// ErrDbDoesNotExist indicates open is called for a database that
	// does not exist.
	ErrDbDoesNotExist

	// ErrDbExists indicates create is called for a database that
	// already exists.
	ErrDbExists

	// ErrDbNotOpen indicates a database instance is accessed before
	// it is opened or after it is closed.
	ErrDbNotOpen

	// ErrInvalidArgs indicates the driver received arguments it does
	// not understand.
	ErrInvalidArgs

	// ErrNodeNotFound indicates no node is stored at the requested
	// position.
	ErrNodeNotFound

	// ErrCorruption indicates a checksum or decoding failure occurred
	// which invariably means the database is corrupt.
	ErrCorruption

	// ErrDriverSpecific indicates the Err field is a driver-specific
	// error.  This provides a mechanism for drivers to plug-in their own
	// custom errors for any situations which aren't already covered by
	// the error codes provided by this package.
	ErrDriverSpecific

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrDbTypeRegistered: "ErrDbTypeRegistered",
	ErrDbUnknownType:    "ErrDbUnknownType",
	ErrDbDoesNotExist:   "ErrDbDoesNotExist",
	ErrDbExists:         "ErrDbExists",
	ErrDbNotOpen:        "ErrDbNotOpen",
	ErrInvalidArgs:      "ErrInvalidArgs",
	ErrNodeNotFound:     "ErrNodeNotFound",
	ErrCorruption:       "ErrCorruption",
	ErrDriverSpecific:   "ErrDriverSpecific",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error provides a single type for errors that can happen during database
// operation.  It is used to indicate several types of failures including
// errors with caller requests such as specifying invalid node positions or
// attempting to open a database that does not exist, and errors in the
// backing store itself.
//
// The caller can use type assertions to determine if an error is an Error and
// access the ErrorCode field to ascertain the specific reason for the failure.
//
// The ErrDriverSpecific error code will also have the Err field set with the
// underlying error.  Depending on the backend driver, the Err field might be
// set to the underlying error for other error codes as well.
type Error struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying error, if any.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.  The error code must
// be one of the error codes provided by this package.
func makeError(c ErrorCode, desc string, err error) Error {
	return Error{ErrorCode: c, Description: desc, Err: err}
}

// MakeError is makeError for drivers living in sub-packages.
func MakeError(c ErrorCode, desc string, err error) Error {
	return makeError(c, desc, err)
}

// NotFound returns the error drivers report for an absent position.
func NotFound(pos uint64) Error {
	return makeError(ErrNodeNotFound, fmt.Sprintf("node %d not found", pos), nil)
}

// IsErrorCode returns whether or not the provided error, or any error it
// wraps, is a database Error with the provided error code.
func IsErrorCode(err error, c ErrorCode) bool {
	var dbErr Error
	if errors.As(err, &dbErr) {
		return dbErr.ErrorCode == c
	}
	return false
}

// IsNotFound reports whether err says the requested node is absent.
func IsNotFound(err error) bool {
	return IsErrorCode(err, ErrNodeNotFound)
}

// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/jaxnet/headermmr/database"
	_ "gitlab.com/jaxnet/headermmr/database/badgerdb"
	_ "gitlab.com/jaxnet/headermmr/database/ldb"
	_ "gitlab.com/jaxnet/headermmr/database/memdb"
	_ "gitlab.com/jaxnet/headermmr/database/sqlitedb"
)

// checkDBError ensures the passed error is a database.Error with an error code
// that matches the passed  error code.
func checkDBError(t *testing.T, testName string, gotErr error, wantErrCode database.ErrorCode) bool {
	var dbErr database.Error
	if !errors.As(gotErr, &dbErr) {
		t.Errorf("%s: unexpected error type - got %T, want %T",
			testName, gotErr, database.Error{})
		return false
	}
	if dbErr.ErrorCode != wantErrCode {
		t.Errorf("%s: unexpected error code - got %s (%s), want %s",
			testName, dbErr.ErrorCode, dbErr.Description,
			wantErrCode)
		return false
	}

	return true
}

func TestSupportedDrivers(t *testing.T) {
	assert.Equal(t, []string{"badger", "leveldb", "memdb", "sqlite"}, database.SupportedDrivers())
}

// TestAddDuplicateDriver ensures that adding a duplicate driver does not
// overwrite an existing one.
func TestAddDuplicateDriver(t *testing.T) {
	supportedDrivers := database.SupportedDrivers()
	if len(supportedDrivers) == 0 {
		t.Errorf("no backends to test")
		return
	}
	dbType := supportedDrivers[0]

	// bogusCreateDB is a function which acts as a bogus create and open
	// driver function and intentionally returns a failure that can be
	// detected if the interface allows a duplicate driver to overwrite an
	// existing one.
	bogusCreateDB := func(args ...interface{}) (database.DB, error) {
		return nil, fmt.Errorf("duplicate driver allowed for database type [%v]", dbType)
	}

	// Create a driver that tries to replace an existing one.  Set its
	// create and open functions to a function that causes a test failure if
	// they are invoked.
	driver := database.Driver{
		DbType: dbType,
		Create: bogusCreateDB,
		Open:   bogusCreateDB,
	}
	testName := "duplicate driver registration"
	err := database.RegisterDriver(driver)
	if !checkDBError(t, testName, err, database.ErrDbTypeRegistered) {
		return
	}
}

// TestCreateOpenFail ensures that errors which occur while opening or closing
// a database are handled properly.
func TestCreateOpenFail(t *testing.T) {
	// bogusCreateDB is a function which acts as a bogus create and open
	// driver function that intentionally returns a failure which can be
	// detected.
	dbType := "createopenfail"
	openError := fmt.Errorf("failed to create or open database for "+
		"database type [%v]", dbType)
	bogusCreateDB := func(args ...interface{}) (database.DB, error) {
		return nil, openError
	}

	// Create and add driver that intentionally fails when created or opened
	// to ensure errors on database open and create are handled properly.
	driver := database.Driver{
		DbType: dbType,
		Create: bogusCreateDB,
		Open:   bogusCreateDB,
	}
	database.RegisterDriver(driver)

	// Ensure creating a database with the new type fails with the expected
	// error.
	_, err := database.Create(dbType, "path")
	if err != openError {
		t.Errorf("expected error not received - got: %v, want %v", err,
			openError)
		return
	}

	// Ensure opening a database with the new type fails with the expected
	// error.
	_, err = database.Open(dbType, "path")
	if err != openError {
		t.Errorf("expected error not received - got: %v, want %v", err,
			openError)
		return
	}
}

// TestCreateOpenUnsupported ensures that attempting to create or open an
// unsupported database type is handled properly.
func TestCreateOpenUnsupported(t *testing.T) {
	// Ensure creating a database with an unsupported type fails with the
	// expected error.
	testName := "create with unsupported database type"
	dbType := "unsupported"
	_, err := database.Create(dbType, "path")
	if !checkDBError(t, testName, err, database.ErrDbUnknownType) {
		return
	}

	// Ensure opening a database with the an unsupported type fails with the
	// expected error.
	testName = "open with unsupported database type"
	_, err = database.Open(dbType, "path")
	if !checkDBError(t, testName, err, database.ErrDbUnknownType) {
		return
	}
}

func TestErrorCodeStringer(t *testing.T) {
	tests := []struct {
		in   database.ErrorCode
		want string
	}{
		{database.ErrDbTypeRegistered, "ErrDbTypeRegistered"},
		{database.ErrNodeNotFound, "ErrNodeNotFound"},
		{database.ErrCorruption, "ErrCorruption"},
		{database.ErrDriverSpecific, "ErrDriverSpecific"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, test.in.String())
	}
}

func TestIsNotFound(t *testing.T) {
	err := database.NotFound(12)
	assert.True(t, database.IsNotFound(err))
	assert.True(t, database.IsNotFound(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, database.IsNotFound(errors.New("node 12 not found")))
	assert.False(t, database.IsNotFound(nil))
	assert.Equal(t, "node 12 not found", err.Error())
}

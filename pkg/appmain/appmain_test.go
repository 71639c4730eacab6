/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package appmain

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv(t *testing.T) {
	directory := t.TempDir()
	file := filepath.Join(directory, "test.env")
	if err := os.WriteFile(file, []byte("BORROW_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BORROW_TEST_VALUE", "")
	os.Unsetenv("BORROW_TEST_VALUE")

	errs := LoadEnv(file, filepath.Join(directory, "missing.env"))
	if len(errs) != 0 {
		t.Errorf("unexpected errors %v", errs)
	}
	if os.Getenv("BORROW_TEST_VALUE") != "from-file" {
		t.Errorf("env file was not loaded")
	}
}

func TestLoadEnvKeepsExisting(t *testing.T) {
	directory := t.TempDir()
	file := filepath.Join(directory, "test.env")
	if err := os.WriteFile(file, []byte("BORROW_TEST_KEEP=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BORROW_TEST_KEEP", "from-env")

	LoadEnv(file)
	if os.Getenv("BORROW_TEST_KEEP") != "from-env" {
		t.Errorf("env file overrode an existing variable")
	}
}

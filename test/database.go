package test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

// TmpFile returns the path to a unique SQLite database file in a
// directory that is removed when the test ends.
func TmpFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), fmt.Sprintf("staffplan-%s.db", uuid.NewString()))
}

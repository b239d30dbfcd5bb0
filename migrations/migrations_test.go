package migrations

import (
	"io"
	"strings"
	"testing"
)

func TestSource_VersionsMatchAcrossDrivers(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres"} {
		src, err := Source(driver)
		if err != nil {
			t.Fatalf("%s: Source: %v", driver, err)
		}
		first, err := src.First()
		if err != nil || first != 1 {
			t.Fatalf("%s: First = %d, %v; want 1", driver, first, err)
		}
		next, err := src.Next(first)
		if err != nil || next != 2 {
			t.Fatalf("%s: Next = %d, %v; want 2", driver, next, err)
		}

		r, ident, err := src.ReadUp(next)
		if err != nil {
			t.Fatalf("%s: ReadUp: %v", driver, err)
		}
		body, _ := io.ReadAll(r)
		r.Close()
		if ident != "create_transactions" || !strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS transactions") {
			t.Errorf("%s: ident = %q, body = %.60s", driver, ident, body)
		}
		if _, _, err := src.ReadDown(next); err != nil {
			t.Errorf("%s: ReadDown: %v", driver, err)
		}
		src.Close()
	}
}

func TestSource_UnknownDriver(t *testing.T) {
	if _, err := Source("sqlite"); err == nil {
		t.Error("want error for sqlite")
	}
}

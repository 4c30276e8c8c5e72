package repository

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/go-sql-driver/mysql"

	"github.com/nyumbalink/nyumbalink/internal/search"
)

func TestIsDuplicate(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	if !isDuplicate(dup) {
		t.Error("1062 should be a duplicate")
	}
	if !isDuplicate(fmt.Errorf("insert: %w", dup)) {
		t.Error("wrapped 1062 should be a duplicate")
	}
	if isDuplicate(&mysql.MySQLError{Number: 1452}) {
		t.Error("foreign key error is not a duplicate")
	}
	if isDuplicate(errors.New("Duplicate entry 1062")) {
		t.Error("plain errors are not inspected by text")
	}
}

func TestLimitOffset(t *testing.T) {
	cases := []struct {
		page, size, limit, offset int
	}{
		{0, 0, 12, 0},
		{3, 20, 20, 40},
		{2, 1000, 100, 100},
		{math.MaxInt, 100, 100, (search.MaxPage - 1) * 100},
	}
	for _, tc := range cases {
		l, o := limitOffset(tc.page, tc.size)
		if l != tc.limit || o != tc.offset {
			t.Errorf("limitOffset(%d,%d) = %d,%d; want %d,%d", tc.page, tc.size, l, o, tc.limit, tc.offset)
		}
	}
}

package models

import "strings"

// Category labels a transaction or budget. Budgets and transactions relate by
// exact category value; there is no category table.
type Category string

// String returns the raw label.
func (c Category) String() string { return string(c) }

// IsZero reports whether the label is blank.
func (c Category) IsZero() bool { return strings.TrimSpace(string(c)) == "" }

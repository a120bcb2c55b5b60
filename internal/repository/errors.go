// Package repository implements persistence over MySQL with hand-written
// SQL. Repositories expose plain methods for single reads and writes and
// ...Tx variants that participate in a caller-owned transaction. Row
// absence is reported as sql.ErrNoRows; cross-repository sentinels live
// here so handlers and services can branch on them.
package repository

import "errors"

// ErrNameExists is returned when a user registration collides with an
// existing display name.
var ErrNameExists = errors.New("name already exists")

// ErrEmailExists is returned when a user registration collides with an
// existing email address.
var ErrEmailExists = errors.New("email already exists")

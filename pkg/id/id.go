package id

import "github.com/oklog/ulid/v2"

// New returns a ULID string. ULIDs sort lexicographically by creation time,
// which keeps trade ledgers and journal indexes in chronological order.
func New() string {
	return ulid.Make().String()
}

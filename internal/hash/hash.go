/*
Copyright © 2026 the dispenseqc authors.
This file is part of dispenseqc.

dispenseqc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

dispenseqc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with dispenseqc.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package hash computes stable fingerprints of analysis results.
package hash

import (
	"encoding/gob"
	"encoding/hex"
	"hash/fnv"
	"io"

	"github.com/davecgh/go-spew/spew"
)

// printer writes a deterministic dump of a value when it cannot be
// gob-encoded.
var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Hash returns a hex-encoded FNV-128a digest of object. Values are
// gob-encoded; values gob cannot encode (such as structs without
// exported fields) are hashed from their spew dump instead.
func Hash(object interface{}) string {
	h := fnv.New128a()
	if err := gob.NewEncoder(h).Encode(object); err != nil {
		h.Reset()
		dump(h, object)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func dump(w io.Writer, object interface{}) {
	printer.Fprintf(w, "%#v", object)
}

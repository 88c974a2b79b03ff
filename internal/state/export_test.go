package state

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

func encodeRaw(w io.Writer, snap *Snapshot) error {
	return msgpack.NewEncoder(w).Encode(snap)
}

package layout

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
)

// CellName derives a stable cell name from a generator kind and its
// parameters: equal parameters give equal names, so the GDS writer can
// share one structure between identical cells.
func CellName(kind string, params ...any) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Parameters that cannot be encoded still need a unique name.
		return kind + "_" + uuid.NewString()[:8]
	}
	sum := sha256.Sum256(append([]byte(kind+"\x00"), data...))
	return kind + "_" + hex.EncodeToString(sum[:4])
}

// WithUUID appends a random suffix to the cell name so that repeated
// builds of the same parameters do not share a structure.
func WithUUID(c *Component) *Component {
	c.Name += "_" + uuid.NewString()[:8]
	return c
}

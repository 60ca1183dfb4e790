package layout

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/vanderheijden86/starmap/pkg/model"
)

// ComputeDataHash returns a short hash of every node field that influences layout.
// Input order is part of the hash because ranking ties and golden-angle steps depend
// on it.
func ComputeDataHash(nodes []model.Node) string {
	if len(nodes) == 0 {
		return "empty"
	}
	h := sha256.New()
	for _, n := range nodes {
		writeField(h, n.ID)
		writeField(h, string(n.Category))
		writeField(h, string(n.Kind))
		writeField(h, n.ReferenceID)
		writeField(h, strconv.FormatFloat(n.Priority, 'g', -1, 64))
		writeField(h, string(n.Difficulty))
		_, _ = h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ComputeConfigHash returns a short hash of cfg.
func ComputeConfigHash(cfg Config) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%#v", cfg)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func writeField(w io.Writer, v string) {
	_, _ = io.WriteString(w, v)
	_, _ = w.Write([]byte{0})
}

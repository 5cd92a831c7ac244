package harness

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/slatedata/slatetest/internal/grid"
)

// DatasetSnapshot is the golden-file form of a dataset: its canonical
// schema render plus its row renderings sorted ascending, so the
// snapshot is stable under the engine's arbitrary row order.
type DatasetSnapshot struct {
	Schema string
	Rows   []string
}

// render produces the golden file body: one header line for the
// schema, then one line per sorted row.
func (s DatasetSnapshot) render() []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "schema: %s\n", s.Schema)
	for _, row := range s.Rows {
		fmt.Fprintf(&buf, "%s\n", row)
	}
	return []byte(buf.String())
}

// VerifyDatasetGolden snapshots ds and compares it against
// testdata/{name}.golden. Regenerate golden files with:
//
//	go test ./internal/harness -update
func VerifyDatasetGolden(t *testing.T, name string, ds *grid.Dataset) {
	t.Helper()

	schema, err := ds.DeriveSchema(t.Context())
	if err != nil {
		t.Fatalf("golden snapshot: %v", err)
	}
	rows, err := ds.RenderRows(t.Context())
	if err != nil {
		t.Fatalf("golden snapshot: %v", err)
	}
	sort.Strings(rows)

	snap := DatasetSnapshot{Schema: schema.String(), Rows: rows}
	g := goldie.New(t)
	g.Assert(t, name, snap.render())
}

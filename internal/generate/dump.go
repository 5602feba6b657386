package generate

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/cfnts/cfnts/internal/metadata"
)

// Dump formats.
const (
	DumpJSON = "json"
	DumpGo   = "go"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// WriteDump writes the compiled model of a document for inspection.
func WriteDump(w io.Writer, rt *metadata.ResourceType, format string) error {
	switch format {
	case DumpJSON, "":
		data, err := json.Marshal(rt, json.Deterministic(true), jsontext.WithIndent("  "))
		if err != nil {
			return fmt.Errorf("encoding model: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	case DumpGo:
		dumpConfig.Fdump(w, rt)
		return nil
	default:
		return fmt.Errorf("unknown dump format %q (want %s or %s)", format, DumpJSON, DumpGo)
	}
}

package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Accelerators that report structure counts feed extra rows into Stats.
type acceleratorStats interface {
	Stats() (nodes, leafs, maxDepth int)
}

// Build a tabular representation of scene statistics.
func (s *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Component", "Detail", "Value"})

	table.Append([]string{"Geometry", "Primitives", fmt.Sprintf("%d", len(s.primitives))})
	table.Append([]string{"", "Buffer size", strings.TrimLeft(fmtSize(s.primitives), " ")})
	table.Append([]string{" ", " ", " "})

	table.Append([]string{"Lights", "Count", fmt.Sprintf("%d", len(s.lights))})
	for i, l := range s.lights {
		table.Append([]string{"", fmt.Sprintf("Light %d pick pdf", i), fmt.Sprintf("%.4f", l.PickProb())})
	}
	table.Append([]string{" ", " ", " "})

	switch {
	case s.accel == nil:
		table.Append([]string{"Accelerator", "Variant", "brute force"})
	default:
		table.Append([]string{"Accelerator", "Variant", fmt.Sprintf("%T", s.accel)})
		if as, ok := s.accel.(acceleratorStats); ok {
			nodes, leafs, maxDepth := as.Stats()
			table.Append([]string{"", "Nodes", fmt.Sprintf("%d", nodes)})
			table.Append([]string{"", "Leafs", fmt.Sprintf("%d", leafs)})
			table.Append([]string{"", "Max depth", fmt.Sprintf("%d", maxDepth)})
		}
	}

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}

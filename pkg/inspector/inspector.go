package inspector

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/zerfoo/onnxdims/internal/onnx"
)

// InputShape is the name and static shape of one graph input.
type InputShape struct {
	Name string
	Dims []int64
}

// InputShapes returns the graph inputs of m in declaration order. Axes
// without a dim_value (symbolic or unset) are reported as 0 and logged at
// warn level. Non-tensor inputs have no dims. A nil logger uses
// slog.Default().
func InputShapes(m *onnx.Model, logger *slog.Logger) []InputShape {
	if logger == nil {
		logger = slog.Default()
	}

	inputs := m.GetGraph().GetInput()
	shapes := make([]InputShape, 0, len(inputs))
	for i := range inputs {
		in := &inputs[i]
		dims := make([]int64, 0, len(in.Dims()))
		for axis, d := range in.Dims() {
			if !d.HasValue {
				logger.Warn("dimension has no static value, reporting 0",
					"input", in.Name, "elem_type", in.ElemType(), "axis", axis, "dim_param", d.Param)
			}
			dims = append(dims, d.Value)
		}
		if in.Type != nil && in.Type.Kind != onnx.KindTensor {
			logger.Debug("input is not a tensor", "input", in.Name, "kind", in.Type.Kind)
		} else {
			logger.Debug("input", "name", in.Name, "elem_type", in.ElemType(), "rank", len(dims))
		}
		shapes = append(shapes, InputShape{Name: in.Name, Dims: dims})
	}
	return shapes
}

// FormatDims renders dims as a bracketed, comma-separated list such as
// "[1, 3, 224, 224]".
func FormatDims(dims []int64) string {
	b := make([]byte, 0, 2+len(dims)*6)
	b = append(b, '[')
	for i, d := range dims {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = strconv.AppendInt(b, d, 10)
	}
	return string(append(b, ']'))
}

// WriteInputFlags writes one "-d <name> <dims>" line per graph input of m.
// The lines are written with a single Write once all are formatted.
func WriteInputFlags(w io.Writer, m *onnx.Model, logger *slog.Logger) error {
	var buf bytes.Buffer
	for _, s := range InputShapes(m, logger) {
		fmt.Fprintf(&buf, "-d %s %s\n", s.Name, FormatDims(s.Dims))
	}
	if buf.Len() == 0 {
		return nil
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write input flags: %w", err)
	}
	return nil
}

// Package onnx holds the subset of the ONNX ModelProto schema needed to read
// graph input declarations, together with a protobuf wire codec for it.
package onnx

import "strconv"

// Model is a decoded ModelProto.
type Model struct {
	IRVersion       int64
	ProducerName    string
	ProducerVersion string
	Domain          string
	ModelVersion    int64
	DocString       string
	OpsetImport     []OperatorSetID
	Graph           *Graph
}

// GetGraph returns the model graph, or nil.
func (m *Model) GetGraph() *Graph {
	if m == nil {
		return nil
	}
	return m.Graph
}

// OperatorSetID identifies an opset version for a domain.
type OperatorSetID struct {
	Domain  string
	Version int64
}

// Graph is a decoded GraphProto. Nodes and initializers are only counted.
type Graph struct {
	Name             string
	DocString        string
	Input            []ValueInfo
	Output           []ValueInfo
	NodeCount        int
	InitializerCount int
}

// GetInput returns the declared graph inputs in model order.
func (g *Graph) GetInput() []ValueInfo {
	if g == nil {
		return nil
	}
	return g.Input
}

// ValueInfo is a decoded ValueInfoProto.
type ValueInfo struct {
	Name      string
	Type      *TypeProto
	DocString string
}

// TypeKind records which member of the TypeProto oneof was present.
type TypeKind int

const (
	KindUndefined TypeKind = iota
	KindTensor
	KindSequence
	KindMap
	KindSparseTensor
	KindOptional
)

func (k TypeKind) String() string {
	switch k {
	case KindTensor:
		return "tensor"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	case KindSparseTensor:
		return "sparse_tensor"
	case KindOptional:
		return "optional"
	default:
		return "undefined"
	}
}

// TypeProto is a decoded TypeProto. Only tensor types are kept in full.
type TypeProto struct {
	Kind   TypeKind
	Tensor *TensorType
}

// TensorType is a decoded TypeProto.Tensor.
type TensorType struct {
	ElemType DataType
	Shape    *Shape
}

// Shape is a decoded TensorShapeProto.
type Shape struct {
	Dim []Dimension
}

// Dimension is one axis of a TensorShapeProto. HasValue distinguishes an
// explicit dim_value from a symbolic or unset axis.
type Dimension struct {
	Value      int64
	Param      string
	HasValue   bool
	Denotation string
}

// Dims returns the shape dimensions of a tensor-typed value, or nil for
// non-tensor or shapeless values.
func (v *ValueInfo) Dims() []Dimension {
	if v.Type == nil || v.Type.Tensor == nil || v.Type.Tensor.Shape == nil {
		return nil
	}
	return v.Type.Tensor.Shape.Dim
}

// ElemType returns the element type of a tensor-typed value, or
// DataTypeUndefined.
func (v *ValueInfo) ElemType() DataType {
	if v.Type == nil || v.Type.Tensor == nil {
		return DataTypeUndefined
	}
	return v.Type.Tensor.ElemType
}

// DataType is TensorProto.DataType.
type DataType int32

const (
	DataTypeUndefined  DataType = 0
	DataTypeFloat      DataType = 1
	DataTypeUint8      DataType = 2
	DataTypeInt8       DataType = 3
	DataTypeUint16     DataType = 4
	DataTypeInt16      DataType = 5
	DataTypeInt32      DataType = 6
	DataTypeInt64      DataType = 7
	DataTypeString     DataType = 8
	DataTypeBool       DataType = 9
	DataTypeFloat16    DataType = 10
	DataTypeDouble     DataType = 11
	DataTypeUint32     DataType = 12
	DataTypeUint64     DataType = 13
	DataTypeComplex64  DataType = 14
	DataTypeComplex128 DataType = 15
	DataTypeBfloat16   DataType = 16
)

var dataTypeNames = map[DataType]string{
	DataTypeUndefined:  "undefined",
	DataTypeFloat:      "float32",
	DataTypeUint8:      "uint8",
	DataTypeInt8:       "int8",
	DataTypeUint16:     "uint16",
	DataTypeInt16:      "int16",
	DataTypeInt32:      "int32",
	DataTypeInt64:      "int64",
	DataTypeString:     "string",
	DataTypeBool:       "bool",
	DataTypeFloat16:    "float16",
	DataTypeDouble:     "float64",
	DataTypeUint32:     "uint32",
	DataTypeUint64:     "uint64",
	DataTypeComplex64:  "complex64",
	DataTypeComplex128: "complex128",
	DataTypeBfloat16:   "bfloat16",
}

func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return "DataType(" + strconv.Itoa(int(d)) + ")"
}

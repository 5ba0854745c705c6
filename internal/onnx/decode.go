package onnx

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed reports bytes that are not a valid protobuf encoding of the
// expected message.
var ErrMalformed = errors.New("malformed ONNX protobuf")

// Unmarshal decodes a serialized ModelProto. Fields outside the supported
// subset are skipped. Embedded messages that occur more than once are merged,
// so scalars take the last value and repeated fields accumulate.
func Unmarshal(data []byte) (*Model, error) {
	m := &Model{}
	if err := decodeModel(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// fieldFunc handles one field whose tag has already been consumed and whose
// wire type matches the message schema. It returns the number of value bytes
// consumed, or skip to let the caller discard the field.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// schema maps the known field numbers of a message to their wire types.
type schema map[protowire.Number]protowire.Type

const skip = -1

// decodeMessage walks the fields of one message. Fields missing from s, and
// known fields arriving with a different wire type, are kept out of the
// handler and discarded like any unknown field.
func decodeMessage(name string, b []byte, s schema, field fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, name, protowire.ParseError(n))
		}
		b = b[n:]

		n = skip
		if want, ok := s[num]; ok && want == typ {
			var err error
			n, err = field(num, typ, b)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		if n == skip {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: %s field %d: %v", ErrMalformed, name, num, protowire.ParseError(n))
			}
		}
		b = b[n:]
	}
	return nil
}

func consumeVarint(num protowire.Number, b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeBytes(num protowire.Number, b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
	}
	return v, n, nil
}

const (
	varintType = protowire.VarintType
	lengthType = protowire.BytesType
)

var (
	modelSchema     = schema{1: varintType, 2: lengthType, 3: lengthType, 4: lengthType, 5: varintType, 6: lengthType, 7: lengthType, 8: lengthType}
	opsetSchema     = schema{1: lengthType, 2: varintType}
	graphSchema     = schema{1: lengthType, 2: lengthType, 5: lengthType, 10: lengthType, 11: lengthType, 12: lengthType}
	valueInfoSchema = schema{1: lengthType, 2: lengthType, 3: lengthType}
	typeSchema      = schema{1: lengthType, 4: lengthType, 5: lengthType, 8: lengthType, 9: lengthType}
	tensorSchema    = schema{1: varintType, 2: lengthType}
	shapeSchema     = schema{1: lengthType}
	dimensionSchema = schema{1: varintType, 2: lengthType, 3: lengthType}
)

func decodeModel(b []byte, m *Model) error {
	return decodeMessage("ModelProto", b, modelSchema, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1: // ir_version
			v, n, err := consumeVarint(num, b)
			m.IRVersion = int64(v)
			return n, err
		case 2, 3, 4, 6: // producer_name, producer_version, domain, doc_string
			v, n, err := consumeBytes(num, b)
			if err != nil {
				return 0, err
			}
			switch num {
			case 2:
				m.ProducerName = string(v)
			case 3:
				m.ProducerVersion = string(v)
			case 4:
				m.Domain = string(v)
			case 6:
				m.DocString = string(v)
			}
			return n, nil
		case 5: // model_version
			v, n, err := consumeVarint(num, b)
			m.ModelVersion = int64(v)
			return n, err
		case 7: // graph
			v, n, err := consumeBytes(num, b)
			if err != nil {
				return 0, err
			}
			if m.Graph == nil {
				m.Graph = &Graph{}
			}
			return n, decodeGraph(v, m.Graph)
		case 8: // opset_import
			v, n, err := consumeBytes(num, b)
			if err != nil {
				return 0, err
			}
			var id OperatorSetID
			if err := decodeOperatorSetID(v, &id); err != nil {
				return 0, err
			}
			m.OpsetImport = append(m.OpsetImport, id)
			return n, nil
		}
		return skip, nil
	})
}

func decodeOperatorSetID(b []byte, id *OperatorSetID) error {
	return decodeMessage("OperatorSetIdProto", b, opsetSchema, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1: // domain
			v, n, err := consumeBytes(num, b)
			id.Domain = string(v)
			return n, err
		case 2: // version
			v, n, err := consumeVarint(num, b)
			id.Version = int64(v)
			return n, err
		}
		return skip, nil
	})
}

func decodeGraph(b []byte, g *Graph) error {
	return decodeMessage("GraphProto", b, graphSchema, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1, 5: // node, initializer
			_, n, err := consumeBytes(num, b)
			if err != nil {
				return 0, err
			}
			if num == 1 {
				g.NodeCount++
			} else {
				g.InitializerCount++
			}
			return n, nil
		case 2: // name
			v, n, err := consumeBytes(num, b)
			g.Name = string(v)
			return n, err
		case 10: // doc_string
			v, n, err := consumeBytes(num, b)
			g.DocString = string(v)
			return n, err
		case 11, 12: // input, output
			v, n, err := consumeBytes(num, b)
			if err != nil {
				return 0, err
			}
			var vi ValueInfo
			if err := decodeValueInfo(v, &vi); err != nil {
				return 0, err
			}
			if num == 11 {
				g.Input = append(g.Input, vi)
			} else {
				g.Output = append(g.Output, vi)
			}
			return n, nil
		}
		return skip, nil
	})
}

func decodeValueInfo(b []byte, vi *ValueInfo) error {
	return decodeMessage("ValueInfoProto", b, valueInfoSchema, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1: // name
			v, n, err := consumeBytes(num, b)
			vi.Name = string(v)
			return n, err
		case 2: // type
			v, n, err := consumeBytes(num, b)
			if err != nil {
				return 0, err
			}
			if vi.Type == nil {
				vi.Type = &TypeProto{}
			}
			return n, decodeType(v, vi.Type)
		case 3: // doc_string
			v, n, err := consumeBytes(num, b)
			vi.DocString = string(v)
			return n, err
		}
		return skip, nil
	})
}

// typeKinds maps TypeProto oneof field numbers to their kind.
var typeKinds = map[protowire.Number]TypeKind{
	1: KindTensor,
	4: KindSequence,
	5: KindMap,
	8: KindSparseTensor,
	9: KindOptional,
}

func decodeType(b []byte, t *TypeProto) error {
	return decodeMessage("TypeProto", b, typeSchema, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		kind, ok := typeKinds[num]
		if !ok {
			return skip, nil
		}
		v, n, err := consumeBytes(num, b)
		if err != nil {
			return 0, err
		}
		// Setting a different oneof member clears the previous one.
		if kind != t.Kind {
			t.Tensor = nil
		}
		t.Kind = kind
		if kind != KindTensor {
			return n, nil
		}
		if t.Tensor == nil {
			t.Tensor = &TensorType{}
		}
		return n, decodeTensorType(v, t.Tensor)
	})
}

func decodeTensorType(b []byte, t *TensorType) error {
	return decodeMessage("TypeProto.Tensor", b, tensorSchema, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1: // elem_type
			v, n, err := consumeVarint(num, b)
			t.ElemType = DataType(int32(v))
			return n, err
		case 2: // shape
			v, n, err := consumeBytes(num, b)
			if err != nil {
				return 0, err
			}
			if t.Shape == nil {
				t.Shape = &Shape{}
			}
			return n, decodeShape(v, t.Shape)
		}
		return skip, nil
	})
}

func decodeShape(b []byte, s *Shape) error {
	return decodeMessage("TensorShapeProto", b, shapeSchema, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 { // dim
			return skip, nil
		}
		v, n, err := consumeBytes(num, b)
		if err != nil {
			return 0, err
		}
		var d Dimension
		if err := decodeDimension(v, &d); err != nil {
			return 0, err
		}
		s.Dim = append(s.Dim, d)
		return n, nil
	})
}

func decodeDimension(b []byte, d *Dimension) error {
	return decodeMessage("TensorShapeProto.Dimension", b, dimensionSchema, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1: // dim_value
			v, n, err := consumeVarint(num, b)
			if err != nil {
				return 0, err
			}
			d.Value, d.HasValue, d.Param = int64(v), true, ""
			return n, nil
		case 2: // dim_param
			v, n, err := consumeBytes(num, b)
			if err != nil {
				return 0, err
			}
			d.Value, d.HasValue, d.Param = 0, false, string(v)
			return n, nil
		case 3: // denotation
			v, n, err := consumeBytes(num, b)
			d.Denotation = string(v)
			return n, err
		}
		return skip, nil
	})
}

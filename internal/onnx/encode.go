package onnx

import "google.golang.org/protobuf/encoding/protowire"

// Marshal encodes m as a ModelProto. Zero-valued scalars are omitted, and
// node and initializer counts are written as empty messages.
func Marshal(m *Model) []byte {
	var b []byte
	if m.IRVersion != 0 {
		b = appendVarint(b, 1, uint64(m.IRVersion))
	}
	b = appendString(b, 2, m.ProducerName)
	b = appendString(b, 3, m.ProducerVersion)
	b = appendString(b, 4, m.Domain)
	if m.ModelVersion != 0 {
		b = appendVarint(b, 5, uint64(m.ModelVersion))
	}
	b = appendString(b, 6, m.DocString)
	if m.Graph != nil {
		b = appendMessage(b, 7, marshalGraph(m.Graph))
	}
	for _, id := range m.OpsetImport {
		var ob []byte
		ob = appendString(ob, 1, id.Domain)
		ob = appendVarint(ob, 2, uint64(id.Version))
		b = appendMessage(b, 8, ob)
	}
	return b
}

func marshalGraph(g *Graph) []byte {
	var b []byte
	for i := 0; i < g.NodeCount; i++ {
		b = appendMessage(b, 1, nil)
	}
	b = appendString(b, 2, g.Name)
	for i := 0; i < g.InitializerCount; i++ {
		b = appendMessage(b, 5, nil)
	}
	b = appendString(b, 10, g.DocString)
	for i := range g.Input {
		b = appendMessage(b, 11, marshalValueInfo(&g.Input[i]))
	}
	for i := range g.Output {
		b = appendMessage(b, 12, marshalValueInfo(&g.Output[i]))
	}
	return b
}

// kindFields is the inverse of typeKinds.
var kindFields = map[TypeKind]protowire.Number{
	KindTensor:       1,
	KindSequence:     4,
	KindMap:          5,
	KindSparseTensor: 8,
	KindOptional:     9,
}

func marshalValueInfo(vi *ValueInfo) []byte {
	var b []byte
	b = appendString(b, 1, vi.Name)
	if vi.Type != nil {
		b = appendMessage(b, 2, marshalType(vi.Type))
	}
	b = appendString(b, 3, vi.DocString)
	return b
}

func marshalType(t *TypeProto) []byte {
	kind := t.Kind
	if kind == KindUndefined && t.Tensor != nil {
		kind = KindTensor
	}
	num, ok := kindFields[kind]
	if !ok {
		return nil
	}
	var inner []byte
	if kind == KindTensor && t.Tensor != nil {
		if t.Tensor.ElemType != DataTypeUndefined {
			inner = appendVarint(inner, 1, uint64(int64(t.Tensor.ElemType)))
		}
		if t.Tensor.Shape != nil {
			inner = appendMessage(inner, 2, marshalShape(t.Tensor.Shape))
		}
	}
	return appendMessage(nil, num, inner)
}

func marshalShape(s *Shape) []byte {
	var b []byte
	for _, d := range s.Dim {
		var db []byte
		switch {
		case d.HasValue:
			db = appendVarint(db, 1, uint64(d.Value))
		case d.Param != "":
			db = appendString(db, 2, d.Param)
		}
		db = appendString(db, 3, d.Denotation)
		b = appendMessage(b, 1, db)
	}
	return b
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

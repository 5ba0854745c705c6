package importer

import (
	"context"
	"fmt"
	"os"

	"github.com/zerfoo/onnxdims/internal/onnx"
	"github.com/zerfoo/onnxdims/pkg/downloader"
)

// Open loads a model from ref. An existing local file always wins, since
// "hf://org/repo/m.onnx" is also a valid relative path. Otherwise references
// handled by d are fetched into memory and anything else is read from disk.
// d may be nil.
func Open(ctx context.Context, ref string, d *downloader.Downloader) (*onnx.Model, error) {
	if d == nil || !d.Handles(ref) {
		return LoadOnnxModel(ref)
	}
	if _, err := os.Stat(ref); err == nil {
		return LoadOnnxModel(ref)
	}

	data, err := d.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ONNX model: %w", err)
	}
	return ParseOnnxModel(data)
}

// LoadOnnxModel reads an ONNX model file and returns the parsed model.
func LoadOnnxModel(path string) (*onnx.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ONNX file: %w", err)
	}
	return ParseOnnxModel(data)
}

// ParseOnnxModel parses a serialized ONNX model.
func ParseOnnxModel(data []byte) (*onnx.Model, error) {
	model, err := onnx.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal ONNX protobuf: %w", err)
	}
	return model, nil
}

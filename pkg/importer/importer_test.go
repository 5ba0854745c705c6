package importer

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerfoo/onnxdims/internal/onnx"
	"github.com/zerfoo/onnxdims/pkg/downloader"
)

func dummyModel() *onnx.Model {
	return &onnx.Model{
		IRVersion:   4,
		OpsetImport: []onnx.OperatorSetID{{Version: 9}},
		Graph: &onnx.Graph{
			Name:      "dummy",
			NodeCount: 2,
			Input: []onnx.ValueInfo{{
				Name: "input",
				Type: &onnx.TypeProto{
					Kind: onnx.KindTensor,
					Tensor: &onnx.TensorType{
						ElemType: onnx.DataTypeFloat,
						Shape:    &onnx.Shape{Dim: []onnx.Dimension{{Value: 1, HasValue: true}}},
					},
				},
			}},
		},
	}
}

// Helper function to create a dummy ONNX model file
func createDummyOnnxModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.onnx")
	require.NoError(t, os.WriteFile(path, onnx.Marshal(dummyModel()), 0o644))
	return path
}

func TestLoadOnnxModel(t *testing.T) {
	model, err := LoadOnnxModel(createDummyOnnxModel(t))
	require.NoError(t, err)
	assert.Equal(t, dummyModel(), model)
}

func TestLoadOnnxModel_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadOnnxModel(filepath.Join(dir, "missing.onnx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to read ONNX file")

	garbage := filepath.Join(dir, "garbage.onnx")
	require.NoError(t, os.WriteFile(garbage, []byte{0xff, 0xff, 0xff}, 0o644))
	_, err = LoadOnnxModel(garbage)
	require.Error(t, err)
	assert.ErrorIs(t, err, onnx.ErrMalformed)
	assert.Contains(t, err.Error(), "failed to unmarshal ONNX protobuf")
}

func TestOpen(t *testing.T) {
	payload := onnx.Marshal(dummyModel())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/model.onnx":
			_, _ = w.Write(payload)
		default:
			http.Error(w, "Not Found", http.StatusNotFound)
		}
	}))
	defer server.Close()

	d := downloader.NewDownloader(downloader.NewHTTPSource(server.Client()))
	ctx := context.Background()

	model, err := Open(ctx, server.URL+"/model.onnx", d)
	require.NoError(t, err)
	assert.Equal(t, "dummy", model.GetGraph().Name)

	_, err = Open(ctx, server.URL+"/missing.onnx", d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch ONNX model")

	local := createDummyOnnxModel(t)
	model, err = Open(ctx, local, d)
	require.NoError(t, err)
	assert.Len(t, model.GetGraph().GetInput(), 1)

	model, err = Open(ctx, local, nil)
	require.NoError(t, err)
	assert.Len(t, model.GetGraph().GetInput(), 1)
}

func TestOpen_LocalFileShadowsRemoteRef(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "hf:", "org", "repo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hf:", "org", "repo", "m.onnx"), onnx.Marshal(dummyModel()), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	remote := &countingSource{}
	d := downloader.NewDownloader(remote)

	model, err := Open(context.Background(), "hf://org/repo/m.onnx", d)
	require.NoError(t, err)
	assert.Equal(t, "dummy", model.GetGraph().Name)
	assert.Zero(t, remote.calls)

	_, err = Open(context.Background(), "hf://org/repo/other.onnx", d)
	require.Error(t, err)
	assert.Equal(t, 1, remote.calls)
}

type countingSource struct {
	calls int
}

func (c *countingSource) Handles(ref string) bool { return strings.HasPrefix(ref, "hf://") }

func (c *countingSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	c.calls++
	return nil, errors.New("remote unavailable")
}

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBuildWithCGODisabled ensures onnxdims builds with CGO disabled, so the
// binary never links a native ONNX runtime.
func TestBuildWithCGODisabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping build in short mode")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not in PATH")
	}

	cmd := exec.Command(goBin, "build", "-o", filepath.Join(t.TempDir(), "onnxdims"), ".")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "build failed with CGO disabled:\n%s", out)
}

package policy

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func writeArchive(t *testing.T, path string, members map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	defer gz.Close()
	tw := tar.NewWriter(gz)
	defer tw.Close()

	for name, data := range members {
		if err := tw.WriteHeader(&tar.Header{Name: name, Size: int64(len(data))}); err != nil {
			t.Fatalf("write header: %v", err)
		}
		if _, err := tw.Write(data); err != nil {
			t.Fatalf("write data: %v", err)
		}
	}
}

func TestLoadValidArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.kinfer")
	writeArchive(t, path, map[string][]byte{
		"init_fn.onnx": []byte("init-graph-bytes"),
		"step_fn.onnx": []byte("step-graph-bytes"),
		"metadata.json": []byte(`{"joint_names": ["dof_left_elbow_02"], "command_names": ["x"]}`),
	})

	a, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(a.InitGraph) != "init-graph-bytes" {
		t.Errorf("unexpected init graph contents: %q", a.InitGraph)
	}
	if len(a.Metadata.JointNames) != 1 || a.Metadata.JointNames[0] != "dof_left_elbow_02" {
		t.Errorf("unexpected joint names: %v", a.Metadata.JointNames)
	}
}

func TestLoadMissingMember(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.kinfer")
	writeArchive(t, path, map[string][]byte{
		"init_fn.onnx":  []byte("x"),
		"metadata.json": []byte(`{"joint_names": ["a"]}`),
	})

	_, err := Load(path)
	if _, ok := err.(*ErrArchiveInvalid); !ok {
		t.Fatalf("expected *ErrArchiveInvalid, got %v", err)
	}
}

func TestLoadMissingJointNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.kinfer")
	writeArchive(t, path, map[string][]byte{
		"init_fn.onnx":  []byte("x"),
		"step_fn.onnx":  []byte("y"),
		"metadata.json": []byte(`{}`),
	})

	_, err := Load(path)
	if _, ok := err.(*ErrArchiveInvalid); !ok {
		t.Fatalf("expected *ErrArchiveInvalid, got %v", err)
	}
}

func TestLoadNotGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.kinfer")
	if err := os.WriteFile(path, []byte("plain text, not gzip"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Load(path)
	if _, ok := err.(*ErrArchiveInvalid); !ok {
		t.Fatalf("expected *ErrArchiveInvalid, got %v", err)
	}
}

func TestNoopRuntimeReturnsZeroAction(t *testing.T) {
	r := NoopRuntime{ActionDim: 4}
	carry, err := r.Init()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	action, _, err := r.Step([]float64{1, 2, 3}, carry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(action) != 4 {
		t.Fatalf("expected action length 4, got %d", len(action))
	}
}

// Package policy loads and runs the compiled inference archive that drives
// the control loop: a gzipped tar containing two inference graphs and a
// JSON metadata document declaring joint ordering and command names. See
// spec.md §4.H.
//
// No ONNX runtime binding exists anywhere in this project's dependency
// pack, so actual graph execution stays behind the Runtime interface as an
// external collaborator (consistent with spec.md's own scope boundary);
// this package owns only the archive container format, which is pure
// stdlib (archive/tar, compress/gzip, encoding/json).
package policy

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// requiredMembers are the exact archive entries the reference firmware
// asserts on before trusting the archive.
var requiredMembers = []string{"init_fn.onnx", "step_fn.onnx", "metadata.json"}

// Metadata is the archive's declared joint ordering and command names.
type Metadata struct {
	JointNames   []string `json:"joint_names"`
	CommandNames []string `json:"command_names"`
}

// Archive is a loaded, validated policy archive: the two raw inference
// graphs (opaque bytes, handed to whatever Runtime the deployment wires up)
// and parsed metadata.
type Archive struct {
	InitGraph []byte
	StepGraph []byte
	Metadata  Metadata
}

// ErrArchiveInvalid is fatal: the archive is missing a required member or a
// required metadata field.
type ErrArchiveInvalid struct {
	Path   string
	Reason string
}

func (e *ErrArchiveInvalid) Error() string {
	return fmt.Sprintf("policy: archive %s invalid: %s", e.Path, e.Reason)
}

// Load opens path (expected to be a .kinfer gzipped tar archive), verifies
// it contains every required member (other members are read and ignored),
// and parses metadata.json.
func Load(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ErrArchiveInvalid{Path: path, Reason: err.Error()}
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, &ErrArchiveInvalid{Path: path, Reason: "not a gzip stream: " + err.Error()}
	}
	defer gz.Close()

	members := make(map[string][]byte)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ErrArchiveInvalid{Path: path, Reason: "corrupt tar stream: " + err.Error()}
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, &ErrArchiveInvalid{Path: path, Reason: "failed reading member " + hdr.Name + ": " + err.Error()}
		}
		members[hdr.Name] = data
	}

	for _, name := range requiredMembers {
		if _, ok := members[name]; !ok {
			return nil, &ErrArchiveInvalid{Path: path, Reason: "missing required member " + name}
		}
	}

	var meta Metadata
	if err := json.Unmarshal(members["metadata.json"], &meta); err != nil {
		return nil, &ErrArchiveInvalid{Path: path, Reason: "malformed metadata.json: " + err.Error()}
	}
	if len(meta.JointNames) == 0 {
		return nil, &ErrArchiveInvalid{Path: path, Reason: "metadata.json missing joint_names"}
	}

	return &Archive{
		InitGraph: members["init_fn.onnx"],
		StepGraph: members["step_fn.onnx"],
		Metadata:  meta,
	}, nil
}

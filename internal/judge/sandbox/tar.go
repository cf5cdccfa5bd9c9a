package sandbox

import (
	"archive/tar"
	"bytes"
	"io"
	"time"

	appErr "judgemicro/pkg/errors"
)

// tarFile wraps one file in an in-memory tar stream for CopyToContainer.
func tarFile(name string, data []byte, mode int64) (io.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	hdr := &tar.Header{
		Name:    name,
		Mode:    mode,
		Size:    int64(len(data)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, appErr.Wrapf(err, appErr.SandboxUploadFailed, "tar header for %s", name)
	}
	if _, err := tw.Write(data); err != nil {
		return nil, appErr.Wrapf(err, appErr.SandboxUploadFailed, "tar body for %s", name)
	}
	if err := tw.Close(); err != nil {
		return nil, appErr.Wrapf(err, appErr.SandboxUploadFailed, "tar close for %s", name)
	}
	return &buf, nil
}

// untarFile extracts the first regular file from a CopyFromContainer stream.
func untarFile(r io.Reader) ([]byte, error) {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, appErr.Newf(appErr.SandboxFetchFailed, "archive contains no regular file")
		}
		if err != nil {
			return nil, appErr.Wrapf(err, appErr.SandboxFetchFailed, "read archive")
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, appErr.Wrapf(err, appErr.SandboxFetchFailed, "read archive entry %s", hdr.Name)
		}
		return data, nil
	}
}

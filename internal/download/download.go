// Package download saves report artifacts under a fixed file name.
package download

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jquevedomolina/Pumping-Station/internal/logx"
)

// ReportFilename is the name every downloaded report is saved under.
const ReportFilename = "reporte_bombeo.pdf"

var ErrEmptyReport = errors.New("download: empty report")

// Sink is where a downloaded artifact ends up.
type Sink interface {
	Save(name string, blob []byte) error
}

// Download hands the blob to the sink once. There is no retry.
func Download(sink Sink, blob []byte, name string) error {
	if len(blob) == 0 {
		return ErrEmptyReport
	}
	if err := sink.Save(name, blob); err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	logx.Infof("saved %s (%d bytes)", name, len(blob))
	return nil
}

// DirSink writes into Dir through a temporary file that is renamed into
// place, so a partial file is never left under the final name.
type DirSink struct {
	Dir string
}

func (d DirSink) Save(name string, blob []byte) error {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, filepath.Base(name)))
}

// AttachmentSink streams the blob as an HTTP attachment.
type AttachmentSink struct {
	W           http.ResponseWriter
	ContentType string
}

func (a AttachmentSink) Save(name string, blob []byte) error {
	ct := a.ContentType
	if ct == "" {
		ct = "application/pdf"
	}
	h := a.W.Header()
	h.Set("Content-Type", ct)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	h.Set("Content-Length", strconv.Itoa(len(blob)))
	_, err := a.W.Write(blob)
	return err
}

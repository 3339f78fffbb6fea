package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"
)

type uploadMetadata struct {
	Name    string   `json:"name"`
	Parents []string `json:"parents"`
}

// UploadFile uploads one local file under the given remote parent folder
// using a single multipart/related request: a JSON metadata part followed by
// the raw file bytes, streamed from disk rather than buffered.
//
// The file may have vanished or become unreadable since it was enumerated
// (deleted mid-run, cloud placeholder not yet materialized); that surfaces
// as a local I/O error before any bytes are sent. A 401 triggers the refresh
// protocol and fails the upload; the job is not resubmitted here.
func (c *Client) UploadFile(ctx context.Context, parentID, localPath string) error {
	// Drive treats differently normalized names as distinct, so normalize
	// to NFC before the name leaves this machine.
	name := norm.NFC.String(filepath.Base(localPath))

	c.logger.Debug("uploading file",
		slog.String("path", localPath),
		slog.String("name", name),
		slog.String("parent_id", parentID),
	)

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("drive: opening %s for upload: %w", localPath, err)
	}
	defer f.Close()

	meta, err := json.Marshal(uploadMetadata{Name: name, Parents: []string{parentID}})
	if err != nil {
		return fmt.Errorf("drive: marshaling upload metadata: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// The writer side runs concurrently with the request; the transport
	// closes the pipe reader when the request finishes, which unblocks any
	// pending write with ErrClosedPipe.
	go func() {
		pw.CloseWithError(writeMultipartBody(mw, meta, f))
	}()

	url := c.uploadBase + "/upload/drive/v3/files?uploadType=multipart"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return fmt.Errorf("drive: creating upload request: %w", err)
	}

	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("drive: upload %s: %w", localPath, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(ctx, resp); err != nil {
		return fmt.Errorf("drive: upload %s: %w", localPath, err)
	}

	// Drain the remaining body so the connection can be reused.
	if _, drainErr := io.Copy(io.Discard, resp.Body); drainErr != nil {
		return fmt.Errorf("drive: draining upload response: %w", drainErr)
	}

	c.logger.Info("file uploaded",
		slog.String("path", localPath),
		slog.String("parent_id", parentID),
	)

	return nil
}

// writeMultipartBody writes the metadata and content parts and the closing
// boundary. Any error propagates to the request through the pipe.
func writeMultipartBody(mw *multipart.Writer, meta []byte, content io.Reader) error {
	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")

	metaPart, err := mw.CreatePart(metaHeader)
	if err != nil {
		return fmt.Errorf("drive: creating metadata part: %w", err)
	}

	if _, err := metaPart.Write(meta); err != nil {
		return fmt.Errorf("drive: writing metadata part: %w", err)
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Type", "application/octet-stream")

	filePart, err := mw.CreatePart(fileHeader)
	if err != nil {
		return fmt.Errorf("drive: creating content part: %w", err)
	}

	if _, err := io.Copy(filePart, content); err != nil {
		return fmt.Errorf("drive: streaming file content: %w", err)
	}

	return mw.Close()
}

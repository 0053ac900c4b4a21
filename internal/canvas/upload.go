package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Stage names a point of failure within the submission protocol, distinct
// from generic transport errors.
type Stage string

const (
	// StageTicket is the upload-URL negotiation.
	StageTicket Stage = "ticket"
	// StageUpload is the binary upload against the ticket URL.
	StageUpload Stage = "upload"
	// StageRegister is the submission registration.
	StageRegister Stage = "register"
)

// StageError reports which protocol stage failed and why. Detail always
// includes the upstream status code and body when one was received, so
// diagnosis does not require re-running the attempt.
type StageError struct {
	Stage  Stage
	Detail string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("submission %s stage: %s", e.Stage, e.Detail)
}

// SubmitFile runs the three-stage submission protocol for the file at
// path. The attempt is not transactional: a stage failure leaves earlier
// stages done (an uploaded file may stay unregistered) and is reported
// as-is. There is no retry; a new attempt starts again at stage 1 with a
// fresh ticket.
func (c *Client) SubmitFile(ctx context.Context, courseID, assignmentID int64, path string) SubmissionResult {
	ticket, serr := c.requestUploadTicket(ctx, courseID, assignmentID, path)
	if serr == nil {
		var fileID int64
		fileID, serr = c.uploadToTicket(ctx, ticket, path)
		if serr == nil {
			serr = c.registerSubmission(ctx, courseID, assignmentID, fileID)
		}
	}

	if serr != nil {
		c.logger.Warn("submission failed",
			zap.Int64("course_id", courseID),
			zap.Int64("assignment_id", assignmentID),
			zap.String("stage", string(serr.Stage)),
			zap.String("detail", serr.Detail))
		return SubmissionResult{Stage: serr.Stage, Message: serr.Error()}
	}

	c.logger.Info("submission completed",
		zap.Int64("course_id", courseID),
		zap.Int64("assignment_id", assignmentID),
		zap.String("file", filepath.Base(path)))
	return SubmissionResult{Success: true, Message: "File uploaded and assignment submitted successfully!"}
}

// requestUploadTicket sends the file metadata to the assignment's
// file-submission endpoint and returns the upload ticket.
func (c *Client) requestUploadTicket(ctx context.Context, courseID, assignmentID int64, path string) (UploadTicket, *StageError) {
	info, err := os.Stat(path)
	if err != nil {
		return UploadTicket{}, &StageError{StageTicket, err.Error()}
	}

	form := url.Values{}
	form.Set("name", filepath.Base(path))
	form.Set("size", strconv.FormatInt(info.Size(), 10))
	form.Set("content_type", ContentTypeFor(path))

	endpoint := fmt.Sprintf("courses/%d/assignments/%d/submissions/self/files", courseID, assignmentID)
	resp, err := c.do(ctx, http.MethodPost, endpoint, nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return UploadTicket{}, &StageError{StageTicket, err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return UploadTicket{}, &StageError{StageTicket,
			fmt.Sprintf("failed to get upload URL: status %d: %s", resp.StatusCode, body)}
	}

	var ticket UploadTicket
	if err := json.Unmarshal(body, &ticket); err != nil {
		return UploadTicket{}, &StageError{StageTicket, fmt.Sprintf("decode ticket response: %v", err)}
	}
	if ticket.UploadURL == "" {
		return UploadTicket{}, &StageError{StageTicket,
			fmt.Sprintf("upload URL not found in response: %s", body)}
	}
	return ticket, nil
}

// uploadToTicket posts the file body to the ticket's URL with the ticket's
// parameters. The target is independent of the API session: no bearer
// header is attached.
func (c *Client) uploadToTicket(ctx context.Context, ticket UploadTicket, path string) (int64, *StageError) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &StageError{StageUpload, err.Error()}
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	// Ticket params go before the file part; Canvas requires that order.
	keys := make([]string, 0, len(ticket.UploadParams))
	for k := range ticket.UploadParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, ticket.UploadParams[k]); err != nil {
			return 0, &StageError{StageUpload, err.Error()}
		}
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", ContentTypeFor(path))
	part, err := w.CreatePart(header)
	if err != nil {
		return 0, &StageError{StageUpload, err.Error()}
	}
	if _, err := io.Copy(part, f); err != nil {
		return 0, &StageError{StageUpload, err.Error()}
	}
	if err := w.Close(); err != nil {
		return 0, &StageError{StageUpload, err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ticket.UploadURL, &buf)
	if err != nil {
		return 0, &StageError{StageUpload, err.Error()}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.upload.Do(req)
	if err != nil {
		return 0, &StageError{StageUpload, fmt.Sprintf("file upload failed: %v", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return 0, &StageError{StageUpload,
			fmt.Sprintf("file upload failed: status %d: %s", resp.StatusCode, body)}
	}

	var uploaded struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &uploaded); err != nil || uploaded.ID == 0 {
		return 0, &StageError{StageUpload,
			fmt.Sprintf("file ID not found in upload response: %s", body)}
	}
	return uploaded.ID, nil
}

// registerSubmission records the uploaded file as an online_upload
// submission on the assignment.
func (c *Client) registerSubmission(ctx context.Context, courseID, assignmentID, fileID int64) *StageError {
	payload := map[string]any{
		"submission": map[string]any{
			"submission_type": "online_upload",
			"file_ids":        []int64{fileID},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &StageError{StageRegister, err.Error()}
	}

	endpoint := fmt.Sprintf("courses/%d/assignments/%d/submissions", courseID, assignmentID)
	resp, err := c.do(ctx, http.MethodPost, endpoint, nil, bytes.NewReader(body), "application/json")
	if err != nil {
		return &StageError{StageRegister, err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return &StageError{StageRegister,
			fmt.Sprintf("assignment submission failed: status %d: %s", resp.StatusCode, respBody)}
	}
	return nil
}

// ContentTypeFor infers the MIME content type from the file extension,
// defaulting to application/octet-stream when unrecognized.
func ContentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

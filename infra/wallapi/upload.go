package wallapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"wallterm/app"
	"wallterm/domain"
)

type uploadService struct {
	client *Client
}

// NewUploadService creates the wall server implementation of app.UploadService.
func NewUploadService(client *Client) app.UploadService {
	return &uploadService{client: client}
}

// progressReader counts bytes as they leave the file on their way into the
// request body.
type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.report != nil {
			p.report(p.sent, p.total)
		}
	}
	return n, err
}

func (s *uploadService) UploadImage(ctx context.Context, path string, opts app.ImageOptions) (domain.Attachment, error) {
	fields := map[string]string{
		"compress": strconv.FormatBool(opts.Compress),
	}
	if opts.Width > 0 {
		fields["width"] = strconv.Itoa(opts.Width)
	}

	resp, err := s.postFile(ctx, "/api/v1/uploads/image", path, fields, nil)
	if err != nil {
		return domain.Attachment{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("reading upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Attachment{}, fmt.Errorf("API POST /api/v1/uploads/image returned %d: %s", resp.StatusCode, string(data))
	}

	var parsed struct {
		File struct {
			URL      string `json:"url"`
			Filename string `json:"filename"`
		} `json:"file"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return domain.Attachment{}, fmt.Errorf("parsing upload response: %w", err)
	}

	return domain.Attachment{
		Kind:     domain.AttachmentImage,
		URL:      parsed.File.URL,
		Filename: parsed.File.Filename,
	}, nil
}

// videoRecord is one line of the server's streamed video upload response.
type videoRecord struct {
	Type    string `json:"type"`
	VideoID string `json:"videoId"`
	HLSPath string `json:"hlsPath"`
	Message string `json:"message"`
}

func (s *uploadService) UploadVideo(ctx context.Context, path string, obs app.VideoUploadObserver) (app.VideoResult, error) {
	resp, err := s.postFile(ctx, "/api/v1/uploads/video", path, nil, obs.OnProgress)
	if err != nil {
		return app.VideoResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return app.VideoResult{}, fmt.Errorf("API POST /api/v1/uploads/video returned %d: %s", resp.StatusCode, string(data))
	}

	// The server keeps the response open and emits one JSON record per line
	// while the video is transcoded.
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec videoRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		switch rec.Type {
		case "started":
			if obs.OnStarted != nil && rec.VideoID != "" {
				obs.OnStarted(rec.VideoID)
			}
		case "complete":
			return app.VideoResult{VideoID: rec.VideoID, HLSPath: rec.HLSPath}, nil
		case "error":
			return app.VideoResult{}, fmt.Errorf("%w: %s", domain.ErrTranscodeFailed, rec.Message)
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return app.VideoResult{}, domain.ErrUploadCancelled
		}
		return app.VideoResult{}, fmt.Errorf("reading video stream: %w", err)
	}
	if ctx.Err() != nil {
		return app.VideoResult{}, domain.ErrUploadCancelled
	}
	return app.VideoResult{}, errors.New("video stream ended without a terminal record")
}

func (s *uploadService) CancelVideoUpload(ctx context.Context, videoID string) error {
	if _, err := s.client.Delete(ctx, "/api/v1/uploads/video/"+url.PathEscape(videoID)); err != nil {
		return fmt.Errorf("cancelling video upload: %w", err)
	}
	return nil
}

// postFile streams a multipart upload of the file at path. The body is piped
// so large files never sit in memory; onProgress observes the file bytes only.
func (s *uploadService) postFile(ctx context.Context, apiPath, filePath string, fields map[string]string, onProgress func(sent, total int64)) (*http.Response, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filePath, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer f.Close()
		for k, v := range fields {
			if err := mw.WriteField(k, v); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		part, err := mw.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		src := &progressReader{r: f, total: info.Size(), report: onProgress}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := s.client.newRequest(ctx, http.MethodPost, apiPath, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.httpClient().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.ErrUploadCancelled
		}
		return nil, fmt.Errorf("uploading %s: %w", filepath.Base(filePath), err)
	}
	return resp, nil
}

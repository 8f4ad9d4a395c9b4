package app

import (
	"context"

	"wallterm/domain"
)

// ImageOptions tune server-side image handling.
type ImageOptions struct {
	Compress bool
	Width    int
}

// VideoResult is the terminal record of a streamed video upload.
type VideoResult struct {
	VideoID string
	HLSPath string
}

// VideoUploadObserver receives callbacks during a streamed video upload.
// Either field may be nil.
type VideoUploadObserver struct {
	// OnStarted delivers the server-assigned video ID as soon as the stream
	// announces it, so a cancel can name the job before it completes.
	OnStarted func(videoID string)

	// OnProgress reports raw transport progress while bytes are in flight.
	OnProgress func(sent, total int64)
}

// UploadService transmits media to the wall server.
type UploadService interface {
	// UploadImage sends an image and returns the delivered attachment.
	UploadImage(ctx context.Context, path string, opts ImageOptions) (domain.Attachment, error)

	// UploadVideo sends a video and blocks until the server's streamed
	// response delivers a terminal record.
	UploadVideo(ctx context.Context, path string, obs VideoUploadObserver) (VideoResult, error)

	// CancelVideoUpload asks the server to abandon processing. Best effort:
	// callers reset local state regardless of the outcome.
	CancelVideoUpload(ctx context.Context, videoID string) error
}

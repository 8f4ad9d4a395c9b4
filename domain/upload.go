package domain

// UploadState is the discrete state of an upload job.
type UploadState int

const (
	UploadQueued UploadState = iota
	UploadThumbnailing
	UploadUploading
	UploadProcessing
	UploadComplete
	UploadFailed
	UploadCancelled
)

// String returns a short label for the state.
func (s UploadState) String() string {
	switch s {
	case UploadQueued:
		return "queued"
	case UploadThumbnailing:
		return "thumbnailing"
	case UploadUploading:
		return "uploading"
	case UploadProcessing:
		return "processing"
	case UploadComplete:
		return "complete"
	case UploadFailed:
		return "failed"
	case UploadCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether the state is final.
func (s UploadState) Terminal() bool {
	return s == UploadComplete || s == UploadFailed || s == UploadCancelled
}

// UploadJob tracks one local file through the upload/transcode pipeline.
type UploadJob struct {
	Path      string // Source file on disk.
	Kind      AttachmentKind
	State     UploadState
	Progress  int    // 0–100, non-decreasing while not failed/cancelled.
	Status    string // Human-readable status line.
	VideoID   string // Server job identity, needed for cancellation.
	Thumbnail string // Extracted preview frame path; empty if none.
	URL       string // Final delivered asset path.
	Err       error
}

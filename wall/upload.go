package wall

import (
	"math/rand"

	"wallterm/domain"
)

// Upload progress is split into a real and a cosmetic band. Transport
// progress maps to 0–30%. Once the bytes are received, server-side
// transcoding gives no live signal, so 30–90% is simulated; the estimator
// never reaches the value the terminal signal will report.
const (
	transferBandEnd  = 30
	simulatedBandEnd = 90
)

// Cosmetic processing phase labels. Purely for perceived progress; they do
// not reflect what the transcoder is actually doing.
var processingPhases = []struct {
	threshold int
	label     string
}{
	{30, "processing high quality"},
	{55, "processing medium quality"},
	{75, "processing low quality"},
}

// Upload is the state machine for one queued media file. Transitions are
// pure; the composer drives them from transport callbacks, timer ticks and
// the terminal server record.
type Upload struct {
	Job domain.UploadJob
}

// NewUpload queues a local file.
func NewUpload(path string, kind domain.AttachmentKind) Upload {
	return Upload{Job: domain.UploadJob{
		Path:   path,
		Kind:   kind,
		State:  domain.UploadQueued,
		Status: "queued",
	}}
}

// StartThumbnail enters the thumbnail extraction stage.
func (u *Upload) StartThumbnail() {
	if u.Job.State != domain.UploadQueued {
		return
	}
	u.Job.State = domain.UploadThumbnailing
	u.Job.Status = "extracting thumbnail"
}

// ThumbnailDone records the extraction result. Failure is non-fatal: the
// job continues without a thumbnail.
func (u *Upload) ThumbnailDone(path string, err error) {
	if u.Job.State != domain.UploadThumbnailing {
		return
	}
	if err == nil {
		u.Job.Thumbnail = path
	}
	u.Job.State = domain.UploadUploading
	u.Job.Status = "uploading"
}

// StartTransfer enters the byte-transmission stage directly (images skip
// thumbnailing).
func (u *Upload) StartTransfer() {
	if u.Job.State != domain.UploadQueued {
		return
	}
	u.Job.State = domain.UploadUploading
	u.Job.Status = "uploading"
}

// TransferProgress scales real transport progress into the first band.
// Progress is monotonic: late or reordered callbacks never move it back.
func (u *Upload) TransferProgress(sent, total int64) {
	if u.Job.State != domain.UploadUploading || total <= 0 {
		return
	}
	p := int(sent * transferBandEnd / total)
	if p > transferBandEnd {
		p = transferBandEnd
	}
	if p > u.Job.Progress {
		u.Job.Progress = p
	}
}

// EnterProcessing marks the bytes fully received and hands progress over to
// the simulated estimator.
func (u *Upload) EnterProcessing() {
	if u.Job.State != domain.UploadUploading {
		return
	}
	u.Job.State = domain.UploadProcessing
	if u.Job.Progress < transferBandEnd {
		u.Job.Progress = transferBandEnd
	}
	u.Job.Status = processingPhases[0].label
}

// ProcessingTick advances the cosmetic estimator by a small randomized
// increment, capped below the terminal value, and rotates the phase label.
func (u *Upload) ProcessingTick(rng *rand.Rand) {
	if u.Job.State != domain.UploadProcessing {
		return
	}
	step := 1
	if rng != nil {
		step = 1 + rng.Intn(4)
	}
	u.Job.Progress += step
	if u.Job.Progress > simulatedBandEnd {
		u.Job.Progress = simulatedBandEnd
	}
	for _, ph := range processingPhases {
		if u.Job.Progress >= ph.threshold {
			u.Job.Status = ph.label
		}
	}
}

// Complete applies the terminal server record and forces progress to 100.
func (u *Upload) Complete(videoID, url string) {
	if u.Job.State.Terminal() {
		return
	}
	u.Job.State = domain.UploadComplete
	u.Job.Progress = 100
	u.Job.VideoID = videoID
	u.Job.URL = url
	u.Job.Status = "done"
	u.Job.Err = nil
}

// SetVideoID records the server job identity as soon as it is known, so a
// cancellation can reach server-side work.
func (u *Upload) SetVideoID(id string) {
	u.Job.VideoID = id
}

// Fail moves the job to failed, clearing progress. The caller may re-queue
// the file to retry.
func (u *Upload) Fail(err error) {
	if u.Job.State.Terminal() {
		return
	}
	u.Job.State = domain.UploadFailed
	u.Job.Progress = 0
	u.Job.Status = "failed"
	u.Job.Err = err
}

// Cancel deterministically resets local state to queued-equivalent initial
// values. It applies at any state before complete, regardless of whether
// the best-effort server-side cancellation succeeds.
func (u *Upload) Cancel() {
	if u.Job.State == domain.UploadComplete {
		return
	}
	u.Job = domain.UploadJob{
		Path:   u.Job.Path,
		Kind:   u.Job.Kind,
		State:  domain.UploadCancelled,
		Status: "cancelled",
	}
}

package wall

import (
	"errors"
	"math/rand"
	"testing"

	"wallterm/domain"
)

func TestUpload_HappyPathProgressMonotonic(t *testing.T) {
	u := NewUpload("/tmp/clip.mp4", domain.AttachmentVideo)
	u.StartThumbnail()
	u.ThumbnailDone("/tmp/clip.jpg", nil)
	if u.Job.State != domain.UploadUploading || u.Job.Thumbnail == "" {
		t.Fatalf("unexpected state after thumbnail: %#v", u.Job)
	}

	last := 0
	for _, sent := range []int64{10, 50, 40, 100} { // out-of-order callback included
		u.TransferProgress(sent, 100)
		if u.Job.Progress < last {
			t.Fatalf("progress regressed: %d -> %d", last, u.Job.Progress)
		}
		last = u.Job.Progress
	}
	if u.Job.Progress != transferBandEnd {
		t.Fatalf("full transfer should land at %d, got %d", transferBandEnd, u.Job.Progress)
	}

	u.EnterProcessing()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		u.ProcessingTick(rng)
		if u.Job.Progress > simulatedBandEnd {
			t.Fatalf("estimator exceeded simulated band: %d", u.Job.Progress)
		}
	}
	if u.Job.Progress != simulatedBandEnd {
		t.Fatalf("estimator should saturate at %d, got %d", simulatedBandEnd, u.Job.Progress)
	}
	if u.Job.Status != "processing low quality" {
		t.Fatalf("expected final cosmetic phase, got %q", u.Job.Status)
	}

	u.Complete("vid-1", "/hls/vid-1/master.m3u8")
	if u.Job.State != domain.UploadComplete || u.Job.Progress != 100 {
		t.Fatalf("terminal record should force completion: %#v", u.Job)
	}
	if u.Job.VideoID != "vid-1" || u.Job.URL != "/hls/vid-1/master.m3u8" {
		t.Fatalf("terminal payload not recorded: %#v", u.Job)
	}
}

func TestUpload_ThumbnailFailureNonFatal(t *testing.T) {
	u := NewUpload("/tmp/clip.mp4", domain.AttachmentVideo)
	u.StartThumbnail()
	u.ThumbnailDone("", errors.New("ffmpeg unavailable"))
	if u.Job.State != domain.UploadUploading {
		t.Fatalf("thumbnail failure must not stop the pipeline: %v", u.Job.State)
	}
	if u.Job.Thumbnail != "" {
		t.Fatalf("thumbnail should stay empty on failure")
	}
}

func TestUpload_FailClearsProgress(t *testing.T) {
	u := NewUpload("/tmp/pic.png", domain.AttachmentImage)
	u.StartTransfer()
	u.TransferProgress(80, 100)
	u.Fail(errors.New("boom"))
	if u.Job.State != domain.UploadFailed || u.Job.Progress != 0 {
		t.Fatalf("failure should clear progress: %#v", u.Job)
	}
	if u.Job.Err == nil {
		t.Fatalf("failure must surface the error")
	}
}

func TestUpload_CancelDuringProcessingResets(t *testing.T) {
	u := NewUpload("/tmp/clip.mp4", domain.AttachmentVideo)
	u.StartThumbnail()
	u.ThumbnailDone("/tmp/clip.jpg", nil)
	u.TransferProgress(100, 100)
	u.EnterProcessing()
	u.SetVideoID("vid-9")
	u.ProcessingTick(nil)

	// Local reset is deterministic whatever the server-side cancel returns.
	u.Cancel()
	if u.Job.State != domain.UploadCancelled {
		t.Fatalf("expected cancelled state, got %v", u.Job.State)
	}
	if u.Job.Progress != 0 || u.Job.VideoID != "" || u.Job.URL != "" || u.Job.Thumbnail != "" {
		t.Fatalf("cancel must reset to initial values: %#v", u.Job)
	}
	if u.Job.Path != "/tmp/clip.mp4" {
		t.Fatalf("source file reference lost on cancel")
	}
}

func TestUpload_CompleteWinsOverLateTicks(t *testing.T) {
	u := NewUpload("/tmp/clip.mp4", domain.AttachmentVideo)
	u.StartThumbnail()
	u.ThumbnailDone("", nil)
	u.TransferProgress(1, 1)
	u.EnterProcessing()
	u.Complete("vid-2", "/hls/vid-2/master.m3u8")

	// A straggler tick from the estimator interval must not move anything.
	u.ProcessingTick(rand.New(rand.NewSource(7)))
	if u.Job.Progress != 100 || u.Job.State != domain.UploadComplete {
		t.Fatalf("late tick disturbed terminal state: %#v", u.Job)
	}
}

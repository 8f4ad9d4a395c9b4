package compose

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"wallterm/app"
	"wallterm/domain"
)

// Upload driver. One file is in flight at a time; the rest of the queue
// waits. Transport progress arrives over a channel from the upload
// goroutine, simulated transcode progress from a repeating tick.

const processingTickInterval = 500 * time.Millisecond

type uploadProgressMsg struct {
	idx         int
	sent, total int64
	ch          <-chan tea.Msg
}

type uploadStartedMsg struct {
	idx     int
	videoID string
	ch      <-chan tea.Msg
}

type uploadDoneMsg struct {
	idx    int
	result app.VideoResult
	att    domain.Attachment
	err    error
}

type thumbnailDoneMsg struct {
	idx  int
	path string
	err  error
}

type processingTickMsg struct {
	idx int
}

// startNext launches the first non-terminal queued upload, if any.
func (m *Model) startNext() tea.Cmd {
	if m.active >= 0 {
		return nil
	}
	for i := range m.queue {
		if m.queue[i].Job.State == domain.UploadQueued {
			m.active = i
			m.activeVID = ""
			if m.queue[i].Job.Kind == domain.AttachmentVideo {
				m.queue[i].StartThumbnail()
				return m.extractThumbnail(i, m.queue[i].Job.Path)
			}
			m.queue[i].StartTransfer()
			return m.uploadImage(i, m.queue[i].Job.Path)
		}
	}
	return nil
}

// extractThumbnail grabs a poster frame with ffmpeg. Failure is non-fatal.
func (m Model) extractThumbnail(idx int, path string) tea.Cmd {
	return func() tea.Msg {
		out := filepath.Join(os.TempDir(), fmt.Sprintf("wallterm-thumb-%d.jpg", time.Now().UnixNano()))
		cmd := exec.Command("ffmpeg", "-y", "-ss", thumbnailSeek(path), "-i", path, "-frames:v", "1", "-q:v", "3", out)
		if err := cmd.Run(); err != nil {
			return thumbnailDoneMsg{idx: idx, err: err}
		}
		return thumbnailDoneMsg{idx: idx, path: out}
	}
}

// thumbnailSeek picks the poster frame offset: one second into the clip, or
// 10% of the duration when the clip is shorter than ten seconds.
func thumbnailSeek(path string) string {
	out, err := exec.Command("ffprobe", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path).Output()
	if err != nil {
		return "1"
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || dur <= 0 {
		return "1"
	}
	seek := dur * 0.1
	if seek > 1 {
		seek = 1
	}
	return strconv.FormatFloat(seek, 'f', 2, 64)
}

func (m Model) uploadImage(idx int, path string) tea.Cmd {
	uploads := m.uploads
	return func() tea.Msg {
		att, err := uploads.UploadImage(context.Background(), path, app.ImageOptions{Compress: true})
		return uploadDoneMsg{idx: idx, att: att, err: err}
	}
}

// uploadVideo runs the blocking streamed upload in a goroutine and relays
// its callbacks as messages over a channel.
func (m *Model) uploadVideo(idx int, path string) tea.Cmd {
	ch := make(chan tea.Msg, 32)
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	uploads := m.uploads

	go func() {
		defer close(ch)
		res, err := uploads.UploadVideo(ctx, path, app.VideoUploadObserver{
			OnStarted: func(videoID string) {
				ch <- uploadStartedMsg{idx: idx, videoID: videoID, ch: ch}
			},
			OnProgress: func(sent, total int64) {
				select {
				case ch <- uploadProgressMsg{idx: idx, sent: sent, total: total, ch: ch}:
				default: // Progress is lossy; never block the transport.
				}
			},
		})
		ch <- uploadDoneMsg{idx: idx, result: res, err: err}
	}()

	return listenUpload(ch)
}

// listenUpload waits for the next message from the upload goroutine.
func listenUpload(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func processingTick(idx int) tea.Cmd {
	return tea.Tick(processingTickInterval, func(time.Time) tea.Msg {
		return processingTickMsg{idx: idx}
	})
}

// cancelActive cancels the in-flight upload: local state resets immediately,
// server-side cancellation is best effort.
func (m *Model) cancelActive() tea.Cmd {
	if m.active < 0 {
		return nil
	}
	idx := m.active
	m.queue[idx].Cancel()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	videoID := m.activeVID
	m.activeVID = ""
	m.active = -1
	m.status = "Upload cancelled."

	cmds := []tea.Cmd{m.startNext()}
	if videoID != "" {
		uploads := m.uploads
		cmds = append(cmds, func() tea.Msg {
			// Outcome intentionally ignored; local state is already reset.
			_ = uploads.CancelVideoUpload(context.Background(), videoID)
			return nil
		})
	}
	return tea.Batch(cmds...)
}

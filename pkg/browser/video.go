package browser

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod/lib/proto"
)

// VideoRecorder captures screencast frames into an MJPEG file: each
// frame is a complete JPEG appended to the stream. The file lives
// under a scratch name until SaveAs relocates it.
type VideoRecorder struct {
	page *Page

	mu      sync.Mutex
	file    *os.File
	path    string
	frames  int
	stopped atomic.Bool
}

// StartVideo begins recording this page into dir. A page records at
// most one video at a time; starting again restarts the recording.
func (p *Page) StartVideo(dir string) (*VideoRecorder, error) {
	p.mu.Lock()
	prev := p.video
	p.mu.Unlock()
	if prev != nil {
		_ = prev.Discard()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create video dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf(".recording-%s.mjpeg", p.TargetID()))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create video file: %w", err)
	}

	r := &VideoRecorder{page: p, file: f, path: path}

	quality := 70
	err = proto.PageStartScreencast{
		Format:        proto.PageStartScreencastFormatJpeg,
		Quality:       &quality,
		EveryNthFrame: intPtr(1),
	}.Call(p.page)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("start screencast: %w", err)
	}

	go p.page.EachEvent(func(e *proto.PageScreencastFrame) bool {
		if r.stopped.Load() {
			return true
		}
		r.appendFrame(e.Data)
		_ = proto.PageScreencastFrameAck{SessionID: e.SessionID}.Call(p.page)
		return false
	})()

	p.mu.Lock()
	p.video = r
	p.mu.Unlock()
	return r, nil
}

// Video returns the active recorder, if any.
func (p *Page) Video() *VideoRecorder {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.video
}

func (r *VideoRecorder) appendFrame(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return
	}
	if _, err := r.file.Write(data); err != nil {
		return
	}
	r.frames++
}

// Frames returns how many frames have been captured so far.
func (r *VideoRecorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// SaveAs stops the recording and moves the file to dir/name.mjpeg.
func (r *VideoRecorder) SaveAs(dir, name string) (string, error) {
	r.stopped.Store(true)
	_ = proto.PageStopScreencast{}.Call(r.page.page)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return "", fmt.Errorf("recording already finished")
	}
	if err := r.file.Close(); err != nil {
		return "", fmt.Errorf("close video file: %w", err)
	}
	r.file = nil

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create video dir: %w", err)
	}
	final := filepath.Join(dir, name+".mjpeg")
	if err := os.Rename(r.path, final); err != nil {
		return "", fmt.Errorf("save video: %w", err)
	}

	r.page.mu.Lock()
	if r.page.video == r {
		r.page.video = nil
	}
	r.page.mu.Unlock()
	return final, nil
}

// Discard stops the recording and removes the scratch file.
func (r *VideoRecorder) Discard() error {
	r.stopped.Store(true)
	_ = proto.PageStopScreencast{}.Call(r.page.page)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	r.file.Close()
	r.file = nil
	return os.Remove(r.path)
}

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

func intPtr(v int) *int { return &v }

package browser

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// traceIOChunk is the read size for draining the trace stream.
const traceIOChunk = 1 << 20

// tracingCategories mirrors what browser devtools record for a
// performance profile.
var tracingCategories = []string{
	"devtools.timeline",
	"disabled-by-default-devtools.timeline",
	"disabled-by-default-devtools.timeline.frame",
	"v8.execute",
	"blink.user_timing",
	"latencyInfo",
}

// StartTrace begins recording a performance trace for this page's
// target. Only one trace may be active per page.
func (p *Page) StartTrace(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tracing {
		return fmt.Errorf("a trace is already being recorded")
	}

	page := p.page.Context(ctx)
	err := proto.TracingStart{
		TransferMode: proto.TracingStartTransferModeReturnAsStream,
		StreamFormat: proto.TracingStreamFormatJSON,
		TraceConfig: &proto.TracingTraceConfig{
			IncludedCategories: tracingCategories,
		},
	}.Call(page)
	if err != nil {
		return fmt.Errorf("start trace: %w", err)
	}
	p.tracing = true
	return nil
}

// Tracing reports whether a trace is currently recording.
func (p *Page) Tracing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracing
}

// StopTrace ends the active trace and writes it as a zip archive at
// dir/name.zip. The archive is assembled in a temp file and renamed
// into place so readers never observe a partial write.
func (p *Page) StopTrace(ctx context.Context, dir, name string) (string, error) {
	p.mu.Lock()
	if !p.tracing {
		p.mu.Unlock()
		return "", fmt.Errorf("no trace is being recorded")
	}
	p.tracing = false
	p.mu.Unlock()

	page := p.page.Context(ctx)
	var complete proto.TracingTracingComplete
	wait := page.WaitEvent(&complete)
	if err := (proto.TracingEnd{}).Call(page); err != nil {
		return "", fmt.Errorf("stop trace: %w", err)
	}
	wait()
	if complete.Stream == "" {
		return "", fmt.Errorf("trace stream unavailable")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create trace dir: %w", err)
	}
	final := filepath.Join(dir, name+".zip")
	tmp := filepath.Join(dir, "."+name+"-"+uuid.NewString()+".tmp")

	if err := p.drainTraceStream(ctx, complete.Stream, tmp); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize trace: %w", err)
	}
	return final, nil
}

func (p *Page) drainTraceStream(ctx context.Context, stream proto.IOStreamHandle, path string) error {
	page := p.page.Context(ctx)
	defer func() {
		_ = proto.IOClose{Handle: stream}.Call(page)
	}()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	entry, err := zw.Create("trace.json")
	if err != nil {
		return fmt.Errorf("create trace entry: %w", err)
	}

	for {
		chunk, err := proto.IORead{Handle: stream, Size: intPtr(traceIOChunk)}.Call(page)
		if err != nil {
			return fmt.Errorf("read trace stream: %w", err)
		}
		data := []byte(chunk.Data)
		if chunk.Base64Encoded {
			decoded, err := decodeBase64(chunk.Data)
			if err != nil {
				return fmt.Errorf("decode trace chunk: %w", err)
			}
			data = decoded
		}
		if _, err := entry.Write(data); err != nil {
			return fmt.Errorf("write trace: %w", err)
		}
		if chunk.EOF {
			break
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close trace archive: %w", err)
	}
	return f.Close()
}

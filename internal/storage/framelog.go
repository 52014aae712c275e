package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/ripplesim/internal/sim"
)

// FrameLog streams frames to a csv file as they are produced. It is a
// sim.Observer; the first write error is kept and returned by Close.
type FrameLog struct {
	file          io.WriteCloser
	headerWritten bool
	err           error
}

func NewFrameLog(path string) (*FrameLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating frame log: %w", err)
	}
	return NewFrameLogTo(f), nil
}

// NewFrameLogTo streams frames to w, which Close closes.
func NewFrameLogTo(w io.WriteCloser) *FrameLog {
	return &FrameLog{file: w}
}

func (l *FrameLog) OnFrame(f sim.Frame) {
	if l.err != nil {
		return
	}
	records := []FrameRecord{Record(f)}

	if !l.headerWritten {
		if err := gocsv.Marshal(records, l.file); err != nil {
			l.err = fmt.Errorf("writing frame %d: %w", f.Index, err)
			return
		}
		l.headerWritten = true
		return
	}
	if err := gocsv.MarshalWithoutHeaders(records, l.file); err != nil {
		l.err = fmt.Errorf("writing frame %d: %w", f.Index, err)
	}
}

func (l *FrameLog) Close() error {
	if err := l.file.Close(); err != nil && l.err == nil {
		l.err = err
	}
	return l.err
}

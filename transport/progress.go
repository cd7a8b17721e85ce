package transport

import "io"

// progressReader reports cumulative byte counts to a ProgressFunc as the
// wrapped body is consumed. Counts never decrease; the terminal count is
// reported by the caller once the read completes.
type progressReader struct {
	r        io.Reader
	total    int64
	loaded   int64
	progress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, progress ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, progress: progress}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.loaded += int64(n)
		if p.progress != nil {
			p.progress(p.loaded, p.total)
		}
	}
	return n, err
}

// Loaded returns the cumulative bytes read so far
func (p *progressReader) Loaded() int64 { return p.loaded }

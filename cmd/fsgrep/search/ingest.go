package search

import (
	"os"
)

// binarySniffLen is how many leading bytes of a file are examined by the
// binary heuristic in spec §4.1 step 5.
const binarySniffLen = 100

// FileView is the ingest result for one file. Its LineViews borrow from the
// worker's Buffer and must not outlive it (spec §3's Ownership rules).
type FileView struct {
	Size  int64
	Data  []byte
	Lines []LineView
}

// empty reports whether v carries no lines, which spec §3 requires whenever
// a file is rejected, unreadable, or genuinely empty.
func (v FileView) empty() bool {
	return len(v.Lines) == 0
}

// readFile ingests path using buf as worker-local scratch space. Every
// failure mode described in spec §4.1 degrades to an empty FileView rather
// than propagating an error, per §7's "per-file ingest failure" policy. The
// second return value is true only when the file was skipped for being
// larger than maxFileSize, so callers can emit spec §9's single stderr note
// without logging every other (silent) ingest failure.
func readFile(path string, buf *Buffer) (FileView, bool) {
	f, err := os.Open(path)
	if err != nil {
		return FileView{}, false
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.Size() == 0 {
		return FileView{}, false
	}
	size := fi.Size()
	if size > maxFileSize {
		return FileView{}, true
	}

	data := buf.grow(int(size))
	n, err := readFull(f, data)
	if err != nil || n != len(data) {
		return FileView{}, false
	}

	if looksBinary(data) {
		return FileView{}, false
	}

	return FileView{Size: size, Data: data, Lines: splitLines(data)}, false
}

// readFull reads len(b) bytes from r into b in as few syscalls as the
// reader allows, matching the "read the full file in one syscall" contract
// of spec §4.1 step 4 while tolerating short reads from the underlying os.File.
func readFull(r interface{ Read([]byte) (int, error) }, b []byte) (int, error) {
	n := 0
	for n < len(b) {
		m, err := r.Read(b[n:])
		n += m
		if err != nil {
			if n == len(b) {
				return n, nil
			}
			return n, err
		}
		if m == 0 {
			break
		}
	}
	return n, nil
}

// looksBinary implements the binary heuristic of spec §4.1 step 5 /
// spec §6 "Binary detection": examine the first min(size, 100) bytes and
// reject on a %PDF or %!PS prefix, or any \x00\x00 run.
func looksBinary(data []byte) bool {
	n := len(data)
	if n > binarySniffLen {
		n = binarySniffLen
	}
	head := data[:n]

	if hasPrefix(head, "%PDF") || hasPrefix(head, "%!PS") {
		return true
	}
	for i := 0; i+1 < len(head); i++ {
		if head[i] == 0 && head[i+1] == 0 {
			return true
		}
	}
	return false
}

func hasPrefix(b []byte, prefix string) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

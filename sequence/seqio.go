package sequence

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one named sequence as read from an input file, before ingestion
// into a Store.
type Record struct {
	Name string
	Data []byte
}

// ReadFasta reads FASTA or FASTQ records from r. Quality lines are discarded;
// this layer only feeds the Store. Malformed records abort the read.
func ReadFasta(r io.Reader) ([]Record, error) {
	in := bufio.NewReaderSize(r, 1<<20)
	records := make([]Record, 0, 100)
	var name string
	var data []byte
	isFastq := false
	first := true
	for {
		line, err := in.ReadBytes('\n')
		line = bytes.TrimRight(line, "\r\n")
		if len(line) > 0 {
			if first {
				isFastq = line[0] == '@'
				if !isFastq && line[0] != '>' {
					return nil, fmt.Errorf("not a fasta/fastq stream: leading byte %q", line[0])
				}
				first = false
			}
			if line[0] == '>' || (isFastq && line[0] == '@') {
				if name != "" || len(data) > 0 {
					records = append(records, Record{Name: name, Data: data})
				}
				name = firstField(string(line[1:]))
				data = make([]byte, 0, 1000)
				if isFastq {
					//sequence line, separator, quality line
					seq, qerr := readFastqTail(in)
					if qerr != nil {
						return nil, qerr
					}
					records = append(records, Record{Name: name, Data: seq})
					name = ""
					data = nil
				}
			} else {
				data = append(data, line...)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
	}
	if name != "" || len(data) > 0 {
		records = append(records, Record{Name: name, Data: data})
	}
	return records, nil
}

func readFastqTail(in *bufio.Reader) ([]byte, error) {
	seq, err := in.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	seq = bytes.TrimRight(seq, "\r\n")
	owned := make([]byte, len(seq))
	copy(owned, seq)
	if sep, err := in.ReadBytes('\n'); err == nil || errors.Is(err, io.EOF) {
		if len(sep) == 0 || sep[0] != '+' {
			return nil, fmt.Errorf("malformed fastq record: expected + separator")
		}
	} else {
		return nil, err
	}
	if _, err := in.ReadBytes('\n'); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return owned, nil
}

func firstField(s string) string {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}

// OpenFasta opens a (possibly gzipped) sequence file, sniffing the gzip magic
// bytes rather than trusting the extension.
func OpenFasta(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	in := bufio.NewReader(f)
	magic, err := in.Peek(2)
	if err == nil && magic[0] == 0x1F && magic[1] == 0x8B {
		gz, err := gzip.NewReader(in)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &gzReadCloser{gz, f}, nil
	}
	return &bufReadCloser{in, f}, nil
}

type gzReadCloser struct {
	*gzip.Reader
	f *os.File
}

func (g *gzReadCloser) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

type bufReadCloser struct {
	*bufio.Reader
	f *os.File
}

func (b *bufReadCloser) Close() error {
	return b.f.Close()
}

// LoadStore reads all records from filename into a fresh Store. Individual
// invalid sequences are skipped and reported, not fatal for the run.
func LoadStore(filename string, onSkip func(name string, err error)) (*Store, error) {
	in, err := OpenFasta(filename)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	records, err := ReadFasta(in)
	if err != nil {
		return nil, err
	}
	store := NewStore()
	for _, rec := range records {
		if _, err := store.Add(rec.Name, rec.Data); err != nil {
			if onSkip != nil {
				onSkip(rec.Name, err)
			}
		}
	}
	return store, nil
}

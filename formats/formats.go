// Package formats writes graph and overlap structures to external
// representations. It sits outside the core: nothing in sequence,
// fingerprint, chain, align or graph imports it.
package formats

import (
	"bufio"
	"fmt"
	"io"

	"panbundle/align"
	"panbundle/graph"
	"panbundle/sequence"
)

// WriteOverlapsTSV writes one tab-separated line per overlap in PAF-like
// column order: names, lengths, spans, strand, identity.
func WriteOverlapsTSV(w io.Writer, store *sequence.Store, overlaps []align.Overlap) error {
	out := bufio.NewWriter(w)
	for _, ov := range overlaps {
		a, err := store.Get(ov.SeqA)
		if err != nil {
			return err
		}
		b, err := store.Get(ov.SeqB)
		if err != nil {
			return err
		}
		strand := "+"
		if ov.Reverse {
			strand = "-"
		}
		fmt.Fprintf(out, "%s\t%d\t%d\t%d\t%s\t%s\t%d\t%d\t%d\t%.4f\n",
			a.Name(), a.Len(), ov.AStart, ov.AEnd, strand, b.Name(), b.Len(), ov.BStart, ov.BEnd, ov.Identity)
	}
	return out.Flush()
}

// WriteGraphTSV dumps bundles and paths in a stable text form: a B line per
// bundle with its provenance, then a P line per path naming its segment
// walk. The output is byte-identical for identical graphs, so it doubles as
// the determinism surface for golden tests.
func WriteGraphTSV(w io.Writer, store *sequence.Store, g *graph.Graph) error {
	out := bufio.NewWriter(w)
	for _, b := range g.Nodes() {
		fmt.Fprintf(out, "B\t%d\t%d\t%d", b.ID, b.Len(), len(b.Spans))
		for _, s := range b.Spans {
			seq, err := store.Get(s.Seq)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\t%s:%d-%d@%.4f", seq.Name(), s.Start, s.End, s.Identity)
		}
		fmt.Fprintln(out)
	}
	for _, p := range g.Paths() {
		seq, err := store.Get(p.Seq)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "P\t%s", seq.Name())
		for _, seg := range p.Segments {
			if seg.Private() {
				fmt.Fprintf(out, "\t*:%d-%d", seg.Start, seg.End)
			} else {
				fmt.Fprintf(out, "\tb%d:%d-%d", seg.Bundle, seg.Start, seg.End)
			}
		}
		fmt.Fprintln(out)
	}
	return out.Flush()
}

// WriteBundleBED writes each path's bundle intervals as BED lines:
// sequence, start, end, bundle id. Private segments are skipped.
func WriteBundleBED(w io.Writer, store *sequence.Store, g *graph.Graph) error {
	out := bufio.NewWriter(w)
	for _, p := range g.Paths() {
		seq, err := store.Get(p.Seq)
		if err != nil {
			return err
		}
		for _, seg := range p.Segments {
			if seg.Private() {
				continue
			}
			fmt.Fprintf(out, "%s\t%d\t%d\tbundle_%d\n", seq.Name(), seg.Start, seg.End, seg.Bundle)
		}
	}
	return out.Flush()
}

// Package pipeline drives the three-pass bounded-memory query run: filter,
// gene-grouped recessive evaluation, and coordinate-ordered emission, with
// disk-backed external sorting between the passes.
package pipeline

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/varq/varq/internal/consequence"
	"github.com/varq/varq/internal/extsort"
	"github.com/varq/varq/internal/filter"
	"github.com/varq/varq/internal/output"
	"github.com/varq/varq/internal/variant"
)

// Source yields input records one at a time; Next returns (nil, nil) at
// end of input.
type Source interface {
	Next() (*variant.Record, error)
}

// RowWriter receives the final ordered result rows.
type RowWriter interface {
	WriteHeader() error
	WriteRow(row *output.Row) error
}

// Options configures a pipeline run.
type Options struct {
	// SortBuffer is the maximum record count held in memory per sort
	// stage; 0 selects the default of ten thousand.
	SortBuffer int
	// MaxResults caps the number of emitted rows; 0 means unlimited.
	MaxResults int
	// TempDir is the base directory for the per-run scratch directory;
	// "" uses the system default.
	TempDir string
}

// Stats are the run-scoped counters, created per run and returned to the
// caller for the summary log.
type Stats struct {
	Total         int
	Passed        int
	Written       int
	ByConsequence map[consequence.Consequence]int
}

// Pipeline threads records through the filter interpreter, the per-gene
// recessive evaluator, and the payload builder.
type Pipeline struct {
	interp  *filter.Interpreter
	builder *output.PayloadBuilder
	opts    Options
	logger  *zap.Logger
}

// New creates a pipeline.
func New(interp *filter.Interpreter, builder *output.PayloadBuilder, opts Options) *Pipeline {
	return &Pipeline{interp: interp, builder: builder, opts: opts, logger: zap.NewNop()}
}

// SetLogger sets the logger for progress messages.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// byGene keys a surviving record for gene grouping. Seq is the emission
// sequence number of pass 1 and makes the sort order total.
type byGene struct {
	HgncID string         `json:"hgnc_id"`
	Seq    int            `json:"seq"`
	Record variant.Record `json:"record"`
}

func byGeneLess(a, b byGene) bool {
	if a.HgncID != b.HgncID {
		return a.HgncID < b.HgncID
	}
	return a.Seq < b.Seq
}

// byCoord keys a record for final coordinate ordering: canonical
// chromosome number, then start position, with allele and sequence
// tie-breaks for determinism.
type byCoord struct {
	ChromNo int            `json:"chrom_no"`
	Pos     int64          `json:"pos"`
	Ref     string         `json:"reference"`
	Alt     string         `json:"alternative"`
	Seq     int            `json:"seq"`
	Record  variant.Record `json:"record"`
}

func byCoordLess(a, b byCoord) bool {
	if a.ChromNo != b.ChromNo {
		return a.ChromNo < b.ChromNo
	}
	if a.Pos != b.Pos {
		return a.Pos < b.Pos
	}
	if a.Ref != b.Ref {
		return a.Ref < b.Ref
	}
	if a.Alt != b.Alt {
		return a.Alt < b.Alt
	}
	return a.Seq < b.Seq
}

// Run executes the three passes. The returned stats are valid even though
// the run may have failed; err != nil means no valid output was produced.
func (p *Pipeline) Run(src Source, w RowWriter) (*Stats, error) {
	stats := &Stats{ByConsequence: make(map[consequence.Consequence]int)}

	scratch, err := os.MkdirTemp(p.opts.TempDir, "varq-query-")
	if err != nil {
		return stats, fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	pathUnsorted := filepath.Join(scratch, "unsorted.jsonl")
	pathByCoord := filepath.Join(scratch, "by_coord.jsonl")

	if err := p.filterPass(src, pathUnsorted, stats); err != nil {
		return stats, fmt.Errorf("filter pass: %w", err)
	}
	p.logger.Info("filter pass done",
		zap.Int("total", stats.Total),
		zap.Int("passed", stats.Passed))

	if err := p.genePass(scratch, pathUnsorted, pathByCoord); err != nil {
		return stats, fmt.Errorf("gene pass: %w", err)
	}

	if err := p.emitPass(scratch, pathByCoord, w, stats); err != nil {
		return stats, fmt.Errorf("emit pass: %w", err)
	}
	p.logger.Info("emit pass done", zap.Int("written", stats.Written))

	return stats, nil
}

// filterPass reads all input records, applies the per-variant filters, and
// spills survivors keyed by gene.
func (p *Pipeline) filterPass(src Source, pathUnsorted string, stats *Stats) error {
	f, err := os.Create(pathUnsorted)
	if err != nil {
		return fmt.Errorf("create spill file %s: %w", pathUnsorted, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)

	seq := 0
	for {
		rec, err := src.Next()
		if err != nil {
			return err
		}
		if rec == nil {
			break
		}
		stats.Total++

		// Unknown contigs are a configuration error; fail before any
		// output exists rather than during emission.
		if _, err := variant.ChromNo(rec.Chrom); err != nil {
			return err
		}

		res, err := p.interp.Passes(rec)
		if err != nil {
			return err
		}
		if !res.PassAll() {
			continue
		}

		stats.Passed++
		if len(rec.AnnFields) > 0 {
			for _, csq := range rec.AnnFields[0].Consequences {
				stats.ByConsequence[csq]++
			}
		}

		item := byGene{HgncID: rec.GeneID(), Seq: seq, Record: *rec}
		seq++
		if err := enc.Encode(&item); err != nil {
			return fmt.Errorf("write spill file %s: %w", pathUnsorted, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush spill file %s: %w", pathUnsorted, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync spill file %s: %w", pathUnsorted, err)
	}
	return nil
}

// genePass external-sorts the filtered records by gene key, evaluates the
// recessive criteria per gene group, and re-spills surviving groups keyed
// by coordinate.
func (p *Pipeline) genePass(scratch, pathUnsorted, pathByCoord string) error {
	sortDir := filepath.Join(scratch, "sort-gene")
	if err := os.Mkdir(sortDir, 0o755); err != nil {
		return fmt.Errorf("create sort directory %s: %w", sortDir, err)
	}
	sorter := extsort.New(sortDir, p.opts.SortBuffer, byGeneLess)

	in, err := os.Open(pathUnsorted)
	if err != nil {
		return fmt.Errorf("open spill file %s: %w", pathUnsorted, err)
	}
	defer in.Close()
	dec := json.NewDecoder(bufio.NewReader(in))
	for {
		var item byGene
		if err := dec.Decode(&item); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("read spill file %s: %w", pathUnsorted, err)
		}
		if err := sorter.Add(item); err != nil {
			return err
		}
	}

	out, err := os.Create(pathByCoord)
	if err != nil {
		return fmt.Errorf("create spill file %s: %w", pathByCoord, err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)

	coordSeq := 0
	emitGroup := func(group []*variant.Record) error {
		pass, err := filter.PassesForGene(p.interp.Query(), group)
		if err != nil {
			return err
		}
		if !pass {
			return nil
		}
		for _, rec := range group {
			chromNo, err := variant.ChromNo(rec.Chrom)
			if err != nil {
				return err
			}
			item := byCoord{
				ChromNo: chromNo,
				Pos:     rec.Pos,
				Ref:     rec.Ref,
				Alt:     rec.Alt,
				Seq:     coordSeq,
				Record:  *rec,
			}
			coordSeq++
			if err := enc.Encode(&item); err != nil {
				return fmt.Errorf("write spill file %s: %w", pathByCoord, err)
			}
		}
		return nil
	}

	var group []*variant.Record
	var groupKey string
	if err := sorter.Iterate(func(item byGene) error {
		if len(group) > 0 && item.HgncID != groupKey {
			if err := emitGroup(group); err != nil {
				return err
			}
			group = group[:0]
		}
		groupKey = item.HgncID
		rec := item.Record
		group = append(group, &rec)
		return nil
	}); err != nil {
		return err
	}
	if len(group) > 0 {
		if err := emitGroup(group); err != nil {
			return err
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush spill file %s: %w", pathByCoord, err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync spill file %s: %w", pathByCoord, err)
	}
	return nil
}

// errMaxResults aborts the final merge once the result cap is reached.
var errMaxResults = errors.New("max results reached")

// emitPass external-sorts the surviving records by coordinate and writes
// the annotated rows.
func (p *Pipeline) emitPass(scratch, pathByCoord string, w RowWriter, stats *Stats) error {
	sortDir := filepath.Join(scratch, "sort-coord")
	if err := os.Mkdir(sortDir, 0o755); err != nil {
		return fmt.Errorf("create sort directory %s: %w", sortDir, err)
	}
	sorter := extsort.New(sortDir, p.opts.SortBuffer, byCoordLess)

	in, err := os.Open(pathByCoord)
	if err != nil {
		return fmt.Errorf("open spill file %s: %w", pathByCoord, err)
	}
	defer in.Close()
	dec := json.NewDecoder(bufio.NewReader(in))
	for {
		var item byCoord
		if err := dec.Decode(&item); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("read spill file %s: %w", pathByCoord, err)
		}
		if err := sorter.Add(item); err != nil {
			return err
		}
	}

	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	err = sorter.Iterate(func(item byCoord) error {
		if p.opts.MaxResults > 0 && stats.Written >= p.opts.MaxResults {
			return errMaxResults
		}
		row, err := p.builder.Build(&item.Record)
		if err != nil {
			return err
		}
		if err := w.WriteRow(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		stats.Written++
		return nil
	})
	if err != nil && !errors.Is(err, errMaxResults) {
		return err
	}
	return nil
}

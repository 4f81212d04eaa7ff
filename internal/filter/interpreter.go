// Package filter implements the per-variant query interpreter and the
// gene-level recessive mode evaluator.
package filter

import (
	"errors"

	"go.uber.org/zap"

	"github.com/varq/varq/internal/query"
	"github.com/varq/varq/internal/variant"
)

// Errors indicating query/record inconsistencies. These are invariant
// violations, not filterable conditions, and abort the run.
var (
	// ErrMissingCallInfo means a record lacks call info for a sample the
	// query constrains.
	ErrMissingCallInfo = errors.New("missing call info for sample")
	// ErrBadGenotype means a genotype string needed by the query could not
	// be parsed.
	ErrBadGenotype = errors.New("unparseable genotype")
	// ErrTooManyParents means more than two samples carry parent roles.
	ErrTooManyParents = errors.New("more than two parent roles configured")
)

// Result is the outcome of evaluating one variant against the query, with
// a per-sub-filter trace.
type Result struct {
	Frequency   bool
	Consequence bool
	Genes       bool
	Genotype    bool
}

// PassAll reports whether all sub-filters passed.
func (r Result) PassAll() bool {
	return r.Frequency && r.Consequence && r.Genes && r.Genotype
}

// Interpreter evaluates single variants against a case query. It holds no
// mutable state and is safe for concurrent use across distinct variants.
type Interpreter struct {
	query  *query.CaseQuery
	genes  map[string]bool
	logger *zap.Logger
}

// NewInterpreter creates an interpreter for the given query.
func NewInterpreter(q *query.CaseQuery) *Interpreter {
	var genes map[string]bool
	if len(q.GeneAllowlist) > 0 {
		genes = make(map[string]bool, len(q.GeneAllowlist))
		for _, g := range q.GeneAllowlist {
			genes[g] = true
		}
	}
	return &Interpreter{query: q, genes: genes, logger: zap.NewNop()}
}

// SetLogger sets the logger for trace messages.
func (it *Interpreter) SetLogger(l *zap.Logger) {
	it.logger = l
}

// Query returns the query the interpreter was built from.
func (it *Interpreter) Query() *query.CaseQuery {
	return it.query
}

// Passes evaluates a single record against all sub-filters. It is a pure
// function of the query and the record; the returned error indicates a
// query/record inconsistency, never a filtered-out record.
func (it *Interpreter) Passes(rec *variant.Record) (Result, error) {
	res := Result{
		Frequency:   passesFrequency(it.query, rec),
		Consequence: passesConsequence(it.query, rec),
		Genes:       it.passesGenes(rec),
	}

	gt, err := passesGenotype(it.query, rec)
	if err != nil {
		return Result{}, err
	}
	res.Genotype = gt

	if !res.PassAll() {
		it.logger.Debug("record filtered out",
			zap.String("chrom", rec.Chrom),
			zap.Int64("pos", rec.Pos),
			zap.Bool("frequency", res.Frequency),
			zap.Bool("consequence", res.Consequence),
			zap.Bool("genes", res.Genes),
			zap.Bool("genotype", res.Genotype))
	}
	return res, nil
}

// passesGenes checks the gene allow-list; an empty list is an open filter.
func (it *Interpreter) passesGenes(rec *variant.Record) bool {
	if it.genes == nil {
		return true
	}
	for _, ann := range rec.AnnFields {
		if it.genes[ann.GeneID] {
			return true
		}
	}
	return false
}

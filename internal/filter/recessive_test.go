package filter

import (
	"errors"
	"testing"

	"github.com/varq/varq/internal/query"
	"github.com/varq/varq/internal/variant"
)

func trioQuery(mode query.RecessiveMode) *query.CaseQuery {
	q := &query.CaseQuery{}
	q.Genotype.RecessiveMode = mode
	q.Genotype.SampleGenotypes = map[string]query.GenotypeChoice{
		"child":  query.ChoiceRecessiveIndex,
		"father": query.ChoiceRecessiveFather,
		"mother": query.ChoiceRecessiveMother,
	}
	return q
}

// trioGroup builds one record per triple of child/father/mother genotype
// strings, all in the same gene.
func trioGroup(gts [][3]string) []*variant.Record {
	recs := make([]*variant.Record, 0, len(gts))
	for i, gt := range gts {
		recs = append(recs, &variant.Record{
			Chrom: "1", Pos: int64(100 + i), Ref: "A", Alt: "T",
			CallInfos: map[string]variant.CallInfo{
				"child":  {Sample: "child", Genotype: gt[0]},
				"father": {Sample: "father", Genotype: gt[1]},
				"mother": {Sample: "mother", Genotype: gt[2]},
			},
		})
	}
	return recs
}

func TestPassesForGeneDisabled(t *testing.T) {
	q := &query.CaseQuery{}
	got, err := PassesForGene(q, trioGroup([][3]string{{"0/0", "0/0", "0/0"}}))
	if err != nil {
		t.Fatalf("PassesForGene() error: %v", err)
	}
	if !got {
		t.Error("PassesForGene() = false with recessive mode disabled, want true")
	}
}

func TestPassesForGeneTrio(t *testing.T) {
	tests := []struct {
		name string
		mode query.RecessiveMode
		gts  [][3]string
		want bool
	}{
		{
			"homozygous single hit",
			query.RecessiveModeHomozygous,
			[][3]string{{"1/1", "0/1", "0/1"}},
			true,
		},
		{
			"homozygous parent not carrier",
			query.RecessiveModeHomozygous,
			[][3]string{{"1/1", "0/1", "0/0"}},
			false,
		},
		{
			"homozygous parent hom alt",
			query.RecessiveModeHomozygous,
			[][3]string{{"1/1", "1/1", "0/1"}},
			false,
		},
		{
			"comp het single variant insufficient",
			query.RecessiveModeCompoundHeterozygous,
			[][3]string{{"0/1", "0/1", "0/0"}},
			false,
		},
		{
			"comp het hom alt index does not count",
			query.RecessiveModeCompoundHeterozygous,
			[][3]string{{"1/1", "0/0", "0/0"}},
			false,
		},
		{
			"comp het one from each side",
			query.RecessiveModeCompoundHeterozygous,
			[][3]string{
				{"0/1", "0/1", "0/0"},
				{"0/1", "0/0", "0/1"},
			},
			true,
		},
		{
			"comp het both from same side",
			query.RecessiveModeCompoundHeterozygous,
			[][3]string{
				{"0/1", "0/1", "0/0"},
				{"0/1", "0/1", "0/0"},
			},
			false,
		},
		{
			"comp het both parents het on one variant",
			query.RecessiveModeCompoundHeterozygous,
			[][3]string{
				{"0/1", "0/1", "0/1"},
				{"0/1", "0/0", "0/1"},
			},
			false,
		},
		{
			"any homozygous hit wins",
			query.RecessiveModeAny,
			[][3]string{
				{"1/1", "0/1", "0/1"},
				{"0/1", "0/0", "0/1"},
			},
			true,
		},
		{
			"any comp het hit wins",
			query.RecessiveModeAny,
			[][3]string{
				{"0/1", "0/1", "0/0"},
				{"0/1", "0/0", "0/1"},
			},
			true,
		},
		{
			"any neither pattern",
			query.RecessiveModeAny,
			[][3]string{
				{"0/1", "0/1", "0/0"},
				{"0/1", "0/1", "0/0"},
			},
			false,
		},
		{
			"hom alt parent variant skipped",
			query.RecessiveModeAny,
			[][3]string{
				{"1/1", "1/1", "0/1"},
				{"0/1", "0/1", "0/0"},
				{"0/1", "0/0", "0/1"},
			},
			true,
		},
		{
			"missing index genotype cannot contribute",
			query.RecessiveModeAny,
			[][3]string{
				{"./.", "0/1", "0/1"},
			},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PassesForGene(trioQuery(tt.mode), trioGroup(tt.gts))
			if err != nil {
				t.Fatalf("PassesForGene() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PassesForGene() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPassesForGeneSingleParent(t *testing.T) {
	q := &query.CaseQuery{}
	q.Genotype.RecessiveMode = query.RecessiveModeCompoundHeterozygous
	q.Genotype.SampleGenotypes = map[string]query.GenotypeChoice{
		"child":  query.ChoiceRecessiveIndex,
		"mother": query.ChoiceRecessiveMother,
	}
	recs := []*variant.Record{
		{
			Chrom: "1", Pos: 100, Ref: "A", Alt: "T",
			CallInfos: map[string]variant.CallInfo{
				"child":  {Sample: "child", Genotype: "0/1"},
				"mother": {Sample: "mother", Genotype: "0/1"},
			},
		},
		{
			Chrom: "1", Pos: 200, Ref: "C", Alt: "G",
			CallInfos: map[string]variant.CallInfo{
				"child":  {Sample: "child", Genotype: "0/1"},
				"mother": {Sample: "mother", Genotype: "0/0"},
			},
		},
	}
	got, err := PassesForGene(q, recs)
	if err != nil {
		t.Fatalf("PassesForGene() error: %v", err)
	}
	if !got {
		t.Error("PassesForGene() = false, want true for single-parent comp het")
	}
}

func TestPassesForGeneNoParents(t *testing.T) {
	q := &query.CaseQuery{}
	q.Genotype.RecessiveMode = query.RecessiveModeCompoundHeterozygous
	q.Genotype.SampleGenotypes = map[string]query.GenotypeChoice{
		"child": query.ChoiceRecessiveIndex,
	}
	recs := trioGroup([][3]string{
		{"0/1", "0/0", "0/0"},
		{"0/1", "0/0", "0/0"},
	})
	got, err := PassesForGene(q, recs)
	if err != nil {
		t.Fatalf("PassesForGene() error: %v", err)
	}
	if !got {
		t.Error("PassesForGene() = false, want true with two het index variants and no parents")
	}
}

func TestPassesForGeneMissingIndex(t *testing.T) {
	q := &query.CaseQuery{}
	q.Genotype.RecessiveMode = query.RecessiveModeAny
	q.Genotype.SampleGenotypes = map[string]query.GenotypeChoice{
		"father": query.ChoiceRecessiveFather,
	}
	_, err := PassesForGene(q, trioGroup([][3]string{{"0/1", "0/1", "0/0"}}))
	if err == nil {
		t.Fatal("PassesForGene() error = nil, want error for missing index role")
	}
}

func TestPassesForGeneTooManyParents(t *testing.T) {
	q := &query.CaseQuery{}
	q.Genotype.RecessiveMode = query.RecessiveModeAny
	q.Genotype.SampleGenotypes = map[string]query.GenotypeChoice{
		"child": query.ChoiceRecessiveIndex,
		"p1":    query.ChoiceRecessiveFather,
		"p2":    query.ChoiceRecessiveMother,
		"p3":    query.ChoiceRecessiveMother,
	}
	_, err := PassesForGene(q, nil)
	if !errors.Is(err, ErrTooManyParents) {
		t.Fatalf("PassesForGene() error = %v, want ErrTooManyParents", err)
	}
}

func TestPassesForGeneMissingCallInfo(t *testing.T) {
	q := trioQuery(query.RecessiveModeAny)
	recs := []*variant.Record{
		{
			Chrom: "1", Pos: 100, Ref: "A", Alt: "T",
			CallInfos: map[string]variant.CallInfo{
				"child": {Sample: "child", Genotype: "0/1"},
			},
		},
	}
	_, err := PassesForGene(q, recs)
	if !errors.Is(err, ErrMissingCallInfo) {
		t.Fatalf("PassesForGene() error = %v, want ErrMissingCallInfo", err)
	}
}

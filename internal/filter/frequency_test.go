package filter

import (
	"testing"

	"github.com/varq/varq/internal/query"
	"github.com/varq/varq/internal/variant"
)

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func TestFrequencyGnomadExomesNuclear(t *testing.T) {
	tests := []struct {
		name                string
		an, het, hom, hemi  int
		enabled             bool
		frequency           *float64
		heterozygous        *int
		homozygous          *int
		hemizygous          *int
		want                bool
	}{
		{"freq pass no threshold", 1000, 1, 0, 0, true, nil, nil, nil, nil, true},
		{"freq pass", 1000, 1, 0, 0, true, fptr(0.001), nil, nil, nil, true},
		{"freq fail", 1000, 2, 0, 0, true, fptr(0.001), nil, nil, nil, false},
		{"freq fail but disabled", 1000, 2, 0, 0, false, fptr(0.001), nil, nil, nil, true},
		{"hom freq pass", 1000, 0, 1, 0, true, fptr(0.002), nil, nil, nil, true},
		{"hom freq fail", 1000, 0, 2, 0, true, fptr(0.002), nil, nil, nil, false},
		{"het count pass", 1000, 1, 0, 0, true, nil, iptr(1), nil, nil, true},
		{"het count fail", 1000, 2, 0, 0, true, nil, iptr(1), nil, nil, false},
		{"het count fail but disabled", 1000, 2, 0, 0, false, nil, iptr(1), nil, nil, true},
		{"hom count pass", 1000, 0, 1, 0, true, nil, nil, iptr(1), nil, true},
		{"hom count fail", 1000, 0, 2, 0, true, nil, nil, iptr(1), nil, false},
		{"hemi count pass", 1000, 0, 0, 1, true, nil, nil, nil, iptr(1), true},
		{"hemi count fail", 1000, 0, 0, 2, true, nil, nil, nil, iptr(1), false},
		{"hemi count fail but disabled", 1000, 0, 0, 2, false, nil, nil, nil, iptr(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &query.CaseQuery{}
			q.PopulationFrequency.Gnomad = query.GnomadOptions{
				ExomesEnabled:      tt.enabled,
				ExomesFrequency:    tt.frequency,
				ExomesHeterozygous: tt.heterozygous,
				ExomesHomozygous:   tt.homozygous,
				ExomesHemizygous:   tt.hemizygous,
			}
			rec := &variant.Record{
				Chrom: "X", Ref: "G", Alt: "A",
				GnomadExomesAN: tt.an, GnomadExomesHet: tt.het,
				GnomadExomesHom: tt.hom, GnomadExomesHemi: tt.hemi,
			}
			if got := passesFrequency(q, rec); got != tt.want {
				t.Errorf("passesFrequency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrequencyGnomadGenomesNuclear(t *testing.T) {
	tests := []struct {
		name               string
		an, het, hom, hemi int
		enabled            bool
		frequency          *float64
		heterozygous       *int
		homozygous         *int
		hemizygous         *int
		want               bool
	}{
		{"freq pass no threshold", 1000, 1, 0, 0, true, nil, nil, nil, nil, true},
		{"freq pass", 1000, 1, 0, 0, true, fptr(0.001), nil, nil, nil, true},
		{"freq fail", 1000, 2, 0, 0, true, fptr(0.001), nil, nil, nil, false},
		{"freq fail but disabled", 1000, 2, 0, 0, false, fptr(0.001), nil, nil, nil, true},
		{"het count fail", 1000, 2, 0, 0, true, nil, iptr(1), nil, nil, false},
		{"hom count fail", 1000, 0, 2, 0, true, nil, nil, iptr(1), nil, false},
		{"hemi count pass", 1000, 0, 0, 1, true, nil, nil, nil, iptr(1), true},
		{"hemi count fail", 1000, 0, 0, 2, true, nil, nil, nil, iptr(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &query.CaseQuery{}
			q.PopulationFrequency.Gnomad = query.GnomadOptions{
				GenomesEnabled:      tt.enabled,
				GenomesFrequency:    tt.frequency,
				GenomesHeterozygous: tt.heterozygous,
				GenomesHomozygous:   tt.homozygous,
				GenomesHemizygous:   tt.hemizygous,
			}
			rec := &variant.Record{
				Chrom: "X", Ref: "G", Alt: "A",
				GnomadGenomesAN: tt.an, GnomadGenomesHet: tt.het,
				GnomadGenomesHom: tt.hom, GnomadGenomesHemi: tt.hemi,
			}
			if got := passesFrequency(q, rec); got != tt.want {
				t.Errorf("passesFrequency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrequencyHelixMtDb(t *testing.T) {
	tests := []struct {
		name          string
		an, het, hom  int
		enabled       bool
		frequency     *float64
		heteroplasmic *int
		homoplasmic   *int
		want          bool
	}{
		{"freq pass no threshold", 1000, 1, 0, true, nil, nil, nil, true},
		{"freq pass", 1000, 1, 0, true, fptr(0.001), nil, nil, true},
		{"freq fail", 1000, 2, 0, true, fptr(0.001), nil, nil, false},
		{"freq fail but disabled", 1000, 2, 0, false, fptr(0.001), nil, nil, true},
		{"heteroplasmic count fail", 1000, 2, 0, true, nil, iptr(1), nil, false},
		{"homoplasmic count pass", 1000, 0, 1, true, nil, nil, iptr(1), true},
		{"homoplasmic count fail", 1000, 0, 2, true, nil, nil, iptr(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &query.CaseQuery{}
			q.PopulationFrequency.HelixMtDb = query.HelixMtDbOptions{
				Enabled:       tt.enabled,
				Frequency:     tt.frequency,
				Heteroplasmic: tt.heteroplasmic,
				Homoplasmic:   tt.homoplasmic,
			}
			rec := &variant.Record{
				Chrom: "MT", Ref: "G", Alt: "A",
				HelixAN: tt.an, HelixHet: tt.het, HelixHom: tt.hom,
			}
			if got := passesFrequency(q, rec); got != tt.want {
				t.Errorf("passesFrequency() = %v, want %v", got, tt.want)
			}
		})
	}
}

// On mitochondrial loci the gnomAD genomes het/hom thresholds stay active
// but the hemizygous threshold is skipped: mtDNA has no hemizygous
// carriers.
func TestFrequencyGnomadGenomesMito(t *testing.T) {
	tests := []struct {
		name         string
		an, het, hom int
		hemi         int
		enabled      bool
		frequency    *float64
		heterozygous *int
		homozygous   *int
		hemizygous   *int
		want         bool
	}{
		{"freq fail", 1000, 2, 0, 0, true, fptr(0.001), nil, nil, nil, false},
		{"freq fail but disabled", 1000, 2, 0, 0, false, fptr(0.001), nil, nil, nil, true},
		{"het count fail", 1000, 2, 0, 0, true, nil, iptr(1), nil, nil, false},
		{"hom count fail", 1000, 0, 2, 0, true, nil, nil, iptr(1), nil, false},
		{"hemi threshold suppressed on chrMT", 1000, 0, 0, 2, true, nil, nil, nil, iptr(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &query.CaseQuery{}
			q.PopulationFrequency.Gnomad = query.GnomadOptions{
				GenomesEnabled:      tt.enabled,
				GenomesFrequency:    tt.frequency,
				GenomesHeterozygous: tt.heterozygous,
				GenomesHomozygous:   tt.homozygous,
				GenomesHemizygous:   tt.hemizygous,
			}
			rec := &variant.Record{
				Chrom: "MT", Ref: "G", Alt: "A",
				GnomadGenomesAN: tt.an, GnomadGenomesHet: tt.het,
				GnomadGenomesHom: tt.hom, GnomadGenomesHemi: tt.hemi,
			}
			if got := passesFrequency(q, rec); got != tt.want {
				t.Errorf("passesFrequency() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Disabling a source's enabled flag can only turn a fail into a pass.
func TestFrequencyMonotonicityOnEnabledFlag(t *testing.T) {
	recs := []*variant.Record{
		{Chrom: "1", GnomadExomesAN: 1000, GnomadExomesHet: 50},
		{Chrom: "1", GnomadGenomesAN: 1000, GnomadGenomesHom: 7},
		{Chrom: "MT", HelixAN: 1000, HelixHom: 9},
		{Chrom: "X", GnomadExomesAN: 100, GnomadExomesHemi: 4},
	}
	q := &query.CaseQuery{}
	q.PopulationFrequency.Gnomad = query.GnomadOptions{
		ExomesEnabled: true, ExomesFrequency: fptr(0.0001), ExomesHemizygous: iptr(1),
		GenomesEnabled: true, GenomesHomozygous: iptr(1),
	}
	q.PopulationFrequency.HelixMtDb = query.HelixMtDbOptions{Enabled: true, Homoplasmic: iptr(1)}

	disabled := *q
	disabled.PopulationFrequency.Gnomad.ExomesEnabled = false
	disabled.PopulationFrequency.Gnomad.GenomesEnabled = false
	disabled.PopulationFrequency.HelixMtDb.Enabled = false

	for i, rec := range recs {
		if passesFrequency(q, rec) && !passesFrequency(&disabled, rec) {
			t.Errorf("record %d: disabling sources turned a pass into a fail", i)
		}
		if !passesFrequency(&disabled, rec) {
			t.Errorf("record %d: all sources disabled but record fails", i)
		}
	}
}

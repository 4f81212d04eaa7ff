// Package query defines the immutable case query configuration: population
// frequency thresholds, consequence and gene allow-lists, and per-sample
// genotype requirements including recessive-mode roles.
package query

import (
	"fmt"

	"github.com/varq/varq/internal/consequence"
)

// RecessiveMode selects how variants grouped by gene are evaluated against
// the configured recessive roles.
type RecessiveMode string

// Recessive modes.
const (
	RecessiveModeDisabled             RecessiveMode = "disabled"
	RecessiveModeHomozygous           RecessiveMode = "homozygous"
	RecessiveModeCompoundHeterozygous RecessiveMode = "compound_heterozygous"
	RecessiveModeAny                  RecessiveMode = "any"
)

// GenotypeChoice is the per-sample genotype requirement: either a fixed
// genotype constraint checked per variant, or a recessive role evaluated at
// the gene level.
type GenotypeChoice string

// Genotype choices.
const (
	ChoiceAny             GenotypeChoice = "any"
	ChoiceRef             GenotypeChoice = "ref"
	ChoiceHet             GenotypeChoice = "het"
	ChoiceHom             GenotypeChoice = "hom"
	ChoiceVariant         GenotypeChoice = "variant"
	ChoiceRecessiveIndex  GenotypeChoice = "recessive_index"
	ChoiceRecessiveFather GenotypeChoice = "recessive_father"
	ChoiceRecessiveMother GenotypeChoice = "recessive_mother"
)

// IsRecessiveRole reports whether the choice is one of the recessive roles
// rather than a fixed per-variant requirement.
func (c GenotypeChoice) IsRecessiveRole() bool {
	switch c {
	case ChoiceRecessiveIndex, ChoiceRecessiveFather, ChoiceRecessiveMother:
		return true
	}
	return false
}

// GnomadOptions holds the gnomAD exomes/genomes frequency thresholds. A nil
// threshold means the corresponding check is not configured; the enabled
// flags make all thresholds of a source inert when false.
type GnomadOptions struct {
	ExomesEnabled      bool     `json:"exomes_enabled"`
	ExomesFrequency    *float64 `json:"exomes_frequency,omitempty"`
	ExomesHeterozygous *int     `json:"exomes_heterozygous,omitempty"`
	ExomesHomozygous   *int     `json:"exomes_homozygous,omitempty"`
	ExomesHemizygous   *int     `json:"exomes_hemizygous,omitempty"`

	GenomesEnabled      bool     `json:"genomes_enabled"`
	GenomesFrequency    *float64 `json:"genomes_frequency,omitempty"`
	GenomesHeterozygous *int     `json:"genomes_heterozygous,omitempty"`
	GenomesHomozygous   *int     `json:"genomes_homozygous,omitempty"`
	GenomesHemizygous   *int     `json:"genomes_hemizygous,omitempty"`
}

// HelixMtDbOptions holds the HelixMtDb thresholds for mitochondrial loci.
type HelixMtDbOptions struct {
	Enabled       bool     `json:"enabled"`
	Frequency     *float64 `json:"frequency,omitempty"`
	Heteroplasmic *int     `json:"heteroplasmic,omitempty"`
	Homoplasmic   *int     `json:"homoplasmic,omitempty"`
}

// PopulationFrequency bundles the per-source frequency filter options.
type PopulationFrequency struct {
	Gnomad    GnomadOptions    `json:"gnomad"`
	HelixMtDb HelixMtDbOptions `json:"helixmtdb"`
}

// GenotypeSettings holds the recessive mode and the per-sample genotype
// choices.
type GenotypeSettings struct {
	RecessiveMode   RecessiveMode             `json:"recessive_mode"`
	SampleGenotypes map[string]GenotypeChoice `json:"sample_genotypes"`
}

// CaseQuery is the full declarative query for one run. It is treated as
// immutable once loaded.
type CaseQuery struct {
	PopulationFrequency PopulationFrequency       `json:"population_frequency"`
	Consequences        []consequence.Consequence `json:"consequences"`
	GeneAllowlist       []string                  `json:"gene_allowlist"`
	Genotype            GenotypeSettings          `json:"genotype"`
}

// Validate checks the structural invariants of the query: known recessive
// mode and genotype choices, at most one index and at most two parents.
func (q *CaseQuery) Validate() error {
	switch q.Genotype.RecessiveMode {
	case "", RecessiveModeDisabled, RecessiveModeHomozygous,
		RecessiveModeCompoundHeterozygous, RecessiveModeAny:
	default:
		return fmt.Errorf("unknown recessive mode %q", q.Genotype.RecessiveMode)
	}

	indexCount, parentCount := 0, 0
	for sample, choice := range q.Genotype.SampleGenotypes {
		switch choice {
		case ChoiceAny, ChoiceRef, ChoiceHet, ChoiceHom, ChoiceVariant:
		case ChoiceRecessiveIndex:
			indexCount++
		case ChoiceRecessiveFather, ChoiceRecessiveMother:
			parentCount++
		default:
			return fmt.Errorf("sample %q: unknown genotype choice %q", sample, choice)
		}
	}
	if indexCount > 1 {
		return fmt.Errorf("%d samples assigned the recessive index role, at most one allowed", indexCount)
	}
	if parentCount > 2 {
		return fmt.Errorf("%d samples assigned parent roles, at most two allowed", parentCount)
	}
	return nil
}

// RecessiveMode returns the configured recessive mode, defaulting to
// disabled when unset.
func (q *CaseQuery) RecessiveModeOrDefault() RecessiveMode {
	if q.Genotype.RecessiveMode == "" {
		return RecessiveModeDisabled
	}
	return q.Genotype.RecessiveMode
}

package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/varq/varq/internal/consequence"
)

// Load reads a query document from path. The primary schema is tried first;
// when it does not decode, the legacy message layout is decoded and
// converted instead.
func Load(path string) (*CaseQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query %s: %w", path, err)
	}
	q, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode query %s: %w", path, err)
	}
	return q, nil
}

// Decode parses a query document from raw JSON bytes.
func Decode(data []byte) (*CaseQuery, error) {
	var q CaseQuery
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	primaryErr := dec.Decode(&q)
	if primaryErr == nil {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		return &q, nil
	}

	legacy, legacyErr := decodeLegacy(data)
	if legacyErr != nil {
		return nil, fmt.Errorf("primary schema: %v; legacy schema: %w", primaryErr, legacyErr)
	}
	if err := legacy.Validate(); err != nil {
		return nil, err
	}
	return legacy, nil
}

// legacyQuery is the older structured message layout, kept for backward
// compatibility with query documents produced by earlier servers. Enum
// values are SCREAMING_SNAKE with a type prefix.
type legacyQuery struct {
	Frequency struct {
		GnomadExomes struct {
			Enabled      bool     `json:"enabled"`
			Frequency    *float64 `json:"frequency"`
			Heterozygous *int     `json:"heterozygous"`
			Homozygous   *int     `json:"homozygous"`
			Hemizygous   *int     `json:"hemizygous"`
		} `json:"gnomadExomes"`
		GnomadGenomes struct {
			Enabled      bool     `json:"enabled"`
			Frequency    *float64 `json:"frequency"`
			Heterozygous *int     `json:"heterozygous"`
			Homozygous   *int     `json:"homozygous"`
			Hemizygous   *int     `json:"hemizygous"`
		} `json:"gnomadGenomes"`
		HelixMtDb struct {
			Enabled       bool     `json:"enabled"`
			Frequency     *float64 `json:"frequency"`
			Heteroplasmic *int     `json:"heteroplasmic"`
			Homoplasmic   *int     `json:"homoplasmic"`
		} `json:"helixmtdb"`
	} `json:"frequency"`
	Consequence struct {
		Consequences []string `json:"consequences"`
	} `json:"consequence"`
	Locus struct {
		Genes []string `json:"genes"`
	} `json:"locus"`
	Genotype struct {
		RecessiveMode   string `json:"recessiveMode"`
		SampleGenotypes []struct {
			Sample         string `json:"sample"`
			GenotypeChoice string `json:"genotypeChoice"`
		} `json:"sampleGenotypes"`
	} `json:"genotype"`
}

var legacyRecessiveModes = map[string]RecessiveMode{
	"RECESSIVE_MODE_UNSPECIFIED":           RecessiveModeDisabled,
	"RECESSIVE_MODE_DISABLED":              RecessiveModeDisabled,
	"RECESSIVE_MODE_HOMOZYGOUS":            RecessiveModeHomozygous,
	"RECESSIVE_MODE_COMPOUND_HETEROZYGOUS": RecessiveModeCompoundHeterozygous,
	"RECESSIVE_MODE_ANY":                   RecessiveModeAny,
}

var legacyGenotypeChoices = map[string]GenotypeChoice{
	"GENOTYPE_CHOICE_ANY":              ChoiceAny,
	"GENOTYPE_CHOICE_REF":              ChoiceRef,
	"GENOTYPE_CHOICE_HET":              ChoiceHet,
	"GENOTYPE_CHOICE_HOM":              ChoiceHom,
	"GENOTYPE_CHOICE_VARIANT":          ChoiceVariant,
	"GENOTYPE_CHOICE_RECESSIVE_INDEX":  ChoiceRecessiveIndex,
	"GENOTYPE_CHOICE_RECESSIVE_FATHER": ChoiceRecessiveFather,
	"GENOTYPE_CHOICE_RECESSIVE_MOTHER": ChoiceRecessiveMother,
}

func decodeLegacy(data []byte) (*CaseQuery, error) {
	var lq legacyQuery
	if err := json.Unmarshal(data, &lq); err != nil {
		return nil, err
	}

	q := &CaseQuery{
		PopulationFrequency: PopulationFrequency{
			Gnomad: GnomadOptions{
				ExomesEnabled:       lq.Frequency.GnomadExomes.Enabled,
				ExomesFrequency:     lq.Frequency.GnomadExomes.Frequency,
				ExomesHeterozygous:  lq.Frequency.GnomadExomes.Heterozygous,
				ExomesHomozygous:    lq.Frequency.GnomadExomes.Homozygous,
				ExomesHemizygous:    lq.Frequency.GnomadExomes.Hemizygous,
				GenomesEnabled:      lq.Frequency.GnomadGenomes.Enabled,
				GenomesFrequency:    lq.Frequency.GnomadGenomes.Frequency,
				GenomesHeterozygous: lq.Frequency.GnomadGenomes.Heterozygous,
				GenomesHomozygous:   lq.Frequency.GnomadGenomes.Homozygous,
				GenomesHemizygous:   lq.Frequency.GnomadGenomes.Hemizygous,
			},
			HelixMtDb: HelixMtDbOptions{
				Enabled:       lq.Frequency.HelixMtDb.Enabled,
				Frequency:     lq.Frequency.HelixMtDb.Frequency,
				Heteroplasmic: lq.Frequency.HelixMtDb.Heteroplasmic,
				Homoplasmic:   lq.Frequency.HelixMtDb.Homoplasmic,
			},
		},
		GeneAllowlist: lq.Locus.Genes,
		Genotype: GenotypeSettings{
			RecessiveMode: RecessiveModeDisabled,
		},
	}

	for _, csq := range lq.Consequence.Consequences {
		// Legacy documents carry SCREAMING_SNAKE SO term names.
		term := strings.ToLower(strings.TrimPrefix(csq, "CONSEQUENCE_"))
		q.Consequences = append(q.Consequences, consequence.Consequence(term))
	}

	if lq.Genotype.RecessiveMode != "" {
		mode, ok := legacyRecessiveModes[lq.Genotype.RecessiveMode]
		if !ok {
			return nil, fmt.Errorf("unknown legacy recessive mode %q", lq.Genotype.RecessiveMode)
		}
		q.Genotype.RecessiveMode = mode
	}

	if len(lq.Genotype.SampleGenotypes) > 0 {
		q.Genotype.SampleGenotypes = make(map[string]GenotypeChoice, len(lq.Genotype.SampleGenotypes))
		for _, sg := range lq.Genotype.SampleGenotypes {
			choice, ok := legacyGenotypeChoices[sg.GenotypeChoice]
			if !ok {
				return nil, fmt.Errorf("sample %q: unknown legacy genotype choice %q", sg.Sample, sg.GenotypeChoice)
			}
			q.Genotype.SampleGenotypes[sg.Sample] = choice
		}
	}

	return q, nil
}

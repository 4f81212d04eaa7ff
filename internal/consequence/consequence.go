// Package consequence enumerates Sequence Ontology consequence terms and
// their putative impact levels as attached to variant annotation fields.
package consequence

// Impact is the putative impact class of a consequence.
type Impact string

// Impact levels, highest to lowest.
const (
	ImpactHigh     Impact = "HIGH"
	ImpactModerate Impact = "MODERATE"
	ImpactLow      Impact = "LOW"
	ImpactModifier Impact = "MODIFIER"
)

// Consequence is a Sequence Ontology consequence term.
type Consequence string

// Consequence terms, grouped by impact.
const (
	// HIGH impact
	TranscriptAblation Consequence = "transcript_ablation"
	ExonLossVariant    Consequence = "exon_loss_variant"
	SpliceAcceptor     Consequence = "splice_acceptor_variant"
	SpliceDonor        Consequence = "splice_donor_variant"
	StopGained         Consequence = "stop_gained"
	FrameshiftVariant  Consequence = "frameshift_variant"
	StopLost           Consequence = "stop_lost"
	StartLost          Consequence = "start_lost"

	// MODERATE impact
	DisruptiveInframeInsertion Consequence = "disruptive_inframe_insertion"
	DisruptiveInframeDeletion  Consequence = "disruptive_inframe_deletion"
	InframeInsertion           Consequence = "inframe_insertion"
	InframeDeletion            Consequence = "inframe_deletion"
	MissenseVariant            Consequence = "missense_variant"

	// LOW impact
	SpliceRegionVariant Consequence = "splice_region_variant"
	StartRetained       Consequence = "start_retained_variant"
	StopRetained        Consequence = "stop_retained_variant"
	SynonymousVariant   Consequence = "synonymous_variant"

	// MODIFIER impact
	CodingSequenceVariant Consequence = "coding_sequence_variant"
	FivePrimeUTRVariant   Consequence = "5_prime_UTR_variant"
	ThreePrimeUTRVariant  Consequence = "3_prime_UTR_variant"
	NonCodingExonVariant  Consequence = "non_coding_transcript_exon_variant"
	IntronVariant         Consequence = "intron_variant"
	UpstreamGeneVariant   Consequence = "upstream_gene_variant"
	DownstreamGeneVariant Consequence = "downstream_gene_variant"
	IntergenicVariant     Consequence = "intergenic_variant"
)

var impacts = map[Consequence]Impact{
	TranscriptAblation: ImpactHigh,
	ExonLossVariant:    ImpactHigh,
	SpliceAcceptor:     ImpactHigh,
	SpliceDonor:        ImpactHigh,
	StopGained:         ImpactHigh,
	FrameshiftVariant:  ImpactHigh,
	StopLost:           ImpactHigh,
	StartLost:          ImpactHigh,

	DisruptiveInframeInsertion: ImpactModerate,
	DisruptiveInframeDeletion:  ImpactModerate,
	InframeInsertion:           ImpactModerate,
	InframeDeletion:            ImpactModerate,
	MissenseVariant:            ImpactModerate,

	SpliceRegionVariant: ImpactLow,
	StartRetained:       ImpactLow,
	StopRetained:        ImpactLow,
	SynonymousVariant:   ImpactLow,
}

// ImpactOf returns the putative impact of a consequence term. Terms outside
// the known set rank as MODIFIER.
func ImpactOf(c Consequence) Impact {
	if impact, ok := impacts[c]; ok {
		return impact
	}
	return ImpactModifier
}

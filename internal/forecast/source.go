package forecast

// SourceKind tags where a history series came from.
type SourceKind int

const (
	// SourceHistorical marks a series of real recorded sales.
	SourceHistorical SourceKind = iota
	// SourceSynthetic marks a generated fallback series used when too little
	// real history exists.
	SourceSynthetic
)

// String returns the wire tag for the source kind.
func (k SourceKind) String() string {
	if k == SourceSynthetic {
		return "simulated"
	}
	return "historical"
}

// HistorySource is a history series together with its provenance. Carrying
// the kind as a tagged variant (rather than a string flag) keeps downstream
// branching, such as data-quality scoring, an explicit match over the kind.
type HistorySource struct {
	Kind   SourceKind
	Points []Point
}

// Historical wraps real recorded points.
func Historical(points []Point) HistorySource {
	return HistorySource{Kind: SourceHistorical, Points: points}
}

// SyntheticSource wraps generated fallback points.
func SyntheticSource(points []Point) HistorySource {
	return HistorySource{Kind: SourceSynthetic, Points: points}
}

package steps

import (
	"sort"
	"strings"

	types "github.com/yungbote/consciousness-backend/internal/domain"
)

const (
	DefaultRecommendations     = "Continue your journey of self-reflection and growth."
	DefaultMotivationalMessage = "Keep up the great work on your path to self-awareness!"
)

// Sections is the model output split at the three markers.
type Sections struct {
	Analysis            string
	Recommendations     string
	MotivationalMessage string
	// Mode is one of the journal.ParseMode* constants.
	Mode string
}

// ParseResponse never fails. Each section runs from its marker to the next
// marker found in the text, or to the end. With no usable section the whole
// text becomes the analysis and the other two fields get default
// encouragement.
func ParseResponse(raw string) Sections {
	type hit struct {
		pos   int
		end   int
		field *string
	}

	var out Sections
	markers := []struct {
		marker string
		field  *string
	}{
		{MarkerAnalysis, &out.Analysis},
		{MarkerRecommendations, &out.Recommendations},
		{MarkerMotivationalMessage, &out.MotivationalMessage},
	}

	hits := make([]hit, 0, len(markers))
	for _, m := range markers {
		if i := strings.Index(raw, m.marker); i >= 0 {
			hits = append(hits, hit{pos: i, end: i + len(m.marker), field: m.field})
		}
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].pos < hits[b].pos })

	for i, h := range hits {
		stop := len(raw)
		if i+1 < len(hits) {
			stop = hits[i+1].pos
		}
		if stop < h.end {
			// overlapping markers; nothing between them
			continue
		}
		*h.field = strings.TrimSpace(raw[h.end:stop])
	}

	switch {
	case out.Analysis == "" && out.Recommendations == "" && out.MotivationalMessage == "":
		return Sections{
			Analysis:            raw,
			Recommendations:     DefaultRecommendations,
			MotivationalMessage: DefaultMotivationalMessage,
			Mode:                types.ParseModeFallback,
		}
	case len(hits) == len(markers):
		out.Mode = types.ParseModeStructured
	default:
		out.Mode = types.ParseModePartial
	}
	return out
}

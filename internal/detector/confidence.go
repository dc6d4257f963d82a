package detector

import (
	"sort"

	"codescope/internal/index"
	"codescope/internal/ir"
)

// fullSampleFiles is the file count at which a language reaches its base
// confidence; fewer files scale it down proportionally.
const fullSampleFiles = 10

// manifestBoost rewards a language corroborated by its ecosystem manifest.
const manifestBoost = 0.05

func baseConfidence(f index.Family) float64 {
	switch f {
	case index.FamilyTyped:
		return 0.9
	case index.FamilyDynamic:
		return 0.85
	case index.FamilyMarkup:
		return 0.6
	case index.FamilyData:
		return 0.5
	default:
		return 0.4
	}
}

func ceiling(f index.Family) float64 {
	switch f {
	case index.FamilyTyped:
		return 0.98
	case index.FamilyDynamic:
		return 0.95
	case index.FamilyMarkup:
		return 0.8
	case index.FamilyData:
		return 0.7
	default:
		return 0.5
	}
}

// languageConfidence scales the family base by sample size, adds the
// manifest boost and caps the result at the family ceiling.
func languageConfidence(f index.Family, files int, corroborated bool) float64 {
	scale := float64(files) / fullSampleFiles
	if scale > 1 {
		scale = 1
	}
	c := baseConfidence(f) * scale
	if corroborated {
		c += manifestBoost
	}
	return clamp(c, 0, ceiling(f))
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Merge combines technology lists by name. The highest confidence wins,
// evidence is unioned in first-seen order, and the first non-empty version
// is kept. The result is sorted by descending confidence, then name.
func Merge(lists ...[]ir.Technology) []ir.Technology {
	byName := map[string]*ir.Technology{}
	var order []string

	for _, list := range lists {
		for _, t := range list {
			cur, ok := byName[t.Name]
			if !ok {
				cp := t
				cp.Evidence = appendUnique(nil, t.Evidence...)
				byName[t.Name] = &cp
				order = append(order, t.Name)
				continue
			}
			if t.Confidence > cur.Confidence {
				cur.Confidence = t.Confidence
			}
			if cur.Version == "" {
				cur.Version = t.Version
			}
			cur.Evidence = appendUnique(cur.Evidence, t.Evidence...)
		}
	}

	out := make([]ir.Technology, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sortTechnologies(out)
	return out
}

func sortTechnologies(list []ir.Technology) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Confidence != list[j].Confidence {
			return list[i].Confidence > list[j].Confidence
		}
		return list[i].Name < list[j].Name
	})
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		dup := false
		for _, d := range dst {
			if d == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	if dst == nil {
		dst = []string{}
	}
	return dst
}

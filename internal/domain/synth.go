package domain

import "fmt"

// RaceCopy is a planned raw duplication of one race's model onto another
type RaceCopy struct {
	Race Race
	Base Race
	From string
	To   string
}

// SynthesisError means no existing race model could serve as a base for a
// race the destination newly requires.
type SynthesisError struct {
	Root RootInfo
	Race Race
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("no base model available to create %s (%s) for %s", e.Race, e.Race.Code(), e.Root)
}

// PlanRaceModels decides which per-race models the destination needs copied in.
// A race needs one when next flags it, previous did not, and exists reports
// no model at its path. The base is the first race of PriorityOrder that next
// flags and whose model exists, counting copies planned earlier in the walk.
func PlanRaceModels(dest RootInfo, previous, next *ItemMetadata, exists func(path string) bool) ([]RaceCopy, error) {
	if !dest.HasDeformationTable() || next == nil {
		return nil, nil
	}

	planned := map[string]bool{}
	have := func(p string) bool { return planned[p] || exists(p) }

	var copies []RaceCopy
	for _, race := range DeformationRaces {
		if !next.HasModel(race) || previous.HasModel(race) {
			continue
		}
		target := dest.ModelPath(race)
		if have(target) {
			continue
		}

		found := false
		for _, base := range PriorityOrder(race)[1:] {
			from := dest.ModelPath(base)
			if !next.HasModel(base) || !have(from) {
				continue
			}
			copies = append(copies, RaceCopy{Race: race, Base: base, From: from, To: target})
			planned[target] = true
			found = true
			break
		}
		if !found {
			return nil, &SynthesisError{Root: dest, Race: race}
		}
	}
	return copies, nil
}

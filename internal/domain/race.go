package domain

// Race is a four-digit race/body code as it appears in file names (c0101)
type Race int

const (
	RaceHyurMidlanderMale    Race = 101
	RaceHyurMidlanderFemale  Race = 201
	RaceHyurHighlanderMale   Race = 301
	RaceHyurHighlanderFemale Race = 401
	RaceElezenMale           Race = 501
	RaceElezenFemale         Race = 601
	RaceMiqoteMale           Race = 701
	RaceMiqoteFemale         Race = 801
	RaceRoegadynMale         Race = 901
	RaceRoegadynFemale       Race = 1001
	RaceLalafellMale         Race = 1101
	RaceLalafellFemale       Race = 1201
	RaceAuRaMale             Race = 1301
	RaceAuRaFemale           Race = 1401
	RaceHrothgar             Race = 1501
	RaceViera                Race = 1801
)

// DeformationRaces are the races that carry per-slot deformation flags, in table order
var DeformationRaces = []Race{
	RaceHyurMidlanderMale,
	RaceHyurMidlanderFemale,
	RaceHyurHighlanderMale,
	RaceHyurHighlanderFemale,
	RaceElezenMale,
	RaceElezenFemale,
	RaceMiqoteMale,
	RaceMiqoteFemale,
	RaceRoegadynMale,
	RaceRoegadynFemale,
	RaceLalafellMale,
	RaceLalafellFemale,
	RaceAuRaMale,
	RaceAuRaFemale,
	RaceHrothgar,
	RaceViera,
}

// raceParents maps each race to the body it most closely resembles.
// Midlander male is the root of the tree.
var raceParents = map[Race]Race{
	RaceHyurMidlanderFemale:  RaceHyurMidlanderMale,
	RaceHyurHighlanderMale:   RaceHyurMidlanderMale,
	RaceHyurHighlanderFemale: RaceHyurMidlanderFemale,
	RaceElezenMale:           RaceHyurMidlanderMale,
	RaceElezenFemale:         RaceHyurMidlanderFemale,
	RaceMiqoteMale:           RaceHyurMidlanderMale,
	RaceMiqoteFemale:         RaceHyurMidlanderFemale,
	RaceRoegadynMale:         RaceHyurHighlanderMale,
	RaceRoegadynFemale:       RaceHyurHighlanderFemale,
	RaceLalafellMale:         RaceHyurMidlanderMale,
	RaceLalafellFemale:       RaceLalafellMale,
	RaceAuRaMale:             RaceHyurMidlanderMale,
	RaceAuRaFemale:           RaceHyurMidlanderFemale,
	RaceHrothgar:             RaceRoegadynMale,
	RaceViera:                RaceHyurMidlanderFemale,
}

var raceNames = map[Race]string{
	RaceHyurMidlanderMale:    "Hyur Midlander Male",
	RaceHyurMidlanderFemale:  "Hyur Midlander Female",
	RaceHyurHighlanderMale:   "Hyur Highlander Male",
	RaceHyurHighlanderFemale: "Hyur Highlander Female",
	RaceElezenMale:           "Elezen Male",
	RaceElezenFemale:         "Elezen Female",
	RaceMiqoteMale:           "Miqo'te Male",
	RaceMiqoteFemale:         "Miqo'te Female",
	RaceRoegadynMale:         "Roegadyn Male",
	RaceRoegadynFemale:       "Roegadyn Female",
	RaceLalafellMale:         "Lalafell Male",
	RaceLalafellFemale:       "Lalafell Female",
	RaceAuRaMale:             "Au Ra Male",
	RaceAuRaFemale:           "Au Ra Female",
	RaceHrothgar:             "Hrothgar",
	RaceViera:                "Viera",
}

// Code returns the zero-padded race token, e.g. 0101
func (r Race) Code() string {
	return pad4(int(r))
}

func (r Race) String() string {
	if name, ok := raceNames[r]; ok {
		return name
	}
	return "c" + r.Code()
}

// PriorityOrder returns the order in which races are tried as a model base for r:
// r itself, then its ancestors in the body tree, then every other deformation
// race in table order. Each deformation race appears exactly once.
func PriorityOrder(r Race) []Race {
	order := make([]Race, 0, len(DeformationRaces)+1)
	seen := make(map[Race]bool, len(DeformationRaces)+1)

	for cur, ok := r, true; ok; cur, ok = raceParents[cur] {
		if seen[cur] {
			break
		}
		order = append(order, cur)
		seen[cur] = true
	}
	for _, race := range DeformationRaces {
		if !seen[race] {
			order = append(order, race)
			seen[race] = true
		}
	}
	return order
}

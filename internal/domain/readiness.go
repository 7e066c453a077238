package domain

// ReadinessLevel is a 1..5 self-assessment of how well a member knows a part.
type ReadinessLevel int

const (
	ReadinessKnowsWell ReadinessLevel = iota + 1
	ReadinessNeedsScore
	ReadinessLearning
	ReadinessLearningNeedsHelp
	ReadinessNotStarted
)

func (l ReadinessLevel) Valid() bool {
	return l >= ReadinessKnowsWell && l <= ReadinessNotStarted
}

// ReadinessInfo is one entry of the static catalog.
type ReadinessInfo struct {
	ID    ReadinessLevel `json:"id"`
	En    string         `json:"en"`
	Pt    string         `json:"pt"`
	Color string         `json:"color"`
}

// Label returns the label in lang, falling back to English.
func (r ReadinessInfo) Label(lang Language) string {
	if lang == LanguagePT {
		return r.Pt
	}
	return r.En
}

// NoReadinessColor is used where a member has not rated a part.
const NoReadinessColor = "#f0f0f0"

var readinessCatalog = []ReadinessInfo{
	{ID: ReadinessKnowsWell, En: "I know this part well / don't need score", Pt: "Sei a parte bem / não preciso partitura", Color: "#4A90E2"},
	{ID: ReadinessNeedsScore, En: "I know it but need score / sheet", Pt: "Sei mas preciso partitura / referência", Color: "#7B68EE"},
	{ID: ReadinessLearning, En: "I am learning and don't need help", Pt: "Estou aprendendo e não preciso ajuda", Color: "#F39C12"},
	{ID: ReadinessLearningNeedsHelp, En: "I am learning and need help", Pt: "Estou aprendendo e preciso ajuda", Color: "#E67E22"},
	{ID: ReadinessNotStarted, En: "I haven't started", Pt: "Não comecei", Color: "#95A5A6"},
}

// ReadinessLevels returns a copy of the catalog in level order.
func ReadinessLevels() []ReadinessInfo {
	out := make([]ReadinessInfo, len(readinessCatalog))
	copy(out, readinessCatalog)
	return out
}

// LookupReadiness finds the catalog entry for l.
func LookupReadiness(l ReadinessLevel) (ReadinessInfo, bool) {
	if !l.Valid() {
		return ReadinessInfo{}, false
	}
	return readinessCatalog[l-1], true
}

// ReadinessColor returns the catalog colour, or NoReadinessColor when unset or unknown.
func ReadinessColor(l *ReadinessLevel) string {
	if l == nil {
		return NoReadinessColor
	}
	if info, ok := LookupReadiness(*l); ok {
		return info.Color
	}
	return NoReadinessColor
}

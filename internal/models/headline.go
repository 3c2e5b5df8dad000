package models

// Headline is a single item gathered from an upstream source.
type Headline struct {
	Title       string `json:"title"`
	Summary     string `json:"summary,omitempty"`
	Source      string `json:"source"`
	Placeholder bool   `json:"placeholder"`
}

// SectionStatus describes what a section ended up holding after collection.
type SectionStatus string

const (
	SectionOK          SectionStatus = "ok"
	SectionPlaceholder SectionStatus = "placeholder"
	SectionEmpty       SectionStatus = "empty"
)

// Section groups the headlines for one topical part of the briefing.
type Section struct {
	Key        string     `json:"key"`
	Title      string     `json:"title"`
	Commentary string     `json:"commentary,omitempty"`
	Headlines  []Headline `json:"headlines"`
}

// Status reports whether the section carries real data, only placeholders, or nothing.
func (s Section) Status() SectionStatus {
	if len(s.Headlines) == 0 {
		return SectionEmpty
	}
	for _, h := range s.Headlines {
		if !h.Placeholder {
			return SectionOK
		}
	}
	return SectionPlaceholder
}

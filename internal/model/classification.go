package model

// Classification is a (scenario, discipline, MMI) triple for one line item.
// Any field may be empty; fields are detected and edited independently.
type Classification struct {
	Scenario   Scenario   `json:"scenario,omitempty"`
	Discipline Discipline `json:"discipline,omitempty"`
	MmiCode    MmiCode    `json:"mmi_code,omitempty"`
	MmiLabel   string     `json:"mmi_label"`
}

// NewClassification builds a classification with the label derived from the code.
func NewClassification(s Scenario, d Discipline, m MmiCode) Classification {
	return Classification{
		Scenario:   s,
		Discipline: d,
		MmiCode:    m,
		MmiLabel:   MmiLabel(m),
	}
}

// Complete reports whether all three fields are set.
func (c Classification) Complete() bool {
	return c.Scenario.IsSet() && c.Discipline.IsSet() && c.MmiCode.IsSet()
}

// Partial reports whether at least one but not all fields are set.
func (c Classification) Partial() bool {
	some := c.Scenario.IsSet() || c.Discipline.IsSet() || c.MmiCode.IsSet()
	return some && !c.Complete()
}

// ID renders the classification as "A_RIV_300"; empty for incomplete ones.
func (c Classification) ID() string {
	if !c.Complete() {
		return ""
	}
	return CombinationID(c.Scenario, c.Discipline, c.MmiCode)
}

// MappingEdit changes the user-editable fields of a line item.
// A nil field is left unchanged; a pointer to an empty code clears it.
type MappingEdit struct {
	Scenario   *Scenario   `json:"scenario,omitempty"`
	Discipline *Discipline `json:"discipline,omitempty"`
	MmiCode    *MmiCode    `json:"mmi_code,omitempty"`
	Excluded   *bool       `json:"excluded,omitempty"`
	Weighting  *float64    `json:"weighting,omitempty"`
}

// IsEmpty reports whether the edit changes nothing.
func (e MappingEdit) IsEmpty() bool {
	return e.Scenario == nil && e.Discipline == nil && e.MmiCode == nil &&
		e.Excluded == nil && e.Weighting == nil
}

package classification

import (
	"sync"
	"testing"

	"github.com/EdvardGK/reduzer-summary/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDetector(t *testing.T) {
	tests := []struct {
		name     string
		errMsg   string
		patterns []Pattern
		wantErr  bool
	}{
		{
			name: "valid patterns",
			patterns: []Pattern{
				{Name: "letter", Field: FieldScenario, Regex: `^([abcd])-`, Priority: 10},
				{Name: "arch", Field: FieldDiscipline, Regex: `arch`, Value: "ARK", Priority: 10},
			},
		},
		{
			name: "invalid regex",
			patterns: []Pattern{
				{Name: "Bad Pattern", Field: FieldMmi, Regex: `[invalid regex`, Value: "300"},
			},
			wantErr: true,
			errMsg:  "failed to compile pattern",
		},
		{
			name: "unknown field",
			patterns: []Pattern{
				{Name: "odd", Field: "colour", Regex: `red`, Value: "x"},
			},
			wantErr: true,
			errMsg:  "unknown pattern field",
		},
		{
			name: "no value and no group",
			patterns: []Pattern{
				{Name: "empty", Field: FieldScenario, Regex: `scenario`},
			},
			wantErr: true,
			errMsg:  "no value and no capture group",
		},
		{
			name: "summary patterns need no value",
			patterns: []Pattern{
				{Name: "sum", Field: FieldSummary, Regex: `sum`},
			},
		},
		{
			name:     "empty patterns",
			patterns: []Pattern{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDetector(tt.patterns)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.patterns), d.PatternCount())
		})
	}
}

func TestDetectorPriorityOrder(t *testing.T) {
	d, err := NewDetector([]Pattern{
		{Name: "low", Field: FieldMmi, Regex: `x`, Value: "300", Priority: 10},
		{Name: "high", Field: FieldMmi, Regex: `x`, Value: "900", Priority: 100},
		{Name: "tie-first", Field: FieldMmi, Regex: `y`, Value: "700", Priority: 50},
		{Name: "tie-second", Field: FieldMmi, Regex: `y`, Value: "800", Priority: 50},
	})
	require.NoError(t, err)

	names := make([]string, 0, 4)
	for _, p := range d.Patterns(FieldMmi) {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"high", "tie-first", "tie-second", "low"}, names)
	assert.Equal(t, model.MmiDemolish, d.DetectMmi("x"))
	assert.Equal(t, model.MmiExisting, d.DetectMmi("y"))
}

func TestDetectorSkipsInvalidValues(t *testing.T) {
	d, err := NewDetector([]Pattern{
		{Name: "bogus", Field: FieldScenario, Regex: `plan ([a-z])`, Priority: 100},
		{Name: "fallback", Field: FieldScenario, Regex: `^([abcd]) `, Priority: 10},
	})
	require.NoError(t, err)

	// "plan z" yields Z, which is not a scenario; the next rule is tried.
	assert.Equal(t, model.ScenarioB, d.DetectScenario("B plan z"))
}

func TestDetectScenario(t *testing.T) {
	tests := []struct {
		input string
		want  model.Scenario
	}{
		{"Scenario A - RIV - New", model.ScenarioA},
		{"scenario a - RIV", model.ScenarioA},
		{"ScenarioC_RIV_Existing Waste", model.ScenarioC},
		{"Scenario_D-ARK", model.ScenarioD},
		{"Scenario-B", model.ScenarioB},
		{"A - Scenario C - RIE - MMI 700", model.ScenarioC},
		{"A-RIV-MMI300", model.ScenarioA},
		{"b_ARK_new", model.ScenarioB},
		{"D RIE", model.ScenarioD},
		{"Scenario Analysis", ""},
		{"ARK - 300", ""},
		{"E - RIV", ""},
		{"Random text", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectScenario(tt.input))
		})
	}
}

func TestDetectDiscipline(t *testing.T) {
	tests := []struct {
		input string
		want  model.Discipline
	}{
		{"Scenario A - RIBp - MMI300", model.DisciplineRIBp},
		{"Scenario A - RIB - MMI300", model.DisciplineRIB},
		{"A_RIBP_300", model.DisciplineRIBp},
		{"ScenarioC_RIV_Existing Waste", model.DisciplineRIV},
		{"ark", model.DisciplineARK},
		{"Scenario B-RIE-800", model.DisciplineRIE},
		{"Scenario A - RIVET - 300", ""},
		{"MARKET hall", ""},
		{"Scenario A - RIV.300", ""},
		{"RIB/RIV", ""},
		{"Random text", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDiscipline(tt.input))
		})
	}
}

func TestDetectMmi(t *testing.T) {
	tests := []struct {
		input string
		want  model.MmiCode
	}{
		{"A-RIV-MMI300", model.MmiNew},
		{"Scenario C - RIE - MMI 700", model.MmiExisting},
		{"Scenario C - RIE - mmi_800", model.MmiReused},
		{"Scenario C - RIE - 900", model.MmiDemolish},
		{"ScenarioC_RIV_Existing Waste", model.MmiDemolish},
		{"Scenario C - RIV - Existing", model.MmiExisting},
		{"Scenario C - RIV - Reused", model.MmiReused},
		{"Scenario A - RIV - New", model.MmiNew},
		{"Scenario C - ARK - Riving", model.MmiDemolish},
		{"Scenario C - ARK - demolition", model.MmiDemolish},
		{"Scenario C - ARK - gjenbrukt", model.MmiReused},
		{"Scenario C - ARK - eksisterende", model.MmiExisting},
		{"Scenario C - ARK - beholdes", model.MmiExisting},
		{"Scenario A - ARK - Nybygg", model.MmiNew},
		{"Scenario A - ARK - ny", model.MmiNew},
		{"Existing - MMI 300", model.MmiNew},
		{"Scenario A - RIV - 3000", ""},
		{"Scenario A - RIV - newest", ""},
		{"Random text", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMmi(tt.input))
		})
	}
}

func TestDetectAll(t *testing.T) {
	got := DetectAll("A - Scenario C - RIBp - Existing Waste")
	assert.Equal(t, model.NewClassification(model.ScenarioC, model.DisciplineRIBp, model.MmiDemolish), got)
	assert.Equal(t, "RIVES", got.MmiLabel)

	// Missing fields do not block the others.
	got = DetectAll("RIV reused")
	assert.Equal(t, model.Scenario(""), got.Scenario)
	assert.Equal(t, model.DisciplineRIV, got.Discipline)
	assert.Equal(t, model.MmiReused, got.MmiCode)

	got = DetectAll("Random text")
	assert.False(t, got.Partial())
	assert.Equal(t, model.UnknownMmiLabel, got.MmiLabel)
}

func TestIsSummaryRow(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"S8 - RAMBELL", true},
		{"RAMBOELL", true},
		{"Rambøll Norge", true},
		{"S12- Something", true},
		{"Total", true},
		{"Totalt", true},
		{"Sum alle scenario", true},
		{"Scenario A - RIV - New", false},
		{"Section 8", false},
		{"RAMB", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSummaryRow(tt.input))
		})
	}
}

func TestExplain(t *testing.T) {
	exp := Explain("A - Scenario C - RIE - existing")
	require.NotNil(t, exp.Scenario)
	assert.Equal(t, "scenario-marker", exp.Scenario.PatternName)
	assert.Equal(t, "C", exp.Scenario.Value)
	require.NotNil(t, exp.Discipline)
	assert.Equal(t, "discipline-RIE", exp.Discipline.PatternName)
	require.NotNil(t, exp.Mmi)
	assert.Equal(t, "keyword-existing", exp.Mmi.PatternName)
	assert.Nil(t, exp.Summary)

	exp = Explain("nothing here")
	assert.Nil(t, exp.Scenario)
	assert.Nil(t, exp.Discipline)
	assert.Nil(t, exp.Mmi)
}

func TestDetectAllDeterministic(t *testing.T) {
	inputs := []string{
		"Scenario A - RIBp - MMI300",
		"ScenarioC_RIV_Existing Waste",
		"A - Scenario C - RIE - MMI 700",
		"S8 - RAMBELL",
		"Random text",
	}

	want := make([]model.Classification, len(inputs))
	for i, in := range inputs {
		want[i] = DetectAll(in)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := len(inputs) - 1; i >= 0; i-- {
				assert.Equal(t, want[i], DetectAll(inputs[i]))
			}
		}()
	}
	wg.Wait()
}

func TestDefaultPatternsCompile(t *testing.T) {
	d, err := NewDetector(DefaultPatterns())
	require.NoError(t, err)
	assert.Equal(t, len(DefaultPatterns()), d.PatternCount())

	names := make([]string, 0)
	for _, p := range d.Patterns(FieldDiscipline) {
		names = append(names, p.Value)
	}
	assert.Equal(t, []string{"RIBp", "RIB", "RIV", "ARK", "RIE"}, names)
}

package knowledge

// Bundle is the FIP reference knowledge base. It is loaded once and must not
// be modified after loading.
type Bundle struct {
	Sources               []string                `yaml:"sources" json:"sources"`
	Overview              Overview                `yaml:"overview" json:"overview"`
	Types                 PerForm                 `yaml:"types" json:"types"`
	BloodworkIndicators   Bloodwork               `yaml:"bloodworkIndicators" json:"bloodworkIndicators"`
	DiagnosticTools       map[string]string       `yaml:"diagnosticTools" json:"diagnosticTools"`
	DiagnosticAlgorithms  Algorithms              `yaml:"diagnosticAlgorithms" json:"diagnosticAlgorithms"`
	ScoringSystems        Scoring                 `yaml:"scoringSystems" json:"scoringSystems"`
	RecommendedSamples    PerForm                 `yaml:"recommendedSamples" json:"recommendedSamples"`
	SampleHandling        map[string]SampleSpec   `yaml:"sampleHandling" json:"sampleHandling"`
	DifferentialDiagnosis map[string]Differential `yaml:"differentialDiagnosis" json:"differentialDiagnosis"`
	TreatmentProtocols    Treatment               `yaml:"treatmentProtocols" json:"treatmentProtocols"`
	Prognosis             map[string]Outcome      `yaml:"prognosis" json:"prognosis"`

	promptText string
}

// PerForm holds one value per clinical form of FIP.
type PerForm struct {
	Wet          string `yaml:"wet" json:"wet,omitempty"`
	Pleural      string `yaml:"pleural" json:"pleural,omitempty"`
	Dry          string `yaml:"dry" json:"dry,omitempty"`
	Ocular       string `yaml:"ocular" json:"ocular,omitempty"`
	Neurological string `yaml:"neurological" json:"neurological,omitempty"`
}

func (p PerForm) empty() bool {
	return p == PerForm{}
}

// Overview describes the disease and its epidemiology.
type Overview struct {
	Definition               string   `yaml:"definition" json:"definition"`
	Prevalence               string   `yaml:"prevalence" json:"prevalence"`
	Incidence                string   `yaml:"incidence" json:"incidence"`
	BreedPredisposition      []string `yaml:"breedPredisposition" json:"breedPredisposition"`
	AgeRisk                  string   `yaml:"ageRisk" json:"ageRisk"`
	SurvivalWithoutTreatment PerForm  `yaml:"survivalWithoutTreatment" json:"survivalWithoutTreatment"`
}

// Bloodwork maps analytes to their expected direction per form, plus the
// thresholds that support a diagnosis.
type Bloodwork struct {
	WetFIP             map[string]string `yaml:"wetFIP" json:"wetFIP"`
	DryFIP             map[string]string `yaml:"dryFIP" json:"dryFIP"`
	CriticalThresholds map[string]string `yaml:"criticalThresholds" json:"criticalThresholds"`
}

// Algorithms are ordered diagnostic workflows.
type Algorithms struct {
	RapidTriage    []string `yaml:"rapidTriage" json:"rapidTriage"`
	EffusiveFIP    []string `yaml:"effusiveFIP" json:"effusiveFIP"`
	NonEffusiveFIP []string `yaml:"nonEffusiveFIP" json:"nonEffusiveFIP"`
}

// Scoring lists published scoring systems.
type Scoring struct {
	ModifiedFIPScore ScoreFormula `yaml:"modifiedFIPScore" json:"modifiedFIPScore"`
	FIPCalc          string       `yaml:"FIPCalc" json:"FIPCalc"`
	CRPSAACombo      string       `yaml:"CRPSAACombo" json:"CRPSAACombo"`
}

// ScoreFormula is a points-based score and how to read it.
type ScoreFormula struct {
	Formula        string `yaml:"formula" json:"formula"`
	Interpretation string `yaml:"interpretation" json:"interpretation"`
}

// SampleSpec describes how a diagnostic sample is shipped.
type SampleSpec struct {
	Container   string `yaml:"container" json:"container"`
	Temperature string `yaml:"temperature" json:"temperature"`
	MaxTransit  string `yaml:"maxTransit" json:"maxTransit"`
}

// Differential is a condition that presents like FIP.
type Differential struct {
	KeyTests string `yaml:"keyTests" json:"keyTests"`
	Overlaps string `yaml:"overlaps" json:"overlaps"`
}

// Treatment holds the antiviral protocols and monitoring schedule.
type Treatment struct {
	GS441524   Antiviral         `yaml:"GS441524" json:"GS441524"`
	Remdesivir Antiviral         `yaml:"remdesivir" json:"remdesivir"`
	Monitoring map[string]string `yaml:"monitoring" json:"monitoring"`
}

// Antiviral is one drug protocol. Fields not used by a drug are left empty.
type Antiviral struct {
	Description      string   `yaml:"description" json:"description"`
	StandardDuration string   `yaml:"standardDuration" json:"standardDuration,omitempty"`
	DosingInjectable *PerForm `yaml:"dosingInjectable" json:"dosingInjectable,omitempty"`
	DosingOral       string   `yaml:"dosingOral" json:"dosingOral,omitempty"`
	InitialProtocol  string   `yaml:"initialProtocol" json:"initialProtocol,omitempty"`
	ResponseTime     string   `yaml:"responseTime" json:"responseTime,omitempty"`
	DosingProtocol   *PerForm `yaml:"dosingProtocol" json:"dosingProtocol,omitempty"`
}

// Outcome is remission and survival for a group of cases.
type Outcome struct {
	RemissionRate  string `yaml:"remissionRate" json:"remissionRate"`
	MedianSurvival string `yaml:"medianSurvival" json:"medianSurvival"`
}

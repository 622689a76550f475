package stats

import (
	"math"
)

// ============================================================================
// SIGNIFICANCE
// ============================================================================

// Significance is the narrative flag attached to every test result
type Significance string

const (
	Significant    Significance = "significant"
	NotSignificant Significance = "not_significant"
	Undetermined   Significance = "undetermined" // p-value could not be computed
)

// Classify compares a p-value against alpha
func Classify(p, alpha float64) Significance {
	if math.IsNaN(p) {
		return Undetermined
	}
	if p < alpha {
		return Significant
	}
	return NotSignificant
}

// IsSignificant reports whether p is below alpha
func IsSignificant(p, alpha float64) bool {
	return Classify(p, alpha) == Significant
}

// WarningCode represents structured warning types
type WarningCode string

const (
	WarningLowExpected      WarningCode = "LOW_EXPECTED_COUNT"     // expected cell count below 5
	WarningTwoLevelFactor   WarningCode = "TWO_LEVEL_FACTOR"       // t-test is the more direct tool
	WarningHeterogeneous    WarningCode = "HETEROGENEOUS_VARIANCE" // Levene p < alpha
	WarningLeveneFailed     WarningCode = "LEVENE_UNAVAILABLE"     // homogeneity check could not run
	WarningMethodMismatch   WarningCode = "POSTHOC_METHOD_MISMATCH"
	WarningSmallGroup       WarningCode = "SMALL_GROUP"
	WarningUndefinedPValue  WarningCode = "UNDEFINED_P_VALUE"
	WarningInteractionTerms WarningCode = "INTERACTION_MANUAL"
)

// Warning is a non-blocking observation surfaced with a result
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// ============================================================================
// CONTINGENCY
// ============================================================================

// Dominance classifies how concentrated a row's distribution is
type Dominance string

const (
	DominanceConcentrated Dominance = "concentrated" // max share >= 90%
	DominanceModerate     Dominance = "moderate"
	DominanceBalanced     Dominance = "balanced" // max share < 50%
)

// RowDominance is the dominance diagnostic of one row level
type RowDominance struct {
	Row      string    `json:"row"`
	TopCol   string    `json:"top_col"`
	MaxShare float64   `json:"max_share"` // percent
	Level    Dominance `json:"level"`
}

// ContingencyResult is a chi-square test of independence on a crosstab
type ContingencyResult struct {
	RowVar         string         `json:"row_var"`
	ColVar         string         `json:"col_var"`
	RowLevels      []string       `json:"row_levels"`
	ColLevels      []string       `json:"col_levels"`
	Observed       [][]int        `json:"observed"`
	Expected       [][]float64    `json:"expected"`
	Residuals      [][]float64    `json:"residuals"` // adjusted standardized residuals
	ChiSquare      float64        `json:"chi_square"`
	DF             int            `json:"df"`
	PValue         float64        `json:"p_value"`
	YatesCorrected bool           `json:"yates_corrected"`
	Significance   Significance   `json:"significance"`
	Dominance      []RowDominance `json:"dominance"`
	Warnings       []Warning      `json:"warnings,omitempty"`
	Narrative      string         `json:"narrative"`
}

// FrequencyRow is one level of a frequency table
type FrequencyRow struct {
	Level   string  `json:"level"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// FrequencyTable counts the levels of one column, missing included
type FrequencyTable struct {
	Column string         `json:"column"`
	Total  int            `json:"total"`
	Rows   []FrequencyRow `json:"rows"`
}

// ============================================================================
// CORRELATION
// ============================================================================

// CorrelationPair holds Pearson and Spearman coefficients for two columns
type CorrelationPair struct {
	X            string       `json:"x"`
	Y            string       `json:"y"`
	N            int          `json:"n"`
	Pearson      float64      `json:"pearson"`
	PearsonP     float64      `json:"pearson_p"`
	Spearman     float64      `json:"spearman"`
	SpearmanP    float64      `json:"spearman_p"`
	Significance Significance `json:"significance"` // from the Pearson p-value
}

// CorrelationMatrix lists every unordered pair of the selected columns
type CorrelationMatrix struct {
	Columns []string          `json:"columns"`
	Pairs   []CorrelationPair `json:"pairs"`
}

// PartialCorrelationResult compares r(X,Y) with r(X,Y | Z)
type PartialCorrelationResult struct {
	X                   string       `json:"x"`
	Y                   string       `json:"y"`
	Control             string       `json:"control"`
	N                   int          `json:"n"`
	TotalR              float64      `json:"total_r"`
	TotalP              float64      `json:"total_p"`
	PartialR            float64      `json:"partial_r"`
	PartialP            float64      `json:"partial_p"`
	TotalSignificance   Significance `json:"total_significance"`
	PartialSignificance Significance `json:"partial_significance"`
	Narrative           string       `json:"narrative"`
}

// GroupedCorrelationRow is one variable pair across every group level
type GroupedCorrelationRow struct {
	X string    `json:"x"`
	Y string    `json:"y"`
	R []float64 `json:"r"` // aligned with GroupedCorrelation.Groups; NaN when undefined
}

// GroupedCorrelation is Pearson r per level of a grouping column
type GroupedCorrelation struct {
	GroupColumn string                  `json:"group_column"`
	Groups      []string                `json:"groups"`
	Rows        []GroupedCorrelationRow `json:"rows"`
}

// ============================================================================
// T-TESTS
// ============================================================================

// TTestKind names the t-test variant
type TTestKind string

const (
	TTestOneSample   TTestKind = "one_sample"
	TTestIndependent TTestKind = "independent"
	TTestPaired      TTestKind = "paired"
)

// GroupSummary describes one sample entering a test
type GroupSummary struct {
	Name string  `json:"name"`
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Interval is a two-sided confidence interval
type Interval struct {
	Level float64 `json:"level"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// TTestResult is the outcome of any t-test variant
type TTestResult struct {
	Kind          TTestKind      `json:"kind"`
	Groups        []GroupSummary `json:"groups"`
	Reference     float64        `json:"reference,omitempty"` // one-sample mu0
	T             float64        `json:"t"`
	DF            float64        `json:"df"`
	PValue        float64        `json:"p_value"`
	CohenD        float64        `json:"cohen_d"`
	MeanCI        *Interval      `json:"mean_ci,omitempty"` // one-sample mean or paired mean difference
	EqualVariance bool           `json:"equal_variance,omitempty"`
	LeveneP       float64        `json:"levene_p,omitempty"`
	HigherGroup   string         `json:"higher_group,omitempty"`
	Significance  Significance   `json:"significance"`
	Warnings      []Warning      `json:"warnings,omitempty"`
	Narrative     string         `json:"narrative"`
}

// ============================================================================
// ANOVA
// ============================================================================

// ANOVATerm is one row of a type-II effect table
type ANOVATerm struct {
	Term         string       `json:"term"`
	Factors      []string     `json:"factors"`
	SS           float64      `json:"ss"`
	DF           int          `json:"df"`
	F            float64      `json:"f"`
	PValue       float64      `json:"p_value"`
	PartialEta2  float64      `json:"partial_eta2"`
	Interaction  bool         `json:"interaction"`
	Significance Significance `json:"significance"`
}

// ANOVAResult is the effect table and homogeneity check of one ANOVA run
type ANOVAResult struct {
	Dependent   string        `json:"dependent"`
	Factors     []string      `json:"factors"`
	N           int           `json:"n"`
	Terms       []ANOVATerm   `json:"terms"`
	ResidualSS  float64       `json:"residual_ss"`
	ResidualDF  int           `json:"residual_df"`
	LeveneW     float64       `json:"levene_w"`
	LeveneP     float64       `json:"levene_p"`
	Homogeneous bool          `json:"homogeneous"`
	Recommended PostHocMethod `json:"recommended"`
	Warnings    []Warning     `json:"warnings,omitempty"`
}

// PostHocMethod selects the pairwise comparison procedure
type PostHocMethod string

const (
	PostHocTukey       PostHocMethod = "tukey"
	PostHocGamesHowell PostHocMethod = "games_howell"
)

// PairwiseComparison is one pair of factor levels
type PairwiseComparison struct {
	GroupA   string  `json:"group_a"`
	GroupB   string  `json:"group_b"`
	MeanDiff float64 `json:"mean_diff"` // mean(B) - mean(A) for Tukey, mean(A) - mean(B) for Games-Howell
	SE       float64 `json:"se"`
	T        float64 `json:"t,omitempty"`
	DF       float64 `json:"df"`
	PValue   float64 `json:"p_value"`
	Lower    float64 `json:"lower,omitempty"`
	Upper    float64 `json:"upper,omitempty"`
	Reject   bool    `json:"reject"`
}

// PostHocResult lists pairwise comparisons for one factor
type PostHocResult struct {
	Factor      string               `json:"factor"`
	Method      PostHocMethod        `json:"method"`
	Comparisons []PairwiseComparison `json:"comparisons"`
	Warnings    []Warning            `json:"warnings,omitempty"`
}

// ============================================================================
// DESCRIPTIVE
// ============================================================================

// NumericDescription summarizes a numeric column
type NumericDescription struct {
	Column     string  `json:"column"`
	Count      int     `json:"count"`
	Missing    int     `json:"missing"`
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	Min        float64 `json:"min"`
	Q1         float64 `json:"q1"`
	Median     float64 `json:"median"`
	Q3         float64 `json:"q3"`
	Max        float64 `json:"max"`
	CoefVar    float64 `json:"coef_var"` // percent
	Range      float64 `json:"range"`
	Skewness   float64 `json:"skewness"`
	Kurtosis   float64 `json:"kurtosis"` // excess
	Shape      string  `json:"shape"`
	Tailedness string  `json:"tailedness"`
}

// CategoricalDiagnosis classifies a categorical distribution
type CategoricalDiagnosis string

const (
	DiagnosisConstant        CategoricalDiagnosis = "constant"
	DiagnosisDominant        CategoricalDiagnosis = "dominant"
	DiagnosisHighCardinality CategoricalDiagnosis = "high_cardinality"
	DiagnosisBalanced        CategoricalDiagnosis = "balanced"
)

// CategoricalDescription summarizes a categorical column
type CategoricalDescription struct {
	Column    string               `json:"column"`
	Count     int                  `json:"count"`
	Missing   int                  `json:"missing"`
	Unique    int                  `json:"unique"`
	Mode      string               `json:"mode"`
	ModeShare float64              `json:"mode_share"` // percent
	Levels    []FrequencyRow       `json:"levels"`
	Diagnosis CategoricalDiagnosis `json:"diagnosis"`
}

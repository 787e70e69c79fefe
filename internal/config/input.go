package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// AssumptionInput is the file and request form of an assumption set. Only age and sex are
// required; every other field falls back to the modeling defaults.
type AssumptionInput struct {
	// Ages and horizons are capped at 150 years so a request cannot ask for an unbounded projection.
	Age               *int   `yaml:"age" json:"age" validate:"required,gte=0,lte=150"`
	Sex               string `yaml:"sex" json:"sex" validate:"required,sex"`
	TobaccoUser       bool   `yaml:"tobacco_user" json:"tobacco_user"`
	RetirementAge     int    `yaml:"retirement_age,omitempty" json:"retirement_age,omitempty" validate:"omitempty,gte=0,lte=150"`
	LifeExpectancy    int    `yaml:"life_expectancy,omitempty" json:"life_expectancy,omitempty" validate:"omitempty,gte=0,lte=150"`
	CustomTimeHorizon *int   `yaml:"custom_time_horizon,omitempty" json:"custom_time_horizon,omitempty" validate:"omitempty,lte=150"`

	// Rates are fractions (0.0328 = 3.28%). Inflation must stay above -100%.
	InflationRate  *float64 `yaml:"inflation_rate,omitempty" json:"inflation_rate,omitempty" validate:"omitempty,gt=-1"`
	MarketGainRate *float64 `yaml:"market_gain_rate,omitempty" json:"market_gain_rate,omitempty"`

	MonthlyBudget *float64 `yaml:"monthly_budget,omitempty" json:"monthly_budget,omitempty"`
	PolicySize    *float64 `yaml:"policy_size,omitempty" json:"policy_size,omitempty"`
	DeathBenefit  *float64 `yaml:"death_benefit,omitempty" json:"death_benefit,omitempty"`

	TermPolicyLength int     `yaml:"term_policy_length,omitempty" json:"term_policy_length,omitempty" validate:"gte=0,lte=150"`
	TermBudget       float64 `yaml:"term_budget,omitempty" json:"term_budget,omitempty"`
	TermPolicySize   float64 `yaml:"term_policy_size,omitempty" json:"term_policy_size,omitempty"`

	PerformancePercentile *float64 `yaml:"performance_percentile,omitempty" json:"performance_percentile,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("sex", func(fl validator.FieldLevel) bool {
		return domain.ParseSex(fl.Field().String()).Valid()
	})
	return v
}

func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

// ToAssumptionSet converts the input into the engine's form. Defaults are not applied here.
func (in AssumptionInput) ToAssumptionSet() domain.AssumptionSet {
	return domain.AssumptionSet{
		Age:                   in.Age,
		Sex:                   domain.ParseSex(in.Sex),
		InflationRate:         decimalPtr(in.InflationRate),
		MarketGainRate:        decimalPtr(in.MarketGainRate),
		RetirementAge:         in.RetirementAge,
		LifeExpectancy:        in.LifeExpectancy,
		TobaccoUser:           in.TobaccoUser,
		CustomTimeHorizon:     in.CustomTimeHorizon,
		MonthlyBudget:         decimalPtr(in.MonthlyBudget),
		PolicySize:            decimalPtr(in.PolicySize),
		TermPolicyLength:      in.TermPolicyLength,
		TermBudget:            decimal.NewFromFloat(in.TermBudget),
		TermPolicySize:        decimal.NewFromFloat(in.TermPolicySize),
		PerformancePercentile: in.PerformancePercentile,
		DeathBenefit:          decimalPtr(in.DeathBenefit),
	}
}

// InputParser handles parsing of assumption files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads an assumption set from a YAML (or JSON) file
func (ip *InputParser) LoadFromFile(filename string) (*AssumptionInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates YAML assumption data. JSON is accepted as a YAML subset.
func (ip *InputParser) Parse(data []byte) (*AssumptionInput, error) {
	var in AssumptionInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ip.ValidateAssumptions(&in); err != nil {
		return nil, fmt.Errorf("assumption validation failed: %w", err)
	}
	return &in, nil
}

// ValidateAssumptions checks the struct tags and reports every failing field at once.
func (ip *InputParser) ValidateAssumptions(in *AssumptionInput) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "sex":
		return fmt.Sprintf("%s must be male or female, got %q", fe.Field(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// CreateExampleAssumptions returns a filled-in assumption set for a 40-year-old man budgeting
// $200 a month with a 20-year term policy.
func (ip *InputParser) CreateExampleAssumptions() *AssumptionInput {
	age := 40
	inflation := 0.0328
	market := 0.104
	budget := 200.0
	return &AssumptionInput{
		Age:              &age,
		Sex:              string(domain.SexMale),
		RetirementAge:    domain.DefaultRetirementAge,
		LifeExpectancy:   domain.DefaultLifeExpectancyMale,
		InflationRate:    &inflation,
		MarketGainRate:   &market,
		MonthlyBudget:    &budget,
		TermPolicyLength: 20,
		TermBudget:       25,
		TermPolicySize:   500000,
	}
}

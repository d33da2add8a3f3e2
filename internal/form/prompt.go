package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user aborted the prompt (e.g., Ctrl+C).
var ErrAborted = errors.New("form: aborted")

// InputConfig configures a free-text prompt.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// SelectConfig configures a single-choice prompt.
type SelectConfig struct {
	Message string
	Options []string
	Default string
	Help    string
}

// PromptDriver abstracts the terminal so collection can be scripted in tests.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Select(ctx context.Context, cfg SelectConfig) (string, error)
}

// Option lists offered for unit and material selects. The service owns the
// real enumerations; these are the values it recognises today.
var (
	HeightUnits    = []string{"m", "ft"}
	FlowUnits      = []string{"l/s", "m3/h", "gpm"}
	LengthUnits    = []string{"m", "km", "ft", "mi"}
	DiameterUnits  = []string{"mm", "in", "m"}
	PipeMaterials  = []string{"pvc", "steel", "copper", "concrete", "ductile_iron"}
	fittingsPrompt = []struct{ id, label string }{
		{ValveGate, "Válvulas de compuerta"},
		{ValveButterfly, "Válvulas mariposa"},
		{ValveCheck, "Válvulas check"},
		{ValveGlobe, "Válvulas de globo"},
		{Elbow90, "Codos de 90°"},
		{Elbow45, "Codos de 45°"},
	}
)

type promptStep struct {
	id      string
	message string
	def     string
	options []string
	numeric bool
}

var promptSteps = []promptStep{
	{id: ProjectName, message: "Nombre del proyecto"},
	{id: ProjectLocation, message: "Ubicación"},
	{id: GeometricHeight, message: "Altura geométrica", def: "20", numeric: true},
	{id: GeometricHeightUnit, message: "Unidad de altura", def: "m", options: HeightUnits},
	{id: FlowRate, message: "Caudal", def: "50", numeric: true},
	{id: FlowRateUnit, message: "Unidad de caudal", def: "l/s", options: FlowUnits},
	{id: PipeLength, message: "Longitud de tubería", def: "100", numeric: true},
	{id: PipeLengthUnit, message: "Unidad de longitud", def: "m", options: LengthUnits},
	{id: PipeDiameter, message: "Diámetro de tubería", def: "200", numeric: true},
	{id: PipeDiameterUnit, message: "Unidad de diámetro", def: "mm", options: DiameterUnits},
	{id: PipeMaterial, message: "Material de tubería", def: "pvc", options: PipeMaterials},
	{id: PumpEfficiency, message: "Eficiencia de la bomba (%)", def: "75", numeric: true},
}

// Prompt walks the user through every form field and returns the answers as a
// Map snapshot.
func Prompt(ctx context.Context, driver PromptDriver) (Map, error) {
	if driver == nil {
		driver = SurveyDriver{}
	}
	out := make(Map, len(Fields))
	for _, step := range promptSteps {
		var (
			val string
			err error
		)
		if len(step.options) > 0 {
			val, err = driver.Select(ctx, SelectConfig{Message: step.message, Options: step.options, Default: step.def})
		} else {
			cfg := InputConfig{Message: step.message, Default: step.def}
			if step.numeric {
				cfg.Validator = validateNumber
			}
			val, err = driver.Input(ctx, cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.id, err)
		}
		out[step.id] = val
	}
	for _, f := range fittingsPrompt {
		val, err := driver.Input(ctx, InputConfig{Message: f.label, Default: "0", Validator: validateCount})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.id, err)
		}
		out[f.id] = val
	}
	return out, nil
}

func validateNumber(raw string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
		return fmt.Errorf("ingrese un número")
	}
	return nil
}

func validateCount(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fmt.Errorf("ingrese un entero no negativo")
	}
	return nil
}

// SurveyDriver prompts on the process terminal.
type SurveyDriver struct{}

func (SurveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	var opts []survey.AskOpt
	if cfg.Validator != nil {
		v := cfg.Validator
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, _ := ans.(string)
			return v(s)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (SurveyDriver) Select(ctx context.Context, cfg SelectConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Select{
		Message: cfg.Message,
		Options: cfg.Options,
		Help:    cfg.Help,
	}
	if cfg.Default != "" {
		prompt.Default = cfg.Default
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

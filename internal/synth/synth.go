// Package synth emits the Go source of a benchmark case.
package synth

import (
	"bytes"
	"fmt"

	"github.com/KromDaniel/dispatchbench/internal/codegen"
	"github.com/KromDaniel/dispatchbench/internal/params"
	"github.com/KromDaniel/dispatchbench/internal/report"
	"github.com/dave/jennifer/jen"
)

// LoopCount is the fixed number of timing-loop iterations in every generated program.
const LoopCount = 1000

// CallSite is one wrapper invocation inside the timing loop.
type CallSite struct {
	Function int
	Type     int
}

// Synthesizer generates the source of one case for one dispatch strategy.
type Synthesizer struct {
	config   params.CaseConfig
	strategy params.Strategy
	file     *jen.File
	logger   *report.Logger
}

// New creates a new synthesizer instance.
func New(config params.CaseConfig, strategy params.Strategy) *Synthesizer {
	return &Synthesizer{
		config:   config,
		strategy: strategy,
		logger:   report.Discard(),
	}
}

// SetLogger sets the verbose logger.
func (s *Synthesizer) SetLogger(l *report.Logger) {
	s.logger = l
}

// Synthesize returns the source text for config realized with strategy.
func Synthesize(config params.CaseConfig, strategy params.Strategy) (string, error) {
	return New(config, strategy).Generate()
}

// Generate builds the program and returns it gofmt-formatted. Repeated calls
// return identical text.
func (s *Synthesizer) Generate() (string, error) {
	if err := s.config.Validate(); err != nil {
		return "", err
	}
	if s.strategy != params.Static && s.strategy != params.Dynamic {
		return "", fmt.Errorf("unsupported strategy %s", s.strategy)
	}

	s.logger.Section("Synthesis")
	s.logger.Log("Strategy: %s", s.strategy)
	s.logger.Log("Config: %s", s.config)

	s.file = jen.NewFile("main")
	s.file.HeaderComment(codegen.BuildIgnoreLine)
	s.file.PackageComment(codegen.GeneratedMarker)
	s.file.PackageComment(s.summary())

	s.generatePreamble()
	for i := 0; i < s.config.NumTypes; i++ {
		s.generateValueType(i)
	}
	for j := 0; j < s.config.NumFunctions; j++ {
		s.generateWrapper(j)
	}
	s.generateInstances()
	if s.strategy == params.Dynamic {
		s.generateCapabilityBindings()
	}
	s.generateMain()

	var buf bytes.Buffer
	if err := s.file.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render %s source: %w", s.strategy, err)
	}
	s.logger.Log("Rendered %d bytes", buf.Len())
	return buf.String(), nil
}

func (s *Synthesizer) summary() string {
	return fmt.Sprintf("strategy = %s, types = %d, functions = %d, calls = %d, noinline = %t, nodedup = %t, predictable = %t",
		s.strategy, s.config.NumTypes, s.config.NumFunctions, s.config.NumCalls,
		s.config.NoInline, s.config.NoDedup, s.config.Predictable)
}

// generatePreamble declares the capability interface, the loop count and the
// opacity primitive that keeps measured calls from being eliminated.
func (s *Synthesizer) generatePreamble() {
	s.file.Comment(fmt.Sprintf("%s is the behavior under test.", codegen.CapabilityName))
	s.file.Type().Id(codegen.CapabilityName).Interface(
		jen.Id(codegen.MethodName).Params(),
	)
	s.file.Line()

	s.file.Const().Id(codegen.LoopCountName).Op("=").Lit(LoopCount)
	s.file.Line()

	s.file.Var().Id(codegen.SinkName).Uintptr()
	s.file.Line()

	s.file.Func().Id(codegen.OpaqueFuncName).
		Params(jen.Id(codegen.OpaqueParamName).Uintptr()).
		Block(
			jen.Id(codegen.SinkName).Op("^=").Id(codegen.OpaqueParamName),
		)
	s.file.Line()
}

// generateValueType declares type i with i leading and NumTypes-i trailing
// padding bytes, so no two types share a layout, plus its method.
func (s *Synthesizer) generateValueType(i int) {
	name := codegen.TypeName(i)
	s.file.Type().Id(name).Struct(
		jen.Id("_").Index(jen.Lit(i)).Byte(),
		jen.Id(codegen.TagFieldName).Uint8(),
		jen.Id("_").Index(jen.Lit(s.config.NumTypes-i)).Byte(),
	)
	s.file.Line()

	body := []jen.Code{
		s.opaque(jen.Uintptr().Call(jen.Id(codegen.ReceiverName).Dot(codegen.TagFieldName))),
	}
	if s.config.NoDedup {
		body = append(body, s.opaque(jen.Lit(i+1)))
	}

	s.directives()
	s.file.Func().
		Params(jen.Id(codegen.ReceiverName).Id(name)).
		Id(codegen.MethodName).
		Params().
		Block(body...)
	s.file.Line()
}

// generateWrapper declares call-site wrapper j. Static wrappers take a type
// parameter constrained by the capability; dynamic wrappers take the
// capability interface itself.
func (s *Synthesizer) generateWrapper(j int) {
	body := []jen.Code{
		jen.Id(codegen.ReceiverName).Dot(codegen.MethodName).Call(),
	}
	if s.config.NoDedup {
		body = append(body, s.opaque(jen.Lit(j+1)))
	}

	s.directives()
	fn := s.file.Func().Id(codegen.WrapperName(j))
	switch s.strategy {
	case params.Static:
		fn.Types(jen.Id(codegen.TypeParamName).Id(codegen.CapabilityName)).
			Params(jen.Id(codegen.ReceiverName).Id(codegen.TypeParamName))
	case params.Dynamic:
		fn.Params(jen.Id(codegen.ReceiverName).Id(codegen.CapabilityName))
	}
	fn.Block(body...)
	s.file.Line()
}

func (s *Synthesizer) generateInstances() {
	if s.config.NumTypes == 0 {
		return
	}
	defs := make([]jen.Code, 0, s.config.NumTypes)
	for i := 0; i < s.config.NumTypes; i++ {
		defs = append(defs, jen.Id(codegen.InstanceName(i)).Op("=").Id(codegen.TypeName(i)).Values())
	}
	s.file.Var().Defs(defs...)
	s.file.Line()
}

// generateCapabilityBindings converts every instance to the capability once,
// outside the timing loop.
func (s *Synthesizer) generateCapabilityBindings() {
	if s.config.NumTypes == 0 {
		return
	}
	defs := make([]jen.Code, 0, s.config.NumTypes)
	for i := 0; i < s.config.NumTypes; i++ {
		defs = append(defs, jen.Id(codegen.CapabilityBindingName(i)).
			Id(codegen.CapabilityName).
			Op("=").
			Id(codegen.InstanceName(i)))
	}
	s.file.Var().Defs(defs...)
	s.file.Line()
}

func (s *Synthesizer) generateMain() {
	var body []jen.Code
	if s.config.NumTypes > 0 && s.config.NumFunctions > 0 {
		order := CallOrder(s.config)
		s.logger.Log("Timing loop: %d calls per iteration", len(order))
		calls := make([]jen.Code, 0, len(order))
		for _, site := range order {
			calls = append(calls, jen.Id(codegen.WrapperName(site.Function)).Call(s.argument(site.Type)))
		}
		body = append(body, jen.For(
			jen.Id(codegen.LoopVarName).Op(":=").Lit(0),
			jen.Id(codegen.LoopVarName).Op("<").Id(codegen.LoopCountName),
			jen.Id(codegen.LoopVarName).Op("++"),
		).Block(calls...))
	}
	s.file.Func().Id("main").Params().Block(body...)
}

func (s *Synthesizer) argument(typeIndex int) jen.Code {
	if s.strategy == params.Dynamic {
		return jen.Id(codegen.CapabilityBindingName(typeIndex))
	}
	return jen.Id(codegen.InstanceName(typeIndex))
}

func (s *Synthesizer) opaque(arg jen.Code) jen.Code {
	return jen.Id(codegen.OpaqueFuncName).Call(arg)
}

func (s *Synthesizer) directives() {
	if s.config.NoInline {
		s.file.Comment(codegen.NoInlineComment)
	}
}

// CallOrder lists the wrapper invocations of one timing-loop iteration. Pairs
// are enumerated function-major, or type-major when Predictable is set, and
// each pair is repeated NumCalls times in a row.
func CallOrder(config params.CaseConfig) []CallSite {
	if config.NumTypes <= 0 || config.NumFunctions <= 0 || config.NumCalls <= 0 {
		return nil
	}
	order := make([]CallSite, 0, config.NumTypes*config.NumFunctions*config.NumCalls)
	outer, inner := config.NumFunctions, config.NumTypes
	if config.Predictable {
		outer, inner = config.NumTypes, config.NumFunctions
	}
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			site := CallSite{Function: o, Type: in}
			if config.Predictable {
				site = CallSite{Function: in, Type: o}
			}
			for c := 0; c < config.NumCalls; c++ {
				order = append(order, site)
			}
		}
	}
	return order
}

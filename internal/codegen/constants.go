// Package codegen provides the identifiers used in generated benchmark
// programs. The symbol classifier matches on the same names, so they live in
// one place.
package codegen

import "fmt"

// Identifiers used in generated code
const (
	CapabilityName  = "IOCapable"
	MethodName      = "PerformIO"
	ReceiverName    = "v"
	TagFieldName    = "tag"
	TypeParamName   = "T"
	LoopCountName   = "iterations"
	LoopVarName     = "i"
	SinkName        = "sink"
	OpaqueFuncName  = "blackBox"
	OpaqueParamName = "v"
	NoInlineComment = "//go:noinline"
	BuildIgnoreLine = "//go:build ignore"
	GeneratedMarker = "Code generated by dispatchbench. DO NOT EDIT."

	typePrefix       = "Value"
	wrapperPrefix    = "ioWrapper"
	instancePrefix   = "value"
	capabilityPrefix = "capability"
)

// Symbol substrings for classifying `go tool nm` output.
const (
	MethodSymbolPattern  = "." + MethodName
	WrapperSymbolPattern = "main." + wrapperPrefix
)

// TypeName returns the name of the i-th value type.
func TypeName(i int) string {
	return fmt.Sprintf("%s%d", typePrefix, i)
}

// WrapperName returns the name of the j-th call-site wrapper.
func WrapperName(j int) string {
	return fmt.Sprintf("%s%d", wrapperPrefix, j)
}

// InstanceName returns the variable holding the instance of the i-th type.
func InstanceName(i int) string {
	return fmt.Sprintf("%s%d", instancePrefix, i)
}

// CapabilityBindingName returns the interface variable bound to the i-th instance.
func CapabilityBindingName(i int) string {
	return fmt.Sprintf("%s%d", capabilityPrefix, i)
}

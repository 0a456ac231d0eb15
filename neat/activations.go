package neat

import (
	"fmt"
	"math"
	"sort"
)

// ActivationFunc maps a neuron's summed input to its output.
type ActivationFunc func(x float64) float64

// ActivationFunctions maps function names to activation functions.
// This allows configuration to specify activations by name.
var ActivationFunctions = map[string]ActivationFunc{
	"sigmoid":    Sigmoid,
	"tanh":       Tanh,
	"relu":       ReLU,
	"leaky_relu": LeakyReLU,
	"identity":   Identity,
	"gaussian":   Gaussian,
	"sine":       Sine,
	"abs":        Absolute,
	"clamped":    Clamped,
}

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (ActivationFunc, error) {
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// ActivationNames returns the registered names in sorted order.
func ActivationNames() []string {
	names := make([]string, 0, len(ActivationFunctions))
	for name := range ActivationFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// --- Standard Activation Function Implementations ---

// Sigmoid is the logistic function steepened with slope 4.9, which maps
// roughly [-1, 1] onto (0, 1).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-4.9*x))
}

// Tanh activation function.
func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// ReLU (Rectified Linear Unit) activation function.
func ReLU(x float64) float64 {
	return math.Max(0, x)
}

// LeakyReLU passes a 0.01 slope for negative input.
func LeakyReLU(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0.01 * x
}

// Identity activation function (linear).
func Identity(x float64) float64 {
	return x
}

// Gaussian activation function.
func Gaussian(x float64) float64 {
	return math.Exp(-x * x / 2.0)
}

// Sine activation function.
func Sine(x float64) float64 {
	return math.Sin(x)
}

// Absolute value activation function.
func Absolute(x float64) float64 {
	return math.Abs(x)
}

// Clamped activation function (clamps output between -1 and 1).
func Clamped(x float64) float64 {
	return clamp(x, -1.0, 1.0)
}

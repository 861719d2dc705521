// Package guided implements edge-preserving guided filtering of planar frames.
//
// For each selected plane the filter fits, in every local window, a linear
// model output = a·guidance + b by ridge-regularized least squares, smooths
// the coefficient maps and reconstructs the output from the full-resolution
// guidance.
//
// # Pipeline
//
//  1. Normalize resolves every optional parameter into a Params record.
//  2. Frames are promoted to float32 working precision.
//  3. Optionally, input and guidance are downscaled by DownRatio.
//  4. Local means, variance and covariance are estimated with a box or
//     Gaussian window.
//  5. A mode-specific solver derives a and b.
//  6. The coefficients are smoothed, upscaled if needed, applied to the
//     guidance, and the result is restored to the native format.
//
// # Modes
//
//   - ModeOriginal: a = cov / (var + ε).
//   - ModeWeighted: ε is divided by an edge-aware weight built from a
//     small-window variance and its full-plane mean.
//   - ModeGradient: the weighted solution plus a logistic sharpening term
//     driven by the mean and minimum of the weight source.
//
// The weighted modes run in two phases per plane: the full-plane reductions
// of the weight source are computed first and then bound as constants into
// the per-pixel formula.
//
// # Error Handling
//
// Invalid parameters and mismatched guidance return *ConfigurationError
// before any work starts. Numeric degeneracies such as zero local variance
// are absorbed by additive stabilizers rather than reported.
package guided

// Package errors provides the classified error type used across livebuild.
//
// A ClassifiedError carries a category (config, toolchain, deploy, launch, ...),
// a severity and a retry hint, plus free-form context. The CLI adapter maps
// categories onto process exit codes so a failed step is distinguishable from
// a broken configuration by the caller's shell.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryDeploy, "copy artifact").
//		WithContext("src", src).
//		WithContext("dst", dst).
//		Build()
package errors

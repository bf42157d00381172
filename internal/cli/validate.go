package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"declmap/internal/loader"
	"declmap/internal/resolver"
)

// ClassIssue is one resolution failure reported by validate.
type ClassIssue struct {
	Class   string `json:"class"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool         `json:"valid"`
	Classes []string     `json:"classes,omitempty"`
	Issues  []ClassIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <defs-dir>",
		Short: "Validate class definitions",
		Long: `Validate CUE class definitions by resolving every declared class.

Reports configuration errors such as unknown base classes, duplicate
attributes, unsupported generation arguments, ordering without equality,
and required parameters following optional ones.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, defsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	reg, defs, err := loader.LoadDir(defsDir)
	if err != nil {
		var parseErr *loader.ParseError
		if errors.As(err, &parseErr) {
			return outputValidateError(formatter, "E_PARSE", parseErr.Error())
		}
		return outputValidateError(formatter, "E_LOAD", err.Error())
	}

	formatter.VerboseLog("Loaded %d class definition(s) from %s", len(defs), defsDir)

	result := ValidationResult{Valid: true}
	for _, def := range defs {
		formatter.VerboseLog("Resolving class: %s", def.Name)
		result.Classes = append(result.Classes, def.Name)

		if _, err := reg.Resolve(def.Name); err != nil {
			issue := ClassIssue{Class: def.Name, Message: err.Error()}
			var cfgErr *resolver.ConfigError
			if errors.As(err, &cfgErr) {
				issue.Code = cfgErr.Code
			}
			result.Issues = append(result.Issues, issue)
			result.Valid = false
		}
	}

	if !result.Valid {
		return outputValidationIssues(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %d class(es) valid\n", len(result.Classes))
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationIssues outputs resolution failures.
func outputValidationIssues(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    result.Issues[0].Code,
				Message: result.Issues[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(result.Issues)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range result.Issues {
		fmt.Fprintf(formatter.Writer, "  %s\n\n", issue.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(result.Issues)))
}

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"declmap/internal/loader"
	"declmap/internal/model"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <defs-dir> [class]",
		Short: "Show resolved class contracts",
		Long: `Resolve class definitions and print the merged contracts.

With a class argument, shows only that class. Without one, shows every
declared class. The contract includes the merged generation options, the
attribute list in merged order, and the initializer parameter list.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			class := ""
			if len(args) == 2 {
				class = args[1]
			}
			return runDescribe(rootOpts, args[0], class, cmd)
		},
	}

	return cmd
}

func runDescribe(opts *RootOptions, defsDir, class string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	reg, defs, err := loader.LoadDir(defsDir)
	if err != nil {
		_ = formatter.Error("E_LOAD", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	names := make([]string, 0, len(defs))
	if class != "" {
		names = append(names, class)
	} else {
		for _, def := range defs {
			names = append(names, def.Name)
		}
	}

	contracts := make([]*model.ResolvedClassContract, 0, len(names))
	for _, name := range names {
		contract, err := reg.Resolve(name)
		if err != nil {
			_ = formatter.Error("E_RESOLVE", err.Error(), nil)
			return NewExitError(ExitFailure, err.Error())
		}
		contracts = append(contracts, contract)
	}

	if formatter.Format == "json" {
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: contracts})
	}

	for _, contract := range contracts {
		printContract(formatter, contract)
	}
	return nil
}

func printContract(formatter *OutputFormatter, contract *model.ResolvedClassContract) {
	w := formatter.Writer

	fmt.Fprintf(w, "%s", contract.ClassName)
	if contract.QualifiedName != contract.ClassName {
		fmt.Fprintf(w, " (%s)", contract.QualifiedName)
	}
	if contract.Table != "" {
		fmt.Fprintf(w, " -> table %s", contract.Table)
	}
	fmt.Fprintln(w)

	if !contract.Generate {
		fmt.Fprintln(w, "  generation: disabled")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "  options: init=%t repr=%t eq=%t order=%t unsafe_hash=%t\n",
		contract.Options.Init, contract.Options.Repr, contract.Options.Eq,
		contract.Options.Order, contract.Options.UnsafeHash)

	params := make([]string, 0, len(contract.Params))
	for _, p := range contract.Params {
		if p.Optional {
			params = append(params, p.Name+"=...")
		} else {
			params = append(params, p.Name)
		}
	}
	fmt.Fprintf(w, "  init(%s)\n", strings.Join(params, ", "))

	for _, attr := range contract.Attributes {
		var marks []string
		if attr.PrimaryKey {
			marks = append(marks, "pk")
		}
		if !attr.Init {
			marks = append(marks, "no-init")
		}
		if !attr.Repr {
			marks = append(marks, "no-repr")
		}
		if !attr.Compare {
			marks = append(marks, "no-compare")
		}
		if attr.HasDefault {
			marks = append(marks, "default")
		}
		if attr.HasFactory {
			marks = append(marks, "factory")
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = " [" + strings.Join(marks, ", ") + "]"
		}
		fmt.Fprintf(w, "  %-16s %s%s\n", attr.Name, attr.Kind, suffix)
	}
	fmt.Fprintln(w)
}

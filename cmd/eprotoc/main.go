// Command eprotoc is the compiler driver: it walks a source directory,
// analyzes every `.eproto` file, and emits serialize/deserialize source
// plus RPC service descriptors for a target runtime, per §6.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()
	cmd := newRootCmd(ctx)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(ctx context.Context) *cobra.Command {
	opts := &compileOptions{}

	root := &cobra.Command{
		Use:   "eprotoc <sourceDir>",
		Short: "Compile eproto schema files into target-language serializers",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			code := runCompile(ctx, args[0], opts)
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	flags := root.Flags()
	flags.StringVarP(&opts.outputDir, "output", "o", ".", "output root directory")
	flags.StringVarP(&opts.gen, "gen", "g", "native", "emitter: native|evolved|zod|skip|<plugin-path>")
	flags.StringVarP(&opts.definitionsOut, "definitions", "d", "", "dump resolved definitions as JSON (stdout if bare)")
	flags.Lookup("definitions").NoOptDefVal = "-"
	flags.StringVarP(&opts.astOut, "ast", "a", "", "dump parsed AST as JSON (stdout if bare)")
	flags.Lookup("ast").NoOptDefVal = "-"
	return root
}

type compileOptions struct {
	outputDir      string
	gen            string
	definitionsOut string
	astOut         string
}

func dumpTo(path, content string) error {
	if path == "" {
		return nil
	}
	if path == "-" {
		_, err := fmt.Fprint(os.Stdout, content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

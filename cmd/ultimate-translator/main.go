// Command ultimate-translator translates JSON documents field by field,
// manages classification rules, the translation cache and review decisions.
//
// Usage:
//
//	ultimate-translator translate page.json --lang es --lang ja
//	ultimate-translator approve --document page-1 --field title --original Hello --translated Hola --target es
//	ultimate-translator rules validate rules.yaml
//	ultimate-translator cache export cache.json
//	ultimate-translator version
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           translator.Name,
		Short:         translator.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "ultimate-translator.yaml", "configuration file")
	pf.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&g.apiKey, "api-key", "", "provider API key (default: <PROVIDER>_API_KEY env, then credentials file)")
	pf.StringVar(&g.credentialsFile, "credentials", "", "YAML file mapping provider names to API keys")

	root.AddCommand(translateCmd(g))
	root.AddCommand(approveCmd(g))
	root.AddCommand(rulesCmd(g))
	root.AddCommand(cacheCmd(g))
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", translator.Name, translator.FullVersion())
			if translator.BuildDate != "unknown" && translator.BuildDate != "" {
				fmt.Fprintf(out, "  built:   %s\n", translator.BuildDate)
			}
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashokgit/Ultimate-Translator-sub000/classify"
)

func rulesCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect classification rules and learned patterns",
	}
	cmd.AddCommand(rulesValidateCmd(), rulesLearnedCmd(g), rulesResetCmd(g))
	return cmd
}

func rulesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a rule file for malformed patterns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := classify.NewRegistry()
			diags, err := reg.LoadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range diags {
				fmt.Fprintf(out, "  ! %v\n", d)
			}
			tenants := reg.Tenants()
			fmt.Fprintf(out, "%s: %d tenant rule set(s)", args[0], len(tenants))
			if len(tenants) > 0 {
				fmt.Fprintf(out, " %v", tenants)
			}
			fmt.Fprintln(out)
			if len(diags) > 0 {
				return fmt.Errorf("%d rule(s) rejected", len(diags))
			}
			return nil
		},
	}
}

func rulesLearnedCmd(g *globals) *cobra.Command {
	var tenant string
	cmd := &cobra.Command{
		Use:   "learned",
		Short: "List the key patterns learned for a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			d := a.detector()
			if d == nil {
				return fmt.Errorf("auto-detection is disabled")
			}
			if err := d.Load(cmd.Context(), tenant); err != nil {
				return err
			}
			st := d.State(tenant)
			out := cmd.OutOrStdout()
			for _, p := range d.Learned(tenant) {
				fmt.Fprintf(out, "%-30s seen %d, confidence %.2f\n",
					p, st.PatternFrequency[p], classify.Confidence(p, st.PatternFrequency[p]))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "tenant")
	return cmd
}

func rulesResetCmd(g *globals) *cobra.Command {
	var tenant string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget everything learned for a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			d := a.detector()
			if d == nil {
				return fmt.Errorf("auto-detection is disabled")
			}
			if err := d.Reset(cmd.Context(), tenant); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "learning state reset for tenant %q\n", tenant)
			return nil
		},
	}
	cmd.Flags().StringVarP(&tenant, "tenant", "t", "", "tenant")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	translator "github.com/ashokgit/Ultimate-Translator-sub000"
	"github.com/ashokgit/Ultimate-Translator-sub000/cache"
)

func cacheCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Export or import the translation cache",
	}
	cmd.AddCommand(cacheExportCmd(g), cacheImportCmd(g))
	return cmd
}

func cacheExportCmd(g *globals) *cobra.Command {
	var langs []string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write every cached translation to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			c, err := a.translationCache(cmd.Context())
			if err != nil {
				return err
			}
			enum, ok := c.(cache.Enumerable)
			if !ok {
				return fmt.Errorf("cache backend %q cannot list its entries", a.cfg.Cache.Backend)
			}
			meta := map[string]string{
				"backend": a.cfg.Cache.Backend,
				"source":  a.cfg.SourceLang,
				"tool":    translator.UserAgent(),
			}
			if err := cache.NewExporter(enum).Languages(langs...).ExportToFile(cmd.Context(), args[0], meta); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported cache to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&langs, "lang", "l", nil, "only export these target languages")
	return cmd
}

func cacheImportCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load translations from an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			c, err := a.translationCache(cmd.Context())
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("caching is disabled")
			}
			res, err := cache.NewImporter(c).ImportFromFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d, failed %d\n", res.Imported, res.Skipped, res.Failed)
			return nil
		},
	}
}

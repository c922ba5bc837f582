package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ashokgit/Ultimate-Translator-sub000/approval"
)

func approveCmd(g *globals) *cobra.Command {
	var req approval.Request
	var status, file string

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Record a review decision and spread it to duplicate content",
		Long: `Record a review decision for one translated field. Every indexed document
holding the same original and translated text gets the same decision at the
same field path. With --file, a JSON array of decisions is applied in order;
a failing item does not stop the others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			prop, _, err := a.propagator(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)

			if file != "" {
				reqs, err := readRequests(file)
				if err != nil {
					return err
				}
				return reportBulk(cmd, enc, prop.RecordApprovals(cmd.Context(), reqs))
			}

			req.Status = approval.Status(status)
			if req.SourceLang == "" {
				req.SourceLang = a.cfg.SourceLang
			}
			rec, err := prop.RecordApproval(cmd.Context(), req)
			if rec != nil {
				if encErr := enc.Encode(rec); encErr != nil {
					return encErr
				}
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.DocumentID, "document", "", "document id")
	f.StringVar(&req.FieldPath, "field", "", "field path, e.g. places[0].name")
	f.StringVar(&req.OriginalText, "original", "", "source text")
	f.StringVar(&req.TranslatedText, "translated", "", "translated text")
	f.StringVar(&req.SourceLang, "source", "", "source language (default: configured source_lang)")
	f.StringVar(&req.TargetLang, "target", "", "target language")
	f.StringVar(&req.Reviewer, "reviewer", os.Getenv("USER"), "reviewer name")
	f.StringVar(&status, "status", string(approval.StatusApproved), "approved, rejected or pending")
	f.StringVar(&file, "file", "", "JSON file holding an array of decisions")

	cmd.AddCommand(approvalsShowCmd(g))
	return cmd
}

func readRequests(path string) ([]approval.Request, error) {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("reading decisions: %w", err)
	}
	var reqs []approval.Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("parsing decisions %s: %w", path, err)
	}
	return reqs, nil
}

func reportBulk(cmd *cobra.Command, enc *json.Encoder, results []approval.BulkResult) error {
	type item struct {
		Index       int    `json:"index"`
		ContentHash string `json:"content_hash,omitempty"`
		Documents   int    `json:"documents"`
		Error       string `json:"error,omitempty"`
	}
	out := make([]item, len(results))
	failed := 0
	for i, r := range results {
		out[i] = item{Index: r.Index}
		if r.Record != nil {
			out[i].ContentHash = r.Record.ContentHash
			out[i].Documents = len(r.Record.DocumentRefs)
		}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			failed++
		}
	}
	if err := enc.Encode(out); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d decisions failed", failed, len(results))
	}
	return nil
}

func approvalsShowCmd(g *globals) *cobra.Command {
	var docID, lang string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the field approvals of a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if docID == "" || lang == "" {
				return errors.New("--document and --lang are required")
			}
			a, err := newApp(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			_, docs, err := a.propagator(cmd.Context())
			if err != nil {
				return err
			}
			fas, err := docs.FieldApprovals(cmd.Context(), docID, lang)
			if err != nil {
				return err
			}

			paths := make([]string, 0, len(fas))
			for p := range fas {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			out := cmd.OutOrStdout()
			for _, p := range paths {
				fa := fas[p]
				fmt.Fprintf(out, "%-30s %-9s %s %s\n", p, fa.Status, fa.ReviewedBy, fa.ReviewedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&docID, "document", "", "document id")
	cmd.Flags().StringVar(&lang, "lang", "", "target language")
	return cmd
}

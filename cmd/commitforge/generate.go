package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/roivaz/commitforge/internal/commit"
	"github.com/roivaz/commitforge/internal/commitgen"
	"github.com/roivaz/commitforge/internal/gitrepo"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a commit message for the staged changes",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().String("repo-path", ".", "Path to the git repository")
	generateCmd.Flags().StringP("output", "o", "text", "Output format: text, json or yaml")
	generateCmd.Flags().Bool("commit", false, "Run git commit with the generated message")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	repoPath, _ := cmd.Flags().GetString("repo-path")
	output, _ := cmd.Flags().GetString("output")
	doCommit, _ := cmd.Flags().GetBool("commit")

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	repo := gitrepo.New(gitrepo.RepoConfig{Path: repoPath})

	files, err := repo.StagedFiles(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("nothing staged; run git add first")
	}
	diff, err := repo.StagedDiff(ctx)
	if err != nil {
		return err
	}
	top, err := repo.Toplevel(ctx)
	if err != nil {
		return err
	}

	msg := commitgen.New(a.gateway, nil, a.log).Generate(ctx, commitgen.Request{
		Repo:   filepath.Base(top),
		Author: repo.UserName(ctx),
		Files:  files,
		Diff:   diff,
	})
	if err := writeMessage(cmd.OutOrStdout(), msg, output); err != nil {
		return err
	}

	if doCommit {
		out, err := repo.Commit(ctx, commit.ToConventional(msg))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.ErrOrStderr(), out)
	}
	return nil
}

func writeMessage(w io.Writer, msg commit.Message, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		_, err := fmt.Fprintln(w, commit.ToConventional(msg))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(msg)
	case "yaml":
		out, err := yaml.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roivaz/commitforge/internal/commit"
	"github.com/roivaz/commitforge/internal/github"
	"github.com/roivaz/commitforge/internal/gitrepo"
	"github.com/roivaz/commitforge/internal/prdesc"
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Build a pull request description from commit messages",
	Example: `  commitforge pr --range main..HEAD
  commitforge pr --github https://github.com/owner/repo --number 42 --polish`,
	RunE: runPR,
}

func init() {
	prCmd.Flags().String("range", "", "Local revision range, e.g. main..HEAD")
	prCmd.Flags().String("repo-path", ".", "Path to the git repository used with --range")
	prCmd.Flags().String("github", "", "GitHub repository URL or owner/name")
	prCmd.Flags().Int("number", 0, "Pull request number used with --github")
	prCmd.Flags().Bool("polish", false, "Polish the description with the model")
	prCmd.MarkFlagsMutuallyExclusive("range", "github")
	prCmd.MarkFlagsRequiredTogether("github", "number")
}

func runPR(cmd *cobra.Command, args []string) error {
	rangeSpec, _ := cmd.Flags().GetString("range")
	repoPath, _ := cmd.Flags().GetString("repo-path")
	ghRepo, _ := cmd.Flags().GetString("github")
	number, _ := cmd.Flags().GetInt("number")
	polish, _ := cmd.Flags().GetBool("polish")

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var commits []commit.Message
	switch {
	case ghRepo != "":
		repo, err := github.ParseRepository(ghRepo)
		if err != nil {
			return err
		}
		commits, err = a.github().PullRequestCommits(ctx, repo, number)
		if err != nil {
			return err
		}
	case rangeSpec != "":
		log, err := gitrepo.New(gitrepo.RepoConfig{Path: repoPath}).CommitLog(ctx, rangeSpec)
		if err != nil {
			return err
		}
		commits = commit.ParseLog(log)
	default:
		return errors.New("either --range or --github with --number is required")
	}

	md := prdesc.NewBuilder(a.gateway, nil, a.log).Build(ctx, commits, polish)
	_, err = fmt.Fprint(cmd.OutOrStdout(), md)
	return err
}

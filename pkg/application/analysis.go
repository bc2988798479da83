package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"

	"github.com/leadmate/leadmate/pkg/domain/analytics"
)

// AnalysisService powers the repository-analysis view: it pulls commit
// activity from GitHub and buckets it into the sparse daily histogram.
type AnalysisService struct {
	gh *github.Client
}

// NewAnalysisService creates the service. An empty token falls back to
// unauthenticated access, which is enough for public repositories.
func NewAnalysisService(ctx context.Context, token string) *AnalysisService {
	if token == "" {
		return &AnalysisService{gh: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &AnalysisService{gh: github.NewClient(oauth2.NewClient(ctx, ts))}
}

// NewAnalysisServiceWithClient creates the service over a prebuilt
// GitHub client (for testing).
func NewAnalysisServiceWithClient(gh *github.Client) *AnalysisService {
	return &AnalysisService{gh: gh}
}

// Commits fetches commit activity for a repository since the given
// time, following pagination.
func (s *AnalysisService) Commits(ctx context.Context, owner, repo string, since time.Time) ([]analytics.Commit, error) {
	opts := &github.CommitsListOptions{
		Since:       since,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var out []analytics.Commit
	for {
		commits, resp, err := s.gh.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list commits %s/%s: %w", owner, repo, err)
		}
		for _, rc := range commits {
			c := analytics.Commit{SHA: rc.GetSHA()}
			if commit := rc.GetCommit(); commit != nil {
				c.Message = commit.GetMessage()
				if author := commit.GetAuthor(); author != nil {
					c.Author = author.GetName()
					c.Timestamp = author.GetDate().Time
				}
			}
			out = append(out, c)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// Histogram fetches commit activity and returns the daily histogram.
func (s *AnalysisService) Histogram(ctx context.Context, owner, repo string, since time.Time) ([]analytics.DayCount, error) {
	commits, err := s.Commits(ctx, owner, repo, since)
	if err != nil {
		return nil, err
	}
	return analytics.CommitHistogram(commits), nil
}

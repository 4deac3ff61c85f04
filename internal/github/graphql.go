package github

import (
	"context"
	stderrors "errors"
	"net/url"
	"sort"
	"time"

	"github.com/HartBrook/folio/internal/errors"
	"github.com/cenkalti/backoff/v4"
	"github.com/cli/go-gh/v2/pkg/api"
)

// CalendarDays is the length of the contribution window.
const CalendarDays = 14

const contributionsQuery = `query($login: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $login) {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

type calendarResponse struct {
	User *struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				Weeks []struct {
					ContributionDays []struct {
						Date              string `json:"date"`
						ContributionCount int    `json:"contributionCount"`
					} `json:"contributionDays"`
				} `json:"weeks"`
			} `json:"contributionCalendar"`
		} `json:"contributionsCollection"`
	} `json:"user"`
}

// FetchContributionCalendar returns the account's daily contribution counts for
// the last CalendarDays days, oldest first. It needs a credential and returns
// AUTH_REQUIRED without calling out when none is configured.
func (c *Client) FetchContributionCalendar(ctx context.Context, account string) ([]ContributionDay, error) {
	const endpoint = "graphql/contributionCalendar"

	if c.graphql == nil {
		return nil, errors.AuthRequired("contribution calendar")
	}

	now := c.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	vars := map[string]interface{}{
		"login": account,
		"from":  today.AddDate(0, 0, -(CalendarDays - 1)).Format(time.RFC3339),
		"to":    now.Format(time.RFC3339),
	}

	var response calendarResponse
	op := func() error {
		response = calendarResponse{}
		err := c.graphql.DoWithContext(ctx, contributionsQuery, vars, &response)
		if err == nil {
			return nil
		}
		err = classifyGraphQL(endpoint, err)
		if errors.Is(err, errors.ErrNetwork) && ctx.Err() == nil {
			return err
		}
		return backoff.Permanent(err)
	}
	if err := c.retry(ctx, endpoint, op); err != nil {
		return nil, err
	}

	if response.User == nil {
		return nil, errors.NotFound("user " + account)
	}

	var days []ContributionDay
	for _, w := range response.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, d := range w.ContributionDays {
			days = append(days, ContributionDay{Date: d.Date, Count: d.ContributionCount})
		}
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

// classifyGraphQL maps go-gh errors onto the failure taxonomy.
func classifyGraphQL(endpoint string, err error) error {
	var httpErr *api.HTTPError
	if stderrors.As(err, &httpErr) {
		if classified := classify(endpoint, httpErr.StatusCode, httpErr.Headers); classified != nil {
			return classified
		}
		return errors.NetworkError(endpoint, err)
	}

	var gqlErr *api.GraphQLError
	if stderrors.As(err, &gqlErr) {
		for _, item := range gqlErr.Errors {
			switch item.Type {
			case "RATE_LIMITED":
				return errors.RateLimited(endpoint, time.Time{})
			case "NOT_FOUND":
				return errors.NotFound(endpoint)
			case "FORBIDDEN":
				return errors.AuthRequired(endpoint)
			}
		}
		return errors.MalformedResponse(endpoint, err)
	}

	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		return errors.NetworkError(endpoint, err)
	}
	return errors.MalformedResponse(endpoint, err)
}

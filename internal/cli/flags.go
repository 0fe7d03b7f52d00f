package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/opsdash/internal/api"
	"github.com/rileyhilliard/opsdash/internal/errors"
	"github.com/rileyhilliard/opsdash/internal/util"
)

// ParseDurationFlag parses a duration flag value. Returns zero duration if
// the flag is empty.
func ParseDurationFlag(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid --%s", value, name),
			"Try something like 5s, 2m, or 500ms.")
	}
	if d < 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s can't be negative", name),
			"Try something like 5s, 2m, or 500ms.")
	}
	return d, nil
}

var knownFeeds = []string{api.FeedMetrics, api.FeedSync}

// ParseFeeds validates a list of feed names ("metrics", "sync"), accepting
// comma-separated values.
func ParseFeeds(values []string) ([]string, error) {
	var feeds []string
	for _, v := range values {
		for _, f := range strings.Split(v, ",") {
			f = strings.ToLower(strings.TrimSpace(f))
			switch f {
			case "":
				continue
			case api.FeedMetrics, api.FeedSync:
				feeds = append(feeds, f)
			default:
				suggestion := "Use 'metrics' or 'sync'."
				if similar := util.SuggestSimilar(f, knownFeeds, 3); len(similar) > 0 {
					suggestion = fmt.Sprintf("Did you mean '%s'?", similar[0])
				}
				return nil, errors.New(errors.ErrConfig,
					fmt.Sprintf("Unknown feed '%s'", f), suggestion)
			}
		}
	}
	return feeds, nil
}

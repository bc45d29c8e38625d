package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hashicorp-forge/notion-mirror/pkg/notion"
)

// GetUsers returns every user in the workspace, including bots.
func (c *Connector) GetUsers(ctx context.Context) ([]notion.User, error) {
	c.requireFileCacheHandler()

	raw, err := paginate(ctx, func(ctx context.Context, cursor string) (page[apiUser], error) {
		q := url.Values{}
		q.Set("page_size", strconv.Itoa(100))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}

		var resp apiList[apiUser]
		if err := c.doRequest(ctx, http.MethodGet, "/v1/users", q, nil, &resp); err != nil {
			return page[apiUser]{}, err
		}
		return page[apiUser]{
			results: resp.Results,
			hasMore: resp.HasMore,
			cursor:  derefCursor(resp.NextCursor),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	users := make([]notion.User, 0, len(raw))
	for _, u := range raw {
		user := notion.User{NotionID: u.ID, IsBot: u.Type == "bot"}
		if u.Name != nil {
			user.Name = *u.Name
		}
		if u.AvatarURL != nil && *u.AvatarURL != "" {
			avatar, err := c.mapFile(ctx, &apiFile{
				Type:     "external",
				External: &apiExternal{URL: *u.AvatarURL},
			})
			if err != nil {
				return nil, fmt.Errorf("error caching avatar of user %q: %w", u.ID, err)
			}
			user.Avatar = avatar
		}
		users = append(users, user)
	}
	return users, nil
}

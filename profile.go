package kaapi

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/jamesprial/go-ka-api-wrapper/internal"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
)

const (
	userProgramsPath = "api/internal/user/scratchpads"

	// DefaultProgramLimit is the limit used by the program listings when none is given.
	DefaultProgramLimit = 10000
)

// GetProfileInfo retrieves the full profile of a user, given their kaid or username.
// A zero session fetches the public profile.
func (c *Client) GetProfileInfo(ctx context.Context, session cookies.Session, user string) (*types.FullUserProfile, error) {
	if err := internal.ValidateUser(user); err != nil {
		return nil, err
	}

	variables := map[string]string{"username": user}
	if strings.HasPrefix(user, "kaid_") {
		variables = map[string]string{"kaid": user}
	}

	var profile types.FullUserProfile
	if err := c.graphQL(ctx, session, "getFullUserProfile", internal.GetFullUserProfileQuery, variables, englishParams(), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileWidgets retrieves the widgets shown on a user's profile page, such
// as their statistics and featured programs.
func (c *Client) GetProfileWidgets(ctx context.Context, session cookies.Session, kaid string) (*types.ProfileWidgets, error) {
	if err := internal.ValidateKaid(kaid); err != nil {
		return nil, err
	}

	var widgets types.ProfileWidgets
	if err := c.graphQL(ctx, session, "getProfileWidgets", internal.GetProfileWidgetsQuery, map[string]string{"kaid": kaid}, englishParams(), &widgets); err != nil {
		return nil, err
	}
	return &widgets, nil
}

// AvatarDataForProfile retrieves the avatar of a user.
func (c *Client) AvatarDataForProfile(ctx context.Context, session cookies.Session, kaid string) (*types.AvatarData, error) {
	if err := internal.ValidateKaid(kaid); err != nil {
		return nil, err
	}

	var avatar types.AvatarData
	if err := c.graphQL(ctx, session, "avatarDataForProfile", internal.AvatarDataForProfileQuery, map[string]string{"kaid": kaid}, englishParams(), &avatar); err != nil {
		return nil, err
	}
	return &avatar, nil
}

// GetUserPrograms lists the public programs of a user, given their kaid or username.
// A zero sort means most votes and a zero limit means DefaultProgramLimit.
func (c *Client) GetUserPrograms(ctx context.Context, user string, sort types.SortType, limit int) (*types.ScratchpadList, error) {
	if err := internal.ValidateUser(user); err != nil {
		return nil, err
	}
	sort, limit, err := listingDefaults(sort, limit)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("sort", strconv.Itoa(int(sort)))
	q.Set("limit", strconv.Itoa(limit))
	if strings.HasPrefix(user, "kaid_") {
		q.Set("kaid", user)
	} else {
		q.Set("username", user)
	}

	var list types.ScratchpadList
	if err := c.getJSON(ctx, cookies.Session{}, "getUserPrograms", userProgramsPath+"?"+q.Encode(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetUserProgramsAuthenticated lists a user's programs as seen by the logged-in
// session. Comparing the result with GetUserPrograms reveals programs hidden
// from the public listing.
func (c *Client) GetUserProgramsAuthenticated(ctx context.Context, session cookies.Session, kaid string, sort types.SortType, limit int) (*types.ScratchpadList, error) {
	if err := internal.ValidateKaid(kaid); err != nil {
		return nil, err
	}
	sort, limit, err := listingDefaults(sort, limit)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("casing", "camel")
	q.Set("kaid", kaid)
	q.Set("sort", strconv.Itoa(int(sort)))
	q.Set("page", "0")
	q.Set("limit", strconv.Itoa(limit))

	var list types.ScratchpadList
	if err := c.getJSON(ctx, session, "getUserProgramsAuthenticated", userProgramsPath+"?"+q.Encode(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// listingDefaults fills in and validates the sort and limit of a listing.
func listingDefaults(sort types.SortType, limit int) (types.SortType, int, error) {
	if sort == 0 {
		sort = types.SortMostVotes
	}
	if err := internal.ValidateSort(sort); err != nil {
		return 0, 0, err
	}
	if err := internal.ValidateLimit(limit); err != nil {
		return 0, 0, err
	}
	if limit == 0 {
		limit = DefaultProgramLimit
	}
	return sort, limit, nil
}

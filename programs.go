package kaapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"dario.cat/mergo"

	"github.com/jamesprial/go-ka-api-wrapper/internal"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
)

const (
	scratchpadsPath = "api/internal/scratchpads"

	defaultProgramTitle  = "New program"
	defaultTopicID       = "xffde7c31"
	defaultTopicSlug     = "computer-programming"
	programConfigVersion = 4

	// defaultImageURL is the 1x1 thumbnail the web editor sends before a
	// screenshot of the canvas exists.
	defaultImageURL = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="
)

// GetProgramJSON retrieves a program. A non-nil projection limits the fields
// returned, for example types.Projection{"title": 1, "revision": types.Projection{"code": 1}}.
func (c *Client) GetProgramJSON(ctx context.Context, id string, projection types.Projection) (*types.Program, error) {
	if err := internal.ValidateProgramID(id); err != nil {
		return nil, err
	}

	ref, err := programRef(id, projection)
	if err != nil {
		return nil, err
	}

	var program types.Program
	if err := c.getJSON(ctx, cookies.Session{}, "getProgramJSON", ref, &program); err != nil {
		return nil, err
	}
	return &program, nil
}

// ShowScratchpad retrieves a program together with its author and discussion settings.
func (c *Client) ShowScratchpad(ctx context.Context, id string) (*types.ShowScratchpad, error) {
	if err := internal.ValidateProgramID(id); err != nil {
		return nil, err
	}

	ref := "api/internal/show_scratchpad?" + url.Values{"scratchpad_id": {id}}.Encode()

	var show types.ShowScratchpad
	if err := c.getJSON(ctx, cookies.Session{}, "showScratchpad", ref, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

// NewProgram creates a program owned by the session's user. An empty programType
// means types.ProgramTypePJS. settings are deep-merged over the generated payload,
// so {"title": "Snake"} renames the program and {"revision": {"folds": ...}}
// touches only the revision.
func (c *Client) NewProgram(ctx context.Context, session cookies.Session, code string, settings types.ProgramSettings, programType types.ProgramType) (*types.Program, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if programType == "" {
		programType = types.ProgramTypePJS
	}
	if err := internal.ValidateProgramType(programType); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"title":                   defaultProgramTitle,
		"translatedTitle":         defaultProgramTitle,
		"category":                nil,
		"difficulty":              nil,
		"tags":                    []any{},
		"userAuthoredContentType": string(programType),
		"topicId":                 defaultTopicID,
		"revision": map[string]any{
			"code":           code,
			"editor_type":    "ace_" + string(programType),
			"folds":          []any{},
			"image_url":      defaultImageURL,
			"config_version": programConfigVersion,
			"topic_slug":     defaultTopicSlug,
		},
	}
	if err := mergeSettings(payload, settings); err != nil {
		return nil, err
	}

	return c.writeProgram(ctx, "newProgram", http.MethodPost, session, c.programWriteRef(""), payload)
}

// SpinOffProgram creates a spin-off of the program id. original may carry the
// already fetched program; when nil it is fetched first.
func (c *Client) SpinOffProgram(ctx context.Context, session cookies.Session, id, code string, settings types.ProgramSettings, original *types.Program) (*types.Program, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := internal.ValidateProgramID(id); err != nil {
		return nil, err
	}
	originID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, &kaerrors.ArgumentError{Field: "programID", Err: err}
	}

	if original == nil {
		original, err = c.GetProgramJSON(ctx, id, nil)
		if err != nil {
			return nil, err
		}
	}
	if original.Revision == nil {
		return nil, &kaerrors.NotFoundError{Kind: "revision of program", Name: id}
	}

	editorType := "ace_" + string(types.ProgramTypePJS)
	if original.UserAuthoredContentType.Valid() {
		editorType = "ace_" + string(original.UserAuthoredContentType)
	}

	payload := map[string]any{
		"title":                defaultProgramTitle,
		"originRevisionId":     original.Revision.ID,
		"originScratchpadId":   originID,
		"originScratchpadKind": "Scratchpad",
		"revision": map[string]any{
			"code":             code,
			"editor_type":      editorType,
			"editorType":       editorType,
			"folds":            []any{},
			"image_url":        defaultImageURL,
			"mp3Url":           "",
			"translatedMp3Url": nil,
			"youtubeId":        nil,
			"playback":         "",
			"tests":            "",
			"config_version":   programConfigVersion,
			"configVersion":    programConfigVersion,
			"topic_slug":       defaultTopicSlug,
		},
	}
	if err := mergeSettings(payload, settings); err != nil {
		return nil, err
	}

	return c.writeProgram(ctx, "spinOffProgram", http.MethodPost, session, c.programWriteRef(""), payload)
}

// UpdateProgram replaces the code of the program id. current may carry the
// already fetched program; when nil the full program is fetched first so no
// server field is dropped from the update.
func (c *Client) UpdateProgram(ctx context.Context, session cookies.Session, id, code string, settings types.ProgramSettings, current *types.Program) (*types.Program, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := internal.ValidateProgramID(id); err != nil {
		return nil, err
	}
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, &kaerrors.ArgumentError{Field: "programID", Err: err}
	}

	var existing map[string]any
	if current == nil {
		ref, err := programRef(id, nil)
		if err != nil {
			return nil, err
		}
		if err := c.getJSON(ctx, cookies.Session{}, "getProgramJSON", ref, &existing); err != nil {
			return nil, err
		}
	} else {
		existing, err = toMap(current)
		if err != nil {
			return nil, err
		}
	}

	payload := programDefaults()
	for k, v := range existing {
		payload[k] = v
	}

	revision := programDefaults()["revision"].(map[string]any)
	if rev, ok := existing["revision"].(map[string]any); ok {
		for k, v := range rev {
			revision[k] = v
		}
	}
	revision["code"] = code

	now := c.now().UTC()
	payload["relativeUrl"] = "/computer-programming/_/" + id
	payload["id"] = numericID
	payload["date"] = now.Format("2006-01-02T15:04:05") + "Z"
	payload["revision"] = revision
	payload["trustedRevision"] = map[string]any{"created": c.clientDT()}

	if err := mergeSettings(payload, settings); err != nil {
		return nil, err
	}

	return c.writeProgram(ctx, "updateProgram", http.MethodPut, session, c.programWriteRef(id), payload)
}

// DeleteProgram deletes the program id.
func (c *Client) DeleteProgram(ctx context.Context, session cookies.Session, id string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := internal.ValidateProgramID(id); err != nil {
		return err
	}

	resp, err := c.send(ctx, "deleteProgram", http.MethodDelete, session, c.programWriteRef(id), nil)
	if err != nil {
		return err
	}
	return c.parser.ParseResponse("deleteProgram", resp, nil)
}

// GetSpinoffs lists the spin-offs of the program id.
// A zero sort means most votes and a zero limit means DefaultProgramLimit.
func (c *Client) GetSpinoffs(ctx context.Context, id string, sort types.SortType, limit int) (*types.ScratchpadList, error) {
	if err := internal.ValidateProgramID(id); err != nil {
		return nil, err
	}
	sort, limit, err := listingDefaults(sort, limit)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("casing", "camel")
	q.Set("sort", strconv.Itoa(int(sort)))
	q.Set("page", "0")
	q.Set("limit", strconv.Itoa(limit))
	ref := fmt.Sprintf("%s/Scratchpad:%s/top-forks?%s", scratchpadsPath, id, q.Encode())

	var list types.ScratchpadList
	if err := c.getJSON(ctx, cookies.Session{}, "getSpinoffs", ref, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) writeProgram(ctx context.Context, operation, method string, session cookies.Session, ref string, payload map[string]any) (*types.Program, error) {
	resp, err := c.send(ctx, operation, method, session, ref, payload)
	if err != nil {
		return nil, err
	}

	var program types.Program
	if err := c.parser.ParseResponse(operation, resp, &program); err != nil {
		return nil, err
	}
	return &program, nil
}

// programWriteRef is the endpoint programs are created at (empty id) or
// updated and deleted at.
func (c *Client) programWriteRef(id string) string {
	q := url.Values{}
	q.Set("client_dt", c.clientDT())
	q.Set("lang", "en")

	path := scratchpadsPath
	if id != "" {
		path += "/" + id
	}
	return path + "?" + q.Encode()
}

func programRef(id string, projection types.Projection) (string, error) {
	ref := scratchpadsPath + "/" + id
	if projection == nil {
		return ref, nil
	}
	encoded, err := json.Marshal(projection)
	if err != nil {
		return "", &kaerrors.ArgumentError{Field: "projection", Err: err}
	}
	return ref + "?" + url.Values{"projection": {string(encoded)}}.Encode(), nil
}

// programDefaults is the baseline every program update starts from.
func programDefaults() map[string]any {
	return map[string]any{
		"title":                   defaultProgramTitle,
		"translatedTitle":         defaultProgramTitle,
		"category":                nil,
		"difficulty":              nil,
		"tags":                    []any{},
		"userAuthoredContentType": string(types.ProgramTypePJS),
		"revision": map[string]any{
			"code":          "",
			"folds":         []any{},
			"image_url":     defaultImageURL,
			"configVersion": programConfigVersion,
			"topic_slug":    defaultTopicSlug,
		},
	}
}

// mergeSettings deep-merges settings over payload. Settings win on conflicts.
func mergeSettings(payload map[string]any, settings types.ProgramSettings) error {
	if len(settings) == 0 {
		return nil
	}
	overrides, err := toMap(settings)
	if err != nil {
		return err
	}
	if err := mergo.Merge(&payload, overrides, mergo.WithOverride); err != nil {
		return &kaerrors.ArgumentError{Field: "settings", Err: err}
	}
	return nil
}

// toMap converts v to its generic JSON form so nested objects become
// map[string]any and merge key by key.
func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &kaerrors.ArgumentError{Field: "settings", Err: err}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &kaerrors.ArgumentError{Field: "settings", Err: err}
	}
	return m, nil
}

package types

import "encoding/json"

// ProgramType is the editor flavor of a program.
type ProgramType string

const (
	ProgramTypePJS     ProgramType = "pjs"
	ProgramTypeWebpage ProgramType = "webpage"
	ProgramTypeSQL     ProgramType = "sql"
)

// ValidProgramTypes lists every program type Khan Academy accepts.
var ValidProgramTypes = []ProgramType{ProgramTypePJS, ProgramTypeWebpage, ProgramTypeSQL}

// Valid reports whether t is one of ValidProgramTypes.
func (t ProgramType) Valid() bool {
	for _, v := range ValidProgramTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Projection selects fields of a program JSON response. Values are 1, true, or a
// nested Projection for the revision.
type Projection map[string]any

// ProgramSettings are caller overrides deep-merged onto a generated program
// payload. Keys use the wire names, such as "title" or "revision".
type ProgramSettings map[string]any

// Revision is one saved version of a program's code.
type Revision struct {
	ID               int64           `json:"id"`
	Code             string          `json:"code"`
	Created          Timestamp       `json:"created"`
	Folds            [][2]int        `json:"folds"`
	Tests            json.RawMessage `json:"tests"`
	TranslatedMp3URL *string         `json:"translatedMp3Url"`
	HasAudio         bool            `json:"hasAudio"`
	Mp3URL           *string         `json:"mp3Url"`
	EditorType       string          `json:"editorType"`
	Playback         json.RawMessage `json:"playback"`
	YoutubeID        *string         `json:"youtubeId"`
	ConfigVersion    int             `json:"configVersion"`
}

// Program is the scratchpad JSON returned by api/internal/scratchpads/{id}.
type Program struct {
	ID                      ProgramID       `json:"id"`
	Key                     string          `json:"key"`
	Kaid                    string          `json:"kaid"`
	Title                   string          `json:"title"`
	TranslatedTitle         string          `json:"translatedTitle"`
	Description             string          `json:"description"`
	TranslatedDescription   string          `json:"translatedDescription"`
	URL                     string          `json:"url"`
	RelativeURL             string          `json:"relativeUrl"`
	ImageURL                string          `json:"imageUrl"`
	ImagePath               string          `json:"imagePath"`
	Created                 Timestamp       `json:"created"`
	Date                    Timestamp       `json:"date"`
	Width                   int             `json:"width"`
	Height                  int             `json:"height"`
	Kind                    string          `json:"kind"`
	ContentKind             string          `json:"contentKind"`
	UserAuthoredContentType ProgramType     `json:"userAuthoredContentType"`
	OriginScratchpadID      ProgramID       `json:"originScratchpadId"`
	OriginRevisionID        *int64          `json:"originRevisionId"`
	OriginSimilarity        float64         `json:"originSimilarity"`
	SpinoffCount            int             `json:"spinoffCount"`
	SumVotesIncremented     int             `json:"sumVotesIncremented"`
	IsProject               bool            `json:"isProject"`
	IsChallenge             bool            `json:"isChallenge"`
	IsPublished             bool            `json:"isPublished"`
	ByChild                 bool            `json:"byChild"`
	HideFromHotlist         bool            `json:"hideFromHotlist"`
	Flags                   []string        `json:"flags"`
	Tags                    json.RawMessage `json:"tags"`
	Revision                *Revision       `json:"revision"`
}

// CreatorProfile describes the author of a program in a show_scratchpad response.
type CreatorProfile struct {
	Kaid               string `json:"kaid"`
	Nickname           string `json:"nickname"`
	Username           string `json:"username"`
	Bio                string `json:"bio"`
	AvatarSrc          string `json:"avatarSrc"`
	ProfileRoot        string `json:"profileRoot"`
	Points             int64  `json:"points"`
	IsPublic           bool   `json:"isPublic"`
	IsPhantom          bool   `json:"isPhantom"`
	IsOrphan           bool   `json:"isOrphan"`
	IsMidsignupPhantom bool   `json:"isMidsignupPhantom"`
}

// ShowScratchpad is the program page payload returned by api/internal/show_scratchpad.
type ShowScratchpad struct {
	Scratchpad     *Program        `json:"scratchpad"`
	CreatorProfile *CreatorProfile `json:"creatorProfile"`
	Discussion     *struct {
		ShowProjectFeedback bool   `json:"showProjectFeedback"`
		FocusID             string `json:"focusId"`
		IsOwner             bool   `json:"isOwner"`
		RestrictPosting     bool   `json:"restrictPosting"`
		FocusKind           string `json:"focusKind"`
		CanEdit             bool   `json:"canEdit"`
	} `json:"discussion"`
	UpVoted          bool            `json:"upVoted"`
	DownVoted        bool            `json:"downVoted"`
	FlaggedByUser    bool            `json:"flaggedByUser"`
	OriginScratchpad *Program        `json:"originScratchpad"`
	Topic            json.RawMessage `json:"topic"`
	UserScratchpad   json.RawMessage `json:"userScratchpad"`
}

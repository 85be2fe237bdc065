package types

import "encoding/json"

// FullUserProfile is the data of the getFullUserProfile query.
type FullUserProfile struct {
	User                     *UserProfile `json:"user"`
	ActorIsImpersonatingUser bool         `json:"actorIsImpersonatingUser"`
}

// UserProfile holds the fields of a user profile. Private fields are only
// populated when the request is made as that user.
type UserProfile struct {
	ID                     string    `json:"id"`
	Kaid                   string    `json:"kaid"`
	Key                    string    `json:"key"`
	UserID                 string    `json:"userId"`
	Email                  *string   `json:"email"`
	Username               string    `json:"username"`
	ProfileRoot            string    `json:"profileRoot"`
	GaUserID               string    `json:"gaUserId"`
	QualarooID             string    `json:"qualarooId"`
	IsPhantom              bool      `json:"isPhantom"`
	IsDeveloper            bool      `json:"isDeveloper"`
	IsCurator              bool      `json:"isCurator"`
	IsCreator              bool      `json:"isCreator"`
	IsPublisher            bool      `json:"isPublisher"`
	IsModerator            bool      `json:"isModerator"`
	IsParent               bool      `json:"isParent"`
	IsSatStudent           bool      `json:"isSatStudent"`
	IsTeacher              bool      `json:"isTeacher"`
	IsDataCollectible      bool      `json:"isDataCollectible"`
	IsChild                bool      `json:"isChild"`
	IsOrphan               bool      `json:"isOrphan"`
	IsCoachingLoggedInUser bool      `json:"isCoachingLoggedInUser"`
	CanModifyCoaches       bool      `json:"canModifyCoaches"`
	Nickname               string    `json:"nickname"`
	HideVisual             bool      `json:"hideVisual"`
	Joined                 Timestamp `json:"joined"`
	Points                 int64     `json:"points"`
	CountVideosCompleted   int       `json:"countVideosCompleted"`
	Bio                    string    `json:"bio"`
	Profile                *struct {
		AccessLevel string `json:"accessLevel"`
	} `json:"profile"`
	SoundOn                    bool            `json:"soundOn"`
	MuteVideos                 bool            `json:"muteVideos"`
	ShowCaptions               bool            `json:"showCaptions"`
	PrefersReducedMotion       bool            `json:"prefersReducedMotion"`
	NoColorInVideos            bool            `json:"noColorInVideos"`
	AutocontinueOn             bool            `json:"autocontinueOn"`
	NewNotificationCount       int             `json:"newNotificationCount"`
	CanHellban                 bool            `json:"canHellban"`
	CanMessageUsers            bool            `json:"canMessageUsers"`
	IsSelf                     bool            `json:"isSelf"`
	HasStudents                bool            `json:"hasStudents"`
	HasClasses                 bool            `json:"hasClasses"`
	HasChildren                bool            `json:"hasChildren"`
	HasCoach                   bool            `json:"hasCoach"`
	BadgeCounts                json.RawMessage `json:"badgeCounts"`
	HomepageURL                string          `json:"homepageUrl"`
	IsMidsignupPhantom         bool            `json:"isMidsignupPhantom"`
	IncludesDistrictOwnedData  bool            `json:"includesDistrictOwnedData"`
	CanAccessDistrictsHomepage bool            `json:"canAccessDistrictsHomepage"`
	PreferredKaLocale          *struct {
		ID       string `json:"id"`
		KaLocale string `json:"kaLocale"`
		Status   string `json:"status"`
	} `json:"preferredKaLocale"`
	UnderAgeGate *struct {
		ParentEmail     string    `json:"parentEmail"`
		DaysUntilCutoff int       `json:"daysUntilCutoff"`
		ApprovalGivenAt Timestamp `json:"approvalGivenAt"`
	} `json:"underAgeGate"`
	AuthEmails             []string `json:"authEmails"`
	SignupDataIfUnverified *struct {
		Email        string `json:"email"`
		EmailBounced bool   `json:"emailBounced"`
	} `json:"signupDataIfUnverified"`
	PendingEmailVerifications []struct {
		Email string `json:"email"`
	} `json:"pendingEmailVerifications"`
	TosAccepted        bool `json:"tosAccepted"`
	ShouldShowAgeCheck bool `json:"shouldShowAgeCheck"`
}

// ProfileWidgets is the data of the getProfileWidgets query.
type ProfileWidgets struct {
	User *struct {
		ID          string          `json:"id"`
		Kaid        string          `json:"kaid"`
		BadgeCounts json.RawMessage `json:"badgeCounts"`
		IsChild     bool            `json:"isChild"`
		Profile     *struct {
			Programs []ProfileProgram `json:"programs"`
		} `json:"profile"`
		ProgramsDeprecated []ProfileProgram `json:"programsDeprecated"`
	} `json:"user"`
	UserSummary *struct {
		Statistics *UserStatistics `json:"statistics"`
	} `json:"userSummary"`
}

// ProfileProgram is a program shown on a user's profile page.
type ProfileProgram struct {
	AuthorKaid              *string `json:"authorKaid"`
	AuthorNickname          *string `json:"authorNickname"`
	Deleted                 bool    `json:"deleted"`
	DisplayableSpinoffCount int     `json:"displayableSpinoffCount"`
	ImagePath               string  `json:"imagePath"`
	Key                     string  `json:"key"`
	SumVotesIncremented     int     `json:"sumVotesIncremented"`
	TranslatedTitle         string  `json:"translatedTitle"`
	URL                     string  `json:"url"`
}

// UserStatistics counts a user's discussion activity.
type UserStatistics struct {
	Answers          int `json:"answers"`
	Comments         int `json:"comments"`
	Flags            int `json:"flags"`
	ProjectAnswers   int `json:"projectanswers"`
	ProjectQuestions int `json:"projectquestions"`
	Questions        int `json:"questions"`
	Replies          int `json:"replies"`
	Votes            int `json:"votes"`
}

// AvatarData is the data of the avatarDataForProfile query.
type AvatarData struct {
	User *struct {
		ID     string  `json:"id"`
		Avatar *Avatar `json:"avatar"`
	} `json:"user"`
}

// ScratchpadSummary is a program entry of a listing endpoint.
type ScratchpadSummary struct {
	Thumb               string    `json:"thumb"`
	Created             Timestamp `json:"created"`
	AuthorKaid          string    `json:"authorKaid"`
	Title               string    `json:"title"`
	TranslatedTitle     string    `json:"translatedTitle"`
	SumVotesIncremented int       `json:"sumVotesIncremented"`
	FlaggedByUser       bool      `json:"flaggedByUser"`
	URL                 string    `json:"url"`
	Key                 string    `json:"key"`
	AuthorNickname      string    `json:"authorNickname"`
	SpinoffCount        int       `json:"spinoffCount"`
}

// ScratchpadList is a page of programs, as returned for a user's programs or
// for the spin-offs of a program.
type ScratchpadList struct {
	Cursor      string              `json:"cursor"`
	Complete    bool                `json:"complete"`
	Scratchpads []ScratchpadSummary `json:"scratchpads"`
}

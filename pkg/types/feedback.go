package types

// FeedbackType is the GraphQL kind of discussion feedback.
type FeedbackType string

const (
	FeedbackComment             FeedbackType = "COMMENT"
	FeedbackQuestion            FeedbackType = "QUESTION"
	FeedbackProjectHelpQuestion FeedbackType = "PROJECT_HELP_QUESTION"
)

// CommentType selects the REST discussion collection of a program.
type CommentType string

const (
	CommentTypeComments  CommentType = "comments"
	CommentTypeQuestions CommentType = "questions"
)

// FeedbackRequest describes a feedbackQuery call for one program.
type FeedbackRequest struct {
	// ProgramID is the program whose discussion is listed.
	ProgramID string
	// Type defaults to FeedbackComment.
	Type FeedbackType
	// Sort defaults to SortMostVotes.
	Sort SortType
	// Limit is omitted from the query when zero.
	Limit int
	// Cursor continues a previous page when set.
	Cursor string
}

// FeedbackFocus is the content a piece of feedback is attached to.
type FeedbackFocus struct {
	ID              string  `json:"id"`
	Kind            string  `json:"kind"`
	RelativeURL     string  `json:"relativeUrl"`
	TranslatedTitle *string `json:"translatedTitle"`
}

// Feedback is a comment, question, answer or reply.
type Feedback struct {
	Typename             string         `json:"__typename,omitempty"`
	Key                  string         `json:"key"`
	ExpandKey            string         `json:"expandKey"`
	Author               *Author        `json:"author"`
	AuthorKaid           string         `json:"authorKaid,omitempty"`
	AuthorNickname       string         `json:"authorNickname,omitempty"`
	Content              string         `json:"content"`
	Date                 Timestamp      `json:"date"`
	FeedbackType         string         `json:"feedbackType"`
	Focus                *FeedbackFocus `json:"focus"`
	FocusURL             string         `json:"focusUrl"`
	Permalink            string         `json:"permalink"`
	QualityKind          string         `json:"qualityKind"`
	ReplyCount           int            `json:"replyCount"`
	ReplyExpandKeys      []string       `json:"replyExpandKeys"`
	SumVotesIncremented  int            `json:"sumVotesIncremented"`
	UpVoted              bool           `json:"upVoted"`
	DownVoted            bool           `json:"downVoted"`
	FlaggedByUser        bool           `json:"flaggedByUser"`
	Flags                []string       `json:"flags"`
	DefinitelyNotSpam    bool           `json:"definitelyNotSpam"`
	Deleted              *bool          `json:"deleted"`
	AppearsAsDeleted     *bool          `json:"appearsAsDeleted"`
	FromVideoAuthor      bool           `json:"fromVideoAuthor"`
	NotifyOnAnswer       bool           `json:"notifyOnAnswer"`
	LowQualityScore      *float64       `json:"lowQualityScore"`
	ShowLowQualityNotice *bool          `json:"showLowQualityNotice"`
	IsLocked             bool           `json:"isLocked"`
	IsPinned             bool           `json:"isPinned"`
}

// AuthorID returns the author's kaid from whichever field the endpoint filled.
func (f *Feedback) AuthorID() string {
	if f.Author != nil && f.Author.Kaid != "" {
		return f.Author.Kaid
	}
	return f.AuthorKaid
}

// FeedbackPage is the data of the feedbackQuery GraphQL operation.
type FeedbackPage struct {
	Feedback *FeedbackList `json:"feedback"`
}

// FeedbackList is a page of feedback with its continuation cursor.
type FeedbackList struct {
	Cursor       string     `json:"cursor"`
	Feedback     []Feedback `json:"feedback"`
	IsComplete   bool       `json:"isComplete"`
	SortedByDate bool       `json:"sortedByDate"`
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesprial/go-ka-api-wrapper"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath  string
	sessionPath string
	verbose     bool

	getenv func(string) string
	now    func() time.Time

	cfg    *cliConfig
	client *kaapi.Client
	logger *slog.Logger
}

func newApp() *app {
	return &app{getenv: os.Getenv, now: time.Now}
}

// newRootCmd builds the command tree around a.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "kaapi",
		Short: "Command line client for the Khan Academy internal API",
		Long: `kaapi logs in to Khan Academy with a username and password, keeps the
resulting cookie session in a YAML file, and uses it to read profiles,
programs, discussions and notifications.

Credentials are read from the KA_USERNAME and KA_PASSWORD environment
variables. The password is never written to disk.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $KA_CONFIG or ~/.config/kaapi/config.yaml)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", "", "session file (default ~/.config/kaapi/session.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log every request")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newProfileCmd(a),
		newProgramsCmd(a),
		newProgramCmd(a),
		newCommentsCmd(a),
		newNotificationsCmd(a),
	)
	return root
}

// setup loads the configuration and builds the client.
func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	path, explicit := a.configPath, a.configPath != ""
	if !explicit {
		if env := a.getenv(envConfig); env != "" {
			path, explicit = env, true
		}
	}
	if path == "" {
		dir, err := defaultConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.sessionPath == "" {
		a.sessionPath = cfg.SessionFile
	}
	if a.sessionPath == "" {
		dir, err := defaultConfigDir()
		if err != nil {
			return err
		}
		a.sessionPath = filepath.Join(dir, sessionFileName)
	}

	a.client, err = kaapi.NewClient(&kaapi.Config{
		BaseURL:    cfg.BaseURL,
		UserAgent:  cfg.UserAgent,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Logger:     a.logger,
		RateLimit:  cfg.rateLimit(),
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	a.logger.Debug("configured", "config", path, "base_url", cfg.BaseURL, "session_file", a.sessionPath)
	return nil
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := resolveCredentials(a.cfg, a.getenv)
			if err != nil {
				return err
			}

			session, err := a.client.Login(cmd.Context(), creds.Username, creds.Password)
			if err != nil {
				return err
			}
			if err := saveSession(a.sessionPath, session, a.now()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s. Saved %d cookies to %s\n",
				creds.Username, session.Len(), a.sessionPath)
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := removeSession(a.sessionPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session removed.")
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <kaid-or-username>",
		Short: "Show a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := optionalSession(a.sessionPath)
			if err != nil {
				return err
			}

			profile, err := a.client.GetProfileInfo(cmd.Context(), session, args[0])
			if err != nil {
				return err
			}
			if profile.User == nil {
				return fmt.Errorf("user %q not found", args[0])
			}
			printProfile(cmd.OutOrStdout(), profile.User)
			return nil
		},
	}
}

func printProfile(w io.Writer, u *types.UserProfile) {
	fmt.Fprintf(w, "%s (@%s)\n", u.Nickname, u.Username)
	fmt.Fprintf(w, "  kaid:    %s\n", u.Kaid)
	fmt.Fprintf(w, "  points:  %s\n", humanize.Comma(u.Points))
	if !u.Joined.IsZero() {
		fmt.Fprintf(w, "  joined:  %s\n", humanize.Time(u.Joined.Time))
	}
	if u.Bio != "" {
		fmt.Fprintf(w, "  bio:     %s\n", u.Bio)
	}
}

func newProgramsCmd(a *app) *cobra.Command {
	var (
		sort  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "programs <kaid-or-username>",
		Short: "List a user's public programs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sortType, err := parseSort(sort)
			if err != nil {
				return err
			}

			list, err := a.client.GetUserPrograms(cmd.Context(), args[0], sortType, limit)
			if err != nil {
				return err
			}
			printPrograms(cmd.OutOrStdout(), list.Scratchpads)
			return nil
		},
	}
	cmd.Flags().StringVar(&sort, "sort", "votes", "sort order: votes or newest")
	cmd.Flags().IntVar(&limit, "limit", kaapi.DefaultProgramLimit, "maximum number of programs")
	return cmd
}

func parseSort(s string) (types.SortType, error) {
	switch strings.ToLower(s) {
	case "", "votes", "top":
		return types.SortMostVotes, nil
	case "newest", "recent":
		return types.SortNewest, nil
	default:
		return 0, fmt.Errorf("unknown sort %q: use votes or newest", s)
	}
}

func printPrograms(w io.Writer, programs []types.ScratchpadSummary) {
	if len(programs) == 0 {
		fmt.Fprintln(w, "No programs.")
		return
	}
	for _, p := range programs {
		fmt.Fprintf(w, "%s\n  %s votes, %s spin-offs, created %s\n  %s\n",
			p.Title,
			humanize.Comma(int64(p.SumVotesIncremented)),
			humanize.Comma(int64(p.SpinoffCount)),
			humanize.Time(p.Created.Time),
			p.URL,
		)
	}
}

func newProgramCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "program <program-id>",
		Short: "Show a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := a.client.GetProgramJSON(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			printProgram(cmd.OutOrStdout(), program)
			return nil
		},
	}
}

func printProgram(w io.Writer, p *types.Program) {
	fmt.Fprintf(w, "%s [%s]\n", p.Title, p.UserAuthoredContentType)
	fmt.Fprintf(w, "  id:        %s\n", p.ID)
	fmt.Fprintf(w, "  votes:     %s\n", humanize.Comma(int64(p.SumVotesIncremented)))
	fmt.Fprintf(w, "  spin-offs: %s\n", humanize.Comma(int64(p.SpinoffCount)))
	if !p.Created.IsZero() {
		fmt.Fprintf(w, "  created:   %s\n", humanize.Time(p.Created.Time))
	}
	if p.OriginScratchpadID != "" {
		fmt.Fprintf(w, "  spun off:  %s\n", p.OriginScratchpadID)
	}
	if p.Revision != nil {
		lines := strings.Count(p.Revision.Code, "\n") + 1
		fmt.Fprintf(w, "  code:      %s lines, %s\n", humanize.Comma(int64(lines)), humanize.Bytes(uint64(len(p.Revision.Code))))
	}
}

func newCommentsCmd(a *app) *cobra.Command {
	var questions bool
	cmd := &cobra.Command{
		Use:   "comments <program-id>",
		Short: "List the comments or questions on a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commentType := types.CommentTypeComments
			if questions {
				commentType = types.CommentTypeQuestions
			}

			feedback, err := a.client.GetProgramComments(cmd.Context(), args[0], commentType)
			if err != nil {
				return err
			}
			printFeedback(cmd.OutOrStdout(), feedback)
			return nil
		},
	}
	cmd.Flags().BoolVar(&questions, "questions", false, "list questions instead of comments")
	return cmd
}

func printFeedback(w io.Writer, feedback []types.Feedback) {
	if len(feedback) == 0 {
		fmt.Fprintln(w, "No comments.")
		return
	}
	for _, f := range feedback {
		author := f.AuthorNickname
		if f.Author != nil && f.Author.Nickname != "" {
			author = f.Author.Nickname
		}
		fmt.Fprintf(w, "%s, %s votes, %s replies, %s\n  %s\n",
			author,
			humanize.Comma(int64(f.SumVotesIncremented)),
			humanize.Comma(int64(f.ReplyCount)),
			humanize.Time(f.Date.Time),
			f.Content,
		)
	}
}

func newNotificationsCmd(a *app) *cobra.Command {
	var (
		brandNew bool
		markSeen bool
		depth    int
	)
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications of the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, savedAt, err := loadSession(a.sessionPath)
			if err != nil {
				return err
			}
			a.logger.Debug("using saved session", "saved", humanize.Time(savedAt), "session", session)

			if depth == 0 {
				depth = a.cfg.NotificationDepth
			}

			var list []types.Notification
			if brandNew {
				list, err = a.client.GetAllBrandNewNotifications(cmd.Context(), session, depth)
			} else {
				list, err = a.client.GetNotificationsUntil(cmd.Context(), session, func(*types.Notification) bool { return true }, depth)
			}
			if err != nil {
				return err
			}
			printNotifications(cmd.OutOrStdout(), list)

			if markSeen {
				if err := a.client.ClearBrandNewNotifications(cmd.Context(), session); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Marked all notifications as seen.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&brandNew, "new", false, "only list notifications not seen yet")
	cmd.Flags().BoolVar(&markSeen, "clear", false, "mark every notification as seen afterwards")
	cmd.Flags().IntVar(&depth, "depth", 0, "maximum number of pages to read (default from config)")
	return cmd
}

func printNotifications(w io.Writer, list []types.Notification) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No notifications.")
		return
	}
	fmt.Fprintf(w, "%s notifications\n", humanize.Comma(int64(len(list))))
	for _, n := range list {
		marker := " "
		if n.BrandNew {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s from %s, %s\n", marker, n.Kind, n.AuthorNickname, humanize.Time(n.Date.Time))
		if n.Content != "" {
			fmt.Fprintf(w, "  %s\n", n.Content)
		}
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jamesprial/go-ka-api-wrapper"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/types"
)

const sampleCode = `background(255, 255, 255);
fill(44, 132, 255);
ellipse(200, 200, 120, 120);
`

func main() {
	// Get credentials from environment variables
	username := os.Getenv("KA_USERNAME")
	password := os.Getenv("KA_PASSWORD")

	if username == "" || password == "" {
		log.Fatal("KA_USERNAME and KA_PASSWORD environment variables are required")
	}

	// Route structured logs to stdout; adjust the level as needed.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Create the client. It holds no session of its own.
	client, err := kaapi.NewClient(&kaapi.Config{
		UserAgent: "example-bot/1.0 by YourUsername",
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	// Log in. The returned session is what every authenticated call needs.
	ctx := context.Background()
	session, err := client.Login(ctx, username, password)
	if err != nil {
		log.Fatalf("Failed to log in: %v", err)
	}

	fmt.Printf("Logged in with %d cookies: %v\n", session.Len(), session.Names())

	// Look up our own profile
	profile, err := client.GetProfileInfo(ctx, session, username)
	if err != nil || profile.User == nil {
		log.Fatalf("Failed to get profile: %v", err)
	}
	me := profile.User
	fmt.Printf("Profile: %s (%s), %d points\n", me.Nickname, me.Kaid, me.Points)

	// Create a program with a custom title
	program, err := client.NewProgram(ctx, session, sampleCode, types.ProgramSettings{
		"title": "kaapi example",
	}, types.ProgramTypePJS)
	if err != nil {
		log.Fatalf("Failed to create program: %v", err)
	}
	fmt.Printf("\nCreated program %s: %s\n", program.ID, program.URL)

	// Always clean up the program, even when a later step fails
	defer func() {
		if err := client.DeleteProgram(ctx, session, string(program.ID)); err != nil {
			log.Printf("Failed to delete program %s: %v", program.ID, err)
			return
		}
		fmt.Printf("\nDeleted program %s\n", program.ID)
	}()

	// Update its code, passing the program we already have so it is not fetched again
	updated, err := client.UpdateProgram(ctx, session, string(program.ID), sampleCode+"rect(10, 10, 50, 50);\n", nil, program)
	if err != nil {
		log.Printf("Failed to update program: %v", err)
		return
	}
	if updated.Revision != nil {
		fmt.Printf("Updated program, revision %d\n", updated.Revision.ID)
	}

	// Comment on it and read the comment back
	comment, err := client.CommentOnProgram(ctx, session, string(program.ID), "Posted by the kaapi example.", types.CommentTypeComments)
	if err != nil {
		log.Printf("Failed to comment: %v", err)
		return
	}
	fmt.Printf("\nPosted comment %s\n", comment.ExpandKey)

	reply, err := client.CommentOnComment(ctx, session, comment.ExpandKey, "And a reply.")
	if err != nil {
		log.Printf("Failed to reply: %v", err)
	} else {
		fmt.Printf("Posted reply %s\n", reply.ExpandKey)
	}

	details, err := client.GetProgramCommentDetails(ctx, string(program.ID), comment.ExpandKey, types.CommentTypeComments)
	if err != nil {
		log.Printf("Failed to read comment back: %v", err)
	} else {
		fmt.Printf("  %s: %.80s\n", details.AuthorNickname, details.Content)
	}

	replies, err := client.GetCommentsOnComment(ctx, comment.ExpandKey)
	if err != nil {
		log.Printf("Failed to get replies: %v", err)
	} else {
		fmt.Printf("  %d replies\n", len(replies))
	}

	// Page through the discussion with the GraphQL feedback iterator
	fmt.Println("\n=== PAGINATION DEMO ===")
	it := client.NewFeedbackIterator(ctx, session, types.FeedbackRequest{
		ProgramID: string(program.ID),
		Type:      types.FeedbackComment,
		Limit:     10,
	}).WithMaxPages(3)
	all, err := it.Collect(0)
	if err != nil {
		log.Printf("Feedback iteration stopped: %v", err)
	}
	fmt.Printf("Fetched %d comments\n", len(all))

	if err := client.DeleteProgramComment(ctx, session, comment.Key); err != nil {
		log.Printf("Failed to delete comment: %v", err)
	} else {
		fmt.Println("Deleted comment")
	}
}

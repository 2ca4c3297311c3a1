// Package prompt renders account profiles into the user prompts the
// detectors send. Field order and wording are load-bearing: fine-tuned
// models were trained on exactly this shape, so changes here silently
// degrade every tuned detector
package prompt

import (
	"strconv"
	"strings"
)

// Post is one post attributed to an account, already in display order
type Post struct {
	CreatedAt string
	ID        string
	Lang      string
	Text      string
}

// Profile is the provider-neutral view of one account
type Profile struct {
	UserID      string
	Username    string
	Name        string
	Description string
	Location    string
	TweetCount  int
	ZScore      float64
	Posts       []Post
}

// Fields renders the profile block alone, without posts
// The accuracy report reuses it so reviewers read misclassified profiles in
// exactly the shape the model saw them
func Fields(p Profile) string {
	var b strings.Builder
	b.WriteString("User ID: " + p.UserID + "\n")
	b.WriteString("Username: " + p.Username + "\n")
	b.WriteString("Name: " + p.Name + "\n")
	b.WriteString("Description: " + orNone(p.Description) + "\n")
	b.WriteString("Location: " + orNone(p.Location) + "\n")
	b.WriteString("Tweet count: " + strconv.Itoa(p.TweetCount) + "\n")
	b.WriteString("Z-score (posting activity deviation from average): " + formatZ(p.ZScore))
	return b.String()
}

// User renders the single-account prompt block
func User(p Profile) string {
	var b strings.Builder
	b.WriteString(Fields(p))
	b.WriteString("\n\nPosts:\n")
	if len(p.Posts) == 0 {
		b.WriteString("(no posts)")
		return b.String()
	}
	for i, post := range p.Posts {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[" + post.CreatedAt + "] [id:" + post.ID + "] [lang:" + post.Lang + "] " + post.Text)
	}
	return b.String()
}

// Batch renders one prompt covering every profile, blocks separated by "---"
// Block order is the positional-fallback order for batch reply parsing
func Batch(ps []Profile) string {
	blocks := make([]string, 0, len(ps))
	for _, p := range ps {
		blocks = append(blocks, User(p))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// formatZ prints the shortest round-trip form, keeping a ".0" on integral
// values so 2.0 renders as "2.0" rather than "2"
func formatZ(z float64) string {
	s := strconv.FormatFloat(z, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

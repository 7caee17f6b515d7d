package prompts

import (
	"fmt"
	"strings"

	"content-analyzer/internal/domain/entity"
)

// ComposeInput renders the full scoring input for one post: content,
// author, engagement and technical metadata in labeled sections. Every
// task receives the same composed input; task-specific framing lives in
// the per-task templates.
func ComposeInput(post entity.Post) string {
	var b strings.Builder

	b.WriteString("POST CONTENT:\n")
	b.WriteString(StripMarkup(post.Text))
	b.WriteString("\n\nAUTHOR INFORMATION:\n")
	fmt.Fprintf(&b, "- Username: @%s\n", post.Author.Username)
	fmt.Fprintf(&b, "- Display Name: %s\n", orNA(post.Author.DisplayName))
	fmt.Fprintf(&b, "- Verified: %t\n", post.Author.Verified)
	fmt.Fprintf(&b, "- Followers: %d\n", post.Author.Followers)
	if !post.Author.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "- Account Created: %s\n", post.Author.CreatedAt.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "- Bio: %s\n", orNA(StripMarkup(post.Author.Bio)))

	b.WriteString("\nENGAGEMENT METRICS:\n")
	fmt.Fprintf(&b, "- Likes: %d\n", post.Engagement.Likes)
	fmt.Fprintf(&b, "- Reposts: %d\n", post.Engagement.Reposts)
	fmt.Fprintf(&b, "- Replies: %d\n", post.Engagement.Replies)
	fmt.Fprintf(&b, "- Quotes: %d\n", post.Engagement.Quotes)

	b.WriteString("\nTECHNICAL METADATA:\n")
	fmt.Fprintf(&b, "- Post ID: %s\n", post.ID)
	if !post.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "- Created: %s\n", post.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(&b, "- Is Thread: %t\n", post.IsThread)
	fmt.Fprintf(&b, "- Has Media: %t\n", post.HasMedia)

	b.WriteString("\nEXTERNAL LINKS:\n")
	if len(post.ExternalLinks) == 0 {
		b.WriteString("No external links detected.\n")
	} else {
		for i, link := range post.ExternalLinks {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, link)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the moderation state of a showcase project.
// Only PUBLISHED projects appear in public listings.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusFlagged   Status = "FLAGGED"
	StatusArchived  Status = "ARCHIVED"
)

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusDraft:
		return StatusDraft, true
	case StatusPublished:
		return StatusPublished, true
	case StatusFlagged:
		return StatusFlagged, true
	case StatusArchived:
		return StatusArchived, true
	}
	return "", false
}

// ParseStatusSet parses a comma-joined status list. Unknown entries are
// dropped and duplicates collapsed; an empty result means PUBLISHED.
func ParseStatusSet(raw string) []Status {
	seen := map[Status]bool{}
	statuses := []Status{}
	for _, part := range strings.Split(raw, ",") {
		st, ok := ParseStatus(part)
		if !ok || seen[st] {
			continue
		}
		seen[st] = true
		statuses = append(statuses, st)
	}
	if len(statuses) == 0 {
		return []Status{StatusPublished}
	}
	return statuses
}

// CanTransition reports whether an admin may move a project from one status to another.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPublished:
		return to == StatusFlagged
	case StatusFlagged:
		return to == StatusPublished || to == StatusArchived
	}
	return false
}

// ShowcaseProject is a user-submitted project as stored.
type ShowcaseProject struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	ImageURL     *string   `json:"imageUrl,omitempty" db:"image_url"`
	SDGTags      []string  `json:"sdgTags" db:"sdg_tags"`
	TechTags     []string  `json:"techTags" db:"tech_tags"`
	GithubURL    *string   `json:"githubUrl,omitempty" db:"github_url"`
	DemoURL      *string   `json:"demoUrl,omitempty" db:"demo_url"`
	Status       Status    `json:"status" db:"status"`
	Featured     bool      `json:"featured" db:"featured"`
	AIMatchScore *float64  `json:"aiMatchScore,omitempty" db:"ai_match_score"`
	ViewCount    int64     `json:"viewCount" db:"view_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// PlaceholderImageURL is used when a project has no image.
const PlaceholderImageURL = "/images/showcase-placeholder.png"

type Owner struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
}

type Counts struct {
	Likes int64 `json:"likes"`
	Views int64 `json:"views"`
	Saves int64 `json:"saves"`
}

// ProjectSummary is the listing and detail projection of a project,
// annotated for the requesting viewer.
type ProjectSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"imageUrl"`
	SDGTags      []string  `json:"sdgTags"`
	TechTags     []string  `json:"techTags"`
	GithubURL    *string   `json:"githubUrl,omitempty"`
	DemoURL      *string   `json:"demoUrl,omitempty"`
	Status       Status    `json:"status"`
	Featured     bool      `json:"featured"`
	AIMatchScore *float64  `json:"aiMatchScore,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	Owner        Owner     `json:"author"`
	Counts
	IsLiked      bool `json:"isLiked"`
	IsBookmarked bool `json:"isBookmarked"`
	IsOwner      bool `json:"isOwner"`
}

// CreateProjectRequest is the payload for creating a project.
// Status may only be DRAFT or PUBLISHED; empty means PUBLISHED.
type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description" binding:"required,max=5000"`
	ImageURL    *string  `json:"imageUrl" binding:"omitempty,url"`
	SDGTags     []string `json:"sdgTags" binding:"max=17,dive,max=40"`
	TechTags    []string `json:"techTags" binding:"max=20,dive,max=40"`
	GithubURL   *string  `json:"githubUrl" binding:"omitempty,url"`
	DemoURL     *string  `json:"demoUrl" binding:"omitempty,url"`
	Status      string   `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED draft published"`
}

// UpdateProjectRequest carries the owner-editable fields. Nil fields are left unchanged.
type UpdateProjectRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description" binding:"omitempty,min=1,max=5000"`
	ImageURL    *string  `json:"imageUrl" binding:"omitempty,url"`
	SDGTags     []string `json:"sdgTags" binding:"omitempty,max=17,dive,max=40"`
	TechTags    []string `json:"techTags" binding:"omitempty,max=20,dive,max=40"`
	GithubURL   *string  `json:"githubUrl" binding:"omitempty,url"`
	DemoURL     *string  `json:"demoUrl" binding:"omitempty,url"`
	Status      *string  `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED draft published"`
}

type StatusChangeRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"max=1000"`
}

// ToggleResult is returned by like and bookmark toggles.
type ToggleResult struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

var sdgNumber = regexp.MustCompile(`(?i)^(?:sdg)?[\s\-_]*(\d{1,2})$`)

// NormalizeSDGTag returns the canonical "SDG <n>" form for numeric SDG
// references ("4", "sdg4", "SDG-4"). Anything else is returned trimmed.
func NormalizeSDGTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if m := sdgNumber.FindStringSubmatch(tag); m != nil {
		n := strings.TrimLeft(m[1], "0")
		if n == "" {
			n = "0"
		}
		return "SDG " + n
	}
	return tag
}

// NormalizeTags trims tags, drops empties and duplicates, keeping first-seen order.
func NormalizeTags(tags []string, normalize func(string) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, tag := range tags {
		if normalize != nil {
			tag = normalize(tag)
		}
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, tag)
	}
	return out
}

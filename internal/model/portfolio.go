package model

import "time"

// Portfolio lifecycle statuses. A portfolio starts as draft, moves to
// building when a deploy begins, and ends in deployed or failed. Redeploys
// re-enter building.
const (
	StatusDraft    = "draft"
	StatusBuilding = "building"
	StatusDeployed = "deployed"
	StatusFailed   = "failed"
)

// MaxPortfoliosPerUser caps how many portfolios one account may own.
// Two is what GitHub Pages hosting comfortably allows per account here.
const MaxPortfoliosPerUser = 2

// Portfolio is a generated portfolio site owned by a single user: the
// structured data the AI produced, the rendered HTML derived from it, and the
// deployment metadata once published.
type Portfolio struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	Name         string         `json:"name"`
	Template     string         `json:"template"`
	Status       string         `json:"status"`
	URL          string         `json:"url,omitempty"`
	GitHubRepo   string         `json:"githubRepo,omitempty"`
	Data         *PortfolioData `json:"data,omitempty"`
	HTML         string         `json:"html,omitempty"`
	Settings     map[string]any `json:"settings,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	LastDeployed *time.Time     `json:"lastDeployed,omitempty"`
}

// PortfolioData is the structured document the generation backend returns.
// personalInfo, bio, skills and projects are required — the adapter validates
// their presence before anything is persisted. The rest is optional.
type PortfolioData struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Bio            string          `json:"bio"`
	Skills         []string        `json:"skills"`
	Projects       []Project       `json:"projects"`
	Experience     []Experience    `json:"experience,omitempty"`
	Education      []Education     `json:"education,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
	Theme          *Theme          `json:"theme,omitempty"`
}

type PersonalInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
}

type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	GitHub       string   `json:"github,omitempty"`
	Live         string   `json:"live,omitempty"`
	Highlights   []string `json:"highlights,omitempty"`
}

type Experience struct {
	Company          string   `json:"company"`
	Position         string   `json:"position,omitempty"`
	Duration         string   `json:"duration,omitempty"`
	Location         string   `json:"location,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	Year        string `json:"year,omitempty"`
	GPA         string `json:"gpa,omitempty"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Year   string `json:"year,omitempty"`
}

type Theme struct {
	Primary string `json:"primary,omitempty"`
	Accent  string `json:"accent,omitempty"`
	Layout  string `json:"layout,omitempty"`
}

// ChatMessage is one turn of the refinement conversation passed back to the
// generation backend.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PortfolioStats summarizes a user's portfolios for the dashboard.
type PortfolioStats struct {
	Total      int `json:"total"`
	Deployed   int `json:"deployed"`
	Draft      int `json:"draft"`
	Building   int `json:"building"`
	MaxAllowed int `json:"maxAllowed"`
	Remaining  int `json:"remaining"`
}

// Package proxycurl provides a client for the Proxycurl person profile API.
package proxycurl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://nubela.co/proxycurl"

// Client fetches LinkedIn profile data.
type Client interface {
	// Profile returns the profile for a LinkedIn URL, or nil when the
	// provider has no profile for it.
	Profile(ctx context.Context, profileURL string) (*Profile, error)
}

// Date is a partial date; omitted parts are zero.
type Date struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// Experience is one work history entry.
type Experience struct {
	StartsAt                  *Date  `json:"starts_at"`
	EndsAt                    *Date  `json:"ends_at"`
	Company                   string `json:"company"`
	CompanyLinkedInProfileURL string `json:"company_linkedin_profile_url"`
	Title                     string `json:"title"`
	Description               string `json:"description"`
	Location                  string `json:"location"`
	LogoURL                   string `json:"logo_url"`
}

// Education is one education history entry.
type Education struct {
	StartsAt     *Date  `json:"starts_at"`
	EndsAt       *Date  `json:"ends_at"`
	FieldOfStudy string `json:"field_of_study"`
	DegreeName   string `json:"degree_name"`
	School       string `json:"school"`
	Description  string `json:"description"`
	LogoURL      string `json:"logo_url"`
}

// VolunteerWork is one volunteering entry.
type VolunteerWork struct {
	StartsAt    *Date  `json:"starts_at"`
	EndsAt      *Date  `json:"ends_at"`
	Title       string `json:"title"`
	Cause       string `json:"cause"`
	Company     string `json:"company"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
}

// Certification is a licence or certificate.
type Certification struct {
	StartsAt  *Date  `json:"starts_at"`
	EndsAt    *Date  `json:"ends_at"`
	Name      string `json:"name"`
	Authority string `json:"authority"`
	URL       string `json:"url"`
}

// Profile is the person profile response.
type Profile struct {
	PublicIdentifier        string          `json:"public_identifier"`
	ProfilePicURL           string          `json:"profile_pic_url"`
	BackgroundCoverImageURL string          `json:"background_cover_image_url"`
	FirstName               string          `json:"first_name"`
	LastName                string          `json:"last_name"`
	FullName                string          `json:"full_name"`
	Occupation              string          `json:"occupation"`
	Headline                string          `json:"headline"`
	Summary                 string          `json:"summary"`
	Country                 string          `json:"country"`
	City                    string          `json:"city"`
	State                   string          `json:"state"`
	Industry                string          `json:"industry"`
	FollowerCount           int             `json:"follower_count"`
	Connections             int             `json:"connections"`
	Experiences             []Experience    `json:"experiences"`
	Education               []Education     `json:"education"`
	Languages               []string        `json:"languages"`
	VolunteerWork           []VolunteerWork `json:"volunteer_work"`
	Certifications          []Certification `json:"certifications"`
	Skills                  []string        `json:"skills"`
	Interests               []string        `json:"interests"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Proxycurl client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Profile(ctx context.Context, profileURL string) (*Profile, error) {
	q := url.Values{}
	q.Set("linkedin_profile_url", profileURL)
	q.Set("extra", "include")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/linkedin?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "proxycurl: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "proxycurl: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "proxycurl: read response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("proxycurl: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, eris.Wrap(err, "proxycurl: unmarshal response")
	}
	return &profile, nil
}

package model

// Link is a search result attached to a contact or company.
type Link struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Date        string `json:"date,omitempty"`
	Priority    int    `json:"priority,omitempty"`
}

// CompanyData is the resolved company of a contact.
type CompanyData struct {
	Name           string `json:"name"`
	Website        string `json:"website,omitempty"`
	AboutLinks     []Link `json:"about_links"`
	CaseStudyLinks []Link `json:"case_study_links"`
}

// ExperiencesWithMetadata is the ranker output.
type ExperiencesWithMetadata struct {
	Experiences            []Experience `json:"experiences"`
	TitleMismatch          bool         `json:"title_mismatch"`
	MostLikelyCurrentTitle string       `json:"most_likely_current_title"`
}

// ContactData is one enriched contact.
type ContactData struct {
	SpreadsheetID             string      `json:"spreadsheet_id"`
	RowNumber                 int         `json:"row_number"`
	LinkedInUsername          string      `json:"linkedin_username"`
	ContactProfileLink        string      `json:"contact_profile_link"`
	ContactFirstName          string      `json:"contact_first_name"`
	ContactLastName           string      `json:"contact_last_name"`
	ParsedName                string      `json:"parsed_name"`
	Qualifications            string      `json:"qualifications,omitempty"`
	ContactJobTitle           string      `json:"contact_job_title"`
	ContactCompanyName        string      `json:"contact_company_name"`
	HookName                  string      `json:"hook_name"`
	MessengerCampaignInstance string      `json:"messenger_campaign_instance,omitempty"`
	ColoredCells              []string    `json:"colored_cells"`
	Company                   CompanyData `json:"company"`

	ProfilePicture string                `json:"profile_picture,omitempty"`
	BannerPicture  string                `json:"banner_picture,omitempty"`
	Bio            string                `json:"bio,omitempty"`
	Headline       string                `json:"headline,omitempty"`
	Industry       string                `json:"industry,omitempty"`
	Languages      []string              `json:"languages"`
	VolunteerWork  []VolunteerExperience `json:"volunteer_work"`
	Experiences    []Experience          `json:"experiences"`

	InterviewsAndPodcasts []Link                   `json:"interviews_and_podcasts"`
	ProfileResponse       *ProfilePayload          `json:"nubela_response"`
	RelevantExperiences   *ExperiencesWithMetadata `json:"relevant_experiences"`
}

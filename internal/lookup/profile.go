package lookup

import (
	"github.com/sells-group/contact-enrich/internal/model"
	"github.com/sells-group/contact-enrich/pkg/proxycurl"
)

func toDate(d *proxycurl.Date) *model.Date {
	if d == nil {
		return nil
	}
	return &model.Date{Day: d.Day, Month: d.Month, Year: d.Year}
}

// toProfilePayload maps a provider profile onto the contact model. Nil
// history lists become empty lists.
func toProfilePayload(p *proxycurl.Profile) *model.ProfilePayload {
	out := &model.ProfilePayload{
		PublicIdentifier:        p.PublicIdentifier,
		ProfilePicURL:           p.ProfilePicURL,
		BackgroundCoverImageURL: p.BackgroundCoverImageURL,
		FirstName:               p.FirstName,
		LastName:                p.LastName,
		FullName:                p.FullName,
		Occupation:              p.Occupation,
		Headline:                p.Headline,
		Summary:                 p.Summary,
		Country:                 p.Country,
		City:                    p.City,
		State:                   p.State,
		Industry:                p.Industry,
		FollowerCount:           p.FollowerCount,
		Connections:             p.Connections,
		Experiences:             make([]model.Experience, 0, len(p.Experiences)),
		Education:               make([]model.Education, 0, len(p.Education)),
		Languages:               append([]string{}, p.Languages...),
		VolunteerWork:           make([]model.VolunteerExperience, 0, len(p.VolunteerWork)),
		Certifications:          make([]model.Certification, 0, len(p.Certifications)),
		Skills:                  p.Skills,
		Interests:               p.Interests,
	}
	for _, e := range p.Experiences {
		out.Experiences = append(out.Experiences, model.Experience{
			StartsAt:                  toDate(e.StartsAt),
			EndsAt:                    toDate(e.EndsAt),
			Company:                   e.Company,
			CompanyLinkedInProfileURL: e.CompanyLinkedInProfileURL,
			Title:                     e.Title,
			Description:               e.Description,
			Location:                  e.Location,
			LogoURL:                   e.LogoURL,
		})
	}
	for _, e := range p.Education {
		out.Education = append(out.Education, model.Education{
			StartsAt:     toDate(e.StartsAt),
			EndsAt:       toDate(e.EndsAt),
			FieldOfStudy: e.FieldOfStudy,
			DegreeName:   e.DegreeName,
			School:       e.School,
			Description:  e.Description,
			LogoURL:      e.LogoURL,
		})
	}
	for _, v := range p.VolunteerWork {
		out.VolunteerWork = append(out.VolunteerWork, model.VolunteerExperience{
			StartsAt:    toDate(v.StartsAt),
			EndsAt:      toDate(v.EndsAt),
			Title:       v.Title,
			Cause:       v.Cause,
			Company:     v.Company,
			Description: v.Description,
			LogoURL:     v.LogoURL,
		})
	}
	for _, c := range p.Certifications {
		out.Certifications = append(out.Certifications, model.Certification{
			StartsAt:  toDate(c.StartsAt),
			EndsAt:    toDate(c.EndsAt),
			Name:      c.Name,
			Authority: c.Authority,
			URL:       c.URL,
		})
	}
	return out
}

package lookup

import (
	"fmt"
	"time"
)

// AboutQuery finds a company's about pages, skipping blog and support
// content.
func AboutQuery(website string) string {
	return fmt.Sprintf("site:%s AND inurl:about -inurl:blog -inurl:support -inurl:article -inurl:articles", website)
}

// CaseStudyQuery finds a company's case studies, testimonials, projects,
// reviews and awards.
func CaseStudyQuery(website string) string {
	return fmt.Sprintf("site:%s AND (case study OR testimonial OR projects OR reviews OR award)", website)
}

// MediaQuery finds interviews, podcasts and guest appearances of a person
// published after since.
func MediaQuery(name, company string, since time.Time) string {
	return fmt.Sprintf(`"%s" AND "%s" AND ("Interview" OR "podcast" OR "guest") after:%s`,
		name, company, since.Format(time.DateOnly))
}

package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/contact-enrich/internal/model"
)

// Primary sheet columns read into a contact.
const (
	ColFirstName         = "contact_first_name"
	ColLastName          = "contact_last_name"
	ColJobTitle          = "contact_job_title"
	ColCompanyName       = "contact_company_name"
	ColProfileLink       = "contact_profile_link"
	ColImageLink         = "contact_image_link"
	ColHookName          = "hook_name"
	ColMessengerCampaign = "messenger_campaign_instance"
)

// MaxAboutLinks caps the about-page links kept per company.
const MaxAboutLinks = 3

// SheetSource reads cached sheets. Missing sheets come back as nil data.
type SheetSource interface {
	Get(ctx context.Context, spreadsheetID, sheetName, rng string) (*model.SheetData, error)
	SheetNames(ctx context.Context, spreadsheetID string) ([]string, error)
}

// Searcher runs the web searches attached to a contact.
type Searcher interface {
	AboutPages(ctx context.Context, website string) ([]model.Link, error)
	CaseStudies(ctx context.Context, website string) ([]model.Link, error)
	MediaMentions(ctx context.Context, personName, company string) ([]model.Link, error)
}

// ProfileFetcher fetches profile data. A profile the provider cannot serve
// comes back as (nil, nil).
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, profileURL string) (*model.ProfilePayload, error)
}

// ImageStore localises a remote image under a key and returns its local
// reference.
type ImageStore interface {
	GetOrFetch(ctx context.Context, url, key string) (string, error)
}

// ContactStore persists enriched contacts keyed by LinkedIn username.
type ContactStore interface {
	UpsertContact(ctx context.Context, c *model.ContactData) error
}

// Deps are the collaborators of an Enricher.
type Deps struct {
	Sheets   SheetSource
	Search   Searcher
	Profiles ProfileFetcher
	Images   ImageStore
	Store    ContactStore
}

// Options tune an Enricher.
type Options struct {
	PrimarySheet   string
	AuxSuffix      string
	Range          string
	RowConcurrency int
	ExtraKeywords  model.PqKeywords
	Now            func() time.Time
}

func (o *Options) defaults() {
	if o.PrimarySheet == "" {
		o.PrimarySheet = "New Connections"
	}
	if o.AuxSuffix == "" {
		o.AuxSuffix = "pq"
	}
	if o.Range == "" {
		o.Range = "A:ZZ"
	}
	if o.RowConcurrency < 1 {
		o.RowConcurrency = 1
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Enricher loads spreadsheets and enriches their rows. It is safe for
// concurrent use and shared by every Orchestrator it creates.
type Enricher struct {
	deps Deps
	opts Options
}

// New creates an Enricher.
func New(deps Deps, opts Options) *Enricher {
	opts.defaults()
	return &Enricher{deps: deps, opts: opts}
}

// AuxSheetNames returns the sheets whose name ends with suffix,
// case-insensitively, in tab order.
func AuxSheetNames(names []string, suffix string) []string {
	suffix = strings.ToLower(suffix)
	var out []string
	for _, n := range names {
		if strings.HasSuffix(strings.ToLower(n), suffix) {
			out = append(out, n)
		}
	}
	return out
}

// LoadSpreadsheet reads the primary sheet and every auxiliary sheet of a
// spreadsheet. Missing sheets yield empty data; auxiliary rows are
// concatenated and renumbered.
func (e *Enricher) LoadSpreadsheet(ctx context.Context, spreadsheetID string) (*model.SpreadsheetData, error) {
	log := zap.L().With(zap.String("spreadsheet_id", spreadsheetID))

	primary, err := e.deps.Sheets.Get(ctx, spreadsheetID, e.opts.PrimarySheet, e.opts.Range)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: load primary sheet")
	}
	if primary == nil {
		log.Warn("enrich: primary sheet missing", zap.String("sheet", e.opts.PrimarySheet))
		primary = &model.SheetData{Headers: []string{}, Rows: []model.Row{}}
	}

	names, err := e.deps.Sheets.SheetNames(ctx, spreadsheetID)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: list sheets")
	}

	pq := &model.SheetData{Headers: []string{}, Rows: []model.Row{}}
	for _, name := range AuxSheetNames(names, e.opts.AuxSuffix) {
		sd, getErr := e.deps.Sheets.Get(ctx, spreadsheetID, name, e.opts.Range)
		if getErr != nil {
			return nil, eris.Wrapf(getErr, "enrich: load auxiliary sheet %s", name)
		}
		if sd == nil {
			continue
		}
		if len(pq.Headers) == 0 {
			pq.Headers = sd.Headers
		}
		for _, r := range sd.Rows {
			r.RowNumber = len(pq.Rows) + 1
			pq.Rows = append(pq.Rows, r)
		}
	}
	if len(pq.Rows) == 0 {
		log.Info("enrich: no auxiliary rows, keywords and websites unavailable")
	}

	return &model.SpreadsheetData{
		ID:             spreadsheetID,
		NewConnections: *primary,
		PqData:         *pq,
		Keywords:       MergeKeywords(ExtractKeywords(pq), e.opts.ExtraKeywords),
	}, nil
}

// EnrichRow builds and persists the contact for one row. Lookup failures
// leave the affected fields blank; only a persistence failure is returned.
func (e *Enricher) EnrichRow(ctx context.Context, data *model.SpreadsheetData, row model.Row) (*model.ContactData, error) {
	contact := e.baseContact(data, row)
	log := zap.L().With(
		zap.String("spreadsheet_id", data.ID),
		zap.Int("row_number", row.RowNumber),
		zap.String("linkedin_username", contact.LinkedInUsername),
	)

	if website := contact.Company.Website; website != "" {
		about, err := e.deps.Search.AboutPages(ctx, website)
		if err != nil {
			log.Warn("enrich: about page search failed", zap.Error(err))
		}
		if len(about) > MaxAboutLinks {
			about = about[:MaxAboutLinks]
		}
		contact.Company.AboutLinks = nonNilLinks(about)

		studies, err := e.deps.Search.CaseStudies(ctx, website)
		if err != nil {
			log.Warn("enrich: case study search failed", zap.Error(err))
		}
		contact.Company.CaseStudyLinks = nonNilLinks(studies)
	}

	media, err := e.deps.Search.MediaMentions(ctx, contact.ParsedName, contact.Company.Name)
	if err != nil {
		log.Warn("enrich: media search failed", zap.Error(err))
	}
	contact.InterviewsAndPodcasts = nonNilLinks(media)

	if contact.ContactProfileLink != "" {
		e.addProfile(ctx, log, contact)
	}

	if p := contact.ProfileResponse; p != nil && len(p.Experiences) > 0 {
		contact.RelevantExperiences = RankExperiences(p.Experiences, contact.ContactJobTitle, contact.Company.Name, data.Keywords, e.opts.Now())
	}

	if contact.LinkedInUsername == "" {
		log.Warn("enrich: no linkedin username, contact not persisted")
		return contact, nil
	}
	if err := e.deps.Store.UpsertContact(ctx, contact); err != nil {
		return nil, eris.Wrap(err, "enrich: upsert contact")
	}
	return contact, nil
}

func (e *Enricher) baseContact(data *model.SpreadsheetData, row model.Row) *model.ContactData {
	fullName := strings.TrimSpace(row.Get(ColFirstName) + " " + row.Get(ColLastName))
	name := ParseName(fullName)
	profileLink := strings.TrimSpace(row.Get(ColProfileLink))

	return &model.ContactData{
		SpreadsheetID:             data.ID,
		RowNumber:                 row.RowNumber,
		LinkedInUsername:          LinkedInUsername(profileLink),
		ContactProfileLink:        profileLink,
		ContactFirstName:          name.First,
		ContactLastName:           name.Last,
		ParsedName:                fullName,
		Qualifications:            name.Qualifications,
		ContactJobTitle:           row.Get(ColJobTitle),
		ContactCompanyName:        CanonicalCompanyName(row.Get(ColCompanyName)),
		HookName:                  row.Get(ColHookName),
		MessengerCampaignInstance: row.Get(ColMessengerCampaign),
		ColoredCells:              append([]string{}, data.NewConnections.ColoredCells...),
		Company:                   ResolveCompany(row.Get(ColCompanyName), &data.PqData),
		ProfilePicture:            row.Get(ColImageLink),
		Languages:                 []string{},
		VolunteerWork:             []model.VolunteerExperience{},
		Experiences:               []model.Experience{},
		InterviewsAndPodcasts:     []model.Link{},
	}
}

func (e *Enricher) addProfile(ctx context.Context, log *zap.Logger, contact *model.ContactData) {
	profile, err := e.deps.Profiles.FetchProfile(ctx, contact.ContactProfileLink)
	if err != nil {
		log.Warn("enrich: profile fetch failed", zap.Error(err))
		return
	}
	if profile == nil {
		return
	}

	if contact.LinkedInUsername != "" {
		if local := e.localImage(ctx, log, profile.ProfilePicURL, contact.LinkedInUsername+"_profile"); local != "" {
			contact.ProfilePicture = local
		}
		if local := e.localImage(ctx, log, profile.BackgroundCoverImageURL, contact.LinkedInUsername+"_banner"); local != "" {
			contact.BannerPicture = local
		}
	}

	contact.Bio = profile.Summary
	contact.Headline = profile.Headline
	contact.Industry = profile.Industry
	if profile.Languages != nil {
		contact.Languages = profile.Languages
	}
	if profile.VolunteerWork != nil {
		contact.VolunteerWork = profile.VolunteerWork
	}
	if profile.Experiences != nil {
		contact.Experiences = profile.Experiences
	}
	contact.ProfileResponse = profile
}

func (e *Enricher) localImage(ctx context.Context, log *zap.Logger, url, key string) string {
	if url == "" {
		return ""
	}
	local, err := e.deps.Images.GetOrFetch(ctx, url, key)
	if err != nil {
		log.Warn("enrich: image fetch failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return local
}

func nonNilLinks(links []model.Link) []model.Link {
	if links == nil {
		return []model.Link{}
	}
	return links
}

// Orchestrator drains the unprocessed rows of one spreadsheet in batches.
// It loads the spreadsheet on first use; the queue is fixed from then on and
// every row is attempted at most once per Orchestrator.
type Orchestrator struct {
	spreadsheetID string
	enricher      *Enricher

	mu        sync.Mutex
	data      *model.SpreadsheetData
	queue     []model.Row
	processed map[int]bool
}

// Orchestrator creates an Orchestrator for a spreadsheet.
func (e *Enricher) Orchestrator(spreadsheetID string) *Orchestrator {
	return &Orchestrator{
		spreadsheetID: spreadsheetID,
		enricher:      e,
		processed:     make(map[int]bool),
	}
}

// SpreadsheetID returns the spreadsheet this orchestrator drains.
func (o *Orchestrator) SpreadsheetID() string {
	return o.spreadsheetID
}

// load must be called with o.mu held.
func (o *Orchestrator) load(ctx context.Context) error {
	if o.data != nil {
		return nil
	}
	data, err := o.enricher.LoadSpreadsheet(ctx, o.spreadsheetID)
	if err != nil {
		return err
	}
	o.data = data
	o.queue = FilterUnprocessed(data.NewConnections.Rows)
	zap.L().Info("enrich: spreadsheet loaded",
		zap.String("spreadsheet_id", o.spreadsheetID),
		zap.Int("rows", len(data.NewConnections.Rows)),
		zap.Int("unprocessed", len(o.queue)),
	)
	return nil
}

// HasMore reports whether rows remain that have not been attempted.
func (o *Orchestrator) HasMore(ctx context.Context) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.load(ctx); err != nil {
		return false, err
	}
	for _, r := range o.queue {
		if !o.processed[r.RowNumber] {
			return true, nil
		}
	}
	return false, nil
}

// ProcessBatch enriches up to n rows not yet attempted, in row order. Rows
// are enriched concurrently up to the configured row concurrency. A row
// that fails is logged and left out of the result; it is not retried.
func (o *Orchestrator) ProcessBatch(ctx context.Context, n int) ([]*model.ContactData, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.load(ctx); err != nil {
		return nil, err
	}

	var batch []model.Row
	for _, r := range o.queue {
		if len(batch) >= n {
			break
		}
		if o.processed[r.RowNumber] {
			continue
		}
		o.processed[r.RowNumber] = true
		batch = append(batch, r)
	}
	if len(batch) == 0 {
		return []*model.ContactData{}, nil
	}

	results := make([]*model.ContactData, len(batch))
	var g errgroup.Group
	g.SetLimit(o.enricher.opts.RowConcurrency)
	for i, row := range batch {
		g.Go(func() error {
			results[i] = o.enrichSafely(ctx, row)
			return nil
		})
	}
	_ = g.Wait()

	contacts := make([]*model.ContactData, 0, len(results))
	for _, c := range results {
		if c != nil {
			contacts = append(contacts, c)
		}
	}
	return contacts, nil
}

func (o *Orchestrator) enrichSafely(ctx context.Context, row model.Row) (contact *model.ContactData) {
	log := zap.L().With(zap.String("spreadsheet_id", o.spreadsheetID), zap.Int("row_number", row.RowNumber))
	defer func() {
		if r := recover(); r != nil {
			log.Error("enrich: row panicked", zap.String("panic", fmt.Sprint(r)))
			contact = nil
		}
	}()

	c, err := o.enricher.EnrichRow(ctx, o.data, row)
	if err != nil {
		log.Error("enrich: row failed", zap.Error(err))
		return nil
	}
	return c
}

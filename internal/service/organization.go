package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-admin/internal/db"
	"github.com/ukydev/fleet-admin/internal/models"
	"github.com/ukydev/fleet-admin/internal/notify"
	"github.com/ukydev/fleet-admin/internal/query"
	"golang.org/x/sync/errgroup"
)

// CreateOrganization registers a new organization and returns its id.
func (s *Service) CreateOrganization(ctx context.Context, actor string, form CreateOrganizationForm) (string, error) {
	s.audit.Record(actor, auditRole, "createOrg")

	if err := s.check(form, ""); err != nil {
		return "", err
	}

	name := strings.TrimSpace(form.Name)
	n, err := s.orgs.CountActiveByName(ctx, name)
	if err != nil {
		return "", Fault("count organizations by name", err)
	}
	if n > 0 {
		return "", Conflict(CodeOrgNameConflict)
	}

	id, err := s.allocate(ctx, db.OrganizationCollectionName)
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	org := models.Organization{
		Tracker:            id,
		Name:               name,
		Category:           strings.TrimSpace(form.Category),
		Address:            strings.TrimSpace(form.Address),
		Area:               strings.TrimSpace(form.Area),
		City:               strings.TrimSpace(form.City),
		State:              strings.TrimSpace(form.State),
		Country:            strings.TrimSpace(form.Country),
		Website:            strings.TrimSpace(form.Website),
		Email:              strings.TrimSpace(form.Email),
		Description:        strings.TrimSpace(form.Description),
		ContactInformation: form.ContactInformation,
		Status:             models.Status(form.Status),
		SMSAlert:           true,
		AppAlert:           true,
		CallAlert:          true,
		EmailAlert:         true,
		OrgStartTime:       form.OrgStartTime,
		OrgEndTime:         form.OrgEndTime,
		OrgRefNo:           now.UnixMilli(),
		OrgLocation:        form.Location,
		Reports:            models.DefaultReports(),
		Weekdays:           models.DefaultWeekdays(),
		CameraModuleView:   truthy(form.CameraModuleView),
		OtherLang:          truthy(form.OtherLang),
		CreatedAt:          now,
	}
	if form.Reports != nil {
		org.Reports = *form.Reports
	}
	if form.Weekdays != nil {
		org.Weekdays = *form.Weekdays
	}
	if form.VoiceCall != nil {
		org.VoiceCall = *form.VoiceCall
	}
	if truthy(form.ClassLists) {
		org.ClassLists = form.ClassLists
	}
	if truthy(form.SectionLists) {
		org.SectionLists = form.SectionLists
	}
	if truthy(form.SchoolSessionLists) {
		org.SchoolSessionLists = form.SchoolSessionLists
	}

	if err := s.orgs.InsertOrganization(ctx, org); err != nil {
		return "", Fault("insert organization", err)
	}
	return id, nil
}

// EditOrganization applies a sparse update. The organization id itself is
// never changed.
func (s *Service) EditOrganization(ctx context.Context, actor string, ref OrganizationRef, form EditOrganizationForm) (string, error) {
	s.audit.Record(actor, auditRole, "editOrg")

	orgID := strings.TrimSpace(ref.OrganizationID)
	if orgID == "" {
		return "", Invalid(CodeMissingUserOrgIDs)
	}
	if err := s.check(form, ""); err != nil {
		return "", err
	}

	patch, err := form.patch()
	if err != nil {
		return "", Invalid("", err.Error())
	}
	if err := s.orgs.UpdateOrganization(ctx, orgID, patch.Set()); err != nil {
		return "", notFoundOr(err, CodeOrgNotFound, "update organization")
	}
	return orgID, nil
}

func (f EditOrganizationForm) patch() (models.OrganizationPatch, error) {
	p := models.OrganizationPatch{
		Name:         opt(f.Name),
		Category:     opt(f.Category),
		Address:      opt(f.Address),
		Area:         opt(f.Area),
		City:         opt(f.City),
		State:        opt(f.State),
		Country:      opt(f.Country),
		Website:      opt(f.Website),
		Email:        opt(f.Email),
		Description:  opt(f.Description),
		OrgStartTime: opt(f.OrgStartTime),
		OrgEndTime:   opt(f.OrgEndTime),
		Reports:      f.Reports,
		Weekdays:     f.Weekdays,
		VoiceCall:    f.VoiceCall,
		CallingURL:   strings.TrimSpace(f.CallingURL),
	}
	if truthy(f.ContactInformation) {
		p.ContactInformation = f.ContactInformation
	}
	if truthy(f.Location) {
		p.OrgLocation = f.Location
	}
	if truthy(f.ClassLists) {
		p.ClassLists = f.ClassLists
	}
	if truthy(f.SectionLists) {
		p.SectionLists = f.SectionLists
	}
	if v, ok := f.SchoolSessionLists.(string); ok && v == "clear" {
		p.ClearSchoolSessions = true
	} else if truthy(f.SchoolSessionLists) {
		p.SchoolSessionLists = f.SchoolSessionLists
	}

	flags := []struct {
		name string
		raw  *string
		dst  *models.Flag
	}{
		{"smsAlert", f.SMSAlert, &p.SMSAlert},
		{"appAlert", f.AppAlert, &p.AppAlert},
		{"emailAlert", f.EmailAlert, &p.EmailAlert},
		{"callAlert", f.CallAlert, &p.CallAlert},
		{"rfidAlert", f.RFIDAlert, &p.RFIDAlert},
		{"etaAlert", f.ETAAlert, &p.ETAAlert},
		{"alertlock", f.AlertLock, &p.AlertLock},
		{"cameraModuleView", f.CameraModuleView, &p.CameraModuleView},
		{"otherlang", f.OtherLang, &p.OtherLang},
	}
	for _, fl := range flags {
		v, err := models.ParseFlag(fl.raw)
		if err != nil {
			return p, fmt.Errorf("%q: %w", fl.name, err)
		}
		*fl.dst = v
	}
	return p, nil
}

// CascadeReport counts what an organization delete changed.
type CascadeReport struct {
	Held               map[string]int64
	AssignmentsDeleted int64
}

// cascadeChildren are held concurrently once users and trackers are done.
var cascadeChildren = []string{
	db.RouteCollectionName,
	db.PickupCollectionName,
	db.MemberCollectionName,
	db.TemplateCollectionName,
}

// DeleteOrganization soft-deletes an active organization and everything
// that belongs to it. The organization is put on hold first, then its
// users and trackers, then routes, pickups, members and templates. Its
// assignments are removed for good. A failure part way leaves the earlier
// steps applied; repeating the request finishes the job.
func (s *Service) DeleteOrganization(ctx context.Context, actor string, form DeleteOrganizationForm) (CascadeReport, error) {
	s.audit.Record(actor, auditRole, "deleteOrg")

	report := CascadeReport{Held: map[string]int64{}}
	if msgs := s.validator.Struct(form); len(msgs) > 0 {
		return report, Invalid(CodeBadFilter, msgs...)
	}
	orgID := strings.TrimSpace(form.OrgID)

	if _, err := s.orgs.FindOrganization(ctx, orgID, models.StatusActive); err != nil {
		return report, notFoundOr(err, CodeOrgNotFound, "find organization")
	}
	if err := s.orgs.SetOrganizationStatus(ctx, orgID, models.StatusHold); err != nil {
		return report, Fault("hold organization", err)
	}

	for _, c := range []string{db.OrgUserCollectionName, db.TrackerCollectionName} {
		n, err := s.cascade.HoldChildren(ctx, c, orgID)
		if err != nil {
			return report, Fault("hold "+c, err)
		}
		report.Held[c] = n
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range cascadeChildren {
		g.Go(func() error {
			n, err := s.cascade.HoldChildren(gctx, c, orgID)
			if err != nil {
				return fmt.Errorf("hold %s: %w", c, err)
			}
			mu.Lock()
			report.Held[c] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, Fault("cascade", err)
	}

	deleted, err := s.cascade.DeleteAssignments(ctx, orgID)
	if err != nil {
		return report, Fault("delete assignments", err)
	}
	report.AssignmentsDeleted = deleted

	s.audit.RecordAction(actor, "delete", "Org")
	s.notifier.Publish(notify.Event{Event: notify.EventOrganizationHold, OrganizationID: orgID, At: s.clock.Now()})

	s.log.WithFields(logrus.Fields{
		"organizationId": orgID,
		"held":           report.Held,
		"assignments":    report.AssignmentsDeleted,
	}).Info("organization put on hold")
	return report, nil
}

// ViewOrganizations lists active organizations with their last login and
// active user and tracker counts.
func (s *Service) ViewOrganizations(ctx context.Context, actor string, filter query.OrganizationFilter, extra models.Extra) ([]models.Organization, error) {
	s.audit.Record(actor, auditRole, "viewOrgs")

	if err := s.check(filter, ""); err != nil {
		return nil, err
	}

	q, ok, err := query.Organizations(ctx, filter, s.trackers)
	if err != nil {
		return nil, Fault("build organization filter", err)
	}
	if !ok {
		return []models.Organization{}, nil
	}

	page := query.Paginate(extra, query.OrganizationPageSize, "cashedDATEobjInsert")
	orgs, err := s.orgs.FindOrganizations(ctx, q, page.FindOptions())
	if err != nil {
		return nil, Fault("find organizations", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range orgs {
		org := &orgs[i]
		g.Go(func() error {
			return s.enrich(gctx, org)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Fault("enrich organizations", err)
	}
	return orgs, nil
}

func (s *Service) enrich(ctx context.Context, org *models.Organization) error {
	latest, err := s.logins.FindLatestLogin(ctx, org.Tracker)
	switch {
	case err == nil:
		org.LastLogin = latest
	case !errors.Is(err, db.ErrNotFound):
		return err
	}

	if org.OrgTrackerCount, err = s.trackers.CountActiveInOrg(ctx, org.Tracker); err != nil {
		return err
	}
	if org.OrgUserCount, err = s.users.CountActiveInOrg(ctx, org.Tracker); err != nil {
		return err
	}
	return nil
}

// Dashboard counts active organizations, trackers, admins and users.
func (s *Service) Dashboard(ctx context.Context, actor string) (models.DashboardCounts, error) {
	s.audit.Record(actor, auditRole, "adminDashboardCounts")

	var counts models.DashboardCounts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts.ActiveOrgCount, err = s.orgs.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		counts.ActiveTrackerCount, err = s.trackers.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		counts.ActiveAdminUC, err = s.admins.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		counts.ActiveOrgAdminUC, err = s.users.CountActive(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DashboardCounts{}, Fault("dashboard counts", err)
	}
	return counts, nil
}

// Package ingest turns a center document into stored organizations, resources and
// responsibilities.
package ingest

import (
	"context"
	"errors"
	"strconv"

	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/domain/dto"
	"github.com/ougirez/certzone/internal/pkg/constants"
	"github.com/ougirez/certzone/internal/pkg/logger"
	"github.com/ougirez/certzone/internal/pkg/store"
	"github.com/ougirez/certzone/internal/service/registry"
	"github.com/ougirez/certzone/internal/service/resolver"
)

type Resolver interface {
	Resolve(ctx context.Context, repo resolver.Lookup, id dto.OrgIdentity) (*domain.Organization, error)
}

type Formatter interface {
	Format(ctx context.Context, a dto.Address) domain.FormattedAddress
	FormatAll(ctx context.Context, addrs []dto.Address) (string, []int64)
}

type Catalog interface {
	HasRegion(code int64) bool
	ServiceIDs(names []string) []int64
}

type Engine struct {
	resolver  Resolver
	formatter Formatter
	catalog   Catalog
}

func NewEngine(r Resolver, f Formatter, c Catalog) *Engine {
	return &Engine{resolver: r, formatter: f, catalog: c}
}

// Apply walks the document and writes everything through tx. Committing is the caller's job.
// Fatal conditions come back as *domain.IngestError; a skipped zone is not one.
func (e *Engine) Apply(ctx context.Context, tx store.Repository, doc *dto.CenterDocument) (domain.Outcome, error) {
	var out domain.Outcome
	if doc == nil {
		return out, domain.NewIngestError(domain.FailureInternal, "apply", constants.ErrNilDocument)
	}

	logger.Infof(ctx, "processing center %q (class %s, formed %s)", doc.CenterName, doc.CenterClass, doc.DateForm.Format(dateLayout))

	owner, err := e.resolve(ctx, tx, doc.Owner)
	if err != nil {
		return out, err
	}
	if owner == nil {
		logger.Errorf(ctx, "center owner (INN %s) not found, giving up", doc.Owner.INN)
		return out, domain.NewIngestError(domain.FailureOwnerNotFound, "owner INN "+doc.Owner.INN, nil)
	}
	if !owner.HasAgreement() {
		logger.Errorf(ctx, "center owner %s has no cooperation agreement, giving up", owner)
		return out, domain.NewIngestError(domain.FailureOwnerNoAgreement, owner.String(), nil)
	}

	mailing := e.formatter.Format(ctx, doc.CenterAddress)
	if err = tx.UpdateMailingAddress(ctx, owner.ID, mailing.Address); err != nil {
		return out, persistence("UpdateMailingAddress", err)
	}
	n, err := e.writeContacts(ctx, tx, owner.ID, doc.Contacts, true)
	if err != nil {
		return out, err
	}
	out.ContactsWritten += n

	cert, err := e.upsertCert(ctx, tx, doc, owner.ID)
	if err != nil {
		return out, err
	}
	out.CertID = cert.ID

	if len(doc.Zones) == 0 {
		logger.Info(ctx, "document declares no responsibility zones")
		return out, nil
	}

	for i := range doc.Zones {
		if err = e.applyZone(ctx, tx, &doc.Zones[i], owner, cert, &out); err != nil {
			return out, err
		}
	}

	logger.Infof(ctx, "center %q processed: %d zones, %d skipped, %d responsibilities created, %d already present",
		doc.CenterName, out.ZonesProcessed, out.ZonesSkipped, out.ResponsibilitiesCreated, out.ResponsibilitiesSkipped)
	return out, nil
}

func (e *Engine) resolve(ctx context.Context, tx store.Repository, id dto.OrgIdentity) (*domain.Organization, error) {
	org, err := e.resolver.Resolve(ctx, tx, id)
	if err == nil {
		return org, nil
	}
	if errors.Is(err, registry.ErrWrongFormat) {
		return nil, domain.NewIngestError(domain.FailureRegistryContract, "resolve INN "+id.INN, err)
	}
	return nil, persistence("resolve INN "+id.INN, err)
}

func (e *Engine) upsertCert(ctx context.Context, tx store.Repository, doc *dto.CenterDocument, ownerID int64) (*domain.Cert, error) {
	dateForm := doc.DateForm

	cert, err := tx.GetCert(ctx, doc.CenterName, ownerID)
	switch {
	case errors.Is(err, constants.ErrDBNotFound):
		cert = domain.NewCert(doc.CenterName, ownerID)
		cert.Type = doc.CenterClass
		cert.DateActualResp = &dateForm
		if err = tx.CreateCert(ctx, cert); err != nil {
			return nil, persistence("CreateCert", err)
		}
		logger.Infof(ctx, "cert %q created", cert.Name)
		return cert, nil
	case err != nil:
		return nil, persistence("GetCert", err)
	}

	cert.Type = doc.CenterClass
	cert.DateActualResp = &dateForm
	if err = tx.UpdateCert(ctx, cert); err != nil {
		return nil, persistence("UpdateCert", err)
	}
	logger.Infof(ctx, "cert %q refreshed", cert.Name)
	return cert, nil
}

// writeContacts replaces the organization's contacts, or appends to them when replace is false.
func (e *Engine) writeContacts(ctx context.Context, tx store.Repository, orgID int64, in []dto.Contact, replace bool) (int, error) {
	if replace {
		deleted, err := tx.DeleteContacts(ctx, orgID)
		if err != nil {
			return 0, persistence("DeleteContacts", err)
		}
		logger.Debugf(ctx, "%d old contacts of organization %d removed", deleted, orgID)
	}

	contacts := make([]*domain.Contact, 0, len(in))
	for _, c := range in {
		contacts = append(contacts, &domain.Contact{
			OrgID:     orgID,
			FIO:       c.FIO,
			Dep:       c.Dep,
			Pos:       c.Pos,
			MobPhone:  c.MobPhone,
			WorkPhone: c.WorkPhone,
			Email:     c.Email,
		})
	}
	if err := tx.CreateContacts(ctx, contacts); err != nil {
		return 0, persistence("CreateContacts", err)
	}

	logger.Infof(ctx, "contacts found: %d", len(contacts))
	return len(contacts), nil
}

func (e *Engine) applyZone(
	ctx context.Context,
	tx store.Repository,
	zone *dto.Zone,
	owner *domain.Organization,
	cert *domain.Cert,
	out *domain.Outcome,
) error {
	org, err := e.resolve(ctx, tx, zone.Org)
	if err != nil {
		return err
	}
	if org == nil {
		// зона пропускается, файл продолжаем
		logger.Errorf(ctx, "zone organization %s (INN/KPP %s/%s) not found, skipping %d resources",
			zone.Org.FullName, zone.Org.INN, zone.Org.KPP, len(zone.Resources))
		out.ZonesSkipped++
		return nil
	}

	if org.IsNew() {
		if err = tx.CreateOrganization(ctx, org); err != nil {
			return persistence("CreateOrganization", err)
		}
		out.OrganizationsCreated++
		logger.Infof(ctx, "organization %s saved from the registry", org)
	}

	n, err := e.writeContacts(ctx, tx, org.ID, zone.Contacts, org.ID != owner.ID)
	if err != nil {
		return err
	}
	out.ContactsWritten += n

	for i := range zone.Resources {
		if err = e.applyResource(ctx, tx, &zone.Resources[i], org, cert, out); err != nil {
			return err
		}
	}

	out.ZonesProcessed++
	return nil
}

func (e *Engine) applyResource(
	ctx context.Context,
	tx store.Repository,
	in *dto.Resource,
	org *domain.Organization,
	cert *domain.Cert,
	out *domain.Outcome,
) error {
	addresses, codes := e.formatter.FormatAll(ctx, in.Addresses)

	res, err := tx.GetResource(ctx, in.Name, org.ID)
	isNew := errors.Is(err, constants.ErrDBNotFound)
	if err != nil && !isNew {
		return persistence("GetResource", err)
	}
	if isNew {
		res = domain.NewResource(in.Name, org.ID)
	}

	res.FactualAddresses = addresses
	res.RegionIDs = e.knownRegions(codes)
	res.IsOKII = in.KII.IsOKII()
	res.FSTECRegNumber = in.KII.FSTECRegNumber
	res.Category = e.category(ctx, in)

	if isNew {
		if err = tx.CreateResource(ctx, res); err != nil {
			return persistence("CreateResource", err)
		}
		out.ResourcesCreated++
	} else {
		if err = tx.UpdateResource(ctx, res); err != nil {
			return persistence("UpdateResource", err)
		}
		out.ResourcesUpdated++
	}
	logger.Infof(ctx, "resource %q processed", res.Name)

	d := in.Document
	if d.EndsBeforeStart() {
		logger.Errorf(ctx, "resource %q: document end date %s is before start date %s",
			res.Name, d.DateEnd.Format(dateLayout), d.DateStart.Format(dateLayout))
		out.DateOrderViolations++
	}

	resp := &domain.Responsibility{
		ResourceID: res.ID,
		CertID:     cert.ID,
		Type:       d.Type,
		Props:      d.Props,
		DateStart:  d.DateStart,
		DateEnd:    d.DateEnd,
		Comment:    d.Comment,
	}

	exists, err := tx.ResponsibilityExists(ctx, resp.Key())
	if err != nil {
		return persistence("ResponsibilityExists", err)
	}
	if exists {
		logger.Warnf(ctx, "responsibility for resource %q already stored, skipping", res.Name)
		out.ResponsibilitiesSkipped++
		return nil
	}

	resp.ServiceIDs = e.catalog.ServiceIDs(in.Services)
	if dropped := len(in.Services) - len(resp.ServiceIDs); dropped > 0 {
		logger.Debugf(ctx, "resource %q: %d services not in the catalogue", res.Name, dropped)
	}
	if err = tx.CreateResponsibility(ctx, resp); err != nil {
		return persistence("CreateResponsibility", err)
	}
	logger.Infof(ctx, "responsibility for resource %q created with %d services", res.Name, len(resp.ServiceIDs))
	out.ResponsibilitiesCreated++

	return nil
}

func (e *Engine) knownRegions(codes []int64) []int64 {
	ids := make([]int64, 0, len(codes))
	for _, code := range codes {
		if e.catalog.HasRegion(code) {
			ids = append(ids, code)
		}
	}
	return ids
}

func (e *Engine) category(ctx context.Context, in *dto.Resource) *int16 {
	if in.KII.Category == "" {
		return nil
	}
	c, err := strconv.ParseInt(in.KII.Category, 10, 16)
	if err != nil {
		logger.Warnf(ctx, "resource %q: category %q is not a number, ignored", in.Name, in.KII.Category)
		return nil
	}
	v := int16(c)
	return &v
}

func persistence(op string, err error) error {
	return domain.NewIngestError(domain.FailurePersistence, op, err)
}

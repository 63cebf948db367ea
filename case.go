package capsule

import (
	"context"
	"net/url"
	"strings"

	"github.com/capsulecrm-go/capsule/models"
	"github.com/pkg/errors"
)

// Attributes is a partial set of case attributes. Nil fields are left
// untouched when applied to a Case.
type Attributes struct {
	Name        *string
	Description *string
	Status      *string
	CloseDate   *models.Date
	Owner       *string

	// Party and PartyID both set the owning party; Party wins when both are
	// given and it carries an id
	Party   *models.Party
	PartyID *models.ID

	// Track and TrackID both set the track; Track wins when both are given
	// and it carries an id
	Track   *models.Track
	TrackID *models.ID
}

// String returns a pointer to s, for filling Attributes
func String(s string) *string {
	return &s
}

// Case is a CapsuleCRM case bound to the services it persists through.
// It is a local copy of remote state; two Cases with the same ID do not
// know about each other.
type Case struct {
	models.Case

	// Errors holds the failures from the last validation
	Errors []FieldError

	party *models.Party
	track *models.Track

	gateway    Gateway
	serializer Serializer
	resolver   AssociationResolver
}

func (c *Case) apply(attrs Attributes) {
	if attrs.Name != nil {
		c.Name = *attrs.Name
	}
	if attrs.Description != nil {
		c.Description = *attrs.Description
	}
	if attrs.Status != nil {
		c.Status = *attrs.Status
	}
	if attrs.CloseDate != nil {
		c.CloseDate = attrs.CloseDate
	}
	if attrs.Owner != nil {
		c.Owner = *attrs.Owner
	}

	if attrs.PartyID != nil {
		c.PartyID = attrs.PartyID
		c.party = nil
	}
	// a Party or Track without an id is ignored rather than clearing the key
	if attrs.Party != nil && attrs.Party.ID != nil {
		c.PartyID = attrs.Party.ID
		c.party = attrs.Party
	}

	if attrs.TrackID != nil {
		c.TrackID = attrs.TrackID
		c.track = nil
	}
	if attrs.Track != nil && attrs.Track.ID != nil {
		c.TrackID = attrs.Track.ID
		c.track = attrs.Track
	}
}

// merge copies every field the server sent back over the local copy
func (c *Case) merge(remote models.Case) {
	if remote.ID != nil {
		c.ID = remote.ID
	}
	if remote.Name != "" {
		c.Name = remote.Name
	}
	if remote.Description != "" {
		c.Description = remote.Description
	}
	if remote.Status != "" {
		c.Status = remote.Status
	}
	if remote.CloseDate != nil {
		c.CloseDate = remote.CloseDate
	}
	if remote.Owner != "" {
		c.Owner = remote.Owner
	}
	if remote.PartyID != nil {
		c.PartyID = remote.PartyID
	}
	if remote.TrackID != nil {
		c.TrackID = remote.TrackID
	}
}

// IsNewRecord reports whether the case has no remote id
func (c *Case) IsNewRecord() bool {
	return c.ID == nil
}

// IsPersisted reports whether the case has a remote id
func (c *Case) IsPersisted() bool {
	return !c.IsNewRecord()
}

// Validate checks the attributes locally and records any failures in
// c.Errors. It returns a *RecordInvalid when there are any. An id is
// always numeric here since models.ID refuses anything else on decode.
func (c *Case) Validate() error {
	c.Errors = nil
	if strings.TrimSpace(c.Name) == "" {
		c.Errors = append(c.Errors, FieldError{Field: "name", Message: "can't be blank"})
	}
	if c.PartyID == nil {
		c.Errors = append(c.Errors, FieldError{Field: "party", Message: "can't be blank"})
	}
	switch c.Status {
	case "", models.StatusOpen, models.StatusClosed:
	default:
		c.Errors = append(c.Errors, FieldError{Field: "status", Message: "must be OPEN or CLOSED"})
	}

	if len(c.Errors) > 0 {
		return &RecordInvalid{Errors: c.Errors}
	}
	return nil
}

// Save validates the case and, when valid, creates or updates it remotely.
// It returns false without making a request when the case is invalid.
// Transport errors are returned as the gateway produced them.
func (c *Case) Save(ctx context.Context) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, nil
	}
	if err := c.persist(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// SaveStrict is Save, but returns a *RecordInvalid when the case is invalid
func (c *Case) SaveStrict(ctx context.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.persist(ctx)
}

// UpdateAttributes applies attrs and saves
func (c *Case) UpdateAttributes(ctx context.Context, attrs Attributes) (bool, error) {
	c.apply(attrs)
	return c.Save(ctx)
}

// UpdateAttributesStrict applies attrs and saves, returning a *RecordInvalid
// when the result is invalid
func (c *Case) UpdateAttributesStrict(ctx context.Context, attrs Attributes) error {
	c.apply(attrs)
	return c.SaveStrict(ctx)
}

// Destroy deletes the case remotely. The local id is cleared only when the
// gateway reports the delete succeeded; the Case is then a detached copy.
func (c *Case) Destroy(ctx context.Context) (*Case, error) {
	if c.IsNewRecord() {
		return c, nil
	}
	ok, err := c.gateway.Delete(ctx, casePath(*c.ID))
	if err != nil {
		return c, err
	}
	if ok {
		c.ID = nil
	}
	return c, nil
}

func (c *Case) persist(ctx context.Context) error {
	if c.IsNewRecord() {
		return c.createRecord(ctx)
	}
	_, err := c.updateRecord(ctx)
	return err
}

func (c *Case) createRecord(ctx context.Context) error {
	path := "/api/party/" + c.PartyID.String() + "/kase"
	if c.TrackID != nil {
		q := url.Values{}
		q.Set("trackId", c.TrackID.String())
		path += "?" + q.Encode()
	}

	body, err := c.serializer.EncodeCase(c.Case)
	if err != nil {
		return err
	}
	resp, err := c.gateway.Post(ctx, path, body)
	if err != nil {
		return err
	}
	remote, err := c.serializer.DecodeCase(resp)
	if err != nil {
		return err
	}
	if remote.ID == nil {
		return errors.Errorf("create response for party %s carried no kase id", c.PartyID)
	}
	c.merge(remote)
	return nil
}

// updateRecord returns the raw PUT response. Unlike createRecord it does
// not merge the response into c, so server-side normalisation on update is
// not reflected locally.
func (c *Case) updateRecord(ctx context.Context) ([]byte, error) {
	body, err := c.serializer.EncodeCase(c.Case)
	if err != nil {
		return nil, err
	}
	return c.gateway.Put(ctx, casePath(*c.ID), body)
}

// Party returns the owning party, fetching it on first use
func (c *Case) Party(ctx context.Context) (*models.Party, error) {
	if c.PartyID == nil {
		return nil, nil
	}
	if c.party != nil && c.party.ID != nil && *c.party.ID == *c.PartyID {
		return c.party, nil
	}
	p, err := c.resolver.Party(ctx, *c.PartyID)
	if err != nil {
		return nil, err
	}
	c.party = p
	return p, nil
}

// Track returns the case's track, if any, fetching it on first use
func (c *Case) Track(ctx context.Context) (*models.Track, error) {
	if c.TrackID == nil {
		return nil, nil
	}
	if c.track != nil && c.track.ID != nil && *c.track.ID == *c.TrackID {
		return c.track, nil
	}
	t, err := c.resolver.Track(ctx, *c.TrackID)
	if err != nil {
		return nil, err
	}
	c.track = t
	return t, nil
}

// Tasks queries the tasks attached to the case. Tasks are never cached.
func (c *Case) Tasks(ctx context.Context) ([]models.Task, error) {
	if c.IsNewRecord() {
		return nil, nil
	}
	return c.resolver.Tasks(ctx, *c.ID)
}

func casePath(id models.ID) string {
	return "/api/kase/" + id.String()
}

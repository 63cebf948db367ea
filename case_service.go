package capsule

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/capsulecrm-go/capsule/models"
)

// lastModifiedLayout is the timestamp format the list endpoints filter on
const lastModifiedLayout = "20060102T150405"

// ListOptions narrows a case listing. Zero values are not sent.
type ListOptions struct {
	LastModified time.Time
	Start        int
	Limit        int
}

func (o ListOptions) query() string {
	q := url.Values{}
	if !o.LastModified.IsZero() {
		q.Set("lastmodified", o.LastModified.UTC().Format(lastModifiedLayout))
	}
	if o.Start > 0 {
		q.Set("start", strconv.Itoa(o.Start))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// CaseService builds Case records wired to a gateway, a serializer and an
// association resolver, and runs the collection-level queries.
type CaseService struct {
	gateway    Gateway
	serializer Serializer
	resolver   AssociationResolver
}

// NewCaseService composes a CaseService from its three collaborators
func NewCaseService(gw Gateway, ser Serializer, res AssociationResolver) *CaseService {
	return &CaseService{
		gateway:    gw,
		serializer: ser,
		resolver:   res,
	}
}

// NewClient connects to the API described by cfg and returns a CaseService
// using the JSON serializer and a gateway-backed resolver.
func NewClient(cfg Config, opts ...Option) (*CaseService, error) {
	conn, err := NewConnection(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewCaseService(conn, NewCaseSerializer(), NewGatewayResolver(conn)), nil
}

// New builds an unsaved case in memory. No request is made.
func (s *CaseService) New(attrs Attributes) *Case {
	c := s.bind(models.Case{})
	c.apply(attrs)
	return c
}

func (s *CaseService) bind(m models.Case) *Case {
	return &Case{
		Case:       m,
		gateway:    s.gateway,
		serializer: s.serializer,
		resolver:   s.resolver,
	}
}

// Create builds a case and tries to save it. The case is returned whether
// or not it saved; an invalid case comes back without an id and with
// Errors set, and no request is made for it.
func (s *CaseService) Create(ctx context.Context, attrs Attributes) (*Case, error) {
	c := s.New(attrs)
	if _, err := c.Save(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// CreateStrict is Create, but returns a *RecordInvalid when the case is invalid
func (s *CaseService) CreateStrict(ctx context.Context, attrs Attributes) (*Case, error) {
	c := s.New(attrs)
	if err := c.SaveStrict(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// Find fetches a single case by id
func (s *CaseService) Find(ctx context.Context, id models.ID) (*Case, error) {
	body, err := s.gateway.Get(ctx, casePath(id))
	if err != nil {
		return nil, err
	}
	m, err := s.serializer.DecodeCase(body)
	if err != nil {
		return nil, err
	}
	return s.bind(m), nil
}

// All lists cases visible to the API token
func (s *CaseService) All(ctx context.Context, opts ListOptions) ([]*Case, error) {
	return s.list(ctx, "/api/kase"+opts.query())
}

// ForParty lists the cases owned by a party
func (s *CaseService) ForParty(ctx context.Context, partyID models.ID) ([]*Case, error) {
	return s.list(ctx, "/api/party/"+partyID.String()+"/kase")
}

// ForTrack always fails: the API cannot list cases by track.
func (s *CaseService) ForTrack(ctx context.Context, track *models.Track) ([]*Case, error) {
	return nil, ErrUnsupported
}

func (s *CaseService) list(ctx context.Context, path string) ([]*Case, error) {
	body, err := s.gateway.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	ms, err := s.serializer.DecodeCases(body)
	if err != nil {
		return nil, err
	}
	cases := make([]*Case, 0, len(ms))
	for _, m := range ms {
		cases = append(cases, s.bind(m))
	}
	return cases, nil
}

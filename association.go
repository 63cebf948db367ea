package capsule

import (
	"context"
	"encoding/json"

	"github.com/capsulecrm-go/capsule/models"
	"github.com/pkg/errors"
)

// AssociationResolver loads the records a case refers to
type AssociationResolver interface {
	Party(ctx context.Context, id models.ID) (*models.Party, error)
	Track(ctx context.Context, id models.ID) (*models.Track, error)
	Tasks(ctx context.Context, caseID models.ID) ([]models.Task, error)
}

// GatewayResolver resolves associations by querying the API through a Gateway
type GatewayResolver struct {
	gateway Gateway
}

// Verify that GatewayResolver implements AssociationResolver.
var _ AssociationResolver = (*GatewayResolver)(nil)

// NewGatewayResolver returns a resolver reading through gw
func NewGatewayResolver(gw Gateway) *GatewayResolver {
	return &GatewayResolver{gateway: gw}
}

// Party fetches a person or organisation by id
func (r *GatewayResolver) Party(ctx context.Context, id models.ID) (*models.Party, error) {
	body, err := r.gateway.Get(ctx, "/api/party/"+id.String())
	if err != nil {
		return nil, err
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "decoding party envelope")
	}
	for _, kind := range []string{models.PartyTypePerson, models.PartyTypeOrganisation} {
		inner, ok := env[kind]
		if !ok {
			continue
		}
		var p models.Party
		if err := json.Unmarshal(inner, &p); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", kind)
		}
		p.Type = kind
		return &p, nil
	}
	return nil, errors.Errorf("party %s response is neither a person nor an organisation", id)
}

// Track finds a track by id. The API has no single-track endpoint, so the
// full list is fetched and searched.
func (r *GatewayResolver) Track(ctx context.Context, id models.ID) (*models.Track, error) {
	body, err := r.gateway.Get(ctx, "/api/tracks")
	if err != nil {
		return nil, err
	}

	var tracks []models.Track
	if err := decodeCollection(body, "tracks", "track", &tracks); err != nil {
		return nil, err
	}
	for i := range tracks {
		if tracks[i].ID != nil && *tracks[i].ID == id {
			return &tracks[i], nil
		}
	}
	return nil, errors.Errorf("track %s not found", id)
}

// Tasks lists the tasks attached to a case
func (r *GatewayResolver) Tasks(ctx context.Context, caseID models.ID) ([]models.Task, error) {
	body, err := r.gateway.Get(ctx, "/api/kase/"+caseID.String()+"/tasks")
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := decodeCollection(body, "tasks", "task", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

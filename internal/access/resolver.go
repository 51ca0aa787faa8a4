package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/logger"
)

// ErrUnknownResourceType indicates a check against a resource type that was
// never registered. At the top level this is a programmer error; during
// delegation it simply disqualifies the candidate.
var ErrUnknownResourceType = errors.New("access: unknown resource type")

// CheckRequest describes one permission question: may the requester exercise
// the capability on the resource, under the given minimum-role gate, at the
// given instant. A zero At means time.Now().UTC(); tests inject deterministic
// timestamps.
type CheckRequest struct {
	RequesterID  string
	ResourceType string
	ResourceID   string
	Capability   Capability
	MinimumRole  MinimumRole
	At           time.Time
}

// Resolver is the permission resolution engine. It composes the principal
// resolver, the special-ownership rules, reference delegation, and the grant
// store into a single decision procedure. It performs only reads and is safe
// for concurrent use.
type Resolver struct {
	db         *gorm.DB
	identity   IdentityConfig
	types      *TypeRegistry
	principals *PrincipalResolver
	log        *zap.Logger
}

// NewResolver constructs the engine. A nil registry selects the built-in
// resource types.
func NewResolver(db *gorm.DB, identity IdentityConfig, types *TypeRegistry) (*Resolver, error) {
	if db == nil {
		return nil, errors.New("access: resolver: db is required")
	}
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if types == nil {
		types = DefaultRegistry()
	}

	principals, err := NewPrincipalResolver(db)
	if err != nil {
		return nil, err
	}

	return &Resolver{
		db:         db,
		identity:   identity,
		types:      types,
		principals: principals,
		log:        logger.WithModule("access"),
	}, nil
}

// Identity exposes the configured well-known IDs to collaborators.
func (r *Resolver) Identity() IdentityConfig {
	return r.identity
}

// CheckPermission answers a single permission question. Denial is a
// first-class return value; a non-nil error is reserved for datastore
// failures and misconfigured resource types. A missing resource yields
// Decision{Result: ResultError, Reason: "resource not found"} with a nil
// error so callers can choose their 404-vs-403 policy.
func (r *Resolver) CheckPermission(ctx context.Context, req CheckRequest) (Decision, error) {
	req.RequesterID = strings.TrimSpace(req.RequesterID)
	if req.RequesterID == "" {
		return errorDecision("requester id is required"), errors.New("access: requester id is required")
	}
	req.ResourceType = strings.TrimSpace(req.ResourceType)
	req.ResourceID = strings.TrimSpace(req.ResourceID)
	if req.ResourceType == "" || req.ResourceID == "" {
		return errorDecision("resource type and id are required"), errors.New("access: resource type and id are required")
	}
	if _, err := ParseCapability(string(req.Capability)); err != nil {
		return errorDecision("unknown capability"), err
	}
	if req.At.IsZero() {
		req.At = time.Now().UTC()
	}

	decision, err := r.check(ctx, req, false, make(map[string]struct{}))
	if err != nil {
		return decision, err
	}

	r.log.Debug("permission resolved",
		zap.String("requester_id", req.RequesterID),
		zap.String("resource_type", req.ResourceType),
		zap.String("resource_id", req.ResourceID),
		zap.String("capability", string(req.Capability)),
		zap.String("result", string(decision.Result)),
		zap.String("reason", decision.Reason),
	)

	return decision, nil
}

// check is the recursive core. referred marks delegated evaluations, which
// disable the creator bypass; visited guards against delegation cycles so the
// procedure always terminates.
func (r *Resolver) check(ctx context.Context, req CheckRequest, referred bool, visited map[string]struct{}) (Decision, error) {
	key := req.ResourceType + "/" + req.ResourceID
	if _, seen := visited[key]; seen {
		return deny("delegation cycle"), nil
	}
	visited[key] = struct{}{}

	rt, ok := r.types.Lookup(req.ResourceType)
	if !ok {
		return errorDecision("unknown resource type"), fmt.Errorf("%w %q", ErrUnknownResourceType, req.ResourceType)
	}

	rec, err := loadRecord(ctx, r.db, rt.Table, req.ResourceID)
	if err != nil {
		return errorDecision("datastore failure"), err
	}
	if rec == nil {
		return errorDecision(ReasonNotFound), nil
	}

	class := r.identity.Classify(req.RequesterID)

	if d, err := r.evaluateOwnership(ctx, rt, rec, req, class, referred); err != nil {
		return errorDecision("datastore failure"), err
	} else if d != nil {
		return *d, nil
	}

	set, err := r.principals.principalsOf(ctx, req.RequesterID)
	if err != nil {
		return errorDecision("datastore failure"), err
	}

	grants, err := activeGrants(ctx, r.db, rt.Table, req.ResourceID, set, req.At)
	if err != nil {
		return errorDecision("datastore failure"), err
	}

	for i := range grants {
		if Allows(grants[i].CapabilitySet, req.Capability) {
			return grant(fmt.Sprintf("active grant %s", grants[i].ID)), nil
		}
	}

	// Delegation is an OR across declared targets, evaluated in declaration
	// order; the first grant wins. Unresolvable targets are skipped, never
	// raised.
	for _, ref := range rt.References {
		targetType, targetID, ok := resolveReference(rec, ref)
		if !ok {
			continue
		}

		child := req
		child.ResourceType = targetType
		child.ResourceID = targetID

		d, err := r.check(ctx, child, true, visited)
		if err != nil {
			if errors.Is(err, ErrUnknownResourceType) {
				continue
			}
			return errorDecision("datastore failure"), err
		}
		if d.Result == ResultGranted {
			return grant(fmt.Sprintf("delegated via %s: %s", ref.Name, d.Reason)), nil
		}
	}

	return deny("no active grant"), nil
}

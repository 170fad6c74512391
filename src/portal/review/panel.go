// Package review is the admin-facing side of the portal: listing supplier
// submissions, rating individual sections and recording the final decision.
package review

import (
	"Backend-NetZero/src/models"
	"Backend-NetZero/src/portal/gateway"
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrUnknownSubmission = errors.New("submission not in current list")

// Panel caches the submission list and keeps it consistent with the rating
// and status operations performed through it.
type Panel struct {
	gw      gateway.SubmissionGateway
	session gateway.Session

	mu          sync.Mutex
	submissions []models.Submission
}

func New(gw gateway.SubmissionGateway, session gateway.Session) *Panel {
	return &Panel{gw: gw, session: session}
}

// Refresh reloads the list from the backend. Submissions with no company
// info at all are hidden: นั่นคือบริษัทที่ยังไม่เริ่มกรอกอะไรเลย
func (p *Panel) Refresh(ctx context.Context) error {
	subs, err := p.gw.ListSubmissions(ctx, p.session)
	if err != nil {
		return err
	}

	kept := make([]models.Submission, 0, len(subs))
	for _, s := range subs {
		if len(s.CompanyInfo) == 0 {
			continue
		}
		kept = append(kept, s)
	}

	p.mu.Lock()
	p.submissions = kept
	p.mu.Unlock()
	return nil
}

// Submissions returns a copy of the cached, filtered list.
func (p *Panel) Submissions() []models.Submission {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Submission, len(p.submissions))
	copy(out, p.submissions)
	return out
}

// Submission returns one cached entry by id.
func (p *Panel) Submission(id primitive.ObjectID) (models.Submission, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.submissions {
		if s.ID == id {
			return s, true
		}
	}
	return models.Submission{}, false
}

// RateSection stores points and remarks for one section. Points are clamped
// to [0,1] before they ever leave the client; the backend clamps again on its
// side. On success the cached entry is replaced with the backend's updated
// submission, on failure the cache is untouched.
func (p *Panel) RateSection(ctx context.Context, id primitive.ObjectID, category, sectionKey string, points float64, remarks string) error {
	if points < 0 {
		points = 0
	} else if points > 1 {
		points = 1
	}

	updated, err := p.gw.RateSection(ctx, p.session, id.Hex(), category, sectionKey, points, remarks)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.submissions {
		if s.ID == id {
			p.submissions[i] = *updated
			return nil
		}
	}
	return ErrUnknownSubmission
}

// SetStatus records an approved/rejected decision and refreshes the list so
// the cache reflects the backend's view of the transition.
func (p *Panel) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if err := p.gw.SetStatus(ctx, p.session, id.Hex(), status); err != nil {
		return err
	}
	return p.Refresh(ctx)
}

// DisplayPercent converts a backend score in [0,1] to the 0-100 scale the
// panel renders. Display-unit conversion only, never recomputation.
func DisplayPercent(score float64) float64 { return score * 100 }

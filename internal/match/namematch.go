package match

import (
	"sort"

	"github.com/bizdesk/backend/internal/models"
)

// MatchThreshold is the minimum 0-100 similarity for a fuzzy name match to
// be accepted. Below it the reference stays unmatched.
const MatchThreshold = 85

// maxAlternatives caps how many runner-up candidates are kept per name for
// display in the preview.
const maxAlternatives = 3

// AnnotateNames resolves the free-text parent reference of every candidate
// against the existing leads and attaches a MatchAnnotation. Each distinct
// name is scored exactly once and the result fanned out to all rows sharing
// it, so identical names always carry identical annotations. Ties on the
// top score go to the lead earliest in fetch order; the store fetches in
// creation order, which keeps the tie-break deterministic.
//
// The returned slice lists the distinct normalized-original names that
// stayed unmatched, in first-appearance order.
func AnnotateNames(candidates []models.CandidateEntity, leads []models.ExistingLead) []string {
	resolved := make(map[string]*models.MatchAnnotation)
	var unmatched []string
	seenUnmatched := make(map[string]bool)

	for i := range candidates {
		name := candidates[i].ReferenceName()
		if name == "" {
			continue
		}

		key := NormalizeName(name)
		ann, ok := resolved[key]
		if !ok {
			ann = resolveName(key, leads)
			resolved[key] = ann
		}

		// Fan the shared result out as a copy so later annotation tweaks on
		// one row can never leak into rows sharing the name.
		copied := *ann
		candidates[i].Match = &copied

		if ann.MatchedRecordID == "" && !seenUnmatched[name] {
			seenUnmatched[name] = true
			unmatched = append(unmatched, name)
		}
	}

	return unmatched
}

// resolveName scores one normalized reference name against every existing
// lead and keeps the best acceptable match plus a few alternatives.
func resolveName(normalized string, leads []models.ExistingLead) *models.MatchAnnotation {
	ann := &models.MatchAnnotation{}
	if normalized == "" {
		return ann
	}

	type scored struct {
		id    string
		score int
		order int
	}
	var all []scored

	for i, lead := range leads {
		score := Similarity(normalized, NormalizeName(lead.Name))
		if score <= 0 {
			continue
		}
		all = append(all, scored{id: lead.ID, score: score, order: i})
	}

	if len(all) == 0 {
		return ann
	}

	// Highest score first; fetch order breaks ties.
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].order < all[j].order
	})

	best := all[0]
	ann.Confidence = best.score
	if best.score >= MatchThreshold {
		ann.MatchedRecordID = best.id
	}

	for _, s := range all[1:] {
		if len(ann.Alternatives) >= maxAlternatives {
			break
		}
		ann.Alternatives = append(ann.Alternatives, models.MatchCandidate{
			RecordID:   s.id,
			Confidence: s.score,
		})
	}

	return ann
}

package services

import (
	"context"
	"log"
)

// Gamification bundles the evaluators that run after any point-earning write.
type Gamification struct {
	Badges     *BadgeService
	Challenges *ChallengeService
}

func NewGamification(badges *BadgeService, challenges *ChallengeService) *Gamification {
	return &Gamification{Badges: badges, Challenges: challenges}
}

type Rewards struct {
	Badges     []BadgeStatus    `json:"new_badges"`
	Challenges []ChallengeGrant `json:"new_challenges"`
}

// AfterActivity evaluates challenges, then badges, so challenge rewards count towards
// point badges in the same pass. Failures are logged and never returned: the
// triggering write has already committed.
func (g *Gamification) AfterActivity(ctx context.Context, userID, sedeID string) Rewards {
	out := Rewards{Badges: []BadgeStatus{}, Challenges: []ChallengeGrant{}}

	if g.Challenges != nil {
		granted, err := g.Challenges.EvaluateAndReturnNew(ctx, userID, sedeID)
		if err != nil {
			log.Printf("⚠️ [CHALLENGES] evaluation for %s failed: %v", userID, err)
		}
		out.Challenges = append(out.Challenges, granted...)
	}
	if g.Badges != nil {
		// badges are evaluated against all-time totals here, not the sede slice
		granted, err := g.Badges.EvaluateAndReturnNew(ctx, userID, "")
		if err != nil {
			log.Printf("⚠️ [BADGES] evaluation for %s failed: %v", userID, err)
		}
		out.Badges = append(out.Badges, granted...)
	}
	return out
}

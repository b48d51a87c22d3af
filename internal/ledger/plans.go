package ledger

import (
	"context" // Request scoped cancellation
	"errors"  // Catalog errors
	"fmt"     // Messages

	"yield_wallet/internal/catalog" // Purchasable plans
	"yield_wallet/internal/domain"  // Models
	"yield_wallet/internal/store"   // Persistence contract
	"yield_wallet/internal/utils"   // Ids and money helpers

	"github.com/sirupsen/logrus" // Logging library
)

// PurchasePlan buys a catalog plan with wallet funds
func (s *Service) PurchasePlan(ctx context.Context, userID, code string) (*domain.Plan, *domain.User, error) {
	product, err := s.catalog.Get(code)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownPlan) {
			return nil, nil, ErrUnknownPlan
		}
		return nil, nil, err
	}
	if !product.Active {
		return nil, nil, ErrUnknownPlan
	}

	var plan *domain.Plan
	var user *domain.User
	err = s.update(ctx, "purchase_plan", func(tx store.Tx) error {
		u, err := lockActive(tx, userID)
		if err != nil {
			return err
		}
		if u.IsBlocked {
			return ErrBlocked
		}
		if u.Wallet < product.Price {
			return ErrInsufficientFunds
		}
		index, err := tx.CountPlans(userID)
		if err != nil {
			return err
		}
		now := s.now()
		p := &domain.Plan{
			ID:             utils.NewID(),
			UserID:         userID,
			Index:          index,
			Code:           product.Code,
			Name:           product.Name,
			Amount:         product.Price,
			DailyReturn:    product.DailyReturn,
			BonusPerDay:    product.BonusPerDay,
			TotalBonusDays: product.TotalBonusDays,
			DurationDays:   product.DurationDays,
			Status:         domain.PlanActive,
			NextClaimAt:    now.Add(domain.ClaimInterval),
			CreatedAt:      now,
		}
		if err := tx.CreatePlan(p); err != nil {
			return err
		}
		if err := s.move(tx, u, -product.Price, domain.EntryPlanPurchase, "Purchased "+product.Name, p.ID); err != nil {
			return err
		}
		if err := tx.SaveUser(u); err != nil {
			return err
		}
		plan, user = p, u
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID,      // Buyer
		"plan_id": plan.ID,     // New plan
		"code":    plan.Code,   // Catalog code
		"index":   plan.Index,  // Position among the user's plans
		"wallet":  user.Wallet, // Balance after
	}).Info("Plan purchased")
	return plan, user, nil
}

// ClaimBonus credits the next daily return of a plan. Claims are due every 24 hours counted
// from the previous due time, not from when the claim happened.
func (s *Service) ClaimBonus(ctx context.Context, userID string, planIndex int) (*domain.User, float64, error) {
	if planIndex < 0 {
		return nil, 0, ErrPlanNotFound
	}
	var user *domain.User
	var credited float64
	err := s.update(ctx, "claim_bonus", func(tx store.Tx) error {
		u, err := lockActive(tx, userID)
		if err != nil {
			return err
		}
		if u.IsBlocked {
			return ErrBlocked
		}
		p, err := tx.GetPlanByIndex(userID, planIndex)
		if err != nil {
			return orNotFound(err, ErrPlanNotFound)
		}
		if p.Status != domain.PlanActive {
			return ErrPlanCompleted
		}
		if s.now().Before(p.NextClaimAt) {
			return ErrBonusNotReady
		}

		amount, withBonus := p.ClaimAmount()
		p.DaysClaimed++
		if withBonus {
			p.BonusDaysClaimed++
		}
		p.NextClaimAt = p.NextClaimAt.Add(domain.ClaimInterval)
		if p.DaysClaimed >= p.DurationDays {
			p.Status = domain.PlanCompleted
		}
		if err := tx.SavePlan(p); err != nil {
			return err
		}
		desc := fmt.Sprintf("Daily return %s day %d/%d", p.Name, p.DaysClaimed, p.DurationDays)
		if err := s.move(tx, u, amount, domain.EntryDailyReturn, desc, p.ID); err != nil {
			return err
		}
		if err := tx.SaveUser(u); err != nil {
			return err
		}
		credited, user = utils.Round2(amount), u
		return s.notify(tx, userID, domain.NotifyBonus,
			fmt.Sprintf("%.2f credited from %s", credited, p.Name))
	})
	if err != nil {
		return nil, 0, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":    userID,      // Claimer
		"plan_index": planIndex,   // Claimed plan
		"amount":     credited,    // Amount credited
		"wallet":     user.Wallet, // Balance after
	}).Info("Bonus claimed")
	return user, credited, nil
}

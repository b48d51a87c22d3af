package ledger

import (
	"context" // Request scoped cancellation
	"fmt"     // Messages
	"strings" // Input trimming

	"yield_wallet/internal/domain" // Models
	"yield_wallet/internal/store"  // Persistence contract
	"yield_wallet/internal/utils"  // Ids and money helpers

	"github.com/sirupsen/logrus" // Logging library
)

// PlaceBet debits the stake and records a Pending bet
func (s *Service) PlaceBet(ctx context.Context, userID, gameID string, amount float64, choice string) (*domain.Bet, *domain.User, error) {
	gameID, choice = strings.TrimSpace(gameID), strings.TrimSpace(choice)
	if gameID == "" || choice == "" {
		return nil, nil, badRequest("Game and choice are required")
	}
	if !validAmount(amount) {
		return nil, nil, ErrInvalidAmount
	}

	var bet *domain.Bet
	var user *domain.User
	err := s.update(ctx, "place_bet", func(tx store.Tx) error {
		u, err := lockActive(tx, userID)
		if err != nil {
			return err
		}
		if u.IsBlocked {
			return ErrBlocked
		}
		stake := utils.Round2(amount)
		if u.Wallet < stake {
			return ErrInsufficientFunds
		}
		b := &domain.Bet{
			ID:        utils.NewID(),
			UserID:    userID,
			GameID:    gameID,
			Amount:    stake,
			Choice:    choice,
			Status:    domain.BetPending,
			CreatedAt: s.now(),
		}
		if err := tx.CreateBet(b); err != nil {
			return err
		}
		if err := s.move(tx, u, -stake, domain.EntryBet, "Bet on "+gameID, b.ID); err != nil {
			return err
		}
		if err := tx.SaveUser(u); err != nil {
			return err
		}
		bet, user = b, u
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID,     // Player
		"bet_id":  bet.ID,     // New bet
		"game_id": gameID,     // Game
		"amount":  bet.Amount, // Stake
	}).Info("Bet placed")
	return bet, user, nil
}

// ResolveBet settles a Pending bet. A win credits winAmount.
func (s *Service) ResolveBet(ctx context.Context, betID, status string, winAmount float64) (*domain.Bet, error) {
	switch status {
	case domain.BetWin:
		if !validAmount(winAmount) {
			return nil, ErrInvalidAmount
		}
	case domain.BetLoss:
		winAmount = 0
	default:
		return nil, badRequest("Status must be Win or Loss")
	}

	var bet *domain.Bet
	err := s.update(ctx, "resolve_bet", func(tx store.Tx) error {
		b, err := tx.GetBet(betID)
		if err != nil {
			return orNotFound(err, ErrBetNotFound)
		}
		if b.Status != domain.BetPending {
			return ErrAlreadyProcessed
		}
		u, err := lockActive(tx, b.UserID)
		if err != nil {
			return err
		}
		now := s.now()
		b.Status = status
		b.WinAmount = utils.Round2(winAmount)
		b.ResolvedAt = &now
		if err := tx.SaveBet(b); err != nil {
			return err
		}
		msg := fmt.Sprintf("Your bet on %s lost", b.GameID)
		if status == domain.BetWin {
			if err := s.move(tx, u, b.WinAmount, domain.EntryBetWin, "Bet won on "+b.GameID, b.ID); err != nil {
				return err
			}
			if err := tx.SaveUser(u); err != nil {
				return err
			}
			msg = fmt.Sprintf("You won %.2f on %s", b.WinAmount, b.GameID)
		}
		bet = b
		return s.notify(tx, u.ID, domain.NotifyBet, msg)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"bet_id":     betID,         // Resolved bet
		"user_id":    bet.UserID,    // Player
		"status":     status,        // Win or Loss
		"win_amount": bet.WinAmount, // Payout
	}).Info("Bet resolved")
	return bet, nil
}

// ActiveBets lists every Pending bet
func (s *Service) ActiveBets(ctx context.Context) ([]domain.Bet, error) {
	return s.store.ListBets(ctx, store.Filter{Status: domain.BetPending})
}

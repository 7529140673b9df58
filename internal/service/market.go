package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/reciloop/reciloop/internal/api"
	"github.com/reciloop/reciloop/internal/database/repository"
	"github.com/reciloop/reciloop/internal/market"
)

// Messages shown after marketplace actions succeed.
const (
	MsgMatchAccepted      = "Match aceito com sucesso!"
	MsgInterestRegistered = "Interesse registrado! A empresa será notificada."
	MsgInterestRepeated   = "Você já registrou interesse nesta oferta."
	MsgOfferCreated       = "Oferta criada com sucesso!"
)

// MarketService runs the marketplace actions and records them in the local
// journal. The journal repos are optional; a nil repo skips recording.
type MarketService struct {
	Client      *api.Client
	ROI         *repository.RoiCalculationRepo
	Interests   *repository.OfferInterestRepo
	Acceptances *repository.MatchAcceptanceRepo
	Log         *zap.Logger
}

func (s *MarketService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// AcceptMatch accepts m on the server and journals it.
func (s *MarketService) AcceptMatch(ctx context.Context, m api.Match) (api.AcceptResult, error) {
	res, err := s.Client.AcceptMatch(ctx, m.ID)
	if err != nil {
		s.logger().Error("accept match", zap.Int("match_id", m.ID), zap.Error(err))
		return api.AcceptResult{}, err
	}
	if res.Message == "" {
		res.Message = MsgMatchAccepted
	}
	if s.Acceptances != nil {
		_, err := s.Acceptances.Add(ctx, repository.MatchAcceptance{
			MatchID:   m.ID,
			WasteName: m.Waste.Name,
			Consumer:  m.ConsumerCompany.Name,
			Score:     m.Score,
			Message:   res.Message,
		})
		if err != nil {
			s.logger().Warn("journal match acceptance", zap.Error(err))
		}
	}
	return res, nil
}

// RegisterInterest records interest in an offer. The backend has no
// endpoint for it, so only the local journal is touched. A second call for
// the same offer records nothing and returns MsgInterestRepeated.
func (s *MarketService) RegisterInterest(ctx context.Context, o api.ResidueOffer) (string, error) {
	if s.Interests != nil {
		seen, err := s.Interests.HasInterest(ctx, o.ID)
		if err != nil {
			s.logger().Error("check interest", zap.Int("offer_id", o.ID), zap.Error(err))
			return "", err
		}
		if seen {
			return MsgInterestRepeated, nil
		}
		if _, err := s.Interests.Add(ctx, repository.OfferInterest{
			OfferID:   o.ID,
			OfferName: o.Name,
			Company:   o.Company,
		}); err != nil {
			s.logger().Error("register interest", zap.Int("offer_id", o.ID), zap.Error(err))
			return "", err
		}
	}
	s.logger().Info("interest registered", zap.Int("offer_id", o.ID), zap.String("offer", o.Name))
	return MsgInterestRegistered, nil
}

// CalculateROI sends the form to the server and journals the result.
func (s *MarketService) CalculateROI(ctx context.Context, form market.ROIForm) (api.ROIResult, error) {
	in := form.Input()
	res, err := s.Client.CalculateROI(ctx, in)
	if err != nil {
		s.logger().Error("calculate roi", zap.String("waste_type", in.WasteType), zap.Error(err))
		return api.ROIResult{}, err
	}
	if s.ROI != nil {
		_, err := s.ROI.Add(ctx, repository.RoiCalculation{
			WasteType:       in.WasteType,
			Volume:          in.Volume,
			DisposalCost:    in.DisposalCost,
			MarketPrice:     in.MarketPrice,
			PotentialProfit: res.PotentialProfit,
			ROIPercentage:   res.ROIPercentage,
			PaybackDays:     res.PaybackDays,
		})
		if err != nil {
			s.logger().Warn("journal roi", zap.Error(err))
		}
	}
	return res, nil
}

// CreateOffer validates the form and posts it.
func (s *MarketService) CreateOffer(ctx context.Context, form market.OfferForm) (api.ResidueOffer, error) {
	offer, err := form.Validate()
	if err != nil {
		return api.ResidueOffer{}, err
	}
	created, err := s.Client.CreateOffer(ctx, offer)
	if err != nil {
		s.logger().Error("create offer", zap.String("name", offer.Name), zap.Error(err))
		return api.ResidueOffer{}, err
	}
	s.logger().Info("offer created", zap.Int("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// Offers lists marketplace offers, falling back to the sample listing when
// the server has none. sample reports whether the fallback was used.
func (s *MarketService) Offers(ctx context.Context) (offers []api.ResidueOffer, sample bool, err error) {
	got, err := s.Client.ResidueOffers(ctx)
	if err != nil {
		s.logger().Error("list offers", zap.Error(err))
		return nil, false, err
	}
	offers, sample = market.OffersOrSample(got)
	return offers, sample, nil
}

// History is the local journal, newest first.
type History struct {
	Calculations []repository.RoiCalculation
	Interests    []repository.OfferInterest
	Acceptances  []repository.MatchAcceptance
}

// History reads up to limit rows from each journal table.
func (s *MarketService) History(ctx context.Context, limit int) (History, error) {
	var h History
	var err error
	if s.ROI != nil {
		if h.Calculations, err = s.ROI.List(ctx, limit); err != nil {
			return History{}, err
		}
	}
	if s.Interests != nil {
		if h.Interests, err = s.Interests.List(ctx, limit); err != nil {
			return History{}, err
		}
	}
	if s.Acceptances != nil {
		if h.Acceptances, err = s.Acceptances.List(ctx, limit); err != nil {
			return History{}, err
		}
	}
	return h, nil
}
